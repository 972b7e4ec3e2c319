package solver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	SolverFunc
	ExplainerFunc
}

func failingClient(err error) *stubClient {
	return &stubClient{
		SolverFunc: func(ctx context.Context, prompt string) (Solution, error) {
			return Solution{}, err
		},
		ExplainerFunc: func(ctx context.Context, expression, result string) (string, error) {
			return "", err
		},
	}
}

func TestProtectedPassesThrough(t *testing.T) {
	next := &stubClient{
		SolverFunc: func(ctx context.Context, prompt string) (Solution, error) {
			return Solution{Result: "7", Explanation: prompt}, nil
		},
		ExplainerFunc: func(ctx context.Context, expression, result string) (string, error) {
			return expression + " is " + result, nil
		},
	}
	p := NewProtected(next, ProtectionConfig{})

	sol, err := p.SolveWordProblem(context.Background(), "why")
	require.NoError(t, err)
	assert.Equal(t, Solution{Result: "7", Explanation: "why"}, sol)

	text, err := p.Explain(context.Background(), "3 + 4", "7")
	require.NoError(t, err)
	assert.Equal(t, "3 + 4 is 7", text)
	assert.Equal(t, "closed", p.State())
}

func TestProtectedOpensAfterConsecutiveFailures(t *testing.T) {
	p := NewProtected(failingClient(errors.New("connection refused")), ProtectionConfig{
		ConsecutiveFailures: 3,
		OpenTimeout:         time.Minute,
	})

	for i := 0; i < 3; i++ {
		_, err := p.SolveWordProblem(context.Background(), "x")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrCircuitOpen)
	}

	assert.Equal(t, "open", p.State())

	_, err := p.SolveWordProblem(context.Background(), "x")
	assert.ErrorIs(t, err, ErrCircuitOpen)

	var se *Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "solve", se.Op)
}

func TestProtectedMalformedRepliesDoNotTrip(t *testing.T) {
	malformed := &Error{Op: "solve", Err: ErrMalformedResponse}
	p := NewProtected(failingClient(malformed), ProtectionConfig{ConsecutiveFailures: 2})

	for i := 0; i < 5; i++ {
		_, err := p.SolveWordProblem(context.Background(), "x")
		assert.ErrorIs(t, err, ErrMalformedResponse)
	}
	assert.Equal(t, "closed", p.State())
}

func TestProtectedRateLimits(t *testing.T) {
	calls := 0
	next := &stubClient{
		SolverFunc: func(ctx context.Context, prompt string) (Solution, error) {
			calls++
			return Solution{Result: "1"}, nil
		},
	}
	p := NewProtected(next, ProtectionConfig{RequestsPerSecond: 0.001, Burst: 1})

	_, err := p.SolveWordProblem(context.Background(), "first")
	require.NoError(t, err)

	_, err = p.SolveWordProblem(context.Background(), "second")
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, 1, calls)
}

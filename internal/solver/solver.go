// Package solver turns natural-language word problems into a numeric result
// and a short explanation by asking a hosted language model.
package solver

import "context"

// Solution is what the model returned. Both fields are opaque display text.
type Solution struct {
	Result      string `json:"result"`
	Explanation string `json:"explanation"`
}

// Solver answers word problems.
type Solver interface {
	// SolveWordProblem fails with an *Error when the remote call fails or its
	// reply does not carry the two string fields.
	SolveWordProblem(ctx context.Context, prompt string) (Solution, error)
}

// Explainer describes how a finished calculation was reached.
type Explainer interface {
	Explain(ctx context.Context, expression, result string) (string, error)
}

// Client is a model backend that both solves and explains.
type Client interface {
	Solver
	Explainer
}

// SolverFunc adapts a function to the Solver interface.
type SolverFunc func(ctx context.Context, prompt string) (Solution, error)

func (f SolverFunc) SolveWordProblem(ctx context.Context, prompt string) (Solution, error) {
	return f(ctx, prompt)
}

// ExplainerFunc adapts a function to the Explainer interface.
type ExplainerFunc func(ctx context.Context, expression, result string) (string, error)

func (f ExplainerFunc) Explain(ctx context.Context, expression, result string) (string, error) {
	return f(ctx, expression, result)
}

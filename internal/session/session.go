// Package session binds one calculator accumulator and its history log to the
// presentation state of a single user, and drives both from UI events.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"smart-calculator/internal/calculator"
	"smart-calculator/internal/observability"
	"smart-calculator/internal/solver"

	"go.uber.org/zap"
)

// FallbackExplanation replaces an explanation the model could not produce.
const FallbackExplanation = "Could not generate explanation at this time."

var (
	ErrEmptyPrompt     = errors.New("prompt is empty")
	ErrSolveInProgress = errors.New("a solve is already in progress")
)

// Mode selects between keypad arithmetic and word-problem solving.
type Mode int

const (
	Standard Mode = iota
	Smart
)

func (m Mode) String() string {
	if m == Smart {
		return "smart"
	}
	return "standard"
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "standard":
		*m = Standard
	case "smart":
		*m = Smart
	default:
		return fmt.Errorf("unknown mode %q", text)
	}
	return nil
}

// Snapshot is a read-only copy of everything a client needs to render a session.
type Snapshot struct {
	ID string `json:"id"`
	calculator.State
	Mode           Mode   `json:"mode"`
	Explanation    string `json:"explanation,omitempty"`
	HistoryVisible bool   `json:"history_visible"`
	HistoryLen     int    `json:"history_len"`
	Solving        bool   `json:"solving"`
}

// Session is safe for concurrent use. The accumulator and history log it
// owns are only touched with mu held; model calls run with mu released.
type Session struct {
	id        string
	solver    solver.Solver
	explainer solver.Explainer

	mu             sync.Mutex
	acc            *calculator.Accumulator
	history        *calculator.HistoryLog
	mode           Mode
	explanation    string
	historyVisible bool
	// solving is the single in-flight solve slot.
	solving bool
	now     func() time.Time
}

// New returns a session in its start-of-session state. A nil client is
// replaced by solver.Unavailable.
func New(id string, client solver.Client, now func() time.Time) *Session {
	if client == nil {
		client = solver.Unavailable{}
	}
	if now == nil {
		now = time.Now
	}
	return &Session{
		id:        id,
		solver:    client,
		explainer: client,
		acc:       calculator.NewAccumulator(calculator.WithClock(now)),
		history:   calculator.NewHistoryLog(),
		now:       now,
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		ID:             s.id,
		State:          s.acc.State(),
		Mode:           s.mode,
		Explanation:    s.explanation,
		HistoryVisible: s.historyVisible,
		HistoryLen:     s.history.Len(),
		Solving:        s.solving,
	}
}

func (s *Session) PressDigit(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acc.PressDigit(token)
}

func (s *Session) PressOperation(op calculator.Operation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acc.PressOperation(op)
}

// PressEqual finalizes the pending operation and logs the record. With
// explain set, the record carries a model explanation, or FallbackExplanation
// when the model fails; equals itself never fails. It reports false when
// nothing was pending.
func (s *Session) PressEqual(ctx context.Context, explain bool) (calculator.HistoryRecord, bool) {
	s.mu.Lock()
	rec, ok := s.acc.PressEqual()
	if !ok {
		s.mu.Unlock()
		return calculator.HistoryRecord{}, false
	}
	if !explain {
		s.history.Append(rec)
		s.mu.Unlock()
		return rec, true
	}
	s.mu.Unlock()

	text, err := s.explainer.Explain(ctx, rec.Expression, rec.Result)
	if err != nil {
		observability.LoggerWithTrace(ctx).Warn("explanation unavailable",
			zap.String("session_id", s.id),
			zap.String("expression", rec.Expression),
			zap.Error(err),
		)
		text = FallbackExplanation
	}
	rec.Explanation = text

	s.mu.Lock()
	s.history.Append(rec)
	s.explanation = text
	s.mu.Unlock()
	return rec, true
}

func (s *Session) ToggleSign() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acc.ToggleSign()
}

// ClearAll resets the accumulator and hides any displayed explanation.
func (s *Session) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acc.Clear()
	s.explanation = ""
}

// ToggleMode switches between Standard and Smart. The accumulator is reset
// and any displayed explanation cleared.
func (s *Session) ToggleMode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode == Standard {
		s.mode = Smart
	} else {
		s.mode = Standard
	}
	s.acc.Clear()
	s.explanation = ""
	return s.mode
}

// ToggleHistory flips history panel visibility. It has no effect on calculator state.
func (s *Session) ToggleHistory() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.historyVisible = !s.historyVisible
	return s.historyVisible
}

func (s *Session) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history.Clear()
}

// History returns the records most recent first.
func (s *Session) History() []calculator.HistoryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.List()
}

// Solve sends prompt to the solver. At most one solve runs per session;
// a second call while one is outstanding fails with ErrSolveInProgress.
//
// On success the result replaces the display, the explanation is shown and
// a record is logged. On failure nothing changes and the returned error is
// a *solver.Error.
func (s *Session) Solve(ctx context.Context, prompt string) (calculator.HistoryRecord, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return calculator.HistoryRecord{}, ErrEmptyPrompt
	}

	s.mu.Lock()
	if s.solving {
		s.mu.Unlock()
		return calculator.HistoryRecord{}, ErrSolveInProgress
	}
	s.solving = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.solving = false
		s.mu.Unlock()
	}()

	sol, err := s.solver.SolveWordProblem(ctx, prompt)
	if err == nil && strings.TrimSpace(sol.Result) == "" {
		err = fmt.Errorf("%w: empty result", solver.ErrMalformedResponse)
	}
	if err != nil {
		return calculator.HistoryRecord{}, solver.Wrap("solve", err)
	}

	rec := calculator.HistoryRecord{
		Expression:  prompt,
		Result:      sol.Result,
		CreatedAt:   s.now(),
		Explanation: sol.Explanation,
	}

	s.mu.Lock()
	s.acc.SetDisplay(sol.Result)
	s.explanation = sol.Explanation
	s.history.Append(rec)
	s.mu.Unlock()

	return rec, nil
}

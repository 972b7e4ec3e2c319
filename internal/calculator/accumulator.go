package calculator

import (
	"errors"
	"fmt"
	"time"
)

// MaxEntryLength bounds how many characters digit entry may grow the display to.
// Digits pressed beyond it are ignored. Computed results are not truncated.
const MaxEntryLength = 64

// ErrInvalidToken is returned when a digit press carries anything other than "0"-"9" or ".".
var ErrInvalidToken = errors.New("invalid digit token")

// State is a copy of the accumulator's state.
//
// PendingOperand is meaningful only while PendingOperation is not None; the
// two are always set and cleared together.
type State struct {
	Display          string    `json:"display"`
	PendingOperand   float64   `json:"pending_operand"`
	PendingOperation Operation `json:"pending_operation,omitempty"`
	Fresh            bool      `json:"fresh"`
	// Expression is the secondary "<display> <op>" line shown while an
	// operation is pending.
	Expression string `json:"expression,omitempty"`
}

// HasPending reports whether a binary operation is waiting for its right operand.
func (s State) HasPending() bool {
	return s.PendingOperation != None
}

// Accumulator is the left-to-right, single-pending-operation calculator state
// machine. It is not safe for concurrent use.
type Accumulator struct {
	state State
	now   func() time.Time
}

// Option configures an Accumulator.
type Option func(*Accumulator)

// WithClock overrides the clock used to stamp history records.
func WithClock(now func() time.Time) Option {
	return func(a *Accumulator) {
		a.now = now
	}
}

func NewAccumulator(opts ...Option) *Accumulator {
	a := &Accumulator{now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	a.Clear()
	return a
}

// State returns a copy of the current state.
func (a *Accumulator) State() State {
	return a.state
}

// Display returns the text currently shown.
func (a *Accumulator) Display() string {
	return a.state.Display
}

// PressDigit handles a digit or decimal point key.
func (a *Accumulator) PressDigit(token string) error {
	if !isDigitToken(token) {
		return fmt.Errorf("%w: %q", ErrInvalidToken, token)
	}

	if a.state.Fresh {
		if token == "." {
			a.state.Display = "0."
		} else {
			a.state.Display = token
		}
		a.state.Fresh = false
		return nil
	}

	if a.state.Display == "0" && token != "." {
		a.state.Display = token
		return nil
	}

	if len(a.state.Display) >= MaxEntryLength {
		return nil
	}
	a.state.Display += token
	return nil
}

// PressOperation captures the displayed number as the left operand or, when an
// operation is already pending, folds it first and shows the intermediate result.
func (a *Accumulator) PressOperation(op Operation) error {
	if !op.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownOperation, op)
	}

	current := ParseDisplay(a.state.Display)
	if !a.state.HasPending() {
		a.state.PendingOperand = current
	} else {
		result := a.state.PendingOperation.Apply(a.state.PendingOperand, current)
		a.state.PendingOperand = result
		a.state.Display = FormatNumber(result)
	}

	a.state.PendingOperation = op
	a.state.Fresh = true
	a.state.Expression = a.state.Display + " " + op.Symbol()
	return nil
}

// PressEqual finalizes the pending operation. It reports false and leaves the
// state untouched when nothing is pending.
func (a *Accumulator) PressEqual() (HistoryRecord, bool) {
	if !a.state.HasPending() {
		return HistoryRecord{}, false
	}

	operand := a.state.PendingOperand
	op := a.state.PendingOperation
	current := ParseDisplay(a.state.Display)
	result := FormatNumber(op.Apply(operand, current))

	a.state = State{
		Display: result,
		Fresh:   true,
	}

	return HistoryRecord{
		Expression: FormatNumber(operand) + " " + op.Symbol() + " " + FormatNumber(current),
		Result:     result,
		CreatedAt:  a.now(),
	}, true
}

// ToggleSign negates the displayed number.
func (a *Accumulator) ToggleSign() {
	a.state.Display = FormatNumber(-ParseDisplay(a.state.Display))
}

// Clear restores the start-of-session defaults.
func (a *Accumulator) Clear() {
	a.state = State{
		Display: "0",
		Fresh:   true,
	}
}

// SetDisplay shows externally produced text (a solver result) verbatim.
// The next digit starts a new number. Empty text is ignored.
func (a *Accumulator) SetDisplay(text string) {
	if text == "" {
		return
	}
	a.state.Display = text
	a.state.Fresh = true
}

func isDigitToken(token string) bool {
	if len(token) != 1 {
		return false
	}
	return token == "." || isDigit(token[0])
}

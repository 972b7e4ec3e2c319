package calculator

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func press(t *testing.T, a *Accumulator, keys ...string) {
	t.Helper()
	for _, k := range keys {
		if op, err := ParseOperation(k); err == nil {
			if err := a.PressOperation(op); err != nil {
				t.Fatalf("pressing %q: %v", k, err)
			}
			continue
		}
		if err := a.PressDigit(k); err != nil {
			t.Fatalf("pressing %q: %v", k, err)
		}
	}
}

func TestNewAccumulatorDefaults(t *testing.T) {
	got := NewAccumulator().State()
	want := State{Display: "0", Fresh: true}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestPressDigit(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want string
	}{
		{name: "first digit replaces zero", keys: []string{"7"}, want: "7"},
		{name: "digits append", keys: []string{"1", "2", "3"}, want: "123"},
		{name: "fresh point becomes zero point", keys: []string{"."}, want: "0."},
		{name: "no leading zeros", keys: []string{"0", "0", "5"}, want: "5"},
		{name: "point after zero appends", keys: []string{"0", ".", "5"}, want: "0.5"},
		{name: "repeated zero stays zero", keys: []string{"0", "0"}, want: "0"},
		{name: "multiple points accepted", keys: []string{"1", ".", "2", "."}, want: "1.2."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := NewAccumulator()
			press(t, a, tc.keys...)
			if got := a.Display(); got != tc.want {
				t.Fatalf("expected display %q, got %q", tc.want, got)
			}
			if a.State().Fresh {
				t.Fatal("expected fresh to be false after digit entry")
			}
		})
	}
}

func TestPressDigitRejectsInvalidTokens(t *testing.T) {
	for _, token := range []string{"", "a", "12", "-", "+", " "} {
		t.Run(token, func(t *testing.T) {
			a := NewAccumulator()
			press(t, a, "4")
			before := a.State()

			err := a.PressDigit(token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
			if a.State() != before {
				t.Fatalf("expected state unchanged, got %+v", a.State())
			}
		})
	}
}

func TestPressDigitStopsAtMaxEntryLength(t *testing.T) {
	a := NewAccumulator()
	for i := 0; i < MaxEntryLength+10; i++ {
		if err := a.PressDigit("9"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	want := strings.Repeat("9", MaxEntryLength)
	if got := a.Display(); got != want {
		t.Fatalf("expected %d nines, got %q (len %d)", MaxEntryLength, got, len(got))
	}
}

func TestPressOperationCapturesOperand(t *testing.T) {
	a := NewAccumulator()
	press(t, a, "1", "2", "+")

	s := a.State()
	if s.PendingOperation != Add || s.PendingOperand != 12 {
		t.Fatalf("expected pending 12 +, got %v %s", s.PendingOperand, s.PendingOperation)
	}
	if !s.Fresh {
		t.Fatal("expected fresh entry after operator")
	}
	if s.Display != "12" {
		t.Fatalf("expected display to stay %q, got %q", "12", s.Display)
	}
	if s.Expression != "12 +" {
		t.Fatalf("expected expression %q, got %q", "12 +", s.Expression)
	}

	press(t, a, "3")
	if got := a.Display(); got != "3" {
		t.Fatalf("expected next digit to start a new number, got %q", got)
	}
}

func TestPressOperationRejectsNone(t *testing.T) {
	a := NewAccumulator()
	if err := a.PressOperation(None); !errors.Is(err, ErrUnknownOperation) {
		t.Fatalf("expected ErrUnknownOperation, got %v", err)
	}
	if a.State().HasPending() {
		t.Fatal("expected no pending operation")
	}
}

func TestChainedOperatorFolding(t *testing.T) {
	a := NewAccumulator()
	press(t, a, "5", "+", "3", "*")

	if got := a.Display(); got != "8" {
		t.Fatalf("expected folded display %q, got %q", "8", got)
	}
	if s := a.State(); s.PendingOperation != Multiply || s.PendingOperand != 8 {
		t.Fatalf("expected pending 8 *, got %v %s", s.PendingOperand, s.PendingOperation)
	}

	press(t, a, "2")
	rec, ok := a.PressEqual()
	if !ok {
		t.Fatal("expected a record")
	}
	if got := a.Display(); got != "16" {
		t.Fatalf("expected display %q, got %q", "16", got)
	}
	if rec.Expression != "8 * 2" || rec.Result != "16" {
		t.Fatalf("expected record 8 * 2 = 16, got %q = %q", rec.Expression, rec.Result)
	}
}

func TestRepeatedOperatorFoldsDisplayedValue(t *testing.T) {
	a := NewAccumulator()
	press(t, a, "2", "+", "+")

	if got := a.Display(); got != "4" {
		t.Fatalf("expected %q, got %q", "4", got)
	}
}

func TestPressEqual(t *testing.T) {
	tests := []struct {
		name       string
		keys       []string
		display    string
		expression string
	}{
		{name: "add", keys: []string{"2", "+", "3"}, display: "5", expression: "2 + 3"},
		{name: "subtract below zero", keys: []string{"2", "-", "9"}, display: "-7", expression: "2 - 9"},
		{name: "divide by zero", keys: []string{"7", "/", "0"}, display: "0", expression: "7 / 0"},
		{name: "percent", keys: []string{"2", "0", "0", "%", "1", "0"}, display: "20", expression: "200 % 10"},
		{name: "float noise kept", keys: []string{".", "1", "+", ".", "2"}, display: "0.30000000000000004", expression: "0.1 + 0.2"},
		{name: "trailing point", keys: []string{"5", ".", "*", "2"}, display: "10", expression: "5 * 2"},
		{name: "right operand reuses display", keys: []string{"6", "*"}, display: "36", expression: "6 * 6"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := NewAccumulator()
			press(t, a, tc.keys...)

			rec, ok := a.PressEqual()
			if !ok {
				t.Fatal("expected a record")
			}
			if got := a.Display(); got != tc.display {
				t.Fatalf("expected display %q, got %q", tc.display, got)
			}
			if rec.Result != tc.display {
				t.Fatalf("expected record result %q, got %q", tc.display, rec.Result)
			}
			if rec.Expression != tc.expression {
				t.Fatalf("expected expression %q, got %q", tc.expression, rec.Expression)
			}
			if rec.Explanation != "" {
				t.Fatalf("expected no explanation, got %q", rec.Explanation)
			}

			s := a.State()
			if s.HasPending() || s.PendingOperand != 0 || !s.Fresh || s.Expression != "" {
				t.Fatalf("expected idle fresh state after equals, got %+v", s)
			}
		})
	}
}

func TestPressEqualWithoutPendingIsNoOp(t *testing.T) {
	a := NewAccumulator()
	press(t, a, "4", "2")
	before := a.State()

	rec, ok := a.PressEqual()
	if ok {
		t.Fatalf("expected no record, got %+v", rec)
	}
	if rec != (HistoryRecord{}) {
		t.Fatalf("expected zero record, got %+v", rec)
	}
	if a.State() != before {
		t.Fatalf("expected state unchanged, got %+v", a.State())
	}
}

func TestPressEqualStampsRecord(t *testing.T) {
	at := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)
	a := NewAccumulator(WithClock(func() time.Time { return at }))
	press(t, a, "1", "+", "1")

	rec, _ := a.PressEqual()
	if !rec.CreatedAt.Equal(at) {
		t.Fatalf("expected created_at %v, got %v", at, rec.CreatedAt)
	}
}

func TestDigitAfterEqualsStartsNewNumber(t *testing.T) {
	a := NewAccumulator()
	press(t, a, "9", "-", "4")
	a.PressEqual()
	press(t, a, "7")

	if got := a.Display(); got != "7" {
		t.Fatalf("expected %q, got %q", "7", got)
	}
}

func TestToggleSign(t *testing.T) {
	a := NewAccumulator()
	press(t, a, "1", "2", "+", "5")
	a.ToggleSign()

	s := a.State()
	if s.Display != "-5" {
		t.Fatalf("expected %q, got %q", "-5", s.Display)
	}
	if s.PendingOperation != Add || s.PendingOperand != 12 || s.Fresh {
		t.Fatalf("expected pending state and fresh flag untouched, got %+v", s)
	}

	a.ToggleSign()
	if got := a.Display(); got != "5" {
		t.Fatalf("expected %q, got %q", "5", got)
	}

	rec, _ := a.PressEqual()
	if rec.Result != "17" {
		t.Fatalf("expected 17, got %q", rec.Result)
	}
}

func TestToggleSignOfZero(t *testing.T) {
	a := NewAccumulator()
	a.ToggleSign()
	if got := a.Display(); got != "0" {
		t.Fatalf("expected %q, got %q", "0", got)
	}
	if !a.State().Fresh {
		t.Fatal("expected fresh flag untouched")
	}
}

func TestClearFromAnyState(t *testing.T) {
	setups := map[string][]string{
		"idle":          {},
		"entering":      {"3", ".", "1"},
		"pending":       {"3", "+"},
		"pending+digit": {"3", "+", "4"},
		"folded":        {"3", "+", "4", "*"},
	}

	for name, keys := range setups {
		t.Run(name, func(t *testing.T) {
			a := NewAccumulator()
			press(t, a, keys...)

			a.Clear()
			a.Clear()

			want := State{Display: "0", Fresh: true}
			if got := a.State(); got != want {
				t.Fatalf("expected %+v, got %+v", want, got)
			}
		})
	}
}

func TestSetDisplay(t *testing.T) {
	a := NewAccumulator()
	press(t, a, "8")

	a.SetDisplay("42 apples")
	if got := a.Display(); got != "42 apples" {
		t.Fatalf("expected opaque text, got %q", got)
	}
	if !a.State().Fresh {
		t.Fatal("expected fresh entry after external result")
	}

	a.SetDisplay("")
	if got := a.Display(); got != "42 apples" {
		t.Fatalf("expected empty text to be ignored, got %q", got)
	}

	press(t, a, "+", "8")
	rec, _ := a.PressEqual()
	if rec.Result != "50" {
		t.Fatalf("expected numeric prefix of solver text to be used, got %q", rec.Result)
	}
}

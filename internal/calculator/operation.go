package calculator

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownOperation is returned for operator tokens outside the evaluation table.
var ErrUnknownOperation = errors.New("unknown operation")

// Operation is a pending binary operator. The zero value means no operation is pending.
type Operation int

const (
	None Operation = iota
	Add
	Subtract
	Multiply
	Divide
	Percent
)

var operationSymbols = [...]string{
	None:     "",
	Add:      "+",
	Subtract: "-",
	Multiply: "*",
	Divide:   "/",
	Percent:  "%",
}

var operationNames = [...]string{
	None:     "none",
	Add:      "add",
	Subtract: "subtract",
	Multiply: "multiply",
	Divide:   "divide",
	Percent:  "percent",
}

// Valid reports whether op is one of the five binary operators.
func (op Operation) Valid() bool {
	return op > None && op <= Percent
}

// Symbol returns the single-character form used in expression text.
func (op Operation) Symbol() string {
	if op < None || op > Percent {
		return "?"
	}
	return operationSymbols[op]
}

func (op Operation) String() string {
	if op < None || op > Percent {
		return fmt.Sprintf("Operation(%d)", int(op))
	}
	return operationNames[op]
}

// Apply evaluates a <op> b.
//
// Division by zero yields 0 rather than an error or an infinity, matching
// handheld calculator behaviour. Percent is (a / 100) * b.
func (op Operation) Apply(a, b float64) float64 {
	switch op {
	case Add:
		return a + b
	case Subtract:
		return a - b
	case Multiply:
		return a * b
	case Divide:
		if b == 0 {
			return 0
		}
		return a / b
	case Percent:
		return (a / 100) * b
	default:
		return b
	}
}

// ParseOperation accepts either a symbol ("+", "-", "*", "/", "%") or a
// name ("add", "subtract", "multiply", "divide", "percent").
func ParseOperation(s string) (Operation, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "+", "add":
		return Add, nil
	case "-", "−", "subtract":
		return Subtract, nil
	case "*", "×", "x", "multiply":
		return Multiply, nil
	case "/", "÷", "divide":
		return Divide, nil
	case "%", "percent":
		return Percent, nil
	}
	return None, fmt.Errorf("%w: %q", ErrUnknownOperation, s)
}

// MarshalText encodes the operation by name so JSON payloads stay readable.
func (op Operation) MarshalText() ([]byte, error) {
	if op == None {
		return []byte(""), nil
	}
	if !op.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownOperation, int(op))
	}
	return []byte(op.String()), nil
}

func (op *Operation) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*op = None
		return nil
	}
	parsed, err := ParseOperation(string(text))
	if err != nil {
		return err
	}
	*op = parsed
	return nil
}

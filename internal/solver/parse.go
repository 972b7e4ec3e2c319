package solver

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseSolution decodes a model reply of the form
// {"result": "...", "explanation": "..."}. Both fields must be JSON strings
// and result must not be empty. A surrounding Markdown code fence is ignored.
func ParseSolution(text string) (Solution, error) {
	body := stripCodeFence(text)
	if body == "" {
		return Solution{}, &Error{Op: "solve", Err: ErrEmptyResponse}
	}

	var raw struct {
		Result      *string `json:"result"`
		Explanation *string `json:"explanation"`
	}
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return Solution{}, &Error{Op: "solve", Err: fmt.Errorf("%w: %v", ErrMalformedResponse, err)}
	}

	switch {
	case raw.Result == nil:
		return Solution{}, &Error{Op: "solve", Err: fmt.Errorf("%w: missing result", ErrMalformedResponse)}
	case raw.Explanation == nil:
		return Solution{}, &Error{Op: "solve", Err: fmt.Errorf("%w: missing explanation", ErrMalformedResponse)}
	case strings.TrimSpace(*raw.Result) == "":
		return Solution{}, &Error{Op: "solve", Err: fmt.Errorf("%w: empty result", ErrMalformedResponse)}
	}

	return Solution{
		Result:      strings.TrimSpace(*raw.Result),
		Explanation: *raw.Explanation,
	}, nil
}

func stripCodeFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	// Drop the opening fence line, which may carry a language tag.
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

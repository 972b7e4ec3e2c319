package session

import "smart-calculator/internal/calculator"

// DigitRequest is the body for POST /sessions/{id}/digit.
type DigitRequest struct {
	Token string `json:"token"` // "0"-"9" or "."
}

// OperationRequest is the body for POST /sessions/{id}/operation.
type OperationRequest struct {
	Op string `json:"op"` // name or symbol, see calculator.ParseOperation
}

// EqualRequest is the optional body for POST /sessions/{id}/equal.
type EqualRequest struct {
	Explain bool `json:"explain"`
}

// SolveRequest is the body for POST /sessions/{id}/solve.
type SolveRequest struct {
	Prompt string `json:"prompt"`
}

// EventResponse is returned by every event endpoint. Record is set when the
// event finalized a calculation.
type EventResponse struct {
	Session Snapshot                  `json:"session"`
	Record  *calculator.HistoryRecord `json:"record,omitempty"`
}

// HistoryResponse is returned by GET /sessions/{id}/history.
type HistoryResponse struct {
	Records []calculator.HistoryRecord `json:"records"`
}

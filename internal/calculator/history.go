package calculator

import "time"

// HistoryLimit is the maximum number of records a HistoryLog keeps.
const HistoryLimit = 50

// HistoryRecord is one finalized calculation. Records are values and are
// never edited after creation.
type HistoryRecord struct {
	// Expression is "<left> <op> <right>" for keypad calculations or the raw
	// prompt for solved word problems.
	Expression string    `json:"expression"`
	Result     string    `json:"result"`
	CreatedAt  time.Time `json:"created_at"`
	// Explanation is empty unless the record came from, or was augmented by, the solver.
	Explanation string `json:"explanation,omitempty"`
}

// HistoryLog holds records most-recent-first, bounded by HistoryLimit.
// It is not safe for concurrent use.
type HistoryLog struct {
	records []HistoryRecord
}

func NewHistoryLog() *HistoryLog {
	return &HistoryLog{records: make([]HistoryRecord, 0, HistoryLimit)}
}

// Append inserts rec at the front, dropping the oldest record once the log is full.
func (h *HistoryLog) Append(rec HistoryRecord) {
	if len(h.records) < HistoryLimit {
		h.records = append(h.records, HistoryRecord{})
	}
	copy(h.records[1:], h.records)
	h.records[0] = rec
}

// Clear removes every record.
func (h *HistoryLog) Clear() {
	h.records = h.records[:0]
}

// List returns a snapshot, most recent first. The caller owns the returned slice.
func (h *HistoryLog) List() []HistoryRecord {
	out := make([]HistoryRecord, len(h.records))
	copy(out, h.records)
	return out
}

func (h *HistoryLog) Len() int {
	return len(h.records)
}

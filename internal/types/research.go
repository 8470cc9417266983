package types

import "time"

// ResearchSource identifies which fan-out branch produced a result.
type ResearchSource string

// Research branch identifiers.
const (
	SourceResearcher ResearchSource = "researcher"
	SourceArchivist  ResearchSource = "archivist"
)

// ResearchResult holds the outcome of one research fan-out branch.
// A nil CompletedAt means the branch is still in flight; it is set exactly
// once when the branch's call returns and is never cleared.
type ResearchResult struct {
	Source      ResearchSource `json:"source"`
	Query       string         `json:"query"`
	Answer      string         `json:"answer"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}

// MarkCompleted stamps the completion time. It is a no-op if the result has
// already completed.
func (r *ResearchResult) MarkCompleted() {
	if r.CompletedAt != nil {
		return
	}
	now := time.Now().UTC()
	r.CompletedAt = &now
}

// Completed reports whether the branch has finished.
func (r *ResearchResult) Completed() bool {
	return r.CompletedAt != nil
}

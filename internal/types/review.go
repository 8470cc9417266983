package types

// Verdict is the editor's decision on a draft.
type Verdict string

// Editor verdicts.
const (
	VerdictApproved      Verdict = "approved"
	VerdictNeedsRevision Verdict = "needs_revision"
)

// Review represents the editor's assessment of one draft version. It is
// consumed exactly once per revision cycle by the orchestrator.
type Review struct {
	Verdict  Verdict  `json:"verdict"`
	Feedback []string `json:"feedback,omitempty"`
}

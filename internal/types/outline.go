package types

// OutlinePlan represents the research questions and structure for a story.
// It is produced once by content generation and is read-only thereafter.
type OutlinePlan struct {
	Questions      []string `json:"questions"`
	StructureNotes string   `json:"structure_notes,omitempty"`
}

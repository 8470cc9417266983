package types

import "strings"

// DraftStatus represents where a draft sits in the editorial process.
type DraftStatus string

// Draft statuses.
const (
	DraftStatusDraft       DraftStatus = "draft"
	DraftStatusUnderReview DraftStatus = "under_review"
	DraftStatusRevised     DraftStatus = "revised"
	DraftStatusPublished   DraftStatus = "published"
)

// Draft represents the article text at a given revision. The orchestrator
// mutates it in place; Version increments on each revision and never
// decreases. Only one version exists per story at a time.
type Draft struct {
	Version   int         `json:"version"`
	Content   string      `json:"content"`
	WordCount int         `json:"word_count"`
	Status    DraftStatus `json:"status"`
}

// NewDraft creates version 1 of a draft from generated content.
func NewDraft(content string) *Draft {
	return &Draft{
		Version:   1,
		Content:   content,
		WordCount: CountWords(content),
		Status:    DraftStatusDraft,
	}
}

// Revise replaces the content and increments the version.
func (d *Draft) Revise(content string) {
	d.Version++
	d.Content = content
	d.WordCount = CountWords(content)
	d.Status = DraftStatusRevised
}

// Clone returns a copy safe to hand to concurrent readers.
func (d *Draft) Clone() *Draft {
	cp := *d
	return &cp
}

// CountWords returns the number of whitespace-separated words in text.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

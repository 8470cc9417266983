// Package types provides type definitions for structured data used throughout the newsroom-agent system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/google/uuid"
)

// StoryStatus represents the lifecycle state of a story assignment.
type StoryStatus string

// Story lifecycle states, in pipeline order. Failed is reachable from any
// non-terminal state.
const (
	StatusCreated        StoryStatus = "created"
	StatusAssigned       StoryStatus = "assigned"
	StatusResearching    StoryStatus = "researching"
	StatusWriting        StoryStatus = "writing"
	StatusDraftSubmitted StoryStatus = "draft_submitted"
	StatusUnderReview    StoryStatus = "under_review"
	StatusReviewed       StoryStatus = "reviewed"
	StatusRevising       StoryStatus = "revising"
	StatusRevised        StoryStatus = "revised"
	StatusPublishing     StoryStatus = "publishing"
	StatusPublished      StoryStatus = "published"
	StatusFailed         StoryStatus = "failed"
)

// Terminal returns true if the status admits no further transitions.
func (s StoryStatus) Terminal() bool {
	return s == StatusPublished || s == StatusFailed
}

// nextStatuses maps each state to the set of states it may transition into.
// The revision loop (under_review -> revising -> revised -> under_review) is
// the only sanctioned backward edge in the pipeline.
var nextStatuses = map[StoryStatus][]StoryStatus{
	StatusCreated:        {StatusAssigned},
	StatusAssigned:       {StatusResearching},
	StatusResearching:    {StatusWriting},
	StatusWriting:        {StatusDraftSubmitted},
	StatusDraftSubmitted: {StatusUnderReview},
	StatusUnderReview:    {StatusReviewed, StatusRevising},
	StatusRevising:       {StatusRevised},
	StatusRevised:        {StatusUnderReview},
	StatusReviewed:       {StatusPublishing},
	StatusPublishing:     {StatusPublished},
}

// CanTransition reports whether moving from s to next is a legal pipeline
// transition. Any non-terminal state may move to failed.
func (s StoryStatus) CanTransition(next StoryStatus) bool {
	if s.Terminal() {
		return false
	}
	if next == StatusFailed {
		return true
	}
	for _, allowed := range nextStatuses[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Priority represents the urgency of a story assignment.
type Priority string

// Priority levels for story assignments.
const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// Warning notes recorded on a story when the pipeline degrades but proceeds.
const (
	WarningDegradedResearch     = "DegradedResearch"
	WarningRevisionLimitReached = "RevisionLimitReached"
)

// Story represents one request to produce a single article end-to-end.
// Identity is immutable once created; status is mutated only by the owning
// orchestrator through the registry.
type Story struct {
	ID           uuid.UUID   `json:"id"`
	Topic        string      `json:"topic"`
	Angle        string      `json:"angle,omitempty"`
	TargetLength int         `json:"target_length"`
	Priority     Priority    `json:"priority"`
	Status       StoryStatus `json:"status"`
	Warnings     []string    `json:"warnings,omitempty"`
	// Reason holds a human-readable explanation when Status is failed.
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewStory creates a story in the created state with a fresh identifier.
func NewStory(topic, angle string, targetLength int, priority Priority) *Story {
	if priority == "" {
		priority = PriorityNormal
	}
	return &Story{
		ID:           uuid.New(),
		Topic:        topic,
		Angle:        angle,
		TargetLength: targetLength,
		Priority:     priority,
		Status:       StatusCreated,
		CreatedAt:    time.Now().UTC(),
	}
}

// AddWarning appends a warning note if it is not already present.
func (s *Story) AddWarning(w string) {
	for _, existing := range s.Warnings {
		if existing == w {
			return
		}
	}
	s.Warnings = append(s.Warnings, w)
}

// Clone returns a deep copy of the story, safe to hand to concurrent readers.
func (s *Story) Clone() *Story {
	cp := *s
	if s.Warnings != nil {
		cp.Warnings = make([]string, len(s.Warnings))
		copy(cp.Warnings, s.Warnings)
	}
	return &cp
}

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStory_Defaults(t *testing.T) {
	story := NewStory("election recap", "local angle", 500, "")

	assert.Equal(t, StatusCreated, story.Status)
	assert.Equal(t, PriorityNormal, story.Priority)
	assert.NotEqual(t, "", story.ID.String())
	assert.False(t, story.CreatedAt.IsZero())
}

func TestCanTransition_PipelineOrder(t *testing.T) {
	tests := []struct {
		name    string
		from    StoryStatus
		to      StoryStatus
		allowed bool
	}{
		{"created to assigned", StatusCreated, StatusAssigned, true},
		{"assigned to researching", StatusAssigned, StatusResearching, true},
		{"researching to writing", StatusResearching, StatusWriting, true},
		{"under_review to reviewed", StatusUnderReview, StatusReviewed, true},
		{"under_review to revising", StatusUnderReview, StatusRevising, true},
		{"revised loops back to under_review", StatusRevised, StatusUnderReview, true},
		{"publishing to published", StatusPublishing, StatusPublished, true},
		{"no skipping research", StatusAssigned, StatusWriting, false},
		{"no backward jump", StatusWriting, StatusResearching, false},
		{"published is terminal", StatusPublished, StatusFailed, false},
		{"failed is terminal", StatusFailed, StatusAssigned, false},
		{"any non-terminal may fail", StatusResearching, StatusFailed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransition(tt.to))
		})
	}
}

func TestStory_AddWarning_Dedups(t *testing.T) {
	story := NewStory("topic", "", 300, PriorityHigh)
	story.AddWarning(WarningDegradedResearch)
	story.AddWarning(WarningDegradedResearch)
	story.AddWarning(WarningRevisionLimitReached)

	assert.Equal(t, []string{WarningDegradedResearch, WarningRevisionLimitReached}, story.Warnings)
}

func TestStory_Clone_Independent(t *testing.T) {
	story := NewStory("topic", "", 300, PriorityLow)
	story.AddWarning(WarningDegradedResearch)

	cp := story.Clone()
	cp.Status = StatusFailed
	cp.Warnings[0] = "mutated"

	assert.Equal(t, StatusCreated, story.Status)
	assert.Equal(t, WarningDegradedResearch, story.Warnings[0])
}

func TestDraft_Revise_IncrementsVersion(t *testing.T) {
	draft := NewDraft("one two three")
	require.Equal(t, 1, draft.Version)
	require.Equal(t, 3, draft.WordCount)

	draft.Revise("one two three four")
	assert.Equal(t, 2, draft.Version)
	assert.Equal(t, 4, draft.WordCount)
	assert.Equal(t, DraftStatusRevised, draft.Status)
}

func TestResearchResult_MarkCompleted_WriteOnce(t *testing.T) {
	result := &ResearchResult{Source: SourceResearcher, Query: "q"}
	require.False(t, result.Completed())

	result.MarkCompleted()
	require.True(t, result.Completed())
	first := *result.CompletedAt

	result.MarkCompleted()
	assert.Equal(t, first, *result.CompletedAt)
}

func TestAssignStoryRequest_Validate(t *testing.T) {
	valid := &AssignStoryRequest{Topic: "T", TargetLength: 500, Priority: PriorityHigh}
	assert.NoError(t, valid.Validate())

	missing := &AssignStoryRequest{TargetLength: 500}
	assert.Error(t, missing.Validate())

	badPriority := &AssignStoryRequest{Topic: "T", Priority: "urgent"}
	assert.Error(t, badPriority.Validate())
}

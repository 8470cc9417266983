package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/newsroom-agent/internal/types"
)

func TestParseOutline(t *testing.T) {
	raw := "```json\n{\"questions\": [\"q1\", \"q2\"], \"structure_notes\": \"lede first\"}\n```"
	plan, err := ParseOutline(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"q1", "q2"}, plan.Questions)
	assert.Equal(t, "lede first", plan.StructureNotes)
}

func TestParseOutline_RejectsEmptyQuestions(t *testing.T) {
	_, err := ParseOutline(`{"questions": [], "structure_notes": "x"}`)
	assert.Error(t, err)

	_, err = ParseOutline("not json")
	assert.Error(t, err)
}

func TestParseReview(t *testing.T) {
	review, err := ParseReview(`{"verdict": "needs_revision", "feedback": ["too long"]}`)
	require.NoError(t, err)
	assert.Equal(t, types.VerdictNeedsRevision, review.Verdict)
	assert.Equal(t, []string{"too long"}, review.Feedback)
}

func TestParseReview_RejectsUnknownVerdict(t *testing.T) {
	_, err := ParseReview(`{"verdict": "maybe"}`)
	assert.Error(t, err)
}

func TestCleanJSONBlock(t *testing.T) {
	assert.Equal(t, `{"a":1}`, CleanJSONBlock("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, CleanJSONBlock(`{"a":1}`))
}

func TestDraftPrompt_IncludesResearch(t *testing.T) {
	story := types.NewStory("flood recovery", "city budget", 500, types.PriorityNormal)
	plan := &types.OutlinePlan{Questions: []string{"how much was spent?"}}
	research := []*types.ResearchResult{
		{Source: types.SourceResearcher, Query: "how much was spent?", Answer: "about $2M"},
		{Source: types.SourceArchivist, Query: "flood recovery", Answer: "2019 precedent"},
	}

	prompt := DraftPrompt(story, plan, research)
	assert.Contains(t, prompt, "flood recovery")
	assert.Contains(t, prompt, "how much was spent?")
	assert.Contains(t, prompt, "about $2M")
	assert.Contains(t, prompt, "2019 precedent")
}

package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/newsroom-agent/internal/types"
)

// OutlinePrompt builds the prompt that turns a story assignment into an
// outline plan with research questions.
func OutlinePrompt(story *types.Story) string {
	var sb strings.Builder
	sb.WriteString("You are a newsroom planning assistant. Produce an outline plan for a news story.\n\n")
	fmt.Fprintf(&sb, "Topic: %s\n", story.Topic)
	if story.Angle != "" {
		fmt.Fprintf(&sb, "Angle: %s\n", story.Angle)
	}
	fmt.Fprintf(&sb, "Target length: %d words\n\n", story.TargetLength)
	sb.WriteString(`Respond with JSON only, matching this shape:
{
  "questions": ["3-5 concrete research questions a reporter must answer"],
  "structure_notes": "one paragraph describing the article structure"
}`)
	return sb.String()
}

// DraftPrompt builds the prompt that writes the first draft from the outline
// and whatever research results are available.
func DraftPrompt(story *types.Story, plan *types.OutlinePlan, research []*types.ResearchResult) string {
	var sb strings.Builder
	sb.WriteString("You are a newsroom staff writer. Write a complete news article.\n\n")
	fmt.Fprintf(&sb, "Topic: %s\n", story.Topic)
	if story.Angle != "" {
		fmt.Fprintf(&sb, "Angle: %s\n", story.Angle)
	}
	fmt.Fprintf(&sb, "Target length: %d words\n\n", story.TargetLength)

	if plan != nil {
		sb.WriteString("Outline questions:\n")
		for _, q := range plan.Questions {
			fmt.Fprintf(&sb, "- %s\n", q)
		}
		if plan.StructureNotes != "" {
			fmt.Fprintf(&sb, "\nStructure notes: %s\n", plan.StructureNotes)
		}
	}

	if len(research) > 0 {
		sb.WriteString("\nResearch material:\n")
		for _, r := range research {
			fmt.Fprintf(&sb, "\n[%s] %s\n%s\n", r.Source, r.Query, r.Answer)
		}
	}

	sb.WriteString("\nWrite the article text only, no headline metadata or commentary.")
	return sb.String()
}

// RevisionPrompt builds the prompt that revises a draft using editor
// feedback.
func RevisionPrompt(story *types.Story, draft *types.Draft, review *types.Review) string {
	var sb strings.Builder
	sb.WriteString("You are a newsroom staff writer revising a draft after editorial review.\n\n")
	fmt.Fprintf(&sb, "Topic: %s\n", story.Topic)
	fmt.Fprintf(&sb, "Target length: %d words\n\n", story.TargetLength)
	sb.WriteString("Current draft:\n")
	sb.WriteString(draft.Content)
	sb.WriteString("\n\nEditor feedback:\n")
	for _, f := range review.Feedback {
		fmt.Fprintf(&sb, "- %s\n", f)
	}
	sb.WriteString("\nRewrite the article addressing every feedback point. Return the revised article text only.")
	return sb.String()
}

// ReviewPrompt builds the prompt an editor worker uses to assess a draft.
func ReviewPrompt(draft *types.Draft, targetLength int) string {
	var sb strings.Builder
	sb.WriteString("You are a newsroom editor. Review the draft below for accuracy of structure, clarity, and length.\n\n")
	fmt.Fprintf(&sb, "Target length: %d words. Actual length: %d words.\n\n", targetLength, draft.WordCount)
	sb.WriteString("Draft:\n")
	sb.WriteString(draft.Content)
	sb.WriteString(`

Respond with JSON only, matching this shape:
{
  "verdict": "approved" or "needs_revision",
  "feedback": ["specific, actionable comments; empty when approved"]
}`)
	return sb.String()
}

// ResearchPrompt builds the prompt the researcher uses to answer outline
// questions, optionally grounded on fetched source material.
func ResearchPrompt(questions []string, sourceMaterial string) string {
	var sb strings.Builder
	sb.WriteString("You are a newsroom researcher. Answer the questions below concisely and factually.\n\n")
	sb.WriteString("Questions:\n")
	for _, q := range questions {
		fmt.Fprintf(&sb, "- %s\n", q)
	}
	if sourceMaterial != "" {
		sb.WriteString("\nSource material gathered from the web:\n")
		sb.WriteString(sourceMaterial)
		sb.WriteString("\n\nGround your answers in the source material where possible.")
	}
	return sb.String()
}

// ParseOutline decodes the JSON outline produced by GenerateJSON.
func ParseOutline(raw string) (*types.OutlinePlan, error) {
	var plan types.OutlinePlan
	if err := json.Unmarshal([]byte(CleanJSONBlock(raw)), &plan); err != nil {
		return nil, fmt.Errorf("failed to parse outline JSON: %w", err)
	}
	if len(plan.Questions) == 0 {
		return nil, fmt.Errorf("outline has no research questions")
	}
	return &plan, nil
}

// ParseReview decodes the JSON review produced by GenerateJSON.
func ParseReview(raw string) (*types.Review, error) {
	var review types.Review
	if err := json.Unmarshal([]byte(CleanJSONBlock(raw)), &review); err != nil {
		return nil, fmt.Errorf("failed to parse review JSON: %w", err)
	}
	if review.Verdict != types.VerdictApproved && review.Verdict != types.VerdictNeedsRevision {
		return nil, fmt.Errorf("unexpected review verdict %q", review.Verdict)
	}
	return &review, nil
}

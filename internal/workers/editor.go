package workers

import (
	"context"
	"fmt"

	"github.com/jonathan/newsroom-agent/internal/generation"
	"github.com/jonathan/newsroom-agent/internal/types"
)

// Editor assesses drafts for publication readiness using the generation
// capability.
type Editor struct {
	gen generation.Client
}

// NewEditor creates an editor worker.
func NewEditor(gen generation.Client) *Editor {
	return &Editor{gen: gen}
}

// Review produces a verdict and feedback for the draft.
func (e *Editor) Review(ctx context.Context, draft *types.Draft, targetLength int) (*types.Review, error) {
	raw, err := e.gen.GenerateJSON(ctx, generation.ReviewPrompt(draft, targetLength), generation.TierStandard)
	if err != nil {
		return nil, fmt.Errorf("editor: generation failed: %w", err)
	}

	review, err := generation.ParseReview(raw)
	if err != nil {
		return nil, fmt.Errorf("editor: %w", err)
	}
	return review, nil
}

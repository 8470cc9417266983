package workers

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/newsroom-agent/internal/generation"
	"github.com/jonathan/newsroom-agent/internal/research"
	"github.com/jonathan/newsroom-agent/internal/types"
)

// Researcher answers outline questions using the generation capability,
// optionally grounded on web sources discovered via search.
type Researcher struct {
	gen      generation.Client
	searcher *research.Searcher
}

// NewResearcher creates a researcher. searcher may be nil, in which case
// answers are generated without web grounding.
func NewResearcher(gen generation.Client, searcher *research.Searcher) *Researcher {
	return &Researcher{gen: gen, searcher: searcher}
}

// Research answers the questions and returns a single research result for
// the branch. The caller stamps completion.
func (r *Researcher) Research(ctx context.Context, questions []string) (*types.ResearchResult, error) {
	if len(questions) == 0 {
		return nil, fmt.Errorf("researcher: no questions to answer")
	}

	var material string
	if r.searcher != nil {
		material = r.searcher.GatherMaterial(ctx, questions)
	}

	answer, err := r.gen.GenerateContent(ctx, generation.ResearchPrompt(questions, material), generation.TierStandard)
	if err != nil {
		return nil, fmt.Errorf("researcher: generation failed: %w", err)
	}

	return &types.ResearchResult{
		Source: types.SourceResearcher,
		Query:  strings.Join(questions, "; "),
		Answer: answer,
	}, nil
}

package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/newsroom-agent/internal/capability"
	"github.com/jonathan/newsroom-agent/internal/generation"
	"github.com/jonathan/newsroom-agent/internal/registry"
	"github.com/jonathan/newsroom-agent/internal/types"
	"github.com/jonathan/newsroom-agent/internal/workers"
)

// fakeGen serves outline JSON and draft/revision content.
type fakeGen struct {
	mu       sync.Mutex
	contents int
}

func (f *fakeGen) GenerateContent(_ context.Context, _ string, _ generation.ModelTier) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contents++
	return fmt.Sprintf("article text revision %d with several words of body copy", f.contents), nil
}

func (f *fakeGen) GenerateJSON(_ context.Context, _ string, _ generation.ModelTier) (string, error) {
	return `{"questions": ["what happened?", "why now?"], "structure_notes": "inverted pyramid"}`, nil
}

func (f *fakeGen) Close() error { return nil }

type fakeResearcher struct {
	err   error
	calls int
}

func (f *fakeResearcher) Research(_ context.Context, questions []string) (*types.ResearchResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &types.ResearchResult{Source: types.SourceResearcher, Query: questions[0], Answer: "live facts"}, nil
}

type fakeArchivist struct {
	err   error
	calls int
}

func (f *fakeArchivist) SearchArchive(_ context.Context, topic string) (*types.ResearchResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &types.ResearchResult{Source: types.SourceArchivist, Query: topic, Answer: "archive context"}, nil
}

// scriptedEditor returns verdicts in sequence, repeating the last one.
type scriptedEditor struct {
	verdicts []types.Verdict
	calls    int
	seen     []types.DraftStatus
	err      error
}

func (f *scriptedEditor) Review(_ context.Context, draft *types.Draft, _ int) (*types.Review, error) {
	f.calls++
	f.seen = append(f.seen, draft.Status)
	if f.err != nil {
		return nil, f.err
	}
	idx := f.calls - 1
	if idx >= len(f.verdicts) {
		idx = len(f.verdicts) - 1
	}
	verdict := f.verdicts[idx]
	review := &types.Review{Verdict: verdict}
	if verdict == types.VerdictNeedsRevision {
		review.Feedback = []string{"tighten the lede"}
	}
	return review, nil
}

type countingPublisher struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *countingPublisher) Publish(_ context.Context, _ *types.Story, _ *types.Draft) (*types.PublicationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &types.PublicationRecord{PublishedAt: time.Now().UTC(), DestinationIDs: []string{"newsroom-wire"}}, nil
}

type fixture struct {
	reg        *registry.Registry
	story      *types.Story
	researcher *fakeResearcher
	archivist  workers.ArchiveWorker
	editor     *scriptedEditor
	publisher  *countingPublisher
	orch       *Orchestrator
}

func newFixture(t *testing.T, cfg Config, archivist workers.ArchiveWorker) *fixture {
	t.Helper()
	reg := registry.New()
	story := types.NewStory("city budget vote", "impact on transit", 600, types.PriorityNormal)
	require.NoError(t, reg.Add(story))
	require.NoError(t, reg.Transition(story.ID, types.StatusAssigned, ""))

	f := &fixture{
		reg:        reg,
		story:      story,
		researcher: &fakeResearcher{},
		archivist:  archivist,
		editor:     &scriptedEditor{verdicts: []types.Verdict{types.VerdictApproved}},
		publisher:  &countingPublisher{},
	}
	if f.archivist == nil {
		f.archivist = &fakeArchivist{}
	}
	f.orch = New(reg, &fakeGen{}, workers.Set{
		Researcher: f.researcher,
		Archivist:  f.archivist,
		Editor:     f.editor,
		Publisher:  f.publisher,
	}, nil, cfg)
	return f
}

func (f *fixture) snapshot(t *testing.T) *registry.Record {
	t.Helper()
	snap, err := f.reg.Snapshot(f.story.ID)
	require.NoError(t, err)
	return snap
}

func TestRun_HappyPathPublishes(t *testing.T) {
	f := newFixture(t, Config{}, nil)
	f.orch.Run(context.Background(), f.story.ID)

	snap := f.snapshot(t)
	assert.Equal(t, types.StatusPublished, snap.Story.Status)
	assert.Empty(t, snap.Story.Warnings)
	require.NotNil(t, snap.Outline)
	require.Len(t, snap.Research, 2)
	for _, r := range snap.Research {
		assert.True(t, r.Completed())
	}
	require.NotNil(t, snap.Draft)
	assert.Equal(t, 1, snap.Draft.Version)
	assert.Equal(t, types.DraftStatusPublished, snap.Draft.Status)
	require.NotNil(t, snap.Publication)
	assert.Equal(t, 1, f.publisher.calls)
}

func TestRun_FlakyArchivistRetriedToSuccess(t *testing.T) {
	attempts := 0
	flaky := capability.CallerFunc(func(_ context.Context, _ string, _ map[string]any) (map[string]any, error) {
		attempts++
		if attempts < 3 {
			return nil, &capability.TimeoutError{Worker: "archivist", Action: workers.ActionSearchArchive}
		}
		return map[string]any{"answer": "third attempt archive context"}, nil
	})
	archivist := workers.NewArchivist(capability.NewRetryer(flaky, capability.RetryPolicy{
		MaxAttempts: 3,
		BaseBackoff: time.Millisecond,
		MaxBackoff:  2 * time.Millisecond,
	}))

	f := newFixture(t, Config{}, archivist)
	f.orch.Run(context.Background(), f.story.ID)

	snap := f.snapshot(t)
	assert.Equal(t, types.StatusPublished, snap.Story.Status)
	assert.Empty(t, snap.Story.Warnings, "a retried success is not degraded")
	assert.Equal(t, 3, attempts)

	var archiveAnswer string
	for _, r := range snap.Research {
		if r.Source == types.SourceArchivist {
			archiveAnswer = r.Answer
		}
	}
	assert.Equal(t, "third attempt archive context", archiveAnswer)
}

func TestRun_OneBranchFailureDegrades(t *testing.T) {
	f := newFixture(t, Config{}, &fakeArchivist{err: fmt.Errorf("archive offline")})
	f.orch.Run(context.Background(), f.story.ID)

	snap := f.snapshot(t)
	assert.Equal(t, types.StatusPublished, snap.Story.Status)
	assert.Contains(t, snap.Story.Warnings, types.WarningDegradedResearch)
	require.Len(t, snap.Research, 1)
	assert.Equal(t, types.SourceResearcher, snap.Research[0].Source)
}

func TestRun_BothBranchesFailingFailsStory(t *testing.T) {
	f := newFixture(t, Config{}, &fakeArchivist{err: fmt.Errorf("archive offline")})
	f.researcher.err = fmt.Errorf("search quota exhausted")
	f.orch.Run(context.Background(), f.story.ID)

	snap := f.snapshot(t)
	assert.Equal(t, types.StatusFailed, snap.Story.Status)
	assert.Contains(t, snap.Story.Reason, "both branches")
	assert.Equal(t, 0, f.publisher.calls)
}

func TestRun_RevisionLoopConvergesOnApproval(t *testing.T) {
	f := newFixture(t, Config{MaxRevisions: 3}, nil)
	f.editor.verdicts = []types.Verdict{types.VerdictNeedsRevision, types.VerdictApproved}
	f.orch.Run(context.Background(), f.story.ID)

	snap := f.snapshot(t)
	assert.Equal(t, types.StatusPublished, snap.Story.Status)
	assert.Equal(t, 2, snap.Draft.Version)
	assert.Equal(t, 2, f.editor.calls)
	assert.Empty(t, snap.Story.Warnings)
	// The editor always sees a draft marked as under review.
	assert.Equal(t, []types.DraftStatus{types.DraftStatusUnderReview, types.DraftStatusUnderReview}, f.editor.seen)
}

func TestRun_RevisionLimitForcesApproval(t *testing.T) {
	f := newFixture(t, Config{MaxRevisions: 2}, nil)
	f.editor.verdicts = []types.Verdict{types.VerdictNeedsRevision}
	f.orch.Run(context.Background(), f.story.ID)

	snap := f.snapshot(t)
	assert.Equal(t, types.StatusPublished, snap.Story.Status)
	assert.Contains(t, snap.Story.Warnings, types.WarningRevisionLimitReached)
	// Two revision cycles on top of the first draft, then force-approved.
	assert.Equal(t, 3, snap.Draft.Version)
	assert.Equal(t, 3, f.editor.calls)
	assert.Equal(t, 1, f.publisher.calls)
}

func TestRun_ReviewFailureFailsStory(t *testing.T) {
	f := newFixture(t, Config{}, nil)
	f.editor.err = fmt.Errorf("model unavailable")
	f.orch.Run(context.Background(), f.story.ID)

	snap := f.snapshot(t)
	assert.Equal(t, types.StatusFailed, snap.Story.Status)
	assert.Contains(t, snap.Story.Reason, "review failed")
	assert.Equal(t, 0, f.publisher.calls)
}

func TestRun_PublisherFailureFailsStory(t *testing.T) {
	f := newFixture(t, Config{}, nil)
	f.publisher.err = fmt.Errorf("wire rejected the release")
	f.orch.Run(context.Background(), f.story.ID)

	snap := f.snapshot(t)
	assert.Equal(t, types.StatusFailed, snap.Story.Status)
	assert.Contains(t, snap.Story.Reason, "publication failed")
}

func TestRun_PublishesExactlyOnce(t *testing.T) {
	f := newFixture(t, Config{}, nil)
	f.orch.Run(context.Background(), f.story.ID)
	// A second Run on the terminal story must not re-publish.
	f.orch.Run(context.Background(), f.story.ID)

	snap := f.snapshot(t)
	assert.Equal(t, types.StatusPublished, snap.Story.Status)
	assert.Equal(t, 1, f.publisher.calls)
}

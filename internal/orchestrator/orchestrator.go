// Package orchestrator drives one story assignment through the newsroom
// pipeline: planning, parallel research, drafting, the editorial review
// loop, and publication. One orchestrator goroutine owns each story; all
// state lands in the registry so coordinator reads never block on pipeline
// work.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/newsroom-agent/internal/generation"
	"github.com/jonathan/newsroom-agent/internal/registry"
	"github.com/jonathan/newsroom-agent/internal/telemetry"
	"github.com/jonathan/newsroom-agent/internal/types"
	"github.com/jonathan/newsroom-agent/internal/workers"
)

// DefaultMaxRevisions caps the editorial revision loop. When the cap is
// reached the latest draft proceeds with a RevisionLimitReached warning.
const DefaultMaxRevisions = 2

// Config tunes orchestrator behavior.
type Config struct {
	// MaxRevisions caps revision cycles per story. Zero means the default.
	MaxRevisions int
	// Verbose enables per-step progress logging.
	Verbose bool
}

// Orchestrator runs the story pipeline. It is safe to share one instance
// across stories; per-story state lives entirely in the registry.
type Orchestrator struct {
	registry     *registry.Registry
	gen          generation.Client
	workers      workers.Set
	emitter      *telemetry.Emitter
	maxRevisions int
	verbose      bool
}

// New creates an orchestrator. emitter may be nil to disable telemetry.
func New(reg *registry.Registry, gen generation.Client, ws workers.Set, emitter *telemetry.Emitter, cfg Config) *Orchestrator {
	maxRevisions := cfg.MaxRevisions
	if maxRevisions <= 0 {
		maxRevisions = DefaultMaxRevisions
	}
	return &Orchestrator{
		registry:     reg,
		gen:          gen,
		workers:      ws,
		emitter:      emitter,
		maxRevisions: maxRevisions,
		verbose:      cfg.Verbose,
	}
}

// Run drives the story with the given ID from assigned to a terminal state.
// It expects the story to already be registered and assigned. Run never
// panics outward: a panic in any step fails the story and is logged.
func (o *Orchestrator) Run(ctx context.Context, storyID uuid.UUID) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[orchestrator] story %s: recovered from panic: %v", storyID, r)
			o.fail(storyID, fmt.Sprintf("internal error: %v", r))
		}
	}()

	snap, err := o.registry.Snapshot(storyID)
	if err != nil {
		log.Printf("[orchestrator] cannot run unknown story %s: %v", storyID, err)
		return
	}
	story := snap.Story

	plan, err := o.plan(ctx, story)
	if err != nil {
		o.fail(storyID, fmt.Sprintf("planning failed: %v", err))
		return
	}

	if err := o.transition(storyID, types.StatusResearching); err != nil {
		return
	}
	research, err := o.research(ctx, storyID, story, plan)
	if err != nil {
		o.fail(storyID, err.Error())
		return
	}

	if err := o.transition(storyID, types.StatusWriting); err != nil {
		return
	}
	if err := o.draft(ctx, storyID, story, plan, research); err != nil {
		o.fail(storyID, fmt.Sprintf("drafting failed: %v", err))
		return
	}
	if err := o.transition(storyID, types.StatusDraftSubmitted); err != nil {
		return
	}

	if err := o.reviewLoop(ctx, storyID, story); err != nil {
		o.fail(storyID, err.Error())
		return
	}

	if err := o.publish(ctx, storyID); err != nil {
		o.fail(storyID, fmt.Sprintf("publication failed: %v", err))
		return
	}

	log.Printf("[orchestrator] story %s published", storyID)
}

// plan produces the outline while the story is assigned and records it.
func (o *Orchestrator) plan(ctx context.Context, story *types.Story) (*types.OutlinePlan, error) {
	o.logf("story %s: planning outline for %q", story.ID, story.Topic)

	raw, err := o.gen.GenerateJSON(ctx, generation.OutlinePrompt(story), generation.TierLite)
	if err != nil {
		return nil, err
	}
	plan, err := generation.ParseOutline(raw)
	if err != nil {
		return nil, err
	}

	if err := o.registry.Update(story.ID, func(r *registry.Record) error {
		r.Outline = plan
		return nil
	}); err != nil {
		return nil, err
	}
	o.emit("outline_ready", story.ID, map[string]any{"questions": len(plan.Questions)})
	return plan, nil
}

// research fans out to the researcher and archivist in parallel and joins
// both results. Both branches always run to completion before any result is
// recorded. One failed branch degrades the story with a warning; the
// pipeline fails only when both branches fail.
func (o *Orchestrator) research(ctx context.Context, storyID uuid.UUID, story *types.Story, plan *types.OutlinePlan) ([]*types.ResearchResult, error) {
	o.logf("story %s: researching (%d questions)", storyID, len(plan.Questions))

	var (
		researcherResult *types.ResearchResult
		archivistResult  *types.ResearchResult
		researcherErr    error
		archivistErr     error
	)

	var g errgroup.Group
	g.Go(func() error {
		researcherResult, researcherErr = o.workers.Researcher.Research(ctx, plan.Questions)
		return nil
	})
	g.Go(func() error {
		archivistResult, archivistErr = o.workers.Archivist.SearchArchive(ctx, story.Topic)
		return nil
	})
	_ = g.Wait()

	if researcherErr != nil && archivistErr != nil {
		return nil, fmt.Errorf("research failed on both branches: researcher: %v; archivist: %v", researcherErr, archivistErr)
	}

	var results []*types.ResearchResult
	for _, branch := range []struct {
		result *types.ResearchResult
		err    error
		name   string
	}{
		{researcherResult, researcherErr, "researcher"},
		{archivistResult, archivistErr, "archivist"},
	} {
		if branch.err != nil {
			log.Printf("[orchestrator] story %s: %s branch failed, continuing degraded: %v", storyID, branch.name, branch.err)
			continue
		}
		branch.result.MarkCompleted()
		results = append(results, branch.result)
	}

	degraded := researcherErr != nil || archivistErr != nil
	if err := o.registry.Update(storyID, func(r *registry.Record) error {
		r.Research = results
		if degraded {
			r.Story.AddWarning(types.WarningDegradedResearch)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	o.emit("research_complete", storyID, map[string]any{"branches": len(results), "degraded": degraded})
	return results, nil
}

// draft writes the first draft from the outline and research material.
func (o *Orchestrator) draft(ctx context.Context, storyID uuid.UUID, story *types.Story, plan *types.OutlinePlan, research []*types.ResearchResult) error {
	o.logf("story %s: writing first draft", storyID)

	content, err := o.gen.GenerateContent(ctx, generation.DraftPrompt(story, plan, research), generation.TierAdvanced)
	if err != nil {
		return err
	}

	draft := types.NewDraft(content)
	if err := o.registry.Update(storyID, func(r *registry.Record) error {
		r.Draft = draft
		return nil
	}); err != nil {
		return err
	}
	o.emit("draft_submitted", storyID, map[string]any{"version": draft.Version, "words": draft.WordCount})
	return nil
}

// reviewLoop runs editorial review with a capped revision cycle. When the
// cap is reached the latest draft is force-approved with a warning so the
// story always converges.
func (o *Orchestrator) reviewLoop(ctx context.Context, storyID uuid.UUID, story *types.Story) error {
	revisions := 0
	for {
		if err := o.transition(storyID, types.StatusUnderReview); err != nil {
			return err
		}
		if err := o.registry.Update(storyID, func(r *registry.Record) error {
			r.Draft.Status = types.DraftStatusUnderReview
			return nil
		}); err != nil {
			return err
		}

		snap, err := o.registry.Snapshot(storyID)
		if err != nil {
			return err
		}
		draft := snap.Draft

		o.logf("story %s: reviewing draft v%d", storyID, draft.Version)
		review, err := o.workers.Editor.Review(ctx, draft, story.TargetLength)
		if err != nil {
			return fmt.Errorf("review failed: %w", err)
		}
		o.emit("review_complete", storyID, map[string]any{"version": draft.Version, "verdict": string(review.Verdict)})

		if review.Verdict == types.VerdictApproved {
			return o.transition(storyID, types.StatusReviewed)
		}

		if revisions >= o.maxRevisions {
			log.Printf("[orchestrator] story %s: revision limit (%d) reached, proceeding with draft v%d",
				storyID, o.maxRevisions, draft.Version)
			if err := o.registry.Update(storyID, func(r *registry.Record) error {
				r.Story.AddWarning(types.WarningRevisionLimitReached)
				return nil
			}); err != nil {
				return err
			}
			return o.transition(storyID, types.StatusReviewed)
		}

		if err := o.transition(storyID, types.StatusRevising); err != nil {
			return err
		}
		o.logf("story %s: revising draft v%d (%s)", storyID, draft.Version, strings.Join(review.Feedback, "; "))

		content, err := o.gen.GenerateContent(ctx, generation.RevisionPrompt(story, draft, review), generation.TierAdvanced)
		if err != nil {
			return fmt.Errorf("revision failed: %w", err)
		}
		if err := o.registry.Update(storyID, func(r *registry.Record) error {
			r.Draft.Revise(content)
			return nil
		}); err != nil {
			return err
		}
		if err := o.transition(storyID, types.StatusRevised); err != nil {
			return err
		}
		revisions++
	}
}

// publish releases the reviewed draft exactly once and records publication.
func (o *Orchestrator) publish(ctx context.Context, storyID uuid.UUID) error {
	if err := o.transition(storyID, types.StatusPublishing); err != nil {
		return err
	}

	snap, err := o.registry.Snapshot(storyID)
	if err != nil {
		return err
	}

	record, err := o.workers.Publisher.Publish(ctx, snap.Story, snap.Draft)
	if err != nil {
		return err
	}

	if err := o.registry.Update(storyID, func(r *registry.Record) error {
		r.Publication = record
		r.Draft.Status = types.DraftStatusPublished
		return nil
	}); err != nil {
		return err
	}
	if err := o.transition(storyID, types.StatusPublished); err != nil {
		return err
	}
	o.emit("published", storyID, map[string]any{"destinations": record.DestinationIDs})
	return nil
}

// transition advances the story status, failing it on an illegal move.
func (o *Orchestrator) transition(storyID uuid.UUID, next types.StoryStatus) error {
	if err := o.registry.Transition(storyID, next, ""); err != nil {
		log.Printf("[orchestrator] story %s: %v", storyID, err)
		return err
	}
	o.emit("status_change", storyID, map[string]any{"status": string(next)})
	return nil
}

// fail moves the story to failed with a reason. Failure from a terminal
// state is impossible and only logged.
func (o *Orchestrator) fail(storyID uuid.UUID, reason string) {
	log.Printf("[orchestrator] story %s failed: %s", storyID, reason)
	if err := o.registry.Transition(storyID, types.StatusFailed, reason); err != nil {
		log.Printf("[orchestrator] story %s: could not record failure: %v", storyID, err)
		return
	}
	o.emit("status_change", storyID, map[string]any{"status": string(types.StatusFailed), "reason": reason})
}

func (o *Orchestrator) emit(event string, storyID uuid.UUID, fields map[string]any) {
	if o.emitter == nil {
		return
	}
	o.emitter.Emit(event, storyID.String(), fields)
}

func (o *Orchestrator) logf(format string, args ...any) {
	if o.verbose {
		log.Printf("[orchestrator] "+format, args...)
	}
}

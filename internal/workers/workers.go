// Package workers provides the four newsroom worker adapters consumed by
// the orchestrator: Researcher, Archivist, Editor, and Publisher. Each
// adapter exposes one idempotent-per-call capability and surfaces failures
// as typed errors, never silently.
package workers

import (
	"context"

	"github.com/jonathan/newsroom-agent/internal/types"
)

// ResearchWorker answers outline questions from live sources.
type ResearchWorker interface {
	Research(ctx context.Context, questions []string) (*types.ResearchResult, error)
}

// ArchiveWorker searches the external archive agent for background material.
type ArchiveWorker interface {
	SearchArchive(ctx context.Context, topic string) (*types.ResearchResult, error)
}

// ReviewWorker assesses a draft against the target length.
type ReviewWorker interface {
	Review(ctx context.Context, draft *types.Draft, targetLength int) (*types.Review, error)
}

// PublishWorker publishes an approved draft. Implementations must be safe
// against duplicate invocation for the same story.
type PublishWorker interface {
	Publish(ctx context.Context, story *types.Story, draft *types.Draft) (*types.PublicationRecord, error)
}

// Set bundles the four worker roles handed to an orchestrator.
type Set struct {
	Researcher ResearchWorker
	Archivist  ArchiveWorker
	Editor     ReviewWorker
	Publisher  PublishWorker
}

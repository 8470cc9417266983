package workers

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/newsroom-agent/internal/types"
)

// DestinationWire is the default publication destination.
const DestinationWire = "newsroom-wire"

// PublicationStore persists publication records. Implementations must
// tolerate being nil-checked away; the publisher works without one.
type PublicationStore interface {
	SavePublication(ctx context.Context, storyID uuid.UUID, draft *types.Draft, record *types.PublicationRecord) error
}

// Publisher releases approved drafts to the wire. Publication is
// at-most-once per story: a second Publish call for the same story ID
// returns the original record without re-publishing.
type Publisher struct {
	mu        sync.Mutex
	published map[uuid.UUID]*types.PublicationRecord
	store     PublicationStore
}

// NewPublisher creates a publisher. store may be nil when no archive
// database is configured.
func NewPublisher(store PublicationStore) *Publisher {
	return &Publisher{
		published: make(map[uuid.UUID]*types.PublicationRecord),
		store:     store,
	}
}

// Publish releases the draft and returns the publication record. Duplicate
// calls for the same story are deduplicated under the lock, so concurrent
// invocations observe exactly one publication.
func (p *Publisher) Publish(ctx context.Context, story *types.Story, draft *types.Draft) (*types.PublicationRecord, error) {
	if story == nil || draft == nil {
		return nil, fmt.Errorf("publisher: story and draft are required")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if record, ok := p.published[story.ID]; ok {
		log.Printf("[publisher] story %s already published, returning existing record", story.ID)
		return record, nil
	}

	record := &types.PublicationRecord{
		PublishedAt:    time.Now().UTC(),
		DestinationIDs: []string{DestinationWire},
	}
	p.published[story.ID] = record

	if p.store != nil {
		if err := p.store.SavePublication(ctx, story.ID, draft, record); err != nil {
			// The wire release already happened; archival is best-effort.
			log.Printf("[publisher] failed to archive publication for story %s: %v", story.ID, err)
		}
	}

	log.Printf("[publisher] published story %s (draft v%d, %d words)", story.ID, draft.Version, draft.WordCount)
	return record, nil
}

// Published reports whether a story has already been released.
func (p *Publisher) Published(id uuid.UUID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.published[id]
	return ok
}

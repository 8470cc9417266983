// Package registry provides the in-memory store of story state shared
// between the coordinator (readers) and per-story orchestrators (writers).
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/jonathan/newsroom-agent/internal/types"
)

// Record holds all live state for one story. Only the owning orchestrator
// mutates a record, and only through Update; readers always receive deep
// copies.
type Record struct {
	Story       *types.Story
	Outline     *types.OutlinePlan
	Research    []*types.ResearchResult
	Draft       *types.Draft
	Publication *types.PublicationRecord
}

// clone returns a deep copy of the record safe to hand to readers.
func (r *Record) clone() *Record {
	cp := &Record{}
	if r.Story != nil {
		cp.Story = r.Story.Clone()
	}
	if r.Outline != nil {
		outline := *r.Outline
		outline.Questions = append([]string(nil), r.Outline.Questions...)
		cp.Outline = &outline
	}
	for _, research := range r.Research {
		rr := *research
		cp.Research = append(cp.Research, &rr)
	}
	if r.Draft != nil {
		cp.Draft = r.Draft.Clone()
	}
	if r.Publication != nil {
		pub := *r.Publication
		pub.DestinationIDs = append([]string(nil), r.Publication.DestinationIDs...)
		cp.Publication = &pub
	}
	return cp
}

// NotFoundError indicates no story exists with the requested ID.
type NotFoundError struct {
	StoryID uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("story not found: %s", e.StoryID)
}

// InvalidTransitionError indicates an update attempted an illegal status
// transition.
type InvalidTransitionError struct {
	StoryID uuid.UUID
	From    types.StoryStatus
	To      types.StoryStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("story %s: illegal transition %s -> %s", e.StoryID, e.From, e.To)
}

// Registry is the map of story ID to record. It supports concurrent
// snapshot reads interleaved with single-writer updates; readers never
// observe a torn record.
type Registry struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*Record
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{records: make(map[uuid.UUID]*Record)}
}

// Add registers a new story record. The story must not already exist.
func (reg *Registry) Add(story *types.Story) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if _, exists := reg.records[story.ID]; exists {
		return fmt.Errorf("story already registered: %s", story.ID)
	}
	reg.records[story.ID] = &Record{Story: story.Clone()}
	return nil
}

// Snapshot returns a deep copy of one story's record.
func (reg *Registry) Snapshot(id uuid.UUID) (*Record, error) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	record, ok := reg.records[id]
	if !ok {
		return nil, &NotFoundError{StoryID: id}
	}
	return record.clone(), nil
}

// List returns deep copies of every record, ordered by creation time.
func (reg *Registry) List() []*Record {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	out := make([]*Record, 0, len(reg.records))
	for _, record := range reg.records {
		out = append(out, record.clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Story.CreatedAt.Before(out[j].Story.CreatedAt)
	})
	return out
}

// ListActive returns deep copies of records whose story is not terminal.
func (reg *Registry) ListActive() []*Record {
	all := reg.List()
	active := make([]*Record, 0, len(all))
	for _, record := range all {
		if !record.Story.Status.Terminal() {
			active = append(active, record)
		}
	}
	return active
}

// Update applies fn to the live record under the write lock. fn receives
// the live record and may mutate it freely; the single-writer-per-story
// discipline is the caller's responsibility.
func (reg *Registry) Update(id uuid.UUID, fn func(*Record) error) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	record, ok := reg.records[id]
	if !ok {
		return &NotFoundError{StoryID: id}
	}
	return fn(record)
}

// Transition moves a story to the next status, enforcing the state machine.
// When the target is failed, reason is recorded on the story.
func (reg *Registry) Transition(id uuid.UUID, next types.StoryStatus, reason string) error {
	return reg.Update(id, func(record *Record) error {
		current := record.Story.Status
		if !current.CanTransition(next) {
			return &InvalidTransitionError{StoryID: id, From: current, To: next}
		}
		record.Story.Status = next
		if next == types.StatusFailed {
			record.Story.Reason = reason
		}
		return nil
	})
}

// Clear resets the registry to idle, dropping all records.
func (reg *Registry) Clear() {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.records = make(map[uuid.UUID]*Record)
}

// Len returns the number of registered stories.
func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.records)
}

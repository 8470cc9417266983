package registry

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/newsroom-agent/internal/types"
)

func TestRegistry_AddAndSnapshot(t *testing.T) {
	reg := New()
	story := types.NewStory("topic", "angle", 500, types.PriorityNormal)
	require.NoError(t, reg.Add(story))

	snap, err := reg.Snapshot(story.ID)
	require.NoError(t, err)
	assert.Equal(t, story.ID, snap.Story.ID)
	assert.Equal(t, types.StatusCreated, snap.Story.Status)

	// Mutating the snapshot must not affect the registry.
	snap.Story.Status = types.StatusFailed
	again, err := reg.Snapshot(story.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusCreated, again.Story.Status)
}

func TestRegistry_AddDuplicateFails(t *testing.T) {
	reg := New()
	story := types.NewStory("topic", "", 500, types.PriorityNormal)
	require.NoError(t, reg.Add(story))
	assert.Error(t, reg.Add(story))
}

func TestRegistry_SnapshotUnknown(t *testing.T) {
	reg := New()
	_, err := reg.Snapshot(uuid.New())
	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestRegistry_TransitionEnforcesStateMachine(t *testing.T) {
	reg := New()
	story := types.NewStory("topic", "", 500, types.PriorityNormal)
	require.NoError(t, reg.Add(story))

	require.NoError(t, reg.Transition(story.ID, types.StatusAssigned, ""))
	require.NoError(t, reg.Transition(story.ID, types.StatusResearching, ""))

	err := reg.Transition(story.ID, types.StatusPublished, "")
	var invalid *InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, types.StatusResearching, invalid.From)

	// Failure is reachable from any non-terminal state and records a reason.
	require.NoError(t, reg.Transition(story.ID, types.StatusFailed, "archivist and researcher both failed"))
	snap, err := reg.Snapshot(story.ID)
	require.NoError(t, err)
	assert.Equal(t, "archivist and researcher both failed", snap.Story.Reason)

	// Terminal states admit no further transitions.
	assert.Error(t, reg.Transition(story.ID, types.StatusAssigned, ""))
}

func TestRegistry_ListActiveExcludesTerminal(t *testing.T) {
	reg := New()
	active := types.NewStory("active", "", 500, types.PriorityNormal)
	done := types.NewStory("done", "", 500, types.PriorityNormal)
	require.NoError(t, reg.Add(active))
	require.NoError(t, reg.Add(done))

	require.NoError(t, reg.Update(done.ID, func(r *Record) error {
		r.Story.Status = types.StatusPublished
		return nil
	}))

	records := reg.ListActive()
	require.Len(t, records, 1)
	assert.Equal(t, active.ID, records[0].Story.ID)

	// Terminal stories remain queryable until cleared.
	assert.Equal(t, 2, reg.Len())
}

func TestRegistry_Clear(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Add(types.NewStory("a", "", 100, types.PriorityLow)))
	reg.Clear()
	assert.Equal(t, 0, reg.Len())
}

func TestRegistry_ConcurrentReadersWithSingleWriter(t *testing.T) {
	reg := New()
	story := types.NewStory("topic", "", 500, types.PriorityNormal)
	require.NoError(t, reg.Add(story))
	require.NoError(t, reg.Update(story.ID, func(r *Record) error {
		r.Draft = types.NewDraft("initial draft words")
		return nil
	}))

	var wg sync.WaitGroup
	stop := make(chan struct{})

	// Single writer: bump the draft version repeatedly.
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_ = reg.Update(story.ID, func(r *Record) error {
				r.Draft.Revise(r.Draft.Content + " more")
				return nil
			})
		}
		close(stop)
	}()

	// Concurrent readers: versions must be observed in non-decreasing order.
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			last := 0
			for {
				select {
				case <-stop:
					return
				default:
				}
				snap, err := reg.Snapshot(story.ID)
				if err != nil {
					t.Errorf("snapshot failed: %v", err)
					return
				}
				if snap.Draft.Version < last {
					t.Errorf("draft version went backwards: %d -> %d", last, snap.Draft.Version)
					return
				}
				last = snap.Draft.Version
			}
		}()
	}

	wg.Wait()
}

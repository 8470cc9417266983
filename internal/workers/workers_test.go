package workers

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/newsroom-agent/internal/capability"
	"github.com/jonathan/newsroom-agent/internal/generation"
	"github.com/jonathan/newsroom-agent/internal/types"
)

// fakeGenClient returns canned responses for generation calls.
type fakeGenClient struct {
	content string
	jsonOut string
	err     error
	prompts []string
}

func (f *fakeGenClient) GenerateContent(_ context.Context, prompt string, _ generation.ModelTier) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.content, f.err
}

func (f *fakeGenClient) GenerateJSON(_ context.Context, prompt string, _ generation.ModelTier) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.jsonOut, f.err
}

func (f *fakeGenClient) Close() error { return nil }

func TestResearcher_AnswersQuestions(t *testing.T) {
	gen := &fakeGenClient{content: "the answer"}
	r := NewResearcher(gen, nil)

	result, err := r.Research(context.Background(), []string{"what happened?", "who was involved?"})
	require.NoError(t, err)
	assert.Equal(t, types.SourceResearcher, result.Source)
	assert.Equal(t, "the answer", result.Answer)
	assert.Contains(t, result.Query, "what happened?")
	assert.Nil(t, result.CompletedAt, "adapter must not stamp completion")

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "who was involved?")
}

func TestResearcher_RejectsEmptyQuestions(t *testing.T) {
	r := NewResearcher(&fakeGenClient{}, nil)
	_, err := r.Research(context.Background(), nil)
	assert.Error(t, err)
}

func TestArchivist_ExtractsAnswer(t *testing.T) {
	caller := capability.CallerFunc(func(_ context.Context, action string, params map[string]any) (map[string]any, error) {
		assert.Equal(t, ActionSearchArchive, action)
		assert.Equal(t, "election", params["topic"])
		return map[string]any{"answer": "archive background"}, nil
	})
	a := NewArchivist(caller)

	result, err := a.SearchArchive(context.Background(), "election")
	require.NoError(t, err)
	assert.Equal(t, types.SourceArchivist, result.Source)
	assert.Equal(t, "election", result.Query)
	assert.Equal(t, "archive background", result.Answer)
	assert.Nil(t, result.CompletedAt)
}

func TestArchivist_MissingAnswerIsMalformed(t *testing.T) {
	caller := capability.CallerFunc(func(_ context.Context, _ string, _ map[string]any) (map[string]any, error) {
		return map[string]any{"unexpected": "shape"}, nil
	})
	a := NewArchivist(caller)

	_, err := a.SearchArchive(context.Background(), "topic")
	var malformed *capability.MalformedMessageError
	require.ErrorAs(t, err, &malformed)
	assert.False(t, capability.Transient(err))
}

func TestArchivist_FlakyCallerSucceedsOnThirdAttempt(t *testing.T) {
	attempts := 0
	flaky := capability.CallerFunc(func(_ context.Context, _ string, _ map[string]any) (map[string]any, error) {
		attempts++
		if attempts < 3 {
			return nil, &capability.UnavailableError{Worker: "archivist", Action: ActionSearchArchive, Cause: fmt.Errorf("connection refused")}
		}
		return map[string]any{"answer": "third time lucky"}, nil
	})
	a := NewArchivist(capability.NewRetryer(flaky, capability.RetryPolicy{
		MaxAttempts: 3,
		BaseBackoff: time.Millisecond,
		MaxBackoff:  2 * time.Millisecond,
	}))

	result, err := a.SearchArchive(context.Background(), "topic")
	require.NoError(t, err)
	assert.Equal(t, "third time lucky", result.Answer)
	assert.Equal(t, 3, attempts)
}

func TestEditor_ParsesVerdict(t *testing.T) {
	gen := &fakeGenClient{jsonOut: `{"verdict": "needs_revision", "feedback": ["tighten the lede"]}`}
	e := NewEditor(gen)

	review, err := e.Review(context.Background(), types.NewDraft("some draft text"), 500)
	require.NoError(t, err)
	assert.Equal(t, types.VerdictNeedsRevision, review.Verdict)
	assert.Equal(t, []string{"tighten the lede"}, review.Feedback)
}

func TestEditor_RejectsBadVerdict(t *testing.T) {
	gen := &fakeGenClient{jsonOut: `{"verdict": "maybe", "feedback": []}`}
	e := NewEditor(gen)

	_, err := e.Review(context.Background(), types.NewDraft("text"), 500)
	assert.Error(t, err)
}

type recordingStore struct {
	mu    sync.Mutex
	saves int
}

func (s *recordingStore) SavePublication(_ context.Context, _ uuid.UUID, _ *types.Draft, _ *types.PublicationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	return nil
}

func TestPublisher_AtMostOncePerStory(t *testing.T) {
	store := &recordingStore{}
	p := NewPublisher(store)
	story := types.NewStory("topic", "", 500, types.PriorityNormal)
	draft := types.NewDraft("final draft")

	first, err := p.Publish(context.Background(), story, draft)
	require.NoError(t, err)
	assert.Equal(t, []string{DestinationWire}, first.DestinationIDs)

	second, err := p.Publish(context.Background(), story, draft)
	require.NoError(t, err)
	assert.Same(t, first, second, "duplicate publish must return the original record")
	assert.Equal(t, 1, store.saves)
	assert.True(t, p.Published(story.ID))
}

func TestPublisher_ConcurrentPublishIsDeduplicated(t *testing.T) {
	store := &recordingStore{}
	p := NewPublisher(store)
	story := types.NewStory("topic", "", 500, types.PriorityNormal)
	draft := types.NewDraft("final draft")

	var wg sync.WaitGroup
	records := make([]*types.PublicationRecord, 8)
	for i := range records {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			record, err := p.Publish(context.Background(), story, draft)
			require.NoError(t, err)
			records[i] = record
		}(i)
	}
	wg.Wait()

	for _, record := range records[1:] {
		assert.Same(t, records[0], record)
	}
	assert.Equal(t, 1, store.saves)
}

func TestPublisher_RequiresStoryAndDraft(t *testing.T) {
	p := NewPublisher(nil)
	_, err := p.Publish(context.Background(), nil, nil)
	assert.Error(t, err)
}

package capability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyCaller fails with the given error until failures is exhausted, then
// succeeds.
type flakyCaller struct {
	failures int
	err      error
	calls    int
}

func (f *flakyCaller) Call(_ context.Context, _ string, _ map[string]any) (map[string]any, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, f.err
	}
	return map[string]any{"answer": "ok"}, nil
}

func newTestRetryer(inner Caller, policy RetryPolicy) *Retryer {
	r := NewRetryer(inner, policy)
	r.sleep = func(context.Context, time.Duration) error { return nil }
	return r
}

func TestRetryer_SucceedsOnThirdAttempt(t *testing.T) {
	inner := &flakyCaller{failures: 2, err: &UnavailableError{Worker: "archivist", Action: "search_archive"}}
	r := newTestRetryer(inner, DefaultRetryPolicy())

	result, err := r.Call(context.Background(), "search_archive", map[string]any{"topic": "T"})
	require.NoError(t, err)
	assert.Equal(t, "ok", result["answer"])
	assert.Equal(t, 3, inner.calls)
}

func TestRetryer_ExhaustsAttempts(t *testing.T) {
	inner := &flakyCaller{failures: 10, err: &TimeoutError{Worker: "archivist", Action: "search_archive"}}
	r := newTestRetryer(inner, DefaultRetryPolicy())

	_, err := r.Call(context.Background(), "search_archive", nil)
	require.Error(t, err)
	assert.Equal(t, 3, inner.calls)
}

func TestRetryer_PermanentErrorNotRetried(t *testing.T) {
	inner := &flakyCaller{failures: 10, err: &RejectedError{Worker: "archivist", Action: "search_archive", Code: 400, Message: "bad topic"}}
	r := newTestRetryer(inner, DefaultRetryPolicy())

	_, err := r.Call(context.Background(), "search_archive", nil)
	require.Error(t, err)
	assert.Equal(t, 1, inner.calls)
	assert.False(t, Transient(err))
}

func TestRetryer_CancelledContextAborts(t *testing.T) {
	inner := &flakyCaller{failures: 10, err: &ServerError{Worker: "archivist", Action: "search_archive", Code: 503}}
	r := NewRetryer(inner, DefaultRetryPolicy())
	r.sleep = sleepCtx

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Call(ctx, "search_archive", nil)
	require.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}

func TestTransient_Classification(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		transient bool
	}{
		{"timeout", &TimeoutError{}, true},
		{"unavailable", &UnavailableError{}, true},
		{"server error", &ServerError{Code: 502}, true},
		{"rejected", &RejectedError{Code: 422}, false},
		{"malformed", &MalformedMessageError{Message: "no action"}, false},
		{"deadline exceeded", context.DeadlineExceeded, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.transient, Transient(tt.err))
		})
	}
}

func TestRetryer_BackoffGrowsAndIsCapped(t *testing.T) {
	r := NewRetryer(CallerFunc(func(context.Context, string, map[string]any) (map[string]any, error) {
		return nil, nil
	}), RetryPolicy{MaxAttempts: 5, BaseBackoff: 100 * time.Millisecond, MaxBackoff: 300 * time.Millisecond})

	first := r.backoff(1)
	assert.GreaterOrEqual(t, first, 100*time.Millisecond)
	assert.LessOrEqual(t, first, 150*time.Millisecond)

	capped := r.backoff(4)
	assert.LessOrEqual(t, capped, 450*time.Millisecond)
}

// Package telemetry provides fire-and-forget pipeline event emission.
// Events are queued on a bounded channel and delivered by a background
// goroutine; the pipeline never blocks on telemetry and never fails
// because of it.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"
)

// DefaultQueueSize bounds the in-flight event queue. Events beyond the
// bound are dropped, not delivered late.
const DefaultQueueSize = 256

// Event is one pipeline occurrence worth recording.
type Event struct {
	Name      string         `json:"name"`
	StoryID   string         `json:"story_id"`
	Fields    map[string]any `json:"fields,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Sink receives delivered events. Delivery errors are logged and dropped.
type Sink interface {
	Deliver(ctx context.Context, event Event) error
}

// LogSink writes events to the process log.
type LogSink struct{}

// Deliver logs the event.
func (LogSink) Deliver(_ context.Context, event Event) error {
	log.Printf("[telemetry] %s story=%s fields=%v", event.Name, event.StoryID, event.Fields)
	return nil
}

// HTTPSink posts events as JSON to a collector endpoint.
type HTTPSink struct {
	URL    string
	Client *http.Client
}

// Deliver posts the event. Non-2xx responses are not treated as errors
// worth retrying; telemetry is best-effort.
func (s *HTTPSink) Deliver(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

// Emitter queues events for asynchronous delivery to a sink.
type Emitter struct {
	queue   chan Event
	sink    Sink
	done    chan struct{}
	once    sync.Once
	closed  bool
	dropped int
	mu      sync.Mutex
}

// NewEmitter starts an emitter delivering to sink. A nil sink logs events.
func NewEmitter(sink Sink, queueSize int) *Emitter {
	if sink == nil {
		sink = LogSink{}
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	e := &Emitter{
		queue: make(chan Event, queueSize),
		sink:  sink,
		done:  make(chan struct{}),
	}
	go e.deliver()
	return e
}

// Emit queues an event without blocking. When the queue is full, or the
// emitter has been closed, the event is dropped and counted. Pipeline
// goroutines may outlive shutdown, so emitting after Close must stay safe.
func (e *Emitter) Emit(name, storyID string, fields map[string]any) {
	event := Event{
		Name:      name,
		StoryID:   storyID,
		Fields:    fields,
		Timestamp: time.Now().UTC(),
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		e.dropped++
		return
	}
	select {
	case e.queue <- event:
	default:
		e.dropped++
	}
}

// Dropped returns the number of events discarded due to a full queue.
func (e *Emitter) Dropped() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dropped
}

// Close drains queued events and stops the delivery goroutine. Emits after
// Close are dropped; the queue channel is only closed once no sender can
// reach it.
func (e *Emitter) Close() {
	e.once.Do(func() {
		e.mu.Lock()
		e.closed = true
		e.mu.Unlock()
		close(e.queue)
		<-e.done
	})
}

func (e *Emitter) deliver() {
	defer close(e.done)
	for event := range e.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := e.sink.Deliver(ctx, event); err != nil {
			log.Printf("[telemetry] delivery failed for %s: %v", event.Name, err)
		}
		cancel()
	}
}

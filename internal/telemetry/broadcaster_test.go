package telemetry

import (
	"sync"
	"testing"
	"time"

	"stride/internal/models"
)

type captureEmitter struct {
	mu     sync.Mutex
	events []string
}

func (e *captureEmitter) EmitAdmin(event string, data interface{}) {
	e.mu.Lock()
	e.events = append(e.events, event)
	e.mu.Unlock()
}

func (e *captureEmitter) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.events)
}

type fixedHealth struct{}

func (fixedHealth) Health() models.DatabaseHealth {
	return models.DatabaseHealth{Connected: true, State: 1}
}

type fixedConns struct{}

func (fixedConns) ClientCount() int { return 3 }
func (fixedConns) AdminCount() int  { return 1 }

func TestBroadcasterTicks(t *testing.T) {
	tele := New()
	tele.Bind(fixedConns{}, fixedHealth{})
	emitter := &captureEmitter{}

	b := NewBroadcasterWithInterval(tele, emitter, 10*time.Millisecond)
	b.Start()

	deadline := time.After(2 * time.Second)
	for emitter.count() < 2 {
		select {
		case <-deadline:
			t.Fatalf("expected at least 2 broadcasts, got %d", emitter.count())
		case <-time.After(5 * time.Millisecond):
		}
	}
	b.Stop()

	emitter.mu.Lock()
	event := emitter.events[0]
	emitter.mu.Unlock()
	if event != "system-metrics" {
		t.Fatalf("expected system-metrics event, got %q", event)
	}
}

func TestBroadcasterStopsCleanly(t *testing.T) {
	tele := New()
	emitter := &captureEmitter{}
	b := NewBroadcasterWithInterval(tele, emitter, 5*time.Millisecond)

	b.Start()
	time.Sleep(25 * time.Millisecond)
	b.Stop()

	after := emitter.count()
	time.Sleep(25 * time.Millisecond)
	if got := emitter.count(); got != after {
		t.Fatalf("broadcasts continued after Stop: %d then %d", after, got)
	}
}

func TestBroadcasterStartIdempotent(t *testing.T) {
	tele := New()
	emitter := &captureEmitter{}
	b := NewBroadcasterWithInterval(tele, emitter, time.Hour)

	b.Start()
	b.Start()
	b.Stop()
	// Stop after double Start must not hang or panic.
	b.Stop()
}

func TestBroadcastNowFiresOutsideCycle(t *testing.T) {
	tele := New()
	emitter := &captureEmitter{}
	b := NewBroadcaster(tele, emitter)

	b.BroadcastNow()
	if emitter.count() != 1 {
		t.Fatalf("expected immediate broadcast, got %d", emitter.count())
	}
}

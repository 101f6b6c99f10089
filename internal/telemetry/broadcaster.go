package telemetry

import (
	"context"
	"sync"
	"time"
)

// defaultBroadcastInterval is the dashboard refresh period.
const defaultBroadcastInterval = 2 * time.Second

// AdminEmitter pushes an event to every connected admin client. Delivery is
// best-effort; a slow client must not block the caller.
type AdminEmitter interface {
	EmitAdmin(event string, data interface{})
}

// Broadcaster periodically snapshots the telemetry context and pushes the
// result to admin dashboard connections. Start/Stop use a stop channel plus
// a WaitGroup so no tick can fire after shutdown returns.
type Broadcaster struct {
	tele     *Telemetry
	emitter  AdminEmitter
	interval time.Duration

	mu   sync.Mutex
	stop chan struct{}
	wg   sync.WaitGroup
}

// NewBroadcaster builds a broadcaster with the default 2s period.
func NewBroadcaster(tele *Telemetry, emitter AdminEmitter) *Broadcaster {
	return &Broadcaster{tele: tele, emitter: emitter, interval: defaultBroadcastInterval}
}

// NewBroadcasterWithInterval is used by tests that need a short period.
func NewBroadcasterWithInterval(tele *Telemetry, emitter AdminEmitter, interval time.Duration) *Broadcaster {
	return &Broadcaster{tele: tele, emitter: emitter, interval: interval}
}

// Start launches the ticker goroutine. A second Start without an intervening
// Stop is a no-op.
func (b *Broadcaster) Start() {
	b.mu.Lock()
	if b.stop != nil {
		b.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	b.stop = stop
	b.mu.Unlock()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		ticker := time.NewTicker(b.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				b.BroadcastNow()
			case <-stop:
				return
			}
		}
	}()
}

// Stop cancels the ticker and waits for the goroutine to exit.
func (b *Broadcaster) Stop() {
	b.mu.Lock()
	stop := b.stop
	b.stop = nil
	b.mu.Unlock()
	if stop != nil {
		close(stop)
	}
	b.wg.Wait()
}

// BroadcastNow pushes one snapshot immediately, outside the timer cycle.
// Used on client disconnect so the registry size update is visible without
// waiting for the next tick.
func (b *Broadcaster) BroadcastNow() {
	if b.emitter == nil {
		return
	}
	b.emitter.EmitAdmin("system-metrics", b.tele.Snapshot(context.Background()))
}

package app

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"testing"
	"time"

	"spygame/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeClock is a settable time source
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// recordingConn captures every event sent to it
type recordingConn struct {
	id     string
	mu     sync.Mutex
	events []*domain.GameEvent
	closed bool
}

func newRecordingConn(id string) *recordingConn {
	return &recordingConn{id: id}
}

func (c *recordingConn) ID() string { return c.id }

func (c *recordingConn) Send(event *domain.GameEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *recordingConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *recordingConn) Events() []*domain.GameEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*domain.GameEvent(nil), c.events...)
}

func (c *recordingConn) OfType(t domain.EventType) []*domain.GameEvent {
	var out []*domain.GameEvent
	for _, ev := range c.Events() {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

func (c *recordingConn) Last(t domain.EventType) *domain.GameEvent {
	events := c.OfType(t)
	if len(events) == 0 {
		return nil
	}
	return events[len(events)-1]
}

func (c *recordingConn) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = nil
}

// sequentialCodes hands out 100001, 100002, ...
func sequentialCodes() func() (string, error) {
	var mu sync.Mutex
	n := 100000
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%06d", n), nil
	}
}

type testEnv struct {
	clock    *fakeClock
	registry *Registry
	gateway  *Gateway
}

func newTestEnv(t *testing.T, settings domain.Settings, opts ...GatewayOption) *testEnv {
	t.Helper()
	clock := newFakeClock()
	env := newTestEnvWithClock(t, settings, clock.Now, opts...)
	env.clock = clock
	return env
}

func newTestEnvWithClock(t *testing.T, settings domain.Settings, now func() time.Time, opts ...GatewayOption) *testEnv {
	t.Helper()
	words := NewStaticWordBank()

	var seed int64
	var seedMu sync.Mutex
	factory := func(code string, createdAt time.Time) *domain.Room {
		seedMu.Lock()
		seed++
		s := seed
		seedMu.Unlock()
		return domain.NewRoom(code, words, createdAt,
			domain.WithSettings(settings),
			domain.WithRand(rand.New(rand.NewSource(s))),
		)
	}

	registry := NewRegistry(NewMemoryStore(), factory, discardLogger(),
		WithClock(now),
		WithCodeGenerator(sequentialCodes()),
	)
	gateway := NewGateway(registry, discardLogger(), opts...)
	t.Cleanup(func() {
		gateway.Close()
		registry.Close()
	})

	return &testEnv{registry: registry, gateway: gateway}
}

func (e *testEnv) connect(id string) *recordingConn {
	conn := newRecordingConn(id)
	e.gateway.Connect(conn)
	return conn
}

package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kurochkinivan/pdf2csv/internal/workflow"
)

// ControllerFactory builds the workflow for a new browser tab.
type ControllerFactory func() *workflow.Controller

type entry struct {
	controller *workflow.Controller
	lastSeen   time.Time
}

// Registry keeps one workflow controller per browser tab. Sessions live in
// memory only and are evicted after ttl without access.
type Registry struct {
	log           *slog.Logger
	ttl           time.Duration
	sweepInterval time.Duration
	factory       ControllerFactory
	now           func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

func NewRegistry(log *slog.Logger, ttl, sweepInterval time.Duration, factory ControllerFactory) *Registry {
	return &Registry{
		log:           log,
		ttl:           ttl,
		sweepInterval: sweepInterval,
		factory:       factory,
		now:           time.Now,
		sessions:      make(map[string]*entry),
	}
}

func (r *Registry) Create() (string, *workflow.Controller) {
	id := uuid.NewString()
	controller := r.factory()

	r.mu.Lock()
	r.sessions[id] = &entry{controller: controller, lastSeen: r.now()}
	r.mu.Unlock()

	r.log.Debug("session created", slog.String("session_id", id))

	return id, controller
}

func (r *Registry) Get(id string) (*workflow.Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = r.now()

	return e.controller, true
}

func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	e, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		e.controller.Reset()
	}

	return ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.sessions)
}

// Run evicts idle sessions every sweep interval until ctx is done.
func (r *Registry) Run(ctx context.Context) error {
	if r.sweepInterval <= 0 {
		return fmt.Errorf("invalid sweep interval %s: must be positive", r.sweepInterval)
	}
	if r.ttl <= 0 {
		return fmt.Errorf("invalid session ttl %s: must be positive", r.ttl)
	}

	ticker := time.NewTicker(r.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if evicted := r.Sweep(); evicted > 0 {
				r.log.InfoContext(ctx, "evicted idle sessions", slog.Int("count", evicted))
			}

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (r *Registry) Sweep() int {
	deadline := r.now().Add(-r.ttl)

	r.mu.Lock()
	var evicted []*workflow.Controller
	for id, e := range r.sessions {
		if e.lastSeen.Before(deadline) {
			evicted = append(evicted, e.controller)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, controller := range evicted {
		controller.Reset()
	}

	return len(evicted)
}

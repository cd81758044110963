package breaker

import (
	"log"
	"sort"
	"sync"
	"time"
)

// Registry owns one breaker per backend algorithm. Breakers live for the
// whole process; they are only reset through explicit admin action.
type Registry struct {
	failureThreshold int
	recoveryTimeout  time.Duration
	logger           *log.Logger
	onTransition     TransitionFunc

	mu       sync.RWMutex
	breakers map[string]*Breaker
}

func NewRegistry(failureThreshold int, recoveryTimeout time.Duration, logger *log.Logger) *Registry {
	return &Registry{
		failureThreshold: failureThreshold,
		recoveryTimeout:  recoveryTimeout,
		logger:           logger,
		breakers:         make(map[string]*Breaker),
	}
}

// OnTransition installs a hook applied to every breaker, existing and future.
func (r *Registry) OnTransition(fn TransitionFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onTransition = fn
	for _, b := range r.breakers {
		b.OnTransition(fn)
	}
}

func (r *Registry) Get(name string) *Breaker {
	r.mu.RLock()
	b, ok := r.breakers[name]
	r.mu.RUnlock()
	if ok {
		return b
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.breakers[name]; ok {
		return b
	}
	b = New(name, r.failureThreshold, r.recoveryTimeout, r.logger)
	if r.onTransition != nil {
		b.OnTransition(r.onTransition)
	}
	r.breakers[name] = b
	return b
}

// Snapshots returns the current state of every breaker, ordered by name.
func (r *Registry) Snapshots() []Snapshot {
	r.mu.RLock()
	names := make([]string, 0, len(r.breakers))
	for name := range r.breakers {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	out := make([]Snapshot, 0, len(names))
	for _, name := range names {
		out = append(out, r.Get(name).Snapshot())
	}
	return out
}

// Package breaker implements the circuit breaker pattern used to isolate
// failing matching backends.
//
// Each breaker is a three-state machine:
//
//   - CLOSED: normal operation, calls pass through
//   - OPEN: backend failing, calls rejected until the recovery timeout elapses
//   - HALF_OPEN: a single trial call is allowed; its outcome decides the next state
package breaker

import (
	"log"
	"sync"
	"time"
)

type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half_open"
)

const (
	DefaultFailureThreshold = 5
	DefaultRecoveryTimeout  = 60 * time.Second
)

// Snapshot is a point-in-time copy of a breaker's state, used for logging,
// admin endpoints and transition hooks.
type Snapshot struct {
	Name             string     `json:"name"`
	State            State      `json:"state"`
	FailureCount     int        `json:"failure_count"`
	FailureThreshold int        `json:"failure_threshold"`
	TotalSuccesses   int64      `json:"total_successes"`
	TotalFailures    int64      `json:"total_failures"`
	RecoveryTimeout  string     `json:"recovery_timeout"`
	LastFailureAt    *time.Time `json:"last_failure_at,omitempty"`
	NextRetryAt      *time.Time `json:"next_retry_at,omitempty"`
}

// TransitionFunc observes state changes. It is invoked outside the breaker
// lock, so it may safely call back into the breaker.
type TransitionFunc func(name string, from, to State, snap Snapshot)

type Breaker struct {
	name             string
	failureThreshold int
	recoveryTimeout  time.Duration

	mu             sync.Mutex
	state          State
	failureCount   int
	totalSuccesses int64
	totalFailures  int64
	lastFailureAt  time.Time
	nextRetryAt    time.Time

	now          func() time.Time
	logger       *log.Logger
	onTransition TransitionFunc
}

func New(name string, failureThreshold int, recoveryTimeout time.Duration, logger *log.Logger) *Breaker {
	if failureThreshold <= 0 {
		failureThreshold = DefaultFailureThreshold
	}
	if recoveryTimeout <= 0 {
		recoveryTimeout = DefaultRecoveryTimeout
	}
	return &Breaker{
		name:             name,
		failureThreshold: failureThreshold,
		recoveryTimeout:  recoveryTimeout,
		state:            StateClosed,
		now:              time.Now,
		logger:           logger,
	}
}

func (b *Breaker) OnTransition(fn TransitionFunc) {
	b.mu.Lock()
	b.onTransition = fn
	b.mu.Unlock()
}

// CanExecute reports whether a call may proceed. In OPEN, the first check at
// or after the retry deadline moves the breaker to HALF_OPEN and admits a
// single trial call.
func (b *Breaker) CanExecute() bool {
	b.mu.Lock()

	switch b.state {
	case StateClosed, StateHalfOpen:
		b.mu.Unlock()
		return true
	case StateOpen:
		if b.now().Before(b.nextRetryAt) {
			b.mu.Unlock()
			return false
		}
		fire := b.transitionLocked(StateHalfOpen)
		b.mu.Unlock()
		fire()
		return true
	}

	b.mu.Unlock()
	return false
}

func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	b.totalSuccesses++

	fire := func() {}
	switch b.state {
	case StateHalfOpen:
		b.failureCount = 0
		fire = b.transitionLocked(StateClosed)
	case StateClosed:
		b.failureCount = 0
	}
	b.mu.Unlock()
	fire()
}

func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	b.totalFailures++
	b.failureCount++
	b.lastFailureAt = b.now()

	fire := func() {}
	switch b.state {
	case StateHalfOpen:
		// Single-strike recovery test: the trial call failed.
		b.nextRetryAt = b.now().Add(b.recoveryTimeout)
		fire = b.transitionLocked(StateOpen)
	case StateClosed:
		if b.failureCount >= b.failureThreshold {
			b.nextRetryAt = b.now().Add(b.recoveryTimeout)
			fire = b.transitionLocked(StateOpen)
		}
	}
	b.mu.Unlock()
	fire()
}

// Reset forces the breaker back to CLOSED. Admin action only.
func (b *Breaker) Reset() {
	b.mu.Lock()
	b.failureCount = 0
	b.nextRetryAt = time.Time{}
	fire := func() {}
	if b.state != StateClosed {
		fire = b.transitionLocked(StateClosed)
	}
	b.mu.Unlock()
	fire()
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

func (b *Breaker) snapshotLocked() Snapshot {
	s := Snapshot{
		Name:             b.name,
		State:            b.state,
		FailureCount:     b.failureCount,
		FailureThreshold: b.failureThreshold,
		TotalSuccesses:   b.totalSuccesses,
		TotalFailures:    b.totalFailures,
		RecoveryTimeout:  b.recoveryTimeout.String(),
	}
	if !b.lastFailureAt.IsZero() {
		t := b.lastFailureAt
		s.LastFailureAt = &t
	}
	// next_retry_at is meaningful only while OPEN.
	if b.state == StateOpen {
		t := b.nextRetryAt
		s.NextRetryAt = &t
	}
	return s
}

// transitionLocked changes state and returns a closure that logs the change
// and fires the hook. The closure must be invoked after the lock is released.
func (b *Breaker) transitionLocked(to State) func() {
	from := b.state
	b.state = to
	if to != StateOpen {
		b.nextRetryAt = time.Time{}
	}
	snap := b.snapshotLocked()
	hook := b.onTransition
	logger := b.logger
	name := b.name

	return func() {
		if logger != nil {
			logger.Printf("[Breaker] transition | backend=%s from=%s to=%s failures=%d threshold=%d",
				name, from, to, snap.FailureCount, snap.FailureThreshold)
		}
		if hook != nil {
			hook(name, from, to, snap)
		}
	}
}

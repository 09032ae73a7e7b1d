package expense

import (
	"sync"
	"time"
)

// Outcome tags how a facade call actually went, so callers can tell a real
// success from a fallback-substituted one.
type Outcome string

const (
	OutcomeOK       Outcome = "ok"
	OutcomeDegraded Outcome = "degraded"
)

// ErrorRecord is the most recent fault observed by the facade: the
// operator-facing message plus the call site that raised it.
type ErrorRecord struct {
	Message  string
	Location string
	Kind     FaultKind
	At       time.Time
}

// ErrorState holds the last fault for one request (or one orchestration run).
// It is constructed per request by the HTTP layer — never shared across
// requests — with last-write-wins semantics within its scope. The facade
// clears it at the start of every call and sets it only on fault.
type ErrorState struct {
	mu      sync.Mutex
	last    *ErrorRecord
	outcome Outcome
}

func NewErrorState() *ErrorState {
	return &ErrorState{outcome: OutcomeOK}
}

// Clear resets the state at the start of a facade call.
func (s *ErrorState) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = nil
	s.outcome = OutcomeOK
}

// Record stores the fault for the given call site and marks the outcome
// degraded.
func (s *ErrorState) Record(location string, f *Fault) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = &ErrorRecord{
		Message:  RemediationHint(f.Kind),
		Location: location,
		Kind:     f.Kind,
		At:       time.Now().UTC(),
	}
	s.outcome = OutcomeDegraded
}

// Last returns the current fault record, or nil after a clean call.
func (s *ErrorState) Last() *ErrorRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Outcome reports whether the most recent facade call returned real data or a
// fallback substitute.
func (s *ErrorState) Outcome() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}

// Degraded is shorthand for Outcome() == OutcomeDegraded.
func (s *ErrorState) Degraded() bool {
	return s.Outcome() == OutcomeDegraded
}

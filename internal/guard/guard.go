// Package guard bounds the total work one digest run may perform. There is
// no internal parallelism to coordinate; the limits exist because a
// misbehaving model could loop indefinitely or hammer network-bound tools.
package guard

import (
	"fmt"
	"time"

	"NewsDigest/internal/domain"
)

// Limits defines the per-run guardrails.
type Limits struct {
	// MaxToolCalls caps how many tool invocations the agent loop may
	// dispatch before it must produce a final answer.
	MaxToolCalls int
	// MaxFetches caps article-text fetches; past it, fetch requests are
	// short-circuited with a structured skip rather than failing the run.
	MaxFetches int
	// MaxWallClock bounds elapsed time for the whole run. It is checked
	// between steps only: a blocking call already in flight is not
	// interrupted, but no new one starts once the budget is spent.
	MaxWallClock time.Duration
}

// DefaultLimits mirrors the production guardrails.
func DefaultLimits() Limits {
	return Limits{
		MaxToolCalls: 30,
		MaxFetches:   40,
		MaxWallClock: 300 * time.Second,
	}
}

// Validate ensures the limits are sane before use.
func (l Limits) Validate() error {
	if l.MaxToolCalls <= 0 {
		return fmt.Errorf("max tool calls must be positive")
	}
	if l.MaxFetches < 0 {
		return fmt.Errorf("max fetches cannot be negative")
	}
	if l.MaxWallClock <= 0 {
		return fmt.Errorf("wall clock budget must be positive")
	}
	return nil
}

// Monitor tracks one run's usage against its limits. It is owned by a
// single controller instance, never shared between runs, so repeated or
// concurrent runs stay isolated.
type Monitor struct {
	limits    Limits
	toolCalls int
	fetches   int
	start     time.Time
	now       func() time.Time
}

// NewMonitor starts tracking against the wall clock.
func NewMonitor(limits Limits) *Monitor {
	return NewMonitorWithClock(limits, time.Now)
}

// NewMonitorWithClock injects the clock, for tests.
func NewMonitorWithClock(limits Limits, now func() time.Time) *Monitor {
	return &Monitor{limits: limits, start: now(), now: now}
}

// CheckWallClock fails once elapsed time exceeds the budget.
func (m *Monitor) CheckWallClock() error {
	elapsed := m.now().Sub(m.start)
	if elapsed > m.limits.MaxWallClock {
		return domain.E(domain.KindExhausted,
			"wall clock budget exceeded: elapsed %s, limit %s", elapsed.Round(time.Second), m.limits.MaxWallClock)
	}
	return nil
}

// CheckToolCalls fails once the dispatch count has reached the cap.
func (m *Monitor) CheckToolCalls() error {
	if m.toolCalls >= m.limits.MaxToolCalls {
		return domain.E(domain.KindExhausted,
			"tool call budget exhausted: %d calls, limit %d", m.toolCalls, m.limits.MaxToolCalls)
	}
	return nil
}

// RecordToolCall counts one dispatched tool invocation.
func (m *Monitor) RecordToolCall() {
	m.toolCalls++
}

// AllowFetch reports whether another article-text fetch fits the budget,
// consuming one slot when it does.
func (m *Monitor) AllowFetch() bool {
	if m.fetches >= m.limits.MaxFetches {
		return false
	}
	m.fetches++
	return true
}

// Usage returns the accumulated counters and elapsed time.
func (m *Monitor) Usage() (toolCalls, fetches int, elapsed time.Duration) {
	return m.toolCalls, m.fetches, m.now().Sub(m.start)
}

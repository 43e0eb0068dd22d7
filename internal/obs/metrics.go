// Package obs collects lightweight operational counters. Everything is
// atomic so the matching path never takes a lock to record a sample.
package obs

import (
	"sync/atomic"
	"time"

	"gxcoin/internal/schema"
)

const maxEventType = int(schema.EventCoinLimitChanged)

// Metrics collects counters and match-latency stats.
type Metrics struct {
	eventCounts [maxEventType + 1]uint64

	ordersAccepted uint64
	ordersRejected uint64
	budgetCancels  uint64
	queueDrops     uint64
	queueClosed    uint64

	matchLatency LatencyStats
}

// LatencyStats aggregates duration samples in nanoseconds.
type LatencyStats struct {
	count uint64
	sum   uint64
	min   uint64
	max   uint64
}

// LatencySnapshot is a point-in-time view of latency stats.
type LatencySnapshot struct {
	Count uint64
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
}

// Snapshot captures the current metrics values.
type Snapshot struct {
	EventCounts    map[schema.EventType]uint64
	OrdersAccepted uint64
	OrdersRejected uint64
	BudgetCancels  uint64
	QueueDrops     uint64
	QueueClosed    uint64
	MatchLatency   LatencySnapshot
}

// NewMetrics allocates a metrics container.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// ObserveEvent counts one published event, tracking budget cancellations
// separately.
func (m *Metrics) ObserveEvent(ev schema.Event) {
	if m == nil {
		return
	}
	idx := int(ev.Header.Type)
	if idx >= 0 && idx < len(m.eventCounts) {
		atomic.AddUint64(&m.eventCounts[idx], 1)
	}
	if ev.Header.Type == schema.EventRemainderCancelled {
		atomic.AddUint64(&m.budgetCancels, 1)
	}
}

// IncOrderAccepted counts a successful create call.
func (m *Metrics) IncOrderAccepted() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.ordersAccepted, 1)
}

// IncOrderRejected counts a rejected create call.
func (m *Metrics) IncOrderRejected() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.ordersRejected, 1)
}

// IncQueueDrop records a full-queue publish attempt.
func (m *Metrics) IncQueueDrop() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.queueDrops, 1)
}

// IncQueueClosed records a closed-queue publish attempt.
func (m *Metrics) IncQueueClosed() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.queueClosed, 1)
}

// ObserveMatch measures one create-order call end to end.
func (m *Metrics) ObserveMatch(d time.Duration) {
	if m == nil {
		return
	}
	m.matchLatency.Observe(d)
}

// Snapshot returns a copy of the current metrics values.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	eventCounts := make(map[schema.EventType]uint64)
	for i := range m.eventCounts {
		if v := atomic.LoadUint64(&m.eventCounts[i]); v > 0 {
			eventCounts[schema.EventType(i)] = v
		}
	}
	return Snapshot{
		EventCounts:    eventCounts,
		OrdersAccepted: atomic.LoadUint64(&m.ordersAccepted),
		OrdersRejected: atomic.LoadUint64(&m.ordersRejected),
		BudgetCancels:  atomic.LoadUint64(&m.budgetCancels),
		QueueDrops:     atomic.LoadUint64(&m.queueDrops),
		QueueClosed:    atomic.LoadUint64(&m.queueClosed),
		MatchLatency:   m.matchLatency.Snapshot(),
	}
}

// Observe records a duration sample.
func (l *LatencyStats) Observe(d time.Duration) {
	if d < 0 {
		return
	}
	nanos := uint64(d)
	atomic.AddUint64(&l.count, 1)
	atomic.AddUint64(&l.sum, nanos)

	for {
		min := atomic.LoadUint64(&l.min)
		if min != 0 && nanos >= min {
			break
		}
		if atomic.CompareAndSwapUint64(&l.min, min, nanos) {
			break
		}
	}
	for {
		max := atomic.LoadUint64(&l.max)
		if nanos <= max {
			break
		}
		if atomic.CompareAndSwapUint64(&l.max, max, nanos) {
			break
		}
	}
}

// Snapshot returns the aggregated latency stats.
func (l *LatencyStats) Snapshot() LatencySnapshot {
	count := atomic.LoadUint64(&l.count)
	if count == 0 {
		return LatencySnapshot{}
	}
	return LatencySnapshot{
		Count: count,
		Min:   time.Duration(atomic.LoadUint64(&l.min)),
		Max:   time.Duration(atomic.LoadUint64(&l.max)),
		Avg:   time.Duration(atomic.LoadUint64(&l.sum) / count),
	}
}

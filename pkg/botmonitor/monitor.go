package botmonitor

import (
	"sync"
	"sync/atomic"
	"time"
)

const (
	StageCommand = "command"
	StagePersist = "persist"
	StageRaid    = "raid"

	StatusOK    = "ok"
	StatusError = "error"
)

type Event struct {
	Timestamp time.Time `json:"timestamp"`
	TraceID   string    `json:"trace_id"`
	GuildID   string    `json:"guild_id"`
	Stage     string    `json:"stage"`     // command | persist | raid
	Parameter string    `json:"parameter"` // optional
	Status    string    `json:"status"`    // ok | error
	Error     string    `json:"error"`     // optional
}

type Stats struct {
	TotalCommands      int64   `json:"total_commands"`
	TotalPersisted     int64   `json:"total_persisted"`
	TotalPersistErrors int64   `json:"total_persist_errors"`
	TotalRaids         int64   `json:"total_raids"`
	TotalErrors        int64   `json:"total_errors"`
	RecentEvents       []Event `json:"recent_events"`
}

// Monitor keeps counters plus a ring buffer of the most recent events.
// A nil *Monitor is valid and records nothing.
type Monitor struct {
	eventsMu sync.Mutex
	events   []Event
	idx      int
	count    int
	ttl      time.Duration
	now      func() time.Time

	totalCommands      int64
	totalPersisted     int64
	totalPersistErrors int64
	totalRaids         int64
	totalErrors        int64
}

// New creates a monitor holding up to size events. Events older than ttl
// are hidden from GetStats; ttl <= 0 keeps them until overwritten.
func New(size int, ttl time.Duration) *Monitor {
	if size <= 0 {
		size = 200
	}
	return &Monitor{events: make([]Event, size), ttl: ttl, now: time.Now}
}

func (m *Monitor) Record(e Event) {
	if m == nil {
		return
	}
	e.Timestamp = m.now().UTC()

	switch e.Stage {
	case StageCommand:
		atomic.AddInt64(&m.totalCommands, 1)
	case StagePersist:
		if e.Status == StatusOK {
			atomic.AddInt64(&m.totalPersisted, 1)
		} else {
			atomic.AddInt64(&m.totalPersistErrors, 1)
		}
	case StageRaid:
		atomic.AddInt64(&m.totalRaids, 1)
	}

	if e.Status == StatusError {
		atomic.AddInt64(&m.totalErrors, 1)
	}

	m.eventsMu.Lock()
	m.events[m.idx] = e
	m.idx = (m.idx + 1) % len(m.events)
	if m.count < len(m.events) {
		m.count++
	}
	m.eventsMu.Unlock()
}

func (m *Monitor) GetStats() Stats {
	if m == nil {
		return Stats{}
	}
	m.eventsMu.Lock()
	defer m.eventsMu.Unlock()

	res := make([]Event, 0, m.count)
	cutoff := time.Time{}
	if m.ttl > 0 {
		cutoff = m.now().UTC().Add(-m.ttl)
	}
	start := (m.idx - m.count) % len(m.events)
	if start < 0 {
		start += len(m.events)
	}
	for i := 0; i < m.count; i++ {
		e := m.events[(start+i)%len(m.events)]
		if !cutoff.IsZero() && e.Timestamp.Before(cutoff) {
			continue
		}
		res = append(res, e)
	}

	return Stats{
		TotalCommands:      atomic.LoadInt64(&m.totalCommands),
		TotalPersisted:     atomic.LoadInt64(&m.totalPersisted),
		TotalPersistErrors: atomic.LoadInt64(&m.totalPersistErrors),
		TotalRaids:         atomic.LoadInt64(&m.totalRaids),
		TotalErrors:        atomic.LoadInt64(&m.totalErrors),
		RecentEvents:       res,
	}
}

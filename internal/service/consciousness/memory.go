package consciousness

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/auranova/uebridge/internal/model/envelope"
)

// Record kinds.
const (
	KindDecision   = "decision"
	KindExperience = "experience"
)

// Record is one remembered event.
type Record struct {
	ID         string               `json:"id"`
	Kind       string               `json:"kind"`
	Decision   *envelope.AIDecision `json:"decision,omitempty"`
	Experience *envelope.Experience `json:"experience,omitempty"`
	Mood       string               `json:"mood"`
	CreatedAt  time.Time            `json:"createdAt"`
}

// Memory is a bounded in-memory history. The oldest records are dropped first.
type Memory struct {
	mu      sync.RWMutex
	limit   int
	records []Record
}

// NewMemory keeps at most limit records; limit <= 0 falls back to 64.
func NewMemory(limit int) *Memory {
	if limit <= 0 {
		limit = 64
	}
	return &Memory{
		limit:   limit,
		records: make([]Record, 0, 16),
	}
}

// Remember stamps and appends a record.
func (m *Memory) Remember(rec Record) Record {
	rec.ID = uuid.NewString()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	if overflow := len(m.records) - m.limit; overflow > 0 {
		m.records = append(m.records[:0], m.records[overflow:]...)
	}
	return rec
}

// Recent returns up to n records, newest last. n <= 0 returns everything.
func (m *Memory) Recent(n int) []Record {
	m.mu.RLock()
	defer m.mu.RUnlock()

	start := 0
	if n > 0 && len(m.records) > n {
		start = len(m.records) - n
	}
	copied := make([]Record, len(m.records)-start)
	copy(copied, m.records[start:])
	return copied
}

// Len reports how many records are held.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

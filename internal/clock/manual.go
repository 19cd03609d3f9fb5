package clock

import (
	"sort"
	"sync"
	"time"
)

// Manual is a Clock that only moves when Advance is called.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	seq    uint64
	timers []*manualTimer
}

type manualTimer struct {
	m   *Manual
	seq uint64
	at  time.Time
	f   func()
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.now
}

func (m *Manual) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()

	if d < 0 {
		d = 0
	}

	m.seq++

	timer := &manualTimer{
		m:   m,
		seq: m.seq,
		at:  m.now.Add(d),
		f:   f,
	}
	m.timers = append(m.timers, timer)

	return timer
}

// Advance moves time forward and runs every due callback, earliest first, on the calling goroutine.
func (m *Manual) Advance(d time.Duration) time.Time {
	if d < 0 {
		d = 0
	}

	m.mu.Lock()
	m.now = m.now.Add(d)
	now := m.now

	var due []*manualTimer

	remaining := m.timers[:0]

	for _, timer := range m.timers {
		if timer.at.After(now) {
			remaining = append(remaining, timer)

			continue
		}

		due = append(due, timer)
	}

	m.timers = remaining
	m.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].at.Equal(due[j].at) {
			return due[i].seq < due[j].seq
		}

		return due[i].at.Before(due[j].at)
	})

	for _, timer := range due {
		timer.f()
	}

	return now
}

func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.timers)
}

func (t *manualTimer) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()

	for idx, timer := range t.m.timers {
		if timer == t {
			t.m.timers = append(t.m.timers[:idx], t.m.timers[idx+1:]...)

			return true
		}
	}

	return false
}

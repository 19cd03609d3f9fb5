package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRealAfterFunc(t *testing.T) {
	fired := make(chan struct{})

	Real{}.AfterFunc(5*time.Millisecond, func() {
		close(fired)
	})

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("AfterFunc did not fire")
	}
}

func TestManualAdvanceOrder(t *testing.T) {
	m := NewManual(time.Unix(1000, 0))

	var order []int

	m.AfterFunc(3*time.Second, func() { order = append(order, 3) })
	m.AfterFunc(time.Second, func() { order = append(order, 1) })
	m.AfterFunc(2*time.Second, func() { order = append(order, 2) })

	assert.EqualValues(t, 3, m.Pending())

	m.Advance(1500 * time.Millisecond)
	assert.EqualValues(t, []int{1}, order)

	now := m.Advance(2 * time.Second)
	assert.EqualValues(t, []int{1, 2, 3}, order)
	assert.True(t, now.Equal(time.Unix(1003, 500000000)))
	assert.EqualValues(t, 0, m.Pending())
}

func TestManualStop(t *testing.T) {
	m := NewManual(time.Unix(0, 0))

	fired := false
	timer := m.AfterFunc(time.Second, func() { fired = true })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())

	m.Advance(time.Minute)
	assert.False(t, fired)
}

func TestManualCallbackMayReschedule(t *testing.T) {
	m := NewManual(time.Unix(0, 0))

	count := 0

	var tick func()
	tick = func() {
		count++
		if count < 3 {
			m.AfterFunc(time.Second, tick)
		}
	}

	m.AfterFunc(time.Second, tick)

	m.Advance(time.Second)
	m.Advance(time.Second)
	m.Advance(time.Second)
	m.Advance(time.Second)

	assert.EqualValues(t, 3, count)
}

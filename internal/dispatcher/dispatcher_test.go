package dispatcher

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

func waitDone(t *testing.T, ch <-chan struct{}) {
	t.Helper()

	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("timeout")
	}
}

func TestTotalOrder(t *testing.T) {
	d := New("order", nil)

	var (
		got  []int
		mu   sync.Mutex
		fin  = make(chan struct{})
		busy = atomic.NewInt32(0)
	)

	for i := 0; i < 1000; i++ {
		i := i

		require.True(t, d.Post(func() {
			assert.EqualValues(t, 1, busy.Inc())
			defer busy.Dec()

			mu.Lock()
			got = append(got, i)
			mu.Unlock()

			if i == 999 {
				close(fin)
			}
		}))
	}

	waitDone(t, fin)

	for i, v := range got {
		assert.EqualValues(t, i, v)
	}

	d.Stop()
	waitDone(t, d.Done())
	assert.EqualValues(t, 1000, d.Delivered())
}

func TestPostFromCallback(t *testing.T) {
	d := New("nested", nil)
	defer d.Stop()

	fin := make(chan struct{})

	d.Post(func() {
		d.Post(func() {
			close(fin)
		})
	})

	waitDone(t, fin)
}

func TestStopSuppressesQueued(t *testing.T) {
	d := New("stop", nil)

	block := make(chan struct{})
	started := make(chan struct{})
	ran := atomic.NewInt32(0)

	d.Post(func() {
		close(started)
		<-block
	})

	waitDone(t, started)

	for i := 0; i < 10; i++ {
		d.Post(func() { ran.Inc() })
	}

	d.Stop()
	assert.False(t, d.Post(func() { ran.Inc() }))

	close(block)
	waitDone(t, d.Done())

	assert.EqualValues(t, 0, ran.Load())
}

func TestStopFromCallback(t *testing.T) {
	d := New("self", nil)

	d.Post(func() {
		d.Stop()
	})

	waitDone(t, d.Done())
	assert.True(t, d.Stopped())
}

func TestPanicDoesNotStopDelivery(t *testing.T) {
	d := New("panic", nil)
	defer d.Stop()

	fin := make(chan struct{})

	d.Post(func() { panic("boom") })
	d.Post(func() { close(fin) })

	waitDone(t, fin)
}

package queue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueueFIFO(t *testing.T) {
	q := New[int]()

	for i := 0; i < 200; i++ {
		assert.True(t, q.Push(i))
	}

	assert.EqualValues(t, 200, q.Len())

	for i := 0; i < 200; i++ {
		v, ok := q.Pop()
		assert.True(t, ok)
		assert.EqualValues(t, i, v)
	}

	_, ok := q.Pop()
	assert.False(t, ok)
	assert.EqualValues(t, 0, q.Len())
}

func TestQueueInterleaved(t *testing.T) {
	q := New[int]()

	next := 0
	for round := 0; round < 50; round++ {
		for i := 0; i < 10; i++ {
			q.Push(round*10 + i)
		}

		for i := 0; i < 7; i++ {
			v, ok := q.Pop()
			assert.True(t, ok)
			assert.EqualValues(t, next, v)
			next++
		}
	}

	for {
		v, ok := q.Pop()
		if !ok {
			break
		}

		assert.EqualValues(t, next, v)
		next++
	}

	assert.EqualValues(t, 500, next)
}

func TestQueueClose(t *testing.T) {
	q := New[string]()
	assert.True(t, q.Push("a"))

	q.Close()
	assert.True(t, q.Closed())
	assert.False(t, q.Push("b"))

	v, ok := q.Pop()
	assert.True(t, ok)
	assert.EqualValues(t, "a", v)
}

func TestQueueConcurrentProducers(t *testing.T) {
	q := New[int]()

	var wg sync.WaitGroup

	for p := 0; p < 8; p++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := 0; i < 1000; i++ {
				q.Push(i)
			}
		}()
	}

	wg.Wait()

	assert.EqualValues(t, 8000, q.Len())

	select {
	case <-q.Notify():
	default:
		t.Fatal("no notification after push")
	}
}

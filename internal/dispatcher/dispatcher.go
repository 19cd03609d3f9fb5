package dispatcher

import (
	"context"
	"fmt"

	"github.com/sbasestarter/rtm-harness/internal/queue"
	"github.com/sgostarter/i/l"
	"github.com/sgostarter/libeasygo/routineman"
	"go.uber.org/atomic"
)

// Dispatcher runs callbacks one at a time on a dedicated routine, in the order they were posted.
// Post never blocks, so callbacks may post further work.
type Dispatcher struct {
	logger l.Wrapper

	q          *queue.Queue[func()]
	stopped    *atomic.Bool
	ctxCancel  context.CancelFunc
	routineMan routineman.RoutineMan
	done       chan struct{}
	delivered  *atomic.Uint64
}

func New(name string, logger l.Wrapper) *Dispatcher {
	if logger == nil {
		logger = l.NewNopLoggerWrapper()
	}

	ctx, cancel := context.WithCancel(context.Background())

	d := &Dispatcher{
		logger:     logger.WithFields(l.StringField(l.ClsKey, "Dispatcher"), l.StringField("name", name)),
		q:          queue.New[func()](),
		stopped:    atomic.NewBool(false),
		ctxCancel:  cancel,
		routineMan: routineman.NewRoutineMan(ctx, logger),
		done:       make(chan struct{}),
		delivered:  atomic.NewUint64(0),
	}

	d.routineMan.StartRoutine(d.mainRoutine, "dispatcherRoutine")

	return d
}

// Post queues f. It reports false after Stop.
func (d *Dispatcher) Post(f func()) bool {
	if f == nil || d.stopped.Load() {
		return false
	}

	return d.q.Push(f)
}

// Stop discards queued callbacks. The callback currently running, if any, finishes; Done closes afterwards.
// Stop does not wait, so it is safe to call from inside a callback.
func (d *Dispatcher) Stop() {
	if d.stopped.Swap(true) {
		return
	}

	d.q.Close()
	d.ctxCancel()
}

func (d *Dispatcher) Stopped() bool {
	return d.stopped.Load()
}

func (d *Dispatcher) Done() <-chan struct{} {
	return d.done
}

func (d *Dispatcher) Pending() int {
	return d.q.Len()
}

func (d *Dispatcher) Delivered() uint64 {
	return d.delivered.Load()
}

func (d *Dispatcher) mainRoutine(ctx context.Context, _ func() bool) {
	logger := d.logger.WithFields(l.StringField(l.RoutineKey, "dispatcherRoutine"))

	logger.Debug("enter")

	defer func() {
		close(d.done)
		logger.Debug("leave")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-d.q.Notify():
		}

		for !d.stopped.Load() {
			f, ok := d.q.Pop()
			if !ok {
				break
			}

			d.run(f, logger)
		}
	}
}

func (d *Dispatcher) run(f func(), logger l.Wrapper) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithFields(l.StringField("panic", fmt.Sprint(r))).Error("CallbackPanic")
		}
	}()

	f()

	d.delivered.Inc()
}

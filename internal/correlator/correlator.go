package correlator

import (
	"sort"
	"sync"
	"time"

	"github.com/sbasestarter/rtm-harness/internal/defs"
	"github.com/sgostarter/i/l"
	"github.com/sgostarter/libeasygo/commerr"
	"go.uber.org/atomic"
)

// Pending is an in-flight request waiting for its terminal result.
type Pending struct {
	ID          uint64
	Op          defs.Op
	Owner       uint64
	Request     *defs.Request
	SubmittedAt time.Time
}

// Correlator allocates request ids and matches terminal results to them exactly once.
type Correlator struct {
	logger l.Wrapper

	lastID *atomic.Uint64

	mu      sync.Mutex
	pending map[uint64]*Pending
}

func New(logger l.Wrapper) *Correlator {
	if logger == nil {
		logger = l.NewNopLoggerWrapper()
	}

	return &Correlator{
		logger:  logger.WithFields(l.StringField(l.ClsKey, "Correlator")),
		lastID:  atomic.NewUint64(0),
		pending: make(map[uint64]*Pending),
	}
}

// Submit allocates the next id, records it as pending for owner and hands it to send.
// When send fails the id is abandoned: it never completes and is never handed out again.
func (c *Correlator) Submit(op defs.Op, owner uint64, send func(requestID uint64) error) (uint64, error) {
	return c.submit(op, owner, nil, send)
}

// SubmitRequest stamps request with the next id and keeps it with the pending entry.
func (c *Correlator) SubmitRequest(request *defs.Request, owner uint64, send func(request *defs.Request) error) (uint64, error) {
	if request == nil || send == nil {
		return 0, commerr.ErrInvalidArgument
	}

	return c.submit(request.Op, owner, request, func(requestID uint64) error {
		request.RequestID = requestID

		return send(request)
	})
}

func (c *Correlator) submit(op defs.Op, owner uint64, request *defs.Request, send func(requestID uint64) error) (uint64, error) {
	if send == nil {
		return 0, commerr.ErrInvalidArgument
	}

	requestID := c.lastID.Inc()

	c.mu.Lock()
	c.pending[requestID] = &Pending{
		ID:          requestID,
		Op:          op,
		Owner:       owner,
		Request:     request,
		SubmittedAt: time.Now(),
	}
	c.mu.Unlock()

	if err := send(requestID); err != nil {
		c.mu.Lock()
		delete(c.pending, requestID)
		c.mu.Unlock()

		c.logger.WithFields(l.UInt64Field("requestID", requestID), l.StringField("op", op.String()),
			l.ErrorField(err)).Warn("SubmitFailed")

		return 0, err
	}

	return requestID, nil
}

// Complete removes the pending entry. Only the first completion of an id succeeds.
func (c *Correlator) Complete(requestID uint64) (*Pending, bool) {
	c.mu.Lock()
	p, ok := c.pending[requestID]
	if ok {
		delete(c.pending, requestID)
	}
	c.mu.Unlock()

	if !ok {
		c.logger.WithFields(l.UInt64Field("requestID", requestID)).Debug("UnknownOrDuplicateCompletion")
	}

	return p, ok
}

// AbandonOwner drops every pending request of owner and returns their ids.
func (c *Correlator) AbandonOwner(owner uint64) []uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var ids []uint64

	for id, p := range c.pending {
		if p.Owner == owner {
			ids = append(ids, id)

			delete(c.pending, id)
		}
	}

	return ids
}

// TakeAll removes every pending request and returns them in id order.
func (c *Correlator) TakeAll() []*Pending {
	c.mu.Lock()
	pending := c.pending
	c.pending = make(map[uint64]*Pending)
	c.mu.Unlock()

	list := make([]*Pending, 0, len(pending))
	for _, p := range pending {
		list = append(list, p)
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})

	return list
}

func (c *Correlator) AbandonAll() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.pending)
	c.pending = make(map[uint64]*Pending)

	return n
}

func (c *Correlator) IsPending(requestID uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.pending[requestID]

	return ok
}

func (c *Correlator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.pending)
}

func (c *Correlator) LastID() uint64 {
	return c.lastID.Load()
}

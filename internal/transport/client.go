package transport

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/sbasestarter/rtm-harness/internal/defs"
	"github.com/sbasestarter/rtm-harness/internal/metrics"
	"github.com/sgostarter/i/l"
	"github.com/sgostarter/libeasygo/commerr"
	"google.golang.org/grpc/codes"
)

// Client is a defs.Backend served by a remote harness over one websocket connection.
type Client struct {
	logger l.Wrapper
	pump   *pump

	mu       sync.Mutex
	sessions map[uint64]defs.Session

	done chan struct{}
}

func Dial(ctx context.Context, url string, m *metrics.Metrics, logger l.Wrapper) (*Client, error) {
	if logger == nil {
		logger = l.NewNopLoggerWrapper()
	}

	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", url)
	}

	logger = logger.WithFields(l.StringField(l.ClsKey, "transport.Client"), l.StringField("url", url))

	c := &Client{
		logger:   logger,
		pump:     newPump(ws, m, logger),
		sessions: make(map[uint64]defs.Session),
		done:     make(chan struct{}),
	}

	go c.pump.writeRoutine()
	go c.readRoutine()

	return c, nil
}

//
// defs.Backend
//

func (c *Client) Attach(session defs.Session) error {
	if session == nil {
		return commerr.ErrInvalidArgument
	}

	c.mu.Lock()
	if _, ok := c.sessions[session.GetUniqueID()]; ok {
		c.mu.Unlock()

		return commerr.ErrInvalidArgument
	}

	c.sessions[session.GetUniqueID()] = session
	c.mu.Unlock()

	err := c.pump.send(&Frame{
		Kind:      FrameKindAttach,
		SessionID: session.GetUniqueID(),
		UserID:    session.GetUserID(),
	})
	if err != nil {
		c.take(session.GetUniqueID())
	}

	return err
}

func (c *Client) Detach(session defs.Session, graceful bool) error {
	if session == nil {
		return commerr.ErrInvalidArgument
	}

	if c.take(session.GetUniqueID()) == nil {
		return commerr.ErrNotFound
	}

	return c.pump.send(&Frame{
		Kind:      FrameKindDetach,
		SessionID: session.GetUniqueID(),
		Graceful:  graceful,
	})
}

func (c *Client) Submit(session defs.Session, request *defs.Request) error {
	if session == nil || request == nil {
		return commerr.ErrInvalidArgument
	}

	c.mu.Lock()
	_, ok := c.sessions[session.GetUniqueID()]
	c.mu.Unlock()

	if !ok {
		return commerr.ErrNotFound
	}

	return c.pump.send(&Frame{
		Kind:      FrameKindRequest,
		SessionID: session.GetUniqueID(),
		Request:   request,
	})
}

//
//
//

// Close drops the connection. Sessions still attached are removed.
func (c *Client) Close() {
	c.pump.close()
}

func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) take(sessionID uint64) defs.Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	session, ok := c.sessions[sessionID]
	if ok {
		delete(c.sessions, sessionID)
	}

	return session
}

func (c *Client) lookup(sessionID uint64) defs.Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.sessions[sessionID]
}

func (c *Client) readRoutine() {
	defer close(c.done)

	c.pump.readLoop(c.handleFrame)
	c.pump.close()

	c.mu.Lock()
	sessions := c.sessions
	c.sessions = make(map[uint64]defs.Session)
	c.mu.Unlock()

	for _, session := range sessions {
		session.Remove("ConnectionLost")
	}
}

func (c *Client) handleFrame(frame *Frame) {
	switch frame.Kind {
	case FrameKindResult:
		session := c.lookup(frame.SessionID)
		if session == nil || frame.Result == nil {
			c.logger.WithFields(l.UInt64Field("session", frame.SessionID)).Debug("DropResult")

			return
		}

		if err := session.SendResult(frame.Result); err != nil {
			c.logger.WithFields(l.UInt64Field("session", frame.SessionID), l.ErrorField(err)).Error("SendResultFailed")
		}
	case FrameKindEvent:
		session := c.lookup(frame.SessionID)
		if session == nil || frame.Event == nil {
			return
		}

		if err := session.SendEvent(frame.Event); err != nil {
			c.logger.WithFields(l.UInt64Field("session", frame.SessionID), l.ErrorField(err)).Error("SendEventFailed")
		}
	case FrameKindError:
		c.logger.WithFields(l.UInt64Field("session", frame.SessionID), l.StringField("code", codes.Code(frame.Code).String()),
			l.StringField("message", frame.Message)).Warn("ServerError")

		if session := c.take(frame.SessionID); session != nil {
			session.Remove(frame.Message)
		}
	default:
		c.logger.WithFields(l.StringField("kind", string(frame.Kind))).Error("ReceivedUnknownFrame")
	}
}

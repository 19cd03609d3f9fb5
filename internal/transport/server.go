package transport

import (
	"net/http"
	"sync"

	"github.com/godruoyi/go-snowflake"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sbasestarter/rtm-harness/internal/defs"
	"github.com/sbasestarter/rtm-harness/internal/metrics"
	"github.com/sgostarter/i/l"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func gRpcError(c codes.Code, err error) error {
	var errMsg string
	if err != nil {
		errMsg = err.Error()
	}

	return status.Error(c, errMsg)
}

func gRpcMessageError(c codes.Code, msg string) error {
	return status.Error(c, msg)
}

func errorFrame(sessionID uint64, err error) *Frame {
	s := status.Convert(err)

	return &Frame{
		Kind:      FrameKindError,
		SessionID: sessionID,
		Code:      uint32(s.Code()),
		Message:   s.Message(),
	}
}

// Server bridges websocket connections to a backend. Every connection may carry many sessions.
type Server struct {
	backend  defs.Backend
	metrics  *metrics.Metrics
	logger   l.Wrapper
	upgrader websocket.Upgrader

	mu     sync.Mutex
	conns  map[*serverConn]struct{}
	closed bool
}

func NewServer(backend defs.Backend, m *metrics.Metrics, logger l.Wrapper) *Server {
	if logger == nil {
		logger = l.NewNopLoggerWrapper()
	}

	return &Server{
		backend: backend,
		metrics: m,
		logger:  logger.WithFields(l.StringField(l.ClsKey, "transport.Server")),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		conns: make(map[*serverConn]struct{}),
	}
}

// Close drops every connection and refuses new ones. Sessions of dropped connections are detached.
func (s *Server) Close() {
	s.mu.Lock()
	s.closed = true
	conns := s.conns
	s.conns = make(map[*serverConn]struct{})
	s.mu.Unlock()

	for c := range conns {
		c.pump.close()
	}
}

func (s *Server) track(c *serverConn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	s.conns[c] = struct{}{}

	return true
}

func (s *Server) untrack(c *serverConn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.conns, c)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithFields(l.ErrorField(err)).Error("UpgradeFailed")

		return
	}

	connID := uuid.NewString()
	logger := s.logger.WithFields(l.StringField("conn", connID), l.StringField("remote", r.RemoteAddr))

	c := &serverConn{
		server:   s,
		logger:   logger,
		pump:     newPump(ws, s.metrics, logger),
		sessions: make(map[uint64]*remoteSession),
	}

	if !s.track(c) {
		logger.Warn("ServerClosed")

		c.pump.close()

		return
	}

	defer s.untrack(c)

	c.serve()
}

type serverConn struct {
	server *Server
	logger l.Wrapper
	pump   *pump

	mu       sync.Mutex
	sessions map[uint64]*remoteSession
}

func (c *serverConn) serve() {
	c.logger.Debug("enter")
	defer c.logger.Debug("leave")

	go c.pump.writeRoutine()

	c.pump.readLoop(c.handleFrame)
	c.pump.close()

	c.mu.Lock()
	sessions := c.sessions
	c.sessions = make(map[uint64]*remoteSession)
	c.mu.Unlock()

	for _, session := range sessions {
		if err := c.server.backend.Detach(session, false); err != nil {
			c.logger.WithFields(l.UInt64Field("session", session.clientID), l.ErrorField(err)).Error("DetachFailed")
		}
	}
}

func (c *serverConn) session(clientID uint64) *remoteSession {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.sessions[clientID]
}

func (c *serverConn) takeSession(clientID uint64, session *remoteSession) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sessions[clientID] != session {
		return false
	}

	delete(c.sessions, clientID)

	return true
}

func (c *serverConn) sendError(sessionID uint64, err error) {
	if e := c.pump.send(errorFrame(sessionID, err)); e != nil {
		c.logger.WithFields(l.UInt64Field("session", sessionID), l.ErrorField(e)).Error("SendErrorFrameFailed")

		c.pump.close()
	}
}

func (c *serverConn) handleFrame(frame *Frame) {
	switch frame.Kind {
	case FrameKindAttach:
		c.handleAttach(frame)
	case FrameKindDetach:
		session := c.session(frame.SessionID)
		if session == nil || !c.takeSession(frame.SessionID, session) {
			return
		}

		if err := c.server.backend.Detach(session, frame.Graceful); err != nil {
			c.logger.WithFields(l.UInt64Field("session", frame.SessionID), l.ErrorField(err)).Error("DetachFailed")
		}
	case FrameKindRequest:
		c.handleRequest(frame)
	default:
		c.logger.WithFields(l.StringField("kind", string(frame.Kind))).Error("ReceivedUnknownFrame")
	}
}

func (c *serverConn) handleAttach(frame *Frame) {
	session := &remoteSession{
		conn:     c,
		uniqueID: snowflake.ID(),
		clientID: frame.SessionID,
		userID:   frame.UserID,
	}

	c.mu.Lock()
	_, exists := c.sessions[frame.SessionID]
	if !exists {
		c.sessions[frame.SessionID] = session
	}
	c.mu.Unlock()

	if exists {
		c.sendError(frame.SessionID, gRpcMessageError(codes.AlreadyExists, "sessionAlreadyAttached"))

		return
	}

	if err := c.server.backend.Attach(session); err != nil {
		c.takeSession(frame.SessionID, session)

		c.sendError(frame.SessionID, gRpcError(codes.Unavailable, err))

		return
	}

	c.logger.WithFields(l.UInt64Field("session", frame.SessionID), l.UInt64Field("uniqueID", session.uniqueID),
		l.StringField("userID", frame.UserID)).Debug("SessionAttached")
}

func (c *serverConn) handleRequest(frame *Frame) {
	session := c.session(frame.SessionID)
	if session == nil {
		c.sendError(frame.SessionID, gRpcMessageError(codes.NotFound, "sessionNotAttached"))

		return
	}

	if frame.Request == nil {
		c.sendError(frame.SessionID, gRpcMessageError(codes.InvalidArgument, "noRequest"))

		return
	}

	if err := c.server.backend.Submit(session, frame.Request); err != nil {
		c.logger.WithFields(l.UInt64Field("requestID", frame.Request.RequestID), l.ErrorField(err)).Warn("SubmitFailed")

		_ = session.SendResult(defs.NewResult(frame.Request, defs.ErrorCodeOperationRateExceedLimitation))
	}
}

// remoteSession is the engine side of a session living on the other end of a websocket.
type remoteSession struct {
	conn     *serverConn
	uniqueID uint64
	clientID uint64
	userID   string
}

func (s *remoteSession) GetUniqueID() uint64 {
	return s.uniqueID
}

func (s *remoteSession) GetUserID() string {
	return s.userID
}

func (s *remoteSession) SendResult(result *defs.Result) error {
	return s.conn.pump.send(&Frame{
		Kind:      FrameKindResult,
		SessionID: s.clientID,
		Result:    result,
	})
}

func (s *remoteSession) SendEvent(event *defs.Event) error {
	return s.conn.pump.send(&Frame{
		Kind:      FrameKindEvent,
		SessionID: s.clientID,
		Event:     event,
	})
}

func (s *remoteSession) Remove(msg string) {
	if !s.conn.takeSession(s.clientID, s) {
		return
	}

	s.conn.sendError(s.clientID, gRpcMessageError(codes.Aborted, msg))
}

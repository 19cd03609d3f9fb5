package transport

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sbasestarter/rtm-harness/internal/codec"
	"github.com/sbasestarter/rtm-harness/internal/controller"
	"github.com/sbasestarter/rtm-harness/internal/defs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wireSession struct {
	uniqueID uint64
	userID   string
	results  chan *defs.Result
	events   chan *defs.Event
	removed  chan string
}

func newWireSession(uniqueID uint64, userID string) *wireSession {
	return &wireSession{
		uniqueID: uniqueID,
		userID:   userID,
		results:  make(chan *defs.Result, 64),
		events:   make(chan *defs.Event, 64),
		removed:  make(chan string, 1),
	}
}

func (s *wireSession) GetUniqueID() uint64 { return s.uniqueID }
func (s *wireSession) GetUserID() string  { return s.userID }

func (s *wireSession) SendResult(result *defs.Result) error {
	s.results <- result

	return nil
}

func (s *wireSession) SendEvent(event *defs.Event) error {
	s.events <- event

	return nil
}

func (s *wireSession) Remove(msg string) {
	s.removed <- msg
}

func (s *wireSession) result(t *testing.T) *defs.Result {
	select {
	case r := <-s.results:
		return r
	case <-time.After(3 * time.Second):
		require.FailNow(t, "no result")
	}

	return nil
}

func (s *wireSession) event(t *testing.T, kind string) *defs.Event {
	for {
		select {
		case e := <-s.events:
			if e.Kind() == kind {
				return e
			}
		case <-time.After(3 * time.Second):
			require.FailNow(t, "no event", kind)
		}
	}
}

func startHarness(t *testing.T) (*Client, func()) {
	c := controller.NewController(controller.Params{}, nil)
	require.NoError(t, c.LoadErr())

	srv := httptest.NewServer(NewServer(c, nil, nil))

	client, err := Dial(context.Background(), "ws"+strings.TrimPrefix(srv.URL, "http"), nil, nil)
	require.NoError(t, err)

	return client, func() {
		client.Close()
		srv.Close()
		c.Stop()
	}
}

func TestRemoteLoginAndPublish(t *testing.T) {
	client, stop := startHarness(t)
	defer stop()

	alice := newWireSession(1, "alice")
	bob := newWireSession(2, "bob")

	require.NoError(t, client.Attach(alice))
	require.NoError(t, client.Attach(bob))

	for _, s := range []*wireSession{alice, bob} {
		require.NoError(t, client.Submit(s, &defs.Request{Op: defs.OpLogin, RequestID: 1, Token: "token"}))

		r := s.result(t)
		assert.Equal(t, defs.OpLogin, r.Op)
		assert.EqualValues(t, 1, r.RequestID)
		assert.True(t, r.ErrorCode.OK())
	}

	require.NoError(t, client.Submit(bob, &defs.Request{
		Op: defs.OpSubscribe, RequestID: 2, ChannelName: "room",
		SubscribeOptions: &defs.SubscribeOptions{WithMessage: true},
	}))
	assert.True(t, bob.result(t).ErrorCode.OK())

	require.NoError(t, client.Submit(alice, &defs.Request{
		Op: defs.OpPublish, RequestID: 2, ChannelName: "room", Message: []byte("hello"),
		PublishOptions: &defs.PublishOptions{ChannelType: defs.ChannelTypeMessage, MessageType: defs.MessageTypeString},
	}))

	r := alice.result(t)
	assert.EqualValues(t, 2, r.RequestID)
	assert.True(t, r.ErrorCode.OK())

	e := bob.event(t, "message")
	assert.Equal(t, "room", e.Message.ChannelName)
	assert.Equal(t, "alice", e.Message.Publisher)
	assert.Equal(t, []byte("hello"), e.Message.Message)
}

func TestRemoteDuplicateAttach(t *testing.T) {
	client, stop := startHarness(t)
	defer stop()

	s := newWireSession(7, "carol")
	require.NoError(t, client.Attach(s))
	assert.Error(t, client.Attach(s))
}

func TestRemoteSubmitUnattached(t *testing.T) {
	client, stop := startHarness(t)
	defer stop()

	s := newWireSession(9, "dave")
	assert.Error(t, client.Submit(s, &defs.Request{Op: defs.OpLogin, RequestID: 1}))
}

func TestConnectionLostRemovesSessions(t *testing.T) {
	client, stop := startHarness(t)
	defer stop()

	s := newWireSession(3, "erin")
	require.NoError(t, client.Attach(s))

	client.Close()

	select {
	case msg := <-s.removed:
		assert.Equal(t, "ConnectionLost", msg)
	case <-time.After(3 * time.Second):
		require.FailNow(t, "session not removed")
	}

	<-client.Done()
	assert.Error(t, client.Submit(s, &defs.Request{Op: defs.OpLogout, RequestID: 2}))
}

func TestDecodeFrameWithoutKind(t *testing.T) {
	d, err := codec.Marshal(map[string]any{"sessionId": 1})
	require.NoError(t, err)

	_, err = decodeFrame(d)
	assert.Error(t, err)
}

func TestServerCloseDropsConnections(t *testing.T) {
	c := controller.NewController(controller.Params{}, nil)
	require.NoError(t, c.LoadErr())

	defer c.Stop()

	server := NewServer(c, nil, nil)
	srv := httptest.NewServer(server)

	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	client, err := Dial(context.Background(), url, nil, nil)
	require.NoError(t, err)

	defer client.Close()

	s := newWireSession(4, "frank")
	require.NoError(t, client.Attach(s))
	require.NoError(t, client.Submit(s, &defs.Request{Op: defs.OpLogin, RequestID: 1, Token: "token"}))
	assert.True(t, s.result(t).ErrorCode.OK())

	server.Close()

	select {
	case msg := <-s.removed:
		assert.Equal(t, "ConnectionLost", msg)
	case <-time.After(3 * time.Second):
		require.FailNow(t, "session not removed")
	}

	select {
	case <-client.Done():
	case <-time.After(3 * time.Second):
		require.FailNow(t, "client still connected")
	}

	late, err := Dial(context.Background(), url, nil, nil)
	if err == nil {
		select {
		case <-late.Done():
		case <-time.After(3 * time.Second):
			require.FailNow(t, "closed server kept a new connection")
		}
	}
}

func TestEngineStopRemovesRemoteSessions(t *testing.T) {
	c := controller.NewController(controller.Params{}, nil)
	require.NoError(t, c.LoadErr())

	srv := httptest.NewServer(NewServer(c, nil, nil))
	defer srv.Close()

	client, err := Dial(context.Background(), "ws"+strings.TrimPrefix(srv.URL, "http"), nil, nil)
	require.NoError(t, err)

	defer client.Close()

	s := newWireSession(5, "grace")
	require.NoError(t, client.Attach(s))
	require.NoError(t, client.Submit(s, &defs.Request{Op: defs.OpLogin, RequestID: 1, Token: "token"}))
	assert.True(t, s.result(t).ErrorCode.OK())

	c.Stop()
	<-c.Done()

	select {
	case msg := <-s.removed:
		assert.Equal(t, "EngineStopped", msg)
	case <-time.After(3 * time.Second):
		require.FailNow(t, "session not removed")
	}

	assert.Error(t, client.Submit(s, &defs.Request{Op: defs.OpLogout, RequestID: 2}))
}

// Package rtm is a real-time messaging client. Every operation returns its request id at once and
// reports its outcome later through exactly one result callback of the client's EventHandler.
package rtm

import (
	"sync"

	"github.com/godruoyi/go-snowflake"
	"github.com/pkg/errors"
	"github.com/sbasestarter/rtm-harness/internal/correlator"
	"github.com/sbasestarter/rtm-harness/internal/defs"
	"github.com/sbasestarter/rtm-harness/internal/dispatcher"
	"github.com/sbasestarter/rtm-harness/internal/metrics"
	"github.com/sgostarter/i/l"
	"github.com/sgostarter/libeasygo/commerr"
	"go.uber.org/atomic"
	"google.golang.org/protobuf/types/known/structpb"
)

// clientOwner owns the requests issued by the client itself; stream channels get ids above it.
const clientOwner uint64 = 0

// Client is one logged-in identity. It is safe for concurrent use, including from inside its own callbacks.
type Client struct {
	cfg     Config
	handler EventHandler
	logger  l.Wrapper
	metrics *metrics.Metrics
	backend Backend
	session *clientSession

	corr      *correlator.Correlator
	disp      *dispatcher.Dispatcher
	released  *atomic.Bool
	removed   *atomic.Bool
	lastOwner *atomic.Uint64

	mu         sync.Mutex
	streams    map[string]*StreamChannel
	owners     map[uint64]*StreamChannel
	linkStates map[ServiceType]LinkState
	parameters *structpb.Struct

	storage  *Storage
	lock     *Lock
	presence *Presence
	history  *History
}

func NewClient(cfg Config) (*Client, error) {
	cfg.fillDefaults()

	if code := cfg.validate(); !code.OK() {
		return nil, newError("NewClient", code, nil)
	}

	logger := cfg.Logger.WithFields(l.StringField(l.ClsKey, "rtm.Client"), l.StringField("userID", cfg.UserID))

	c := &Client{
		cfg:        cfg,
		handler:    cfg.EventHandler,
		logger:     logger,
		metrics:    cfg.Metrics,
		backend:    cfg.Backend,
		corr:       correlator.New(logger),
		disp:       dispatcher.New(cfg.UserID, logger),
		released:   atomic.NewBool(false),
		removed:    atomic.NewBool(false),
		lastOwner:  atomic.NewUint64(clientOwner),
		streams:    make(map[string]*StreamChannel),
		owners:     make(map[uint64]*StreamChannel),
		linkStates: make(map[ServiceType]LinkState),
	}

	c.session = &clientSession{
		client:   c,
		uniqueID: snowflake.ID(),
	}

	c.storage = &Storage{c: c}
	c.lock = &Lock{c: c}
	c.presence = &Presence{c: c}
	c.history = &History{c: c}

	if err := c.backend.Attach(c.session); err != nil {
		c.disp.Stop()

		return nil, newError("NewClient", ErrorCodeInitServiceFailed, err)
	}

	logger.WithFields(l.UInt64Field("session", c.session.uniqueID)).Debug("ClientCreated")

	return c, nil
}

func (c *Client) UserID() string {
	return c.cfg.UserID
}

func (c *Client) Login(token string) (uint64, error) {
	return c.submit(clientOwner, &defs.Request{
		Op:    defs.OpLogin,
		Token: token,
	})
}

func (c *Client) Logout() (uint64, error) {
	return c.submit(clientOwner, &defs.Request{
		Op: defs.OpLogout,
	})
}

func (c *Client) RenewToken(token string) (uint64, error) {
	return c.submit(clientOwner, &defs.Request{
		Op:    defs.OpRenewToken,
		Token: token,
	})
}

// Publish sends message to a message channel, or to a user when options.ChannelType is ChannelTypeUser.
func (c *Client) Publish(channelName string, message []byte, options *PublishOptions) (uint64, error) {
	return c.submit(clientOwner, &defs.Request{
		Op:             defs.OpPublish,
		ChannelName:    channelName,
		ChannelType:    ChannelTypeMessage,
		Message:        message,
		PublishOptions: options,
	})
}

func (c *Client) Subscribe(channelName string, options *SubscribeOptions) (uint64, error) {
	return c.submit(clientOwner, &defs.Request{
		Op:               defs.OpSubscribe,
		ChannelName:      channelName,
		ChannelType:      ChannelTypeMessage,
		SubscribeOptions: options,
	})
}

func (c *Client) Unsubscribe(channelName string) (uint64, error) {
	return c.submit(clientOwner, &defs.Request{
		Op:          defs.OpUnsubscribe,
		ChannelName: channelName,
		ChannelType: ChannelTypeMessage,
	})
}

// CreateStreamChannel returns the handle of a stream channel. One client holds at most one handle per name.
func (c *Client) CreateStreamChannel(channelName string) (*StreamChannel, error) {
	if c.released.Load() {
		return nil, newError("CreateStreamChannel", ErrorCodeInstanceAlreadyReleased, nil)
	}

	if channelName == "" {
		return nil, newError("CreateStreamChannel", ErrorCodeInvalidChannelName, nil)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.streams[channelName]; ok {
		return nil, newError("CreateStreamChannel", ErrorCodeChannelInReuse, nil)
	}

	stream := &StreamChannel{
		c:        c,
		name:     channelName,
		owner:    c.lastOwner.Inc(),
		released: atomic.NewBool(false),
	}

	c.streams[channelName] = stream
	c.owners[stream.owner] = stream

	return stream, nil
}

func (c *Client) GetStorage() *Storage {
	return c.storage
}

func (c *Client) GetLock() *Lock {
	return c.lock
}

func (c *Client) GetPresence() *Presence {
	return c.presence
}

func (c *Client) GetHistory() *History {
	return c.history
}

// LinkState is the last link state the client was told about for serviceType.
func (c *Client) LinkState(serviceType ServiceType) LinkState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.linkStates[serviceType]
}

// Release detaches the client. No callback starts after Release returns; requests still in flight
// are dropped. It never waits for the dispatcher, so it may be called from a callback. Use Done to wait.
func (c *Client) Release() error {
	if c.released.Swap(true) {
		return newError("Release", ErrorCodeInstanceAlreadyReleased, nil)
	}

	c.mu.Lock()
	for name, stream := range c.streams {
		stream.released.Store(true)

		delete(c.streams, name)
		delete(c.owners, stream.owner)
	}
	c.mu.Unlock()

	for n := c.corr.AbandonAll(); n > 0; n-- {
		c.metrics.CallbackSuppressed()
	}

	c.disp.Stop()

	if !c.removed.Load() {
		if err := c.backend.Detach(c.session, true); err != nil {
			c.logger.WithFields(l.ErrorField(err)).Warn("DetachFailed")
		}
	}

	c.logger.Debug("ClientReleased")

	return nil
}

// Done is closed once the client is released and its last callback has returned.
func (c *Client) Done() <-chan struct{} {
	return c.disp.Done()
}

//
//
//

func (c *Client) submit(owner uint64, request *defs.Request) (uint64, error) {
	op := request.Op.String()

	if c.released.Load() {
		return 0, newError(op, ErrorCodeInstanceAlreadyReleased, nil)
	}

	if c.removed.Load() {
		return 0, newError(op, ErrorCodeNotConnected, nil)
	}

	requestID, err := c.corr.SubmitRequest(request, owner, func(request *defs.Request) error {
		return c.backend.Submit(c.session, request)
	})
	if err != nil {
		code := ErrorCodeNotConnected
		if errors.Is(err, commerr.ErrAborted) {
			code = ErrorCodeOperationRateExceedLimitation
		}

		return 0, newError(op, code, err)
	}

	return requestID, nil
}

func (c *Client) deliverable(owner uint64) bool {
	if c.released.Load() {
		return false
	}

	if owner == clientOwner {
		return true
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.owners[owner]

	return ok
}

// post queues f on the dispatcher. f is skipped if its owner is released by the time it would run.
func (c *Client) post(owner uint64, f func()) {
	posted := c.disp.Post(func() {
		if !c.deliverable(owner) {
			c.metrics.CallbackSuppressed()

			return
		}

		f()
	})
	if !posted {
		c.metrics.CallbackSuppressed()
	}
}

func (c *Client) onResult(result *defs.Result) {
	p, ok := c.corr.Complete(result.RequestID)
	if !ok {
		return
	}

	if result.Op != p.Op {
		c.logger.WithFields(l.UInt64Field("requestID", result.RequestID), l.StringField("op", p.Op.String()),
			l.StringField("got", result.Op.String())).Warn("ResultOpMismatch")

		routed := *result
		routed.Op = p.Op
		result = &routed
	}

	c.post(p.Owner, func() {
		c.routeResult(result)
	})
}

func (c *Client) onEvent(event *defs.Event) {
	if event.LinkState != nil {
		c.mu.Lock()
		c.linkStates[event.LinkState.ServiceType] = event.LinkState.CurrentState
		c.mu.Unlock()
	}

	c.post(clientOwner, func() {
		c.routeEvent(event)
	})
}

// onRemoved fails everything in flight with ErrorCodeNotConnected. The client stays usable only for Release.
func (c *Client) onRemoved(msg string) {
	if c.removed.Swap(true) {
		return
	}

	c.logger.WithFields(l.StringField("msg", msg)).Warn("SessionRemoved")

	for _, p := range c.corr.TakeAll() {
		result := &defs.Result{Op: p.Op, RequestID: p.ID, ErrorCode: ErrorCodeNotConnected}
		if p.Request != nil {
			result = defs.NewResult(p.Request, ErrorCodeNotConnected)
		}

		c.post(p.Owner, func() {
			c.routeResult(result)
		})
	}

	c.mu.Lock()
	previous := c.linkStates[ServiceTypeMessage]
	c.linkStates[ServiceTypeMessage] = LinkStateDisconnected
	c.mu.Unlock()

	if previous == LinkStateIdle || previous == LinkStateDisconnected {
		return
	}

	c.post(clientOwner, func() {
		c.handler.OnLinkStateEvent(&LinkStateEvent{
			CurrentState:  LinkStateDisconnected,
			PreviousState: previous,
			ServiceType:   ServiceTypeMessage,
			Operation:     LinkOperationNetworkChange,
			ReasonCode:    ErrorCodeNotConnected,
			Reason:        msg,
		})
	})
}

func (c *Client) userOf(result *defs.Result) string {
	if result.UserID != "" {
		return result.UserID
	}

	return c.cfg.UserID
}

func (c *Client) routeEvent(event *defs.Event) {
	h := c.handler

	switch {
	case event.Message != nil:
		h.OnMessageEvent(event.Message)
	case event.Presence != nil:
		h.OnPresenceEvent(event.Presence)
	case event.Topic != nil:
		h.OnTopicEvent(event.Topic)
	case event.Lock != nil:
		h.OnLockEvent(event.Lock)
	case event.Storage != nil:
		h.OnStorageEvent(event.Storage)
	case event.LinkState != nil:
		h.OnLinkStateEvent(event.LinkState)
	case event.ConnectionState != nil:
		h.OnConnectionStateChanged(event.ConnectionState.ChannelName, event.ConnectionState.State,
			event.ConnectionState.Reason)
	case event.TokenWillExpire != nil:
		h.OnTokenPrivilegeWillExpire(event.TokenWillExpire.ChannelName)
	default:
		c.logger.WithFields(l.StringField("kind", event.Kind())).Warn("UnknownEvent")
	}
}

// nolint: funlen, gocyclo
func (c *Client) routeResult(r *defs.Result) {
	h := c.handler
	id, code := r.RequestID, r.ErrorCode

	switch r.Op {
	case defs.OpLogin:
		h.OnLoginResult(id, code)
	case defs.OpLogout:
		h.OnLogoutResult(id, code)
	case defs.OpRenewToken:
		h.OnRenewTokenResult(id, ServiceTypeMessage, r.ChannelName, code)
	case defs.OpRenewStreamToken:
		h.OnRenewTokenResult(id, ServiceTypeStream, r.ChannelName, code)
	case defs.OpPublish:
		h.OnPublishResult(id, code)
	case defs.OpSubscribe:
		h.OnSubscribeResult(id, r.ChannelName, code)
	case defs.OpUnsubscribe:
		h.OnUnsubscribeResult(id, r.ChannelName, code)

	case defs.OpJoin:
		h.OnJoinResult(id, r.ChannelName, c.userOf(r), code)
	case defs.OpLeave:
		h.OnLeaveResult(id, r.ChannelName, c.userOf(r), code)
	case defs.OpJoinTopic:
		h.OnJoinTopicResult(id, r.ChannelName, c.userOf(r), r.Topic, r.Meta, code)
	case defs.OpLeaveTopic:
		h.OnLeaveTopicResult(id, r.ChannelName, c.userOf(r), r.Topic, r.Meta, code)
	case defs.OpPublishTopicMessage:
		h.OnPublishTopicMessageResult(id, r.ChannelName, r.Topic, code)
	case defs.OpSubscribeTopic:
		h.OnSubscribeTopicResult(id, r.ChannelName, c.userOf(r), r.Topic, r.SucceedUsers, r.FailedUsers, code)
	case defs.OpUnsubscribeTopic:
		h.OnUnsubscribeTopicResult(id, r.ChannelName, r.Topic, code)
	case defs.OpGetSubscribedUserList:
		h.OnGetSubscribedUserListResult(id, r.ChannelName, r.Topic, r.Users, code)

	case defs.OpSetChannelMetadata:
		h.OnSetChannelMetadataResult(id, r.ChannelName, r.ChannelType, code)
	case defs.OpUpdateChannelMetadata:
		h.OnUpdateChannelMetadataResult(id, r.ChannelName, r.ChannelType, code)
	case defs.OpRemoveChannelMetadata:
		h.OnRemoveChannelMetadataResult(id, r.ChannelName, r.ChannelType, code)
	case defs.OpGetChannelMetadata:
		h.OnGetChannelMetadataResult(id, r.ChannelName, r.ChannelType, r.Metadata, code)
	case defs.OpSetUserMetadata:
		h.OnSetUserMetadataResult(id, c.userOf(r), code)
	case defs.OpUpdateUserMetadata:
		h.OnUpdateUserMetadataResult(id, c.userOf(r), code)
	case defs.OpRemoveUserMetadata:
		h.OnRemoveUserMetadataResult(id, c.userOf(r), code)
	case defs.OpGetUserMetadata:
		h.OnGetUserMetadataResult(id, c.userOf(r), r.Metadata, code)
	case defs.OpSubscribeUserMetadata:
		h.OnSubscribeUserMetadataResult(id, r.UserID, code)
	case defs.OpUnsubscribeUserMetadata:
		h.OnUnsubscribeUserMetadataResult(id, r.UserID, code)

	case defs.OpSetLock:
		h.OnSetLockResult(id, r.ChannelName, r.ChannelType, r.LockName, code)
	case defs.OpRemoveLock:
		h.OnRemoveLockResult(id, r.ChannelName, r.ChannelType, r.LockName, code)
	case defs.OpAcquireLock:
		h.OnAcquireLockResult(id, r.ChannelName, r.ChannelType, r.LockName, code, r.ErrorDetails)
	case defs.OpReleaseLock:
		h.OnReleaseLockResult(id, r.ChannelName, r.ChannelType, r.LockName, code)
	case defs.OpRevokeLock:
		h.OnRevokeLockResult(id, r.ChannelName, r.ChannelType, r.LockName, code)
	case defs.OpGetLocks:
		h.OnGetLocksResult(id, r.ChannelName, r.ChannelType, r.Locks, code)

	case defs.OpWhoNow:
		h.OnWhoNowResult(id, r.UserStates, r.NextPage, code)
	case defs.OpGetOnlineUsers:
		h.OnGetOnlineUsersResult(id, r.UserStates, r.NextPage, code)
	case defs.OpWhereNow:
		h.OnWhereNowResult(id, r.Channels, code)
	case defs.OpGetUserChannels:
		h.OnGetUserChannelsResult(id, r.Channels, code)
	case defs.OpSetState:
		h.OnPresenceSetStateResult(id, code)
	case defs.OpRemoveState:
		h.OnPresenceRemoveStateResult(id, code)
	case defs.OpGetState:
		h.OnPresenceGetStateResult(id, r.State, code)

	case defs.OpGetHistoryMessages:
		h.OnGetHistoryMessagesResult(id, r.Messages, r.NewStart, code)
	default:
		c.logger.WithFields(l.UInt64Field("requestID", id), l.StringField("op", r.Op.String())).Warn("UnknownResult")
	}
}

// clientSession is the client as the backend sees it.
type clientSession struct {
	client   *Client
	uniqueID uint64
}

func (s *clientSession) GetUniqueID() uint64 {
	return s.uniqueID
}

func (s *clientSession) GetUserID() string {
	return s.client.cfg.UserID
}

func (s *clientSession) SendResult(result *defs.Result) error {
	if result == nil {
		return commerr.ErrInvalidArgument
	}

	s.client.onResult(result)

	return nil
}

func (s *clientSession) SendEvent(event *defs.Event) error {
	if event == nil {
		return commerr.ErrInvalidArgument
	}

	s.client.onEvent(event)

	return nil
}

func (s *clientSession) Remove(msg string) {
	s.client.onRemoved(msg)
}

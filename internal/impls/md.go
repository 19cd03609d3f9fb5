package impls

import (
	"context"
	"sort"
	"time"

	"github.com/sbasestarter/rtm-harness/internal/clock"
	"github.com/sbasestarter/rtm-harness/internal/defs"
	"github.com/sbasestarter/rtm-harness/internal/fixture"
	"github.com/sbasestarter/rtm-harness/internal/metrics"
	"github.com/sbasestarter/rtm-harness/internal/user"
	"github.com/sgostarter/i/l"
)

type MainRoutineRunner interface {
	Post(func())
}

const (
	DefaultLockRetryTimeout     = 10 * time.Second
	DefaultTokenWillExpireAhead = 30 * time.Second
	DefaultMaxMessageSize       = 32 * 1024

	maxCustomTypeLength    = 32
	maxTopicNameLength     = 128
	maxTopicMetaLength     = 256
	maxTopicsPerMember     = 8
	maxTopicUsers          = 64
	maxMetadataKeyLength   = 64
	maxMetadataValueLength = 8 * 1024
	maxStateItems          = 32
	presencePageSize       = 100
	defaultLockTTL         = 10
)

type Options struct {
	LockRetryTimeout     time.Duration
	TokenWillExpireAhead time.Duration
	MaxMessageSize       int
}

type MDParams struct {
	Runner      MainRoutineRunner
	MDI         defs.MDI
	Model       defs.Model
	TokenCenter user.Center
	Clock       clock.Clock
	Options     Options
	Fixture     *fixture.Fixture
	Metrics     *metrics.Metrics
}

type MD interface {
	defs.MD
	defs.Observer
}

func NewMD(params MDParams, logger l.Wrapper) MD {
	if logger == nil {
		logger = l.NewNopLoggerWrapper()
	}

	if params.Clock == nil {
		params.Clock = clock.Real{}
	}

	if params.TokenCenter == nil {
		params.TokenCenter = user.NewTokenCenter("", "", 0, params.Clock)
	}

	if params.Options.LockRetryTimeout <= 0 {
		params.Options.LockRetryTimeout = DefaultLockRetryTimeout
	}

	if params.Options.TokenWillExpireAhead <= 0 {
		params.Options.TokenWillExpireAhead = DefaultTokenWillExpireAhead
	}

	if params.Options.MaxMessageSize <= 0 {
		params.Options.MaxMessageSize = DefaultMaxMessageSize
	}

	impl := &mdImpl{
		mrRunner:    params.Runner,
		mdi:         params.MDI,
		m:           NewModelEx(params.Model),
		tokenCenter: params.TokenCenter,
		clk:         params.Clock,
		opts:        params.Options,
		seed:        params.Fixture,
		metrics:     params.Metrics,
		logger:      logger.WithFields(l.StringField(l.ClsKey, "mdImpl")),

		sessions:     make(map[uint64]*sessionData),
		users:        make(map[string]map[uint64]*sessionData),
		channels:     make(map[defs.ChannelInfo]*channelData),
		userMetaSubs: make(map[string]map[uint64]*sessionData),
		tracks:       make(map[string]int),
	}

	impl.handlers = map[defs.Op]requestHandler{
		defs.OpLogin:      impl.handleLogin,
		defs.OpLogout:     impl.handleLogout,
		defs.OpRenewToken: impl.handleRenewToken,

		defs.OpPublish:     impl.handlePublish,
		defs.OpSubscribe:   impl.handleSubscribe,
		defs.OpUnsubscribe: impl.handleUnsubscribe,

		defs.OpJoin:                  impl.handleJoin,
		defs.OpLeave:                 impl.handleLeave,
		defs.OpRenewStreamToken:      impl.handleRenewStreamToken,
		defs.OpJoinTopic:             impl.handleJoinTopic,
		defs.OpPublishTopicMessage:   impl.handlePublishTopicMessage,
		defs.OpLeaveTopic:            impl.handleLeaveTopic,
		defs.OpSubscribeTopic:        impl.handleSubscribeTopic,
		defs.OpUnsubscribeTopic:      impl.handleUnsubscribeTopic,
		defs.OpGetSubscribedUserList: impl.handleGetSubscribedUserList,

		defs.OpSetChannelMetadata:      impl.handleWriteMetadata,
		defs.OpUpdateChannelMetadata:   impl.handleWriteMetadata,
		defs.OpRemoveChannelMetadata:   impl.handleWriteMetadata,
		defs.OpGetChannelMetadata:      impl.handleGetMetadata,
		defs.OpSetUserMetadata:         impl.handleWriteMetadata,
		defs.OpUpdateUserMetadata:      impl.handleWriteMetadata,
		defs.OpRemoveUserMetadata:      impl.handleWriteMetadata,
		defs.OpGetUserMetadata:         impl.handleGetMetadata,
		defs.OpSubscribeUserMetadata:   impl.handleSubscribeUserMetadata,
		defs.OpUnsubscribeUserMetadata: impl.handleUnsubscribeUserMetadata,

		defs.OpSetLock:     impl.handleSetLock,
		defs.OpGetLocks:    impl.handleGetLocks,
		defs.OpRemoveLock:  impl.handleRemoveLock,
		defs.OpAcquireLock: impl.handleAcquireLock,
		defs.OpReleaseLock: impl.handleReleaseLock,
		defs.OpRevokeLock:  impl.handleRevokeLock,

		defs.OpWhoNow:          impl.handleWhoNow,
		defs.OpGetOnlineUsers:  impl.handleWhoNow,
		defs.OpWhereNow:        impl.handleWhereNow,
		defs.OpGetUserChannels: impl.handleWhereNow,
		defs.OpSetState:        impl.handleSetState,
		defs.OpRemoveState:     impl.handleRemoveState,
		defs.OpGetState:        impl.handleGetState,

		defs.OpGetHistoryMessages: impl.handleGetHistoryMessages,
	}

	impl.mdi.SetObserver(impl)

	return impl
}

type requestHandler func(ctx context.Context, sd *sessionData, request *defs.Request)

type topicSubscription struct {
	all   bool
	users map[string]bool
}

type streamMembership struct {
	options       defs.JoinChannelOptions
	topics        map[string]defs.JoinTopicOptions
	subscriptions map[string]*topicSubscription
	token         tokenTimers
}

type tokenTimers struct {
	gen        uint64
	willExpire clock.Timer
	expire     clock.Timer
	onExpire   func(gen uint64)
}

func (t *tokenTimers) stop() {
	t.gen++

	if t.willExpire != nil {
		t.willExpire.Stop()
		t.willExpire = nil
	}

	if t.expire != nil {
		t.expire.Stop()
		t.expire = nil
	}
}

type sessionData struct {
	session  defs.Session
	uniqueID uint64
	userID   string

	loggedIn  bool
	linkState defs.LinkState
	token     tokenTimers

	subscribed   map[string]defs.SubscribeOptions
	joined       map[string]*streamMembership
	userMetaSubs map[string]bool

	broken   bool
	detached bool
}

type lockWaiter struct {
	sd      *sessionData
	request *defs.Request
	timer   clock.Timer
}

type lockData struct {
	detail      defs.LockDetail
	expireGen   uint64
	expireTimer clock.Timer
	waiters     []*lockWaiter
}

type channelData struct {
	info    defs.ChannelInfo
	members map[uint64]*sessionData
	states  map[string][]defs.StateItem
	locks   map[string]*lockData
}

type mdImpl struct {
	mrRunner    MainRoutineRunner
	mdi         defs.MDI
	m           ModelEx
	tokenCenter user.Center
	clk         clock.Clock
	opts        Options
	seed        *fixture.Fixture
	metrics     *metrics.Metrics
	logger      l.Wrapper

	handlers map[defs.Op]requestHandler

	sessions     map[uint64]*sessionData
	users        map[string]map[uint64]*sessionData // userID - uniqueID - logged in session
	channels     map[defs.ChannelInfo]*channelData
	userMetaSubs map[string]map[uint64]*sessionData // userID - uniqueID - subscriber
	tracks       map[string]int
}

//
// defs.Observer
//

func (impl *mdImpl) OnEvent(target defs.Target, excludeUniqueID uint64, event *defs.Event) {
	impl.mrRunner.Post(func() {
		impl.deliverEvent(target, excludeUniqueID, event)
	})
}

//
// defs.MD
//

func (impl *mdImpl) Load(ctx context.Context) (err error) {
	if err = impl.mdi.Load(ctx); err != nil {
		impl.logger.WithFields(l.ErrorField(err)).Error("MDILoadFailed")

		return
	}

	if impl.seed == nil {
		return
	}

	ts := impl.clk.Now().UnixMilli()

	for _, seedChannel := range impl.seed.Channels {
		channelType, _ := fixture.ParseChannelType(seedChannel.Type)
		info := defs.ChannelInfo{ChannelName: seedChannel.Name, ChannelType: channelType}

		if metadata := fixture.MetadataOf(seedChannel.Metadata, ts); metadata != nil {
			if err = impl.m.PutMetadata(ctx, defs.ChannelTarget(info.ChannelName, info.ChannelType), metadata); err != nil {
				impl.logger.WithFields(l.StringField("channel", info.ChannelName), l.ErrorField(err)).Error("SeedMetadataFailed")

				return
			}
		}

		if len(seedChannel.Locks) == 0 {
			continue
		}

		ch := impl.channel(info)

		for _, seedLock := range seedChannel.Locks {
			lock := &lockData{
				detail: defs.LockDetail{
					LockName: seedLock.Name,
					Owner:    seedLock.Owner,
					TTL:      seedLock.TTL,
				},
			}
			ch.locks[seedLock.Name] = lock

			if lock.detail.Owner != "" {
				impl.armLockExpiry(ch, lock)
			}
		}
	}

	for _, seedUser := range impl.seed.Users {
		if metadata := fixture.MetadataOf(seedUser.Metadata, ts); metadata != nil {
			if err = impl.m.PutMetadata(ctx, defs.UserTarget(seedUser.UserID), metadata); err != nil {
				impl.logger.WithFields(l.StringField("userID", seedUser.UserID), l.ErrorField(err)).Error("SeedMetadataFailed")

				return
			}
		}
	}

	impl.logger.WithFields(l.UInt64Field("channels", uint64(len(impl.seed.Channels))),
		l.UInt64Field("users", uint64(len(impl.seed.Users)))).Info("FixtureLoaded")

	return
}

func (impl *mdImpl) AttachSession(_ context.Context, session defs.Session) {
	if session == nil {
		return
	}

	if _, ok := impl.sessions[session.GetUniqueID()]; ok {
		impl.logger.WithFields(l.UInt64Field("uniqueID", session.GetUniqueID())).Warn("SessionExists")

		return
	}

	impl.sessions[session.GetUniqueID()] = &sessionData{
		session:      session,
		uniqueID:     session.GetUniqueID(),
		userID:       session.GetUserID(),
		subscribed:   make(map[string]defs.SubscribeOptions),
		joined:       make(map[string]*streamMembership),
		userMetaSubs: make(map[string]bool),
	}

	impl.metrics.SessionAttached()
}

func (impl *mdImpl) DetachSession(ctx context.Context, session defs.Session, graceful bool) {
	if session == nil {
		return
	}

	sd, ok := impl.sessions[session.GetUniqueID()]
	if !ok {
		return
	}

	sd.detached = true

	if sd.loggedIn {
		impl.logoutSession(ctx, sd, graceful)
	}

	delete(impl.sessions, sd.uniqueID)

	impl.metrics.SessionDetached()
}

func (impl *mdImpl) Shutdown(ctx context.Context, msg string) {
	for _, sd := range impl.sessions {
		session, broken := sd.session, sd.broken

		impl.DetachSession(ctx, session, false)

		if !broken {
			session.Remove(msg)
		}
	}

	impl.logger.WithFields(l.StringField("msg", msg)).Info("MDShutdown")
}

func (impl *mdImpl) HandleRequest(ctx context.Context, session defs.Session, request *defs.Request) {
	if session == nil || request == nil {
		impl.logger.Error("NilSessionOrRequest")

		return
	}

	logger := impl.logger.WithFields(l.StringField("op", request.Op.String()),
		l.UInt64Field("requestID", request.RequestID), l.UInt64Field("uniqueID", session.GetUniqueID()))

	sd, ok := impl.sessions[session.GetUniqueID()]
	if !ok {
		logger.Warn("SessionNotAttached")

		_ = session.SendResult(defs.NewResult(request, defs.ErrorCodeNotInitialized))

		return
	}

	handler, ok := impl.handlers[request.Op]
	if !ok {
		logger.Warn("UnknownOp")

		impl.reply(sd, request, defs.ErrorCodeServiceNotSupported)

		return
	}

	if request.Op != defs.OpLogin && !sd.loggedIn {
		impl.reply(sd, request, defs.ErrorCodeNotLogin)

		return
	}

	logger.Debug("HandleRequest")

	handler(ctx, sd, request)
}

//
// delivery
//

func (impl *mdImpl) now() uint64 {
	return clock.UnixMilli(impl.clk)
}

func (impl *mdImpl) reply(sd *sessionData, request *defs.Request, code defs.ErrorCode) {
	impl.replyResult(sd, defs.NewResult(request, code))
}

func (impl *mdImpl) replyResult(sd *sessionData, result *defs.Result) {
	impl.metrics.RequestCompleted(result.Op.String(), int(result.ErrorCode))

	if sd.detached || sd.broken {
		return
	}

	if err := sd.session.SendResult(result); err != nil {
		impl.sendFailed(sd, err)
	}
}

func (impl *mdImpl) sendEvent(sd *sessionData, event *defs.Event) {
	if sd.detached || sd.broken {
		return
	}

	impl.metrics.EventDelivered(event.Kind())

	if err := sd.session.SendEvent(event); err != nil {
		impl.sendFailed(sd, err)
	}
}

func (impl *mdImpl) sendFailed(sd *sessionData, err error) {
	impl.logger.WithFields(l.UInt64Field("uniqueID", sd.uniqueID), l.ErrorField(err)).Warn("SendFailed")

	sd.broken = true
	sd.session.Remove("SendFailed")

	session := sd.session

	impl.mrRunner.Post(func() {
		impl.DetachSession(context.TODO(), session, false)
	})
}

// publishEvent serves local sessions first, then hands the event to the MDI for other instances.
func (impl *mdImpl) publishEvent(target defs.Target, excludeUniqueID uint64, event *defs.Event) {
	impl.deliverEvent(target, excludeUniqueID, event)
	impl.mdi.SendEvent(target, excludeUniqueID, event)
}

func (impl *mdImpl) deliverEvent(target defs.Target, excludeUniqueID uint64, event *defs.Event) {
	for _, sd := range impl.eventReceivers(target, event) {
		if sd.uniqueID == excludeUniqueID {
			continue
		}

		impl.sendEvent(sd, event)
	}
}

func (impl *mdImpl) eventReceivers(target defs.Target, event *defs.Event) []*sessionData {
	if target.IsUser() {
		return sortedSessions(impl.users[target.UserID], nil)
	}

	if target.ChannelType == defs.ChannelTypeUser {
		return sortedSessions(impl.userMetaSubs[target.ChannelName], nil)
	}

	ch, ok := impl.channels[defs.ChannelInfo{ChannelName: target.ChannelName, ChannelType: target.ChannelType}]
	if !ok {
		return nil
	}

	return sortedSessions(ch.members, func(sd *sessionData) bool {
		return impl.accepts(sd, ch.info, event)
	})
}

func (impl *mdImpl) accepts(sd *sessionData, info defs.ChannelInfo, event *defs.Event) bool {
	if info.ChannelType == defs.ChannelTypeStream {
		membership, ok := sd.joined[info.ChannelName]
		if !ok {
			return false
		}

		switch {
		case event.Message != nil:
			sub, ok := membership.subscriptions[event.Message.ChannelTopic]

			return ok && (sub.all || sub.users[event.Message.Publisher])
		case event.Presence != nil:
			return membership.options.WithPresence
		case event.Lock != nil:
			return membership.options.WithLock
		case event.Storage != nil:
			return membership.options.WithMetadata
		}

		return true
	}

	options, ok := sd.subscribed[info.ChannelName]
	if !ok {
		return false
	}

	switch {
	case event.Message != nil:
		return options.WithMessage
	case event.Presence != nil:
		return options.WithPresence
	case event.Lock != nil:
		return options.WithLock
	case event.Storage != nil:
		return options.WithMetadata
	}

	return true
}

func sortedSessions(sessions map[uint64]*sessionData, filter func(*sessionData) bool) []*sessionData {
	ret := make([]*sessionData, 0, len(sessions))

	for _, sd := range sessions {
		if filter == nil || filter(sd) {
			ret = append(ret, sd)
		}
	}

	sort.Slice(ret, func(i, j int) bool {
		return ret[i].uniqueID < ret[j].uniqueID
	})

	return ret
}

func (impl *mdImpl) track(target defs.Target) {
	key := target.Key()

	impl.tracks[key]++
	if impl.tracks[key] > 1 {
		return
	}

	if err := impl.mdi.AddTrack(context.TODO(), target); err != nil {
		impl.logger.WithFields(l.StringField("target", key), l.ErrorField(err)).Error("AddTrackFailed")
	}
}

func (impl *mdImpl) untrack(target defs.Target) {
	key := target.Key()

	if impl.tracks[key] == 0 {
		return
	}

	impl.tracks[key]--
	if impl.tracks[key] > 0 {
		return
	}

	delete(impl.tracks, key)

	impl.mdi.RemoveTrack(context.TODO(), target)
}

//
// channels
//

func (impl *mdImpl) channel(info defs.ChannelInfo) *channelData {
	ch, ok := impl.channels[info]
	if !ok {
		ch = &channelData{
			info:    info,
			members: make(map[uint64]*sessionData),
			states:  make(map[string][]defs.StateItem),
			locks:   make(map[string]*lockData),
		}
		impl.channels[info] = ch
	}

	return ch
}

func (impl *mdImpl) gcChannel(ch *channelData) {
	if len(ch.members) == 0 && len(ch.locks) == 0 {
		delete(impl.channels, ch.info)
	}
}

func channelInfoOf(request *defs.Request) (info defs.ChannelInfo, code defs.ErrorCode) {
	info = defs.ChannelInfo{ChannelName: request.ChannelName, ChannelType: request.ChannelType}

	if info.ChannelName == "" {
		code = defs.ErrorCodeInvalidChannelName

		return
	}

	if info.ChannelType != defs.ChannelTypeMessage && info.ChannelType != defs.ChannelTypeStream {
		code = defs.ErrorCodeInvalidChannelType
	}

	return
}

func (ch *channelData) hasUser(userID string) bool {
	for _, sd := range ch.members {
		if sd.userID == userID {
			return true
		}
	}

	return false
}

func (ch *channelData) presentUsers() []string {
	seen := make(map[string]bool)

	users := make([]string, 0, len(ch.members))

	for _, sd := range ch.members {
		if !seen[sd.userID] {
			seen[sd.userID] = true

			users = append(users, sd.userID)
		}
	}

	sort.Strings(users)

	return users
}

func (ch *channelData) userStates(includeState bool) []defs.UserState {
	users := ch.presentUsers()

	ret := make([]defs.UserState, 0, len(users))

	for _, userID := range users {
		state := defs.UserState{UserID: userID}
		if includeState {
			state.States = append([]defs.StateItem(nil), ch.states[userID]...)
		}

		ret = append(ret, state)
	}

	return ret
}

func (ch *channelData) lockList() []defs.LockDetail {
	ret := make([]defs.LockDetail, 0, len(ch.locks))

	for _, lock := range ch.locks {
		ret = append(ret, lock.detail)
	}

	sort.Slice(ret, func(i, j int) bool {
		return ret[i].LockName < ret[j].LockName
	})

	return ret
}

// joinChannel adds sd to the member set and announces the user when it is new to the channel.
func (impl *mdImpl) joinChannel(sd *sessionData, ch *channelData, beQuiet bool) {
	newUser := !ch.hasUser(sd.userID)

	if len(ch.members) == 0 {
		impl.track(defs.ChannelTarget(ch.info.ChannelName, ch.info.ChannelType))
	}

	ch.members[sd.uniqueID] = sd

	if newUser && !beQuiet {
		impl.publishEvent(defs.ChannelTarget(ch.info.ChannelName, ch.info.ChannelType), sd.uniqueID, &defs.Event{
			Presence: &defs.PresenceEvent{
				Type:        defs.PresenceEventTypeRemoteJoinChannel,
				ChannelType: ch.info.ChannelType,
				ChannelName: ch.info.ChannelName,
				Publisher:   sd.userID,
				Timestamp:   impl.now(),
			},
		})
	}
}

// leaveChannel removes sd from the member set. When the user has no other session in the
// channel, its states are dropped and the others see it leave.
func (impl *mdImpl) leaveChannel(sd *sessionData, ch *channelData, graceful bool) {
	if _, ok := ch.members[sd.uniqueID]; !ok {
		return
	}

	delete(ch.members, sd.uniqueID)

	target := defs.ChannelTarget(ch.info.ChannelName, ch.info.ChannelType)

	if !ch.hasUser(sd.userID) {
		delete(ch.states, sd.userID)

		eventType := defs.PresenceEventTypeRemoteLeaveChannel
		if !graceful {
			eventType = defs.PresenceEventTypeRemoteTimeout
		}

		impl.publishEvent(target, sd.uniqueID, &defs.Event{
			Presence: &defs.PresenceEvent{
				Type:        eventType,
				ChannelType: ch.info.ChannelType,
				ChannelName: ch.info.ChannelName,
				Publisher:   sd.userID,
				Timestamp:   impl.now(),
			},
		})
	}

	if len(ch.members) == 0 {
		impl.untrack(target)
	}

	impl.gcChannel(ch)
}

func (impl *mdImpl) sendSnapshots(ctx context.Context, sd *sessionData, ch *channelData,
	withPresence, withLock, withMetadata bool) {
	if withPresence {
		impl.sendEvent(sd, &defs.Event{
			Presence: &defs.PresenceEvent{
				Type:        defs.PresenceEventTypeSnapshot,
				ChannelType: ch.info.ChannelType,
				ChannelName: ch.info.ChannelName,
				Snapshot: &defs.SnapshotInfo{
					UserStateList: ch.userStates(true),
				},
				Timestamp: impl.now(),
			},
		})
	}

	if withLock {
		impl.sendEvent(sd, &defs.Event{
			Lock: &defs.LockEvent{
				ChannelType:    ch.info.ChannelType,
				EventType:      defs.LockEventTypeSnapshot,
				ChannelName:    ch.info.ChannelName,
				LockDetailList: ch.lockList(),
				Timestamp:      impl.now(),
			},
		})
	}

	if withMetadata {
		metadata, err := impl.m.GetMetadata(ctx, defs.ChannelTarget(ch.info.ChannelName, ch.info.ChannelType))
		if err != nil {
			impl.logger.WithFields(l.StringField("channel", ch.info.ChannelName), l.ErrorField(err)).Error("GetMetadataFailed")

			return
		}

		impl.sendEvent(sd, &defs.Event{
			Storage: &defs.StorageEvent{
				ChannelType: ch.info.ChannelType,
				StorageType: defs.StorageTypeChannel,
				EventType:   defs.StorageEventTypeSnapshot,
				Target:      ch.info.ChannelName,
				Data:        metadata.Clone(),
				Timestamp:   impl.now(),
			},
		})
	}
}

package controller

import (
	"testing"
	"time"

	"github.com/sbasestarter/rtm-harness/internal/clock"
	"github.com/sbasestarter/rtm-harness/internal/defs"
	"github.com/sbasestarter/rtm-harness/internal/fixture"
	"github.com/sbasestarter/rtm-harness/internal/impls"
	"github.com/sbasestarter/rtm-harness/internal/user"
	"github.com/sgostarter/libeasygo/commerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitTimeout = 3 * time.Second

type testSession struct {
	id      uint64
	userID  string
	nextID  uint64
	results chan *defs.Result
	events  chan *defs.Event
	removed chan string
}

func newTestSession(id uint64, userID string) *testSession {
	return &testSession{
		id:      id,
		userID:  userID,
		results: make(chan *defs.Result, 1024),
		events:  make(chan *defs.Event, 1024),
		removed: make(chan string, 1),
	}
}

func (s *testSession) GetUniqueID() uint64 {
	return s.id
}

func (s *testSession) GetUserID() string {
	return s.userID
}

func (s *testSession) SendResult(result *defs.Result) error {
	s.results <- result

	return nil
}

func (s *testSession) SendEvent(event *defs.Event) error {
	s.events <- event

	return nil
}

func (s *testSession) Remove(msg string) {
	select {
	case s.removed <- msg:
	default:
	}
}

type testEngine struct {
	t   *testing.T
	c   *Controller
	clk *clock.Manual
}

func newTestEngine(t *testing.T, params Params) *testEngine {
	clk := clock.NewManual(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC))
	params.Clock = clk

	c := NewController(params, nil)
	require.Nil(t, c.LoadErr())

	t.Cleanup(func() {
		c.Stop()
		<-c.Done()
	})

	return &testEngine{t: t, c: c, clk: clk}
}

func (e *testEngine) attach(id uint64, userID string) *testSession {
	s := newTestSession(id, userID)
	require.Nil(e.t, e.c.Attach(s))

	return s
}

func (e *testEngine) submit(s *testSession, request *defs.Request) uint64 {
	s.nextID++
	request.RequestID = s.nextID

	require.Nil(e.t, e.c.Submit(s, request))

	return request.RequestID
}

func (e *testEngine) call(s *testSession, request *defs.Request) *defs.Result {
	return e.result(s, e.submit(s, request))
}

func (e *testEngine) result(s *testSession, requestID uint64) *defs.Result {
	select {
	case result := <-s.results:
		require.EqualValues(e.t, requestID, result.RequestID)

		return result
	case <-time.After(waitTimeout):
		require.FailNow(e.t, "result timeout", "request %d", requestID)
	}

	return nil
}

func (e *testEngine) noResult(s *testSession) {
	select {
	case result := <-s.results:
		require.FailNow(e.t, "unexpected result", "%+v", result)
	case <-time.After(50 * time.Millisecond):
	}
}

func (e *testEngine) event(s *testSession, kind string) *defs.Event {
	deadline := time.After(waitTimeout)

	for {
		select {
		case event := <-s.events:
			if event.Kind() == kind {
				return event
			}
		case <-deadline:
			require.FailNow(e.t, "event timeout", kind)

			return nil
		}
	}
}

func (e *testEngine) login(s *testSession) {
	result := e.call(s, &defs.Request{Op: defs.OpLogin, Token: "token"})
	require.Equal(e.t, defs.ErrorCodeOK, result.ErrorCode)
}

func (e *testEngine) drainEvents(s *testSession) {
	for {
		select {
		case <-s.events:
		default:
			return
		}
	}
}

func TestLoginLogout(t *testing.T) {
	e := newTestEngine(t, Params{})

	s := e.attach(1, "u1")

	result := e.call(s, &defs.Request{Op: defs.OpPublish, ChannelName: "room", Message: []byte("x")})
	assert.Equal(t, defs.ErrorCodeNotLogin, result.ErrorCode)

	result = e.call(s, &defs.Request{Op: defs.OpLogin, Token: "token"})
	assert.Equal(t, defs.ErrorCodeOK, result.ErrorCode)
	assert.Equal(t, defs.OpLogin, result.Op)

	connecting := e.event(s, "linkState").LinkState
	assert.Equal(t, defs.LinkStateIdle, connecting.PreviousState)
	assert.Equal(t, defs.LinkStateConnecting, connecting.CurrentState)

	connected := e.event(s, "linkState").LinkState
	assert.Equal(t, defs.LinkStateConnected, connected.CurrentState)
	assert.Equal(t, defs.LinkOperationLogin, connected.Operation)

	result = e.call(s, &defs.Request{Op: defs.OpLogin, Token: "token"})
	assert.Equal(t, defs.ErrorCodeDuplicateOperation, result.ErrorCode)

	result = e.call(s, &defs.Request{Op: defs.OpLogout})
	assert.Equal(t, defs.ErrorCodeOK, result.ErrorCode)
	assert.Equal(t, defs.LinkStateIdle, e.event(s, "linkState").LinkState.CurrentState)

	result = e.call(s, &defs.Request{Op: defs.OpSubscribe, ChannelName: "room"})
	assert.Equal(t, defs.ErrorCodeNotLogin, result.ErrorCode)
}

func TestLoginRejectsEmptyToken(t *testing.T) {
	e := newTestEngine(t, Params{})

	s := e.attach(1, "u1")

	result := e.call(s, &defs.Request{Op: defs.OpLogin})
	assert.Equal(t, defs.ErrorCodeInvalidToken, result.ErrorCode)
}

func TestUnattachedSession(t *testing.T) {
	e := newTestEngine(t, Params{})

	s := newTestSession(9, "u9")

	result := e.call(s, &defs.Request{Op: defs.OpLogin, Token: "token"})
	assert.Equal(t, defs.ErrorCodeNotInitialized, result.ErrorCode)
}

func TestPublishSubscribe(t *testing.T) {
	e := newTestEngine(t, Params{})

	s1 := e.attach(1, "u1")
	s2 := e.attach(2, "u2")

	e.login(s1)
	e.login(s2)

	result := e.call(s2, &defs.Request{Op: defs.OpSubscribe, ChannelName: "room",
		SubscribeOptions: &defs.SubscribeOptions{WithMessage: true, WithPresence: true}})
	require.Equal(t, defs.ErrorCodeOK, result.ErrorCode)

	snapshot := e.event(s2, "presence").Presence
	assert.Equal(t, defs.PresenceEventTypeSnapshot, snapshot.Type)
	assert.Equal(t, []defs.UserState{{UserID: "u2"}}, snapshot.Snapshot.UserStateList)

	result = e.call(s1, &defs.Request{Op: defs.OpSubscribe, ChannelName: "room"})
	require.Equal(t, defs.ErrorCodeOK, result.ErrorCode)

	join := e.event(s2, "presence").Presence
	assert.Equal(t, defs.PresenceEventTypeRemoteJoinChannel, join.Type)
	assert.Equal(t, "u1", join.Publisher)

	result = e.call(s1, &defs.Request{Op: defs.OpPublish, ChannelName: "room", Message: []byte("hello"),
		PublishOptions: &defs.PublishOptions{CustomType: "greeting"}})
	assert.Equal(t, defs.ErrorCodeOK, result.ErrorCode)

	message := e.event(s2, "message").Message
	assert.Equal(t, "room", message.ChannelName)
	assert.Equal(t, "u1", message.Publisher)
	assert.Equal(t, []byte("hello"), message.Message)
	assert.Equal(t, "greeting", message.CustomType)

	for len(s1.events) > 0 {
		assert.NotEqual(t, "message", (<-s1.events).Kind())
	}

	result = e.call(s1, &defs.Request{Op: defs.OpPublish, ChannelName: "room", Message: make([]byte, impls.DefaultMaxMessageSize+1)})
	assert.Equal(t, defs.ErrorCodeChannelMessageLengthExceedLimitation, result.ErrorCode)

	result = e.call(s1, &defs.Request{Op: defs.OpUnsubscribe, ChannelName: "room"})
	assert.Equal(t, defs.ErrorCodeOK, result.ErrorCode)

	leave := e.event(s2, "presence").Presence
	assert.Equal(t, defs.PresenceEventTypeRemoteLeaveChannel, leave.Type)

	result = e.call(s1, &defs.Request{Op: defs.OpUnsubscribe, ChannelName: "room"})
	assert.Equal(t, defs.ErrorCodeChannelNotSubscribed, result.ErrorCode)
}

func TestPublishToUser(t *testing.T) {
	e := newTestEngine(t, Params{})

	s1 := e.attach(1, "u1")
	s2 := e.attach(2, "u2")

	e.login(s1)

	result := e.call(s1, &defs.Request{Op: defs.OpPublish, ChannelName: "u2", Message: []byte("hi"),
		PublishOptions: &defs.PublishOptions{ChannelType: defs.ChannelTypeUser}})
	assert.Equal(t, defs.ErrorCodeChannelReceiverOffline, result.ErrorCode)

	e.login(s2)

	result = e.call(s1, &defs.Request{Op: defs.OpPublish, ChannelName: "u2", Message: []byte("hi"),
		PublishOptions: &defs.PublishOptions{ChannelType: defs.ChannelTypeUser}})
	assert.Equal(t, defs.ErrorCodeOK, result.ErrorCode)
	assert.Equal(t, defs.ChannelTypeUser, result.ChannelType)

	message := e.event(s2, "message").Message
	assert.Equal(t, defs.ChannelTypeUser, message.ChannelType)
	assert.Equal(t, "u1", message.ChannelName)
}

func TestLockAcquireRetry(t *testing.T) {
	e := newTestEngine(t, Params{Options: impls.Options{LockRetryTimeout: 5 * time.Second}})

	a := e.attach(1, "alice")
	b := e.attach(2, "bob")

	e.login(a)
	e.login(b)

	lockReq := func(op defs.Op) *defs.Request {
		return &defs.Request{Op: op, ChannelName: "room", ChannelType: defs.ChannelTypeMessage, LockName: "L"}
	}

	assert.Equal(t, defs.ErrorCodeLockNotExist, e.call(a, lockReq(defs.OpAcquireLock)).ErrorCode)
	assert.Equal(t, defs.ErrorCodeOK, e.call(a, lockReq(defs.OpSetLock)).ErrorCode)
	assert.Equal(t, defs.ErrorCodeLockAlreadyExist, e.call(b, lockReq(defs.OpSetLock)).ErrorCode)
	assert.Equal(t, defs.ErrorCodeOK, e.call(a, lockReq(defs.OpAcquireLock)).ErrorCode)

	failed := e.call(b, lockReq(defs.OpAcquireLock))
	assert.Equal(t, defs.ErrorCodeLockAcquireFailed, failed.ErrorCode)
	assert.Equal(t, "lock held by alice", failed.ErrorDetails)

	retry := lockReq(defs.OpAcquireLock)
	retry.Retry = true
	retryID := e.submit(b, retry)

	locks := e.call(b, lockReq(defs.OpGetLocks))
	require.Equal(t, defs.ErrorCodeOK, locks.ErrorCode)
	assert.Equal(t, []defs.LockDetail{{LockName: "L", Owner: "alice", TTL: 10}}, locks.Locks)

	assert.Equal(t, defs.ErrorCodeLockNotAcquired, e.call(b, lockReq(defs.OpReleaseLock)).ErrorCode)
	assert.Equal(t, defs.ErrorCodeOK, e.call(a, lockReq(defs.OpReleaseLock)).ErrorCode)

	granted := e.result(b, retryID)
	assert.Equal(t, defs.ErrorCodeOK, granted.ErrorCode)

	locks = e.call(a, lockReq(defs.OpGetLocks))
	assert.Equal(t, "bob", locks.Locks[0].Owner)
}

func TestLockRetryTimeout(t *testing.T) {
	e := newTestEngine(t, Params{Options: impls.Options{LockRetryTimeout: 5 * time.Second}})

	a := e.attach(1, "alice")
	b := e.attach(2, "bob")

	e.login(a)
	e.login(b)

	req := &defs.Request{Op: defs.OpSetLock, ChannelName: "room", ChannelType: defs.ChannelTypeMessage, LockName: "L", TTL: 30}
	require.Equal(t, defs.ErrorCodeOK, e.call(a, req).ErrorCode)

	acquire := &defs.Request{Op: defs.OpAcquireLock, ChannelName: "room", ChannelType: defs.ChannelTypeMessage, LockName: "L"}
	require.Equal(t, defs.ErrorCodeOK, e.call(a, acquire).ErrorCode)

	retryID := e.submit(b, &defs.Request{Op: defs.OpAcquireLock, ChannelName: "room",
		ChannelType: defs.ChannelTypeMessage, LockName: "L", Retry: true})

	dup := e.call(b, &defs.Request{Op: defs.OpAcquireLock, ChannelName: "room",
		ChannelType: defs.ChannelTypeMessage, LockName: "L", Retry: true})
	assert.Equal(t, defs.ErrorCodeLockOperationPerforming, dup.ErrorCode)

	e.clk.Advance(4 * time.Second)
	e.noResult(b)

	e.clk.Advance(time.Second)

	timeout := e.result(b, retryID)
	assert.Equal(t, defs.ErrorCodeLockOperationTimeout, timeout.ErrorCode)

	e.noResult(b)
}

func TestLockExpiresAfterHolderLeaves(t *testing.T) {
	e := newTestEngine(t, Params{})

	a := e.attach(1, "alice")
	b := e.attach(2, "bob")

	e.login(a)
	e.login(b)

	result := e.call(b, &defs.Request{Op: defs.OpSubscribe, ChannelName: "room",
		SubscribeOptions: &defs.SubscribeOptions{WithLock: true}})
	require.Equal(t, defs.ErrorCodeOK, result.ErrorCode)
	assert.Equal(t, defs.LockEventTypeSnapshot, e.event(b, "lock").Lock.EventType)

	require.Equal(t, defs.ErrorCodeOK, e.call(a, &defs.Request{Op: defs.OpSetLock, ChannelName: "room",
		ChannelType: defs.ChannelTypeMessage, LockName: "L", TTL: 20}).ErrorCode)
	assert.Equal(t, defs.LockEventTypeLockSet, e.event(b, "lock").Lock.EventType)

	require.Equal(t, defs.ErrorCodeOK, e.call(a, &defs.Request{Op: defs.OpAcquireLock, ChannelName: "room",
		ChannelType: defs.ChannelTypeMessage, LockName: "L"}).ErrorCode)
	assert.Equal(t, defs.LockEventTypeLockAcquired, e.event(b, "lock").Lock.EventType)

	require.Nil(t, e.c.Detach(a, false))

	// barrier: the detach is handled before this request
	e.call(b, &defs.Request{Op: defs.OpGetLocks, ChannelName: "room", ChannelType: defs.ChannelTypeMessage})

	e.clk.Advance(20 * time.Second)

	expired := e.event(b, "lock").Lock
	assert.Equal(t, defs.LockEventTypeLockExpired, expired.EventType)
	assert.Equal(t, "alice", expired.LockDetailList[0].Owner)

	locks := e.call(b, &defs.Request{Op: defs.OpGetLocks, ChannelName: "room", ChannelType: defs.ChannelTypeMessage})
	assert.Equal(t, "", locks.Locks[0].Owner)
}

func TestMetadataUpdateBumpsOnlyWrittenItems(t *testing.T) {
	e := newTestEngine(t, Params{})

	s := e.attach(1, "u1")
	e.login(s)

	metadataReq := func(op defs.Op, items ...defs.MetadataItem) *defs.Request {
		metadata := defs.NewMetadata()
		for _, item := range items {
			metadata.SetMetadataItem(item)
		}

		return &defs.Request{Op: op, ChannelName: "room", ChannelType: defs.ChannelTypeMessage, Metadata: metadata}
	}

	item := func(key, value string) defs.MetadataItem {
		return defs.NewMetadataItem(key, value)
	}

	require.Equal(t, defs.ErrorCodeOK, e.call(s, metadataReq(defs.OpSetChannelMetadata,
		item("A", "1"), item("B", "1"), item("C", "1"))).ErrorCode)

	before := e.call(s, metadataReq(defs.OpGetChannelMetadata)).Metadata
	require.NotNil(t, before)
	assert.EqualValues(t, 1, before.MajorRevision)

	require.Equal(t, defs.ErrorCodeOK, e.call(s, metadataReq(defs.OpUpdateChannelMetadata,
		item("A", "2"), item("B", "2"))).ErrorCode)

	after := e.call(s, metadataReq(defs.OpGetChannelMetadata)).Metadata
	assert.EqualValues(t, 2, after.MajorRevision)

	a, _ := after.Item("A")
	b, _ := after.Item("B")
	c, _ := after.Item("C")
	cBefore, _ := before.Item("C")

	assert.Equal(t, "2", a.Value)
	assert.EqualValues(t, 2, a.Revision)
	assert.Equal(t, "2", b.Value)
	assert.EqualValues(t, 2, b.Revision)
	assert.Equal(t, cBefore, c)

	stale := metadataReq(defs.OpUpdateChannelMetadata, item("A", "3"))
	stale.Metadata.MajorRevision = 1
	assert.Equal(t, defs.ErrorCodeStorageOutdatedRevision, e.call(s, stale).ErrorCode)

	staleItem := metadataReq(defs.OpUpdateChannelMetadata, defs.MetadataItem{Key: "C", Value: "3", Revision: 2})
	assert.Equal(t, defs.ErrorCodeStorageOutdatedRevision, e.call(s, staleItem).ErrorCode)

	dup := metadataReq(defs.OpSetChannelMetadata)
	dup.Metadata.Items = []defs.MetadataItem{item("A", "1"), item("A", "2")}
	assert.Equal(t, defs.ErrorCodeStorageDuplicateKey, e.call(s, dup).ErrorCode)

	require.Equal(t, defs.ErrorCodeOK, e.call(s, metadataReq(defs.OpRemoveChannelMetadata, item("A", ""))).ErrorCode)

	removed := e.call(s, metadataReq(defs.OpGetChannelMetadata)).Metadata
	assert.EqualValues(t, 3, removed.MajorRevision)
	_, ok := removed.Item("A")
	assert.False(t, ok)
	assert.Len(t, removed.Items, 2)
}

func TestMetadataWithLock(t *testing.T) {
	e := newTestEngine(t, Params{})

	a := e.attach(1, "alice")
	b := e.attach(2, "bob")

	e.login(a)
	e.login(b)

	require.Equal(t, defs.ErrorCodeOK, e.call(a, &defs.Request{Op: defs.OpSetLock, ChannelName: "room",
		ChannelType: defs.ChannelTypeMessage, LockName: "L"}).ErrorCode)
	require.Equal(t, defs.ErrorCodeOK, e.call(a, &defs.Request{Op: defs.OpAcquireLock, ChannelName: "room",
		ChannelType: defs.ChannelTypeMessage, LockName: "L"}).ErrorCode)

	write := func(lockName string) *defs.Request {
		metadata := defs.NewMetadata()
		metadata.SetMetadataItem(defs.NewMetadataItem("k", "v"))

		return &defs.Request{Op: defs.OpSetChannelMetadata, ChannelName: "room", ChannelType: defs.ChannelTypeMessage,
			Metadata: metadata, LockName: lockName}
	}

	assert.Equal(t, defs.ErrorCodeStorageLockNotAcquired, e.call(b, write("L")).ErrorCode)
	assert.Equal(t, defs.ErrorCodeStorageInvalidLockName, e.call(b, write("M")).ErrorCode)
	assert.Equal(t, defs.ErrorCodeOK, e.call(a, write("L")).ErrorCode)
}

func TestUserMetadataSubscription(t *testing.T) {
	e := newTestEngine(t, Params{})

	a := e.attach(1, "alice")
	b := e.attach(2, "bob")

	e.login(a)
	e.login(b)

	result := e.call(b, &defs.Request{Op: defs.OpSubscribeUserMetadata, UserID: "alice"})
	require.Equal(t, defs.ErrorCodeOK, result.ErrorCode)
	assert.Equal(t, defs.StorageEventTypeSnapshot, e.event(b, "storage").Storage.EventType)

	metadata := defs.NewMetadata()
	metadata.SetMetadataItem(defs.NewMetadataItem("mood", "happy"))

	result = e.call(a, &defs.Request{Op: defs.OpSetUserMetadata, UserID: "alice", Metadata: metadata,
		MetadataOptions: &defs.MetadataOptions{RecordUserID: true}})
	require.Equal(t, defs.ErrorCodeOK, result.ErrorCode)

	storage := e.event(b, "storage").Storage
	assert.Equal(t, defs.StorageTypeUser, storage.StorageType)
	assert.Equal(t, defs.StorageEventTypeSet, storage.EventType)
	assert.Equal(t, "alice", storage.Target)

	mood, ok := storage.Data.Item("mood")
	require.True(t, ok)
	assert.Equal(t, "alice", mood.AuthorUserID)

	assert.Equal(t, defs.ErrorCodeOK, e.call(b, &defs.Request{Op: defs.OpUnsubscribeUserMetadata, UserID: "alice"}).ErrorCode)
	assert.Equal(t, defs.ErrorCodeStorageNotSubscribe,
		e.call(b, &defs.Request{Op: defs.OpUnsubscribeUserMetadata, UserID: "alice"}).ErrorCode)
}

func TestPresence(t *testing.T) {
	e := newTestEngine(t, Params{})

	a := e.attach(1, "alice")
	b := e.attach(2, "bob")

	e.login(a)
	e.login(b)

	require.Equal(t, defs.ErrorCodeOK, e.call(a, &defs.Request{Op: defs.OpSubscribe, ChannelName: "room"}).ErrorCode)
	require.Equal(t, defs.ErrorCodeOK, e.call(b, &defs.Request{Op: defs.OpSubscribe, ChannelName: "room",
		SubscribeOptions: &defs.SubscribeOptions{WithPresence: true}}).ErrorCode)

	result := e.call(a, &defs.Request{Op: defs.OpSetState, ChannelName: "room", ChannelType: defs.ChannelTypeMessage,
		States: []defs.StateItem{{Key: "mode", Value: "busy"}}})
	require.Equal(t, defs.ErrorCodeOK, result.ErrorCode)

	changed := e.event(b, "presence").Presence
	for changed.Type != defs.PresenceEventTypeRemoteStateChanged {
		changed = e.event(b, "presence").Presence
	}

	assert.Equal(t, "alice", changed.Publisher)
	assert.Equal(t, []defs.StateItem{{Key: "mode", Value: "busy"}}, changed.StateItems)

	who := e.call(b, &defs.Request{Op: defs.OpWhoNow, ChannelName: "room", ChannelType: defs.ChannelTypeMessage,
		PresenceOptions: &defs.PresenceOptions{IncludeUserID: true, IncludeState: true}})
	require.Equal(t, defs.ErrorCodeOK, who.ErrorCode)
	assert.Equal(t, 2, who.Count)
	assert.Equal(t, []defs.UserState{
		{UserID: "alice", States: []defs.StateItem{{Key: "mode", Value: "busy"}}},
		{UserID: "bob"},
	}, who.UserStates)

	where := e.call(b, &defs.Request{Op: defs.OpWhereNow, UserID: "alice"})
	assert.Equal(t, []defs.ChannelInfo{{ChannelName: "room", ChannelType: defs.ChannelTypeMessage}}, where.Channels)

	state := e.call(b, &defs.Request{Op: defs.OpGetState, ChannelName: "room", ChannelType: defs.ChannelTypeMessage, UserID: "alice"})
	require.Equal(t, defs.ErrorCodeOK, state.ErrorCode)
	assert.Equal(t, "busy", state.State.States[0].Value)

	missing := e.call(b, &defs.Request{Op: defs.OpGetState, ChannelName: "room", ChannelType: defs.ChannelTypeMessage, UserID: "carol"})
	assert.Equal(t, defs.ErrorCodePresenceUserNotExist, missing.ErrorCode)

	notMember := e.call(a, &defs.Request{Op: defs.OpSetState, ChannelName: "other", ChannelType: defs.ChannelTypeMessage,
		States: []defs.StateItem{{Key: "mode", Value: "idle"}}})
	assert.Equal(t, defs.ErrorCodeChannelNotSubscribed, notMember.ErrorCode)
}

func TestWhoNowPaging(t *testing.T) {
	e := newTestEngine(t, Params{})

	var sessions []*testSession

	for i := 0; i < 150; i++ {
		s := e.attach(uint64(i+1), string(rune('a'+i/26))+string(rune('a'+i%26)))
		e.login(s)
		require.Equal(t, defs.ErrorCodeOK, e.call(s, &defs.Request{Op: defs.OpSubscribe, ChannelName: "hall",
			SubscribeOptions: &defs.SubscribeOptions{BeQuiet: true}}).ErrorCode)

		sessions = append(sessions, s)
	}

	first := e.call(sessions[0], &defs.Request{Op: defs.OpWhoNow, ChannelName: "hall", ChannelType: defs.ChannelTypeMessage})
	assert.Equal(t, 150, first.Count)
	assert.Len(t, first.UserStates, 100)
	assert.NotEmpty(t, first.NextPage)

	second := e.call(sessions[0], &defs.Request{Op: defs.OpWhoNow, ChannelName: "hall", ChannelType: defs.ChannelTypeMessage,
		PresenceOptions: &defs.PresenceOptions{IncludeUserID: true, Page: first.NextPage}})
	assert.Len(t, second.UserStates, 50)
	assert.Empty(t, second.NextPage)
	assert.Greater(t, second.UserStates[0].UserID, first.UserStates[99].UserID)
}

func TestStreamChannelTopics(t *testing.T) {
	e := newTestEngine(t, Params{})

	a := e.attach(1, "alice")
	b := e.attach(2, "bob")

	e.login(a)
	e.login(b)

	join := func(s *testSession) {
		result := e.call(s, &defs.Request{Op: defs.OpJoin, ChannelName: "stage", ChannelType: defs.ChannelTypeStream,
			JoinOptions: &defs.JoinChannelOptions{Token: "token"}})
		require.Equal(t, defs.ErrorCodeOK, result.ErrorCode)
	}

	join(a)
	join(b)

	connected := e.event(a, "connectionState").ConnectionState
	for connected.State != defs.ConnectionStateConnected {
		connected = e.event(a, "connectionState").ConnectionState
	}

	assert.Equal(t, defs.ConnectionChangeReasonJoinSuccess, connected.Reason)

	again := e.call(a, &defs.Request{Op: defs.OpJoin, ChannelName: "stage", ChannelType: defs.ChannelTypeStream,
		JoinOptions: &defs.JoinChannelOptions{Token: "token"}})
	assert.Equal(t, defs.ErrorCodeDuplicateOperation, again.ErrorCode)

	topicReq := func(op defs.Op, topic string) *defs.Request {
		return &defs.Request{Op: op, ChannelName: "stage", ChannelType: defs.ChannelTypeStream, Topic: topic}
	}

	publish := topicReq(defs.OpPublishTopicMessage, "video")
	publish.Message = []byte("frame")
	assert.Equal(t, defs.ErrorCodeChannelTopicNotJoined, e.call(a, publish).ErrorCode)

	joinTopic := topicReq(defs.OpJoinTopic, "video")
	joinTopic.JoinTopicOptions = &defs.JoinTopicOptions{Meta: "720p"}
	result := e.call(a, joinTopic)
	require.Equal(t, defs.ErrorCodeOK, result.ErrorCode)
	assert.Equal(t, "720p", result.Meta)

	remoteJoin := e.event(b, "topic").Topic
	for remoteJoin.Type != defs.TopicEventTypeRemoteJoinTopic {
		remoteJoin = e.event(b, "topic").Topic
	}

	assert.Equal(t, "alice", remoteJoin.Publisher)
	assert.Equal(t, "video", remoteJoin.TopicInfos[0].Topic)

	subscribe := topicReq(defs.OpSubscribeTopic, "video")
	subscribe.Users = []string{"alice"}
	result = e.call(b, subscribe)
	require.Equal(t, defs.ErrorCodeOK, result.ErrorCode)
	assert.Equal(t, []string{"alice"}, result.SucceedUsers)

	users := e.call(b, topicReq(defs.OpGetSubscribedUserList, "video"))
	assert.Equal(t, []string{"alice"}, users.Users)

	assert.Equal(t, defs.ErrorCodeOK, e.call(a, publish).ErrorCode)

	message := e.event(b, "message").Message
	assert.Equal(t, defs.ChannelTypeStream, message.ChannelType)
	assert.Equal(t, "video", message.ChannelTopic)
	assert.Equal(t, []byte("frame"), message.Message)

	tooMany := topicReq(defs.OpSubscribeTopic, "video")
	for i := 0; i < 65; i++ {
		tooMany.Users = append(tooMany.Users, string(rune('A'+i)))
	}

	assert.Equal(t, defs.ErrorCodeChannelExceedTopicUserLimitation, e.call(b, tooMany).ErrorCode)
	assert.Equal(t, defs.ErrorCodeChannelInvalidTopicName, e.call(b, topicReq(defs.OpSubscribeTopic, "")).ErrorCode)

	assert.Equal(t, defs.ErrorCodeOK, e.call(b, topicReq(defs.OpUnsubscribeTopic, "video")).ErrorCode)
	assert.Equal(t, defs.ErrorCodeChannelTopicNotSubscribed, e.call(b, topicReq(defs.OpGetSubscribedUserList, "video")).ErrorCode)

	assert.Equal(t, defs.ErrorCodeOK, e.call(a, topicReq(defs.OpLeaveTopic, "video")).ErrorCode)
	assert.Equal(t, defs.ErrorCodeOK, e.call(a, &defs.Request{Op: defs.OpLeave, ChannelName: "stage", ChannelType: defs.ChannelTypeStream}).ErrorCode)
	assert.Equal(t, defs.ErrorCodeChannelNotJoined,
		e.call(a, &defs.Request{Op: defs.OpLeave, ChannelName: "stage", ChannelType: defs.ChannelTypeStream}).ErrorCode)
}

func TestHistory(t *testing.T) {
	e := newTestEngine(t, Params{})

	s := e.attach(1, "u1")
	e.login(s)

	for i := 0; i < 3; i++ {
		result := e.call(s, &defs.Request{Op: defs.OpPublish, ChannelName: "room", Message: []byte{byte('a' + i)},
			PublishOptions: &defs.PublishOptions{StoreInHistory: true}})
		require.Equal(t, defs.ErrorCodeOK, result.ErrorCode)

		e.clk.Advance(time.Second)
	}

	result := e.call(s, &defs.Request{Op: defs.OpGetHistoryMessages, ChannelName: "room", ChannelType: defs.ChannelTypeMessage,
		HistoryOptions: &defs.GetHistoryMessagesOptions{MessageCount: 2}})
	require.Equal(t, defs.ErrorCodeOK, result.ErrorCode)
	require.Len(t, result.Messages, 2)
	assert.Equal(t, []byte("c"), result.Messages[0].Message)
	assert.Equal(t, []byte("b"), result.Messages[1].Message)
	assert.NotZero(t, result.NewStart)

	rest := e.call(s, &defs.Request{Op: defs.OpGetHistoryMessages, ChannelName: "room", ChannelType: defs.ChannelTypeMessage,
		HistoryOptions: &defs.GetHistoryMessagesOptions{Start: result.NewStart}})
	require.Len(t, rest.Messages, 1)
	assert.Equal(t, []byte("a"), rest.Messages[0].Message)
	assert.Zero(t, rest.NewStart)
}

func TestTokenExpiry(t *testing.T) {
	clk := clock.NewManual(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC))
	center := user.NewTokenCenter("app", "cert", time.Minute, clk)

	c := NewController(Params{Clock: clk, TokenCenter: center,
		Options: impls.Options{TokenWillExpireAhead: 30 * time.Second}}, nil)
	require.Nil(t, c.LoadErr())

	defer func() {
		c.Stop()
		<-c.Done()
	}()

	e := &testEngine{t: t, c: c, clk: clk}

	s := e.attach(1, "u1")

	assert.Equal(t, defs.ErrorCodeInvalidToken, e.call(s, &defs.Request{Op: defs.OpLogin, Token: "forged"}).ErrorCode)

	token, _, err := center.NewToken("u1", "")
	require.Nil(t, err)
	require.Equal(t, defs.ErrorCodeOK, e.call(s, &defs.Request{Op: defs.OpLogin, Token: token}).ErrorCode)

	e.drainEvents(s)

	clk.Advance(30 * time.Second)
	e.event(s, "tokenWillExpire")

	clk.Advance(30 * time.Second)

	failed := e.event(s, "linkState").LinkState
	assert.Equal(t, defs.LinkStateFailed, failed.CurrentState)
	assert.Equal(t, defs.LinkOperationServerReject, failed.Operation)
	assert.Equal(t, defs.ErrorCodeTokenExpired, failed.ReasonCode)

	assert.Equal(t, defs.ErrorCodeNotLogin,
		e.call(s, &defs.Request{Op: defs.OpSubscribe, ChannelName: "room"}).ErrorCode)

	assert.Equal(t, defs.ErrorCodeTokenExpired, e.call(s, &defs.Request{Op: defs.OpLogin, Token: token}).ErrorCode)
}

func TestFixtureSeedsState(t *testing.T) {
	seed, err := fixture.Parse([]byte(`
channels:
  - name: room
    type: message
    locks:
      - name: L
        ttl: 15
    metadata:
      - key: topic
        value: welcome
users:
  - userId: alice
    metadata:
      - key: title
        value: admin
`))
	require.Nil(t, err)

	e := newTestEngine(t, Params{Fixture: seed})

	s := e.attach(1, "bob")
	e.login(s)

	locks := e.call(s, &defs.Request{Op: defs.OpGetLocks, ChannelName: "room", ChannelType: defs.ChannelTypeMessage})
	assert.Equal(t, []defs.LockDetail{{LockName: "L", TTL: 15}}, locks.Locks)

	metadata := e.call(s, &defs.Request{Op: defs.OpGetChannelMetadata, ChannelName: "room", ChannelType: defs.ChannelTypeMessage}).Metadata
	topic, ok := metadata.Item("topic")
	require.True(t, ok)
	assert.Equal(t, "welcome", topic.Value)

	userMetadata := e.call(s, &defs.Request{Op: defs.OpGetUserMetadata, UserID: "alice"}).Metadata
	title, ok := userMetadata.Item("title")
	require.True(t, ok)
	assert.Equal(t, "admin", title.Value)
}

func TestSubmitAfterStop(t *testing.T) {
	c := NewController(Params{}, nil)
	require.Nil(t, c.LoadErr())

	c.Stop()
	<-c.Done()

	assert.ErrorIs(t, c.Submit(newTestSession(1, "u1"), &defs.Request{Op: defs.OpLogin}), commerr.ErrCanceled)
	assert.ErrorIs(t, c.Attach(nil), commerr.ErrInvalidArgument)
}

func lockRequest(op defs.Op) *defs.Request {
	return &defs.Request{Op: op, ChannelName: "room", ChannelType: defs.ChannelTypeMessage, LockName: "L"}
}

func retryRequest() *defs.Request {
	request := lockRequest(defs.OpAcquireLock)
	request.Retry = true

	return request
}

func revokeRequest(owner string) *defs.Request {
	request := lockRequest(defs.OpRevokeLock)
	request.UserID = owner

	return request
}

func TestRevokeLock(t *testing.T) {
	e := newTestEngine(t, Params{Options: impls.Options{LockRetryTimeout: time.Minute}})

	a := e.attach(1, "alice")
	b := e.attach(2, "bob")
	c := e.attach(3, "carol")

	e.login(a)
	e.login(b)
	e.login(c)

	assert.Equal(t, defs.ErrorCodeOK, e.call(a, lockRequest(defs.OpSetLock)).ErrorCode)
	assert.Equal(t, defs.ErrorCodeLockNotAcquired, e.call(c, revokeRequest("alice")).ErrorCode)
	assert.Equal(t, defs.ErrorCodeOK, e.call(a, lockRequest(defs.OpAcquireLock)).ErrorCode)

	retryID := e.submit(b, retryRequest())

	assert.Equal(t, defs.ErrorCodeLockNotAcquired, e.call(c, revokeRequest("bob")).ErrorCode)
	assert.Equal(t, defs.ErrorCodeLockNotAcquired, e.call(c, revokeRequest("")).ErrorCode)
	e.noResult(b)

	assert.Equal(t, defs.ErrorCodeOK, e.call(c, revokeRequest("alice")).ErrorCode)

	granted := e.result(b, retryID)
	assert.Equal(t, defs.ErrorCodeOK, granted.ErrorCode)

	locks := e.call(c, lockRequest(defs.OpGetLocks))
	require.Len(t, locks.Locks, 1)
	assert.Equal(t, "bob", locks.Locks[0].Owner)

	assert.Equal(t, defs.ErrorCodeLockNotAcquired, e.call(a, lockRequest(defs.OpReleaseLock)).ErrorCode)

	e.clk.Advance(2 * time.Minute)
	e.noResult(b)
}

func TestRemoveLockFailsWaiters(t *testing.T) {
	e := newTestEngine(t, Params{Options: impls.Options{LockRetryTimeout: time.Minute}})

	a := e.attach(1, "alice")
	b := e.attach(2, "bob")

	e.login(a)
	e.login(b)

	assert.Equal(t, defs.ErrorCodeOK, e.call(a, lockRequest(defs.OpSetLock)).ErrorCode)
	assert.Equal(t, defs.ErrorCodeOK, e.call(a, lockRequest(defs.OpAcquireLock)).ErrorCode)

	retryID := e.submit(b, retryRequest())

	assert.Equal(t, defs.ErrorCodeLockOperationFailed, e.call(b, lockRequest(defs.OpRemoveLock)).ErrorCode)
	assert.Equal(t, defs.ErrorCodeOK, e.call(a, lockRequest(defs.OpRemoveLock)).ErrorCode)

	removed := e.result(b, retryID)
	assert.Equal(t, defs.ErrorCodeLockNotExist, removed.ErrorCode)

	assert.Empty(t, e.call(a, lockRequest(defs.OpGetLocks)).Locks)
	assert.Equal(t, defs.ErrorCodeLockNotExist, e.call(b, lockRequest(defs.OpAcquireLock)).ErrorCode)

	e.clk.Advance(2 * time.Minute)
	e.noResult(b)
}

func TestTokenExpiryFailsLockWaits(t *testing.T) {
	clk := clock.NewManual(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC))
	center := user.NewTokenCenter("app", "cert", time.Minute, clk)

	c := NewController(Params{Clock: clk, TokenCenter: center,
		Options: impls.Options{LockRetryTimeout: 10 * time.Minute}}, nil)
	require.Nil(t, c.LoadErr())

	defer func() {
		c.Stop()
		<-c.Done()
	}()

	e := &testEngine{t: t, c: c, clk: clk}

	a := e.attach(1, "alice")
	b := e.attach(2, "bob")

	for _, s := range []*testSession{a, b} {
		token, _, err := center.NewToken(s.userID, "")
		require.Nil(t, err)
		require.Equal(t, defs.ErrorCodeOK, e.call(s, &defs.Request{Op: defs.OpLogin, Token: token}).ErrorCode)
	}

	assert.Equal(t, defs.ErrorCodeOK, e.call(a, lockRequest(defs.OpSetLock)).ErrorCode)
	assert.Equal(t, defs.ErrorCodeOK, e.call(a, lockRequest(defs.OpAcquireLock)).ErrorCode)

	retryID := e.submit(b, retryRequest())
	e.noResult(b)

	clk.Advance(2 * time.Minute)

	failed := e.result(b, retryID)
	assert.Equal(t, defs.ErrorCodeLockOperationFailed, failed.ErrorCode)

	clk.Advance(20 * time.Minute)
	e.noResult(b)
}

func TestStopRemovesSessions(t *testing.T) {
	e := newTestEngine(t, Params{Options: impls.Options{LockRetryTimeout: time.Minute}})

	a := e.attach(1, "alice")
	b := e.attach(2, "bob")
	idle := e.attach(3, "carol")

	e.login(a)
	e.login(b)

	assert.Equal(t, defs.ErrorCodeOK, e.call(a, lockRequest(defs.OpSetLock)).ErrorCode)
	assert.Equal(t, defs.ErrorCodeOK, e.call(a, lockRequest(defs.OpAcquireLock)).ErrorCode)

	e.submit(b, retryRequest())
	e.call(b, lockRequest(defs.OpGetLocks))

	e.c.Stop()
	<-e.c.Done()

	for _, s := range []*testSession{a, b, idle} {
		select {
		case msg := <-s.removed:
			assert.Equal(t, "EngineStopped", msg)
		case <-time.After(waitTimeout):
			require.FailNow(t, "session not removed", s.userID)
		}
	}

	e.noResult(b)
	assert.ErrorIs(t, e.c.Submit(b, lockRequest(defs.OpGetLocks)), commerr.ErrCanceled)
}

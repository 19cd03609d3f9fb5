package impls

import (
	"context"
	"sort"
	"time"

	"github.com/sbasestarter/rtm-harness/internal/defs"
	"github.com/sbasestarter/rtm-harness/internal/user"
	"github.com/sgostarter/i/l"
)

func tokenErrorCode(err error) defs.ErrorCode {
	if user.IsTokenExpired(err) {
		return defs.ErrorCodeTokenExpired
	}

	return defs.ErrorCodeInvalidToken
}

func (impl *mdImpl) setLinkState(sd *sessionData, state defs.LinkState, op defs.LinkOperation, code defs.ErrorCode) {
	event := &defs.LinkStateEvent{
		CurrentState:  state,
		PreviousState: sd.linkState,
		ServiceType:   defs.ServiceTypeMessage,
		Operation:     op,
		ReasonCode:    code,
		Timestamp:     impl.now(),
	}

	if !code.OK() {
		event.Reason = code.Reason()
	}

	for name := range sd.subscribed {
		event.AffectedChannels = append(event.AffectedChannels, name)
	}

	sort.Strings(event.AffectedChannels)

	sd.linkState = state

	impl.sendEvent(sd, &defs.Event{LinkState: event})
}

func (impl *mdImpl) handleLogin(_ context.Context, sd *sessionData, request *defs.Request) {
	if sd.loggedIn {
		impl.reply(sd, request, defs.ErrorCodeDuplicateOperation)

		return
	}

	impl.setLinkState(sd, defs.LinkStateConnecting, defs.LinkOperationLogin, defs.ErrorCodeOK)

	info, err := impl.tokenCenter.VerifyToken(sd.userID, "", request.Token)
	if err != nil {
		code := tokenErrorCode(err)

		impl.setLinkState(sd, defs.LinkStateFailed, defs.LinkOperationLogin, code)
		impl.reply(sd, request, code)

		return
	}

	sd.loggedIn = true

	sessions, ok := impl.users[sd.userID]
	if !ok {
		sessions = make(map[uint64]*sessionData)
		impl.users[sd.userID] = sessions

		impl.track(defs.UserTarget(sd.userID))
		impl.holderReturned(sd.userID)
	}

	sessions[sd.uniqueID] = sd

	impl.armTokenTimers(&sd.token, info, func(gen uint64) {
		if !sd.loggedIn || sd.token.gen != gen {
			return
		}

		impl.sendEvent(sd, &defs.Event{TokenWillExpire: &defs.TokenWillExpireEvent{}})
	}, func(gen uint64) {
		if !sd.loggedIn || sd.token.gen != gen {
			return
		}

		impl.logger.WithFields(l.StringField("userID", sd.userID)).Info("TokenExpired")

		impl.logoutSession(context.TODO(), sd, false)
		impl.setLinkState(sd, defs.LinkStateFailed, defs.LinkOperationServerReject, defs.ErrorCodeTokenExpired)
	})

	impl.setLinkState(sd, defs.LinkStateConnected, defs.LinkOperationLogin, defs.ErrorCodeOK)
	impl.reply(sd, request, defs.ErrorCodeOK)
}

func (impl *mdImpl) handleLogout(ctx context.Context, sd *sessionData, request *defs.Request) {
	impl.logoutSession(ctx, sd, true)
	impl.setLinkState(sd, defs.LinkStateIdle, defs.LinkOperationLogout, defs.ErrorCodeOK)
	impl.reply(sd, request, defs.ErrorCodeOK)
}

func (impl *mdImpl) handleRenewToken(_ context.Context, sd *sessionData, request *defs.Request) {
	info, err := impl.tokenCenter.VerifyToken(sd.userID, "", request.Token)
	if err != nil {
		result := defs.NewResult(request, tokenErrorCode(err))
		result.ServiceType = defs.ServiceTypeMessage

		impl.replyResult(sd, result)

		return
	}

	impl.rearmTokenTimers(&sd.token, info, func() bool { return sd.loggedIn }, func() {
		impl.sendEvent(sd, &defs.Event{TokenWillExpire: &defs.TokenWillExpireEvent{}})
	})

	result := defs.NewResult(request, defs.ErrorCodeOK)
	result.ServiceType = defs.ServiceTypeMessage

	impl.replyResult(sd, result)
}

// logoutSession leaves every channel the session is in and fails its lock waits.
func (impl *mdImpl) logoutSession(_ context.Context, sd *sessionData, graceful bool) {
	sd.token.stop()

	for name := range sd.subscribed {
		if ch, ok := impl.channels[defs.ChannelInfo{ChannelName: name, ChannelType: defs.ChannelTypeMessage}]; ok {
			impl.leaveChannel(sd, ch, graceful)
		}
	}

	sd.subscribed = make(map[string]defs.SubscribeOptions)

	for name := range sd.joined {
		impl.leaveStream(sd, name, graceful)
	}

	for userID := range sd.userMetaSubs {
		impl.removeUserMetadataSubscriber(sd, userID)
	}

	impl.dropLockWaiters(sd)

	sd.loggedIn = false

	sessions := impl.users[sd.userID]
	delete(sessions, sd.uniqueID)

	if len(sessions) == 0 {
		delete(impl.users, sd.userID)

		impl.untrack(defs.UserTarget(sd.userID))
		impl.holderGone(sd.userID)
	}
}

// armTokenTimers schedules the will-expire warning and the expiry of a verified token. Both
// callbacks run on the main routine and receive the generation they were armed with.
func (impl *mdImpl) armTokenTimers(timers *tokenTimers, info *user.Info, onWillExpire, onExpire func(gen uint64)) {
	timers.stop()
	timers.onExpire = onExpire

	expireAt, ok := info.ExpireTime()
	if !ok {
		return
	}

	gen := timers.gen
	now := impl.clk.Now()

	willExpireIn := expireAt.Add(-impl.opts.TokenWillExpireAhead).Sub(now)
	if willExpireIn < 0 {
		willExpireIn = 0
	}

	timers.willExpire = impl.clk.AfterFunc(willExpireIn, func() {
		impl.mrRunner.Post(func() {
			onWillExpire(gen)
		})
	})

	expireIn := expireAt.Sub(now)
	if expireIn < time.Millisecond {
		expireIn = time.Millisecond
	}

	timers.expire = impl.clk.AfterFunc(expireIn, func() {
		impl.mrRunner.Post(func() {
			onExpire(gen)
		})
	})
}

// rearmTokenTimers keeps the expiry handling armed by the last login or join and moves it to
// the new token's expiry.
func (impl *mdImpl) rearmTokenTimers(timers *tokenTimers, info *user.Info, alive func() bool, onWillExpire func()) {
	onExpire := timers.onExpire

	impl.armTokenTimers(timers, info, func(gen uint64) {
		if !alive() || timers.gen != gen {
			return
		}

		onWillExpire()
	}, func(gen uint64) {
		if onExpire != nil {
			onExpire(gen)
		}
	})
}

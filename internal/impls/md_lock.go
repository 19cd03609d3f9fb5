package impls

import (
	"context"
	"fmt"
	"time"

	"github.com/sbasestarter/rtm-harness/internal/defs"
	"github.com/sgostarter/i/l"
)

func (impl *mdImpl) lockEvent(ch *channelData, eventType defs.LockEventType, detail defs.LockDetail) {
	impl.publishEvent(defs.ChannelTarget(ch.info.ChannelName, ch.info.ChannelType), 0, &defs.Event{
		Lock: &defs.LockEvent{
			ChannelType:    ch.info.ChannelType,
			EventType:      eventType,
			ChannelName:    ch.info.ChannelName,
			LockDetailList: []defs.LockDetail{detail},
			Timestamp:      impl.now(),
		},
	})
}

// lockOf resolves the lock a request names. The request is answered when the lock cannot be used.
func (impl *mdImpl) lockOf(sd *sessionData, request *defs.Request) (*channelData, *lockData, bool) {
	info, code := channelInfoOf(request)
	if !code.OK() {
		impl.reply(sd, request, code)

		return nil, nil, false
	}

	if request.LockName == "" {
		impl.reply(sd, request, defs.ErrorCodeLockInvalidName)

		return nil, nil, false
	}

	ch, ok := impl.channels[info]
	if !ok {
		impl.reply(sd, request, defs.ErrorCodeLockNotExist)

		return nil, nil, false
	}

	lock, ok := ch.locks[request.LockName]
	if !ok {
		impl.reply(sd, request, defs.ErrorCodeLockNotExist)

		return nil, nil, false
	}

	return ch, lock, true
}

func (impl *mdImpl) handleSetLock(_ context.Context, sd *sessionData, request *defs.Request) {
	info, code := channelInfoOf(request)
	if !code.OK() {
		impl.reply(sd, request, code)

		return
	}

	if request.LockName == "" {
		impl.reply(sd, request, defs.ErrorCodeLockInvalidName)

		return
	}

	ch := impl.channel(info)

	if _, ok := ch.locks[request.LockName]; ok {
		impl.reply(sd, request, defs.ErrorCodeLockAlreadyExist)

		return
	}

	ttl := request.TTL
	if ttl == 0 {
		ttl = defaultLockTTL
	}

	lock := &lockData{
		detail: defs.LockDetail{
			LockName: request.LockName,
			TTL:      ttl,
		},
	}
	ch.locks[request.LockName] = lock

	impl.reply(sd, request, defs.ErrorCodeOK)
	impl.lockEvent(ch, defs.LockEventTypeLockSet, lock.detail)
}

func (impl *mdImpl) handleGetLocks(_ context.Context, sd *sessionData, request *defs.Request) {
	info, code := channelInfoOf(request)
	if !code.OK() {
		impl.reply(sd, request, code)

		return
	}

	result := defs.NewResult(request, defs.ErrorCodeOK)

	if ch, ok := impl.channels[info]; ok {
		result.Locks = ch.lockList()
	}

	impl.replyResult(sd, result)
}

func (impl *mdImpl) handleRemoveLock(_ context.Context, sd *sessionData, request *defs.Request) {
	ch, lock, ok := impl.lockOf(sd, request)
	if !ok {
		return
	}

	if lock.detail.Owner != "" && lock.detail.Owner != sd.userID {
		impl.reply(sd, request, defs.ErrorCodeLockOperationFailed)

		return
	}

	impl.stopLockExpiry(lock)

	if lock.detail.Owner != "" {
		impl.metrics.LockFreed()
	}

	delete(ch.locks, request.LockName)

	waiters := lock.waiters
	lock.waiters = nil

	for _, waiter := range waiters {
		waiter.timer.Stop()

		impl.reply(waiter.sd, waiter.request, defs.ErrorCodeLockNotExist)
	}

	impl.reply(sd, request, defs.ErrorCodeOK)
	impl.lockEvent(ch, defs.LockEventTypeLockRemoved, lock.detail)

	impl.gcChannel(ch)
}

func (impl *mdImpl) handleAcquireLock(_ context.Context, sd *sessionData, request *defs.Request) {
	ch, lock, ok := impl.lockOf(sd, request)
	if !ok {
		return
	}

	if lock.detail.Owner == "" || lock.detail.Owner == sd.userID {
		impl.grantLock(ch, lock, sd, request)

		return
	}

	if !request.Retry {
		result := defs.NewResult(request, defs.ErrorCodeLockAcquireFailed)
		result.ErrorDetails = fmt.Sprintf("lock held by %s", lock.detail.Owner)

		impl.replyResult(sd, result)

		return
	}

	for _, waiter := range lock.waiters {
		if waiter.sd == sd {
			impl.reply(sd, request, defs.ErrorCodeLockOperationPerforming)

			return
		}
	}

	waiter := &lockWaiter{
		sd:      sd,
		request: request,
	}

	waiter.timer = impl.clk.AfterFunc(impl.opts.LockRetryTimeout, func() {
		impl.mrRunner.Post(func() {
			if !impl.removeWaiter(lock, waiter) {
				return
			}

			impl.reply(sd, request, defs.ErrorCodeLockOperationTimeout)
		})
	})

	lock.waiters = append(lock.waiters, waiter)

	impl.logger.WithFields(l.StringField("lock", request.LockName), l.StringField("userID", sd.userID),
		l.StringField("owner", lock.detail.Owner)).Debug("LockWaiting")
}

func (impl *mdImpl) grantLock(ch *channelData, lock *lockData, sd *sessionData, request *defs.Request) {
	if lock.detail.Owner == "" {
		impl.metrics.LockAcquired()
	}

	lock.detail.Owner = sd.userID

	impl.stopLockExpiry(lock)

	impl.reply(sd, request, defs.ErrorCodeOK)
	impl.lockEvent(ch, defs.LockEventTypeLockAcquired, lock.detail)
}

func (impl *mdImpl) removeWaiter(lock *lockData, waiter *lockWaiter) bool {
	for idx, w := range lock.waiters {
		if w == waiter {
			lock.waiters = append(lock.waiters[:idx], lock.waiters[idx+1:]...)

			return true
		}
	}

	return false
}

// freeLock clears the owner, announces it with eventType and hands the lock to the first waiter still logged in.
func (impl *mdImpl) freeLock(ch *channelData, lock *lockData, eventType defs.LockEventType) {
	impl.stopLockExpiry(lock)

	detail := lock.detail
	lock.detail.Owner = ""

	impl.metrics.LockFreed()
	impl.lockEvent(ch, eventType, detail)

	for len(lock.waiters) > 0 {
		waiter := lock.waiters[0]
		lock.waiters = lock.waiters[1:]

		waiter.timer.Stop()

		if !waiter.sd.loggedIn || waiter.sd.detached {
			continue
		}

		impl.grantLock(ch, lock, waiter.sd, waiter.request)

		break
	}
}

func (impl *mdImpl) handleReleaseLock(_ context.Context, sd *sessionData, request *defs.Request) {
	ch, lock, ok := impl.lockOf(sd, request)
	if !ok {
		return
	}

	if lock.detail.Owner != sd.userID {
		impl.reply(sd, request, defs.ErrorCodeLockNotAcquired)

		return
	}

	impl.reply(sd, request, defs.ErrorCodeOK)
	impl.freeLock(ch, lock, defs.LockEventTypeLockReleased)
}

func (impl *mdImpl) handleRevokeLock(_ context.Context, sd *sessionData, request *defs.Request) {
	ch, lock, ok := impl.lockOf(sd, request)
	if !ok {
		return
	}

	if lock.detail.Owner == "" || lock.detail.Owner != request.UserID {
		impl.reply(sd, request, defs.ErrorCodeLockNotAcquired)

		return
	}

	impl.reply(sd, request, defs.ErrorCodeOK)
	impl.freeLock(ch, lock, defs.LockEventTypeLockReleased)
}

// dropLockWaiters fails every lock wait of sd. Detached sessions get no reply.
func (impl *mdImpl) dropLockWaiters(sd *sessionData) {
	for _, ch := range impl.channels {
		for _, lock := range ch.locks {
			waiters := lock.waiters[:0]

			for _, waiter := range lock.waiters {
				if waiter.sd != sd {
					waiters = append(waiters, waiter)

					continue
				}

				waiter.timer.Stop()
				impl.reply(sd, waiter.request, defs.ErrorCodeLockOperationFailed)
			}

			lock.waiters = waiters
		}
	}
}

func (impl *mdImpl) stopLockExpiry(lock *lockData) {
	lock.expireGen++

	if lock.expireTimer != nil {
		lock.expireTimer.Stop()
		lock.expireTimer = nil
	}
}

// armLockExpiry starts the TTL of a lock whose holder has no session left.
func (impl *mdImpl) armLockExpiry(ch *channelData, lock *lockData) {
	impl.stopLockExpiry(lock)

	gen := lock.expireGen
	owner := lock.detail.Owner

	lock.expireTimer = impl.clk.AfterFunc(time.Duration(lock.detail.TTL)*time.Second, func() {
		impl.mrRunner.Post(func() {
			if lock.expireGen != gen || lock.detail.Owner != owner || ch.locks[lock.detail.LockName] != lock {
				return
			}

			impl.logger.WithFields(l.StringField("lock", lock.detail.LockName), l.StringField("owner", owner)).Info("LockExpired")

			lock.expireTimer = nil

			impl.freeLock(ch, lock, defs.LockEventTypeLockExpired)
		})
	})
}

func (impl *mdImpl) holderGone(userID string) {
	for _, ch := range impl.channels {
		for _, lock := range ch.locks {
			if lock.detail.Owner == userID {
				impl.armLockExpiry(ch, lock)
			}
		}
	}
}

func (impl *mdImpl) holderReturned(userID string) {
	for _, ch := range impl.channels {
		for _, lock := range ch.locks {
			if lock.detail.Owner == userID {
				impl.stopLockExpiry(lock)
			}
		}
	}
}

package rtm

import "github.com/sbasestarter/rtm-harness/internal/defs"

// Lock manages the named locks of a channel.
type Lock struct {
	c *Client
}

func (lk *Lock) request(op defs.Op, channelName string, channelType ChannelType, lockName string) *defs.Request {
	return &defs.Request{
		Op:          op,
		ChannelName: channelName,
		ChannelType: channelType,
		LockName:    lockName,
	}
}

// SetLock creates a lock. ttl is the number of seconds the lock outlives a holder that went away; 0 picks the default.
func (lk *Lock) SetLock(channelName string, channelType ChannelType, lockName string, ttl uint32) (uint64, error) {
	request := lk.request(defs.OpSetLock, channelName, channelType, lockName)
	request.TTL = ttl

	return lk.c.submit(clientOwner, request)
}

func (lk *Lock) GetLocks(channelName string, channelType ChannelType) (uint64, error) {
	return lk.c.submit(clientOwner, &defs.Request{
		Op:          defs.OpGetLocks,
		ChannelName: channelName,
		ChannelType: channelType,
	})
}

func (lk *Lock) RemoveLock(channelName string, channelType ChannelType, lockName string) (uint64, error) {
	return lk.c.submit(clientOwner, lk.request(defs.OpRemoveLock, channelName, channelType, lockName))
}

// AcquireLock asks for the lock. With retry a held lock queues the caller until it frees or the wait times out.
func (lk *Lock) AcquireLock(channelName string, channelType ChannelType, lockName string, retry bool) (uint64, error) {
	request := lk.request(defs.OpAcquireLock, channelName, channelType, lockName)
	request.Retry = retry

	return lk.c.submit(clientOwner, request)
}

func (lk *Lock) ReleaseLock(channelName string, channelType ChannelType, lockName string) (uint64, error) {
	return lk.c.submit(clientOwner, lk.request(defs.OpReleaseLock, channelName, channelType, lockName))
}

// RevokeLock frees a lock held by owner.
func (lk *Lock) RevokeLock(channelName string, channelType ChannelType, lockName, owner string) (uint64, error) {
	request := lk.request(defs.OpRevokeLock, channelName, channelType, lockName)
	request.UserID = owner

	return lk.c.submit(clientOwner, request)
}

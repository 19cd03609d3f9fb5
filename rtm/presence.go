package rtm

import "github.com/sbasestarter/rtm-harness/internal/defs"

type Presence struct {
	c *Client
}

// WhoNow lists the users of a channel, 100 per page. Pass the previous result's nextPage to continue.
func (p *Presence) WhoNow(channelName string, channelType ChannelType, options *PresenceOptions) (uint64, error) {
	return p.c.submit(clientOwner, &defs.Request{
		Op:              defs.OpWhoNow,
		ChannelName:     channelName,
		ChannelType:     channelType,
		PresenceOptions: options,
	})
}

func (p *Presence) GetOnlineUsers(channelName string, channelType ChannelType, options *GetOnlineUsersOptions) (uint64, error) {
	return p.c.submit(clientOwner, &defs.Request{
		Op:              defs.OpGetOnlineUsers,
		ChannelName:     channelName,
		ChannelType:     channelType,
		PresenceOptions: options,
	})
}

func (p *Presence) WhereNow(userID string) (uint64, error) {
	return p.c.submit(clientOwner, &defs.Request{
		Op:     defs.OpWhereNow,
		UserID: userID,
	})
}

func (p *Presence) GetUserChannels(userID string) (uint64, error) {
	return p.c.submit(clientOwner, &defs.Request{
		Op:     defs.OpGetUserChannels,
		UserID: userID,
	})
}

func (p *Presence) SetState(channelName string, channelType ChannelType, items []StateItem) (uint64, error) {
	return p.c.submit(clientOwner, &defs.Request{
		Op:          defs.OpSetState,
		ChannelName: channelName,
		ChannelType: channelType,
		States:      append([]StateItem(nil), items...),
	})
}

// RemoveState drops the listed keys, or every key when none are listed.
func (p *Presence) RemoveState(channelName string, channelType ChannelType, keys []string) (uint64, error) {
	return p.c.submit(clientOwner, &defs.Request{
		Op:          defs.OpRemoveState,
		ChannelName: channelName,
		ChannelType: channelType,
		Keys:        append([]string(nil), keys...),
	})
}

func (p *Presence) GetState(channelName string, channelType ChannelType, userID string) (uint64, error) {
	return p.c.submit(clientOwner, &defs.Request{
		Op:          defs.OpGetState,
		ChannelName: channelName,
		ChannelType: channelType,
		UserID:      userID,
	})
}

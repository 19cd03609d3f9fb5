package rtm

import "github.com/sbasestarter/rtm-harness/internal/defs"

// Storage reads and writes channel and user metadata. It shares the lifetime of its client.
type Storage struct {
	c *Client
}

func (s *Storage) channelMetadata(op defs.Op, channelName string, channelType ChannelType, data *Metadata,
	options *MetadataOptions, lockName string) (uint64, error) {
	return s.c.submit(clientOwner, &defs.Request{
		Op:              op,
		ChannelName:     channelName,
		ChannelType:     channelType,
		Metadata:        data.Clone(),
		MetadataOptions: options,
		LockName:        lockName,
	})
}

// SetChannelMetadata replaces every item of the channel's metadata. A non-empty lockName must be held by the caller.
func (s *Storage) SetChannelMetadata(channelName string, channelType ChannelType, data *Metadata,
	options *MetadataOptions, lockName string) (uint64, error) {
	return s.channelMetadata(defs.OpSetChannelMetadata, channelName, channelType, data, options, lockName)
}

// UpdateChannelMetadata writes the listed items and keeps the others.
func (s *Storage) UpdateChannelMetadata(channelName string, channelType ChannelType, data *Metadata,
	options *MetadataOptions, lockName string) (uint64, error) {
	return s.channelMetadata(defs.OpUpdateChannelMetadata, channelName, channelType, data, options, lockName)
}

// RemoveChannelMetadata deletes the listed items, or every item when data lists none.
func (s *Storage) RemoveChannelMetadata(channelName string, channelType ChannelType, data *Metadata,
	options *MetadataOptions, lockName string) (uint64, error) {
	return s.channelMetadata(defs.OpRemoveChannelMetadata, channelName, channelType, data, options, lockName)
}

func (s *Storage) GetChannelMetadata(channelName string, channelType ChannelType) (uint64, error) {
	return s.c.submit(clientOwner, &defs.Request{
		Op:          defs.OpGetChannelMetadata,
		ChannelName: channelName,
		ChannelType: channelType,
	})
}

func (s *Storage) userMetadata(op defs.Op, userID string, data *Metadata, options *MetadataOptions) (uint64, error) {
	return s.c.submit(clientOwner, &defs.Request{
		Op:              op,
		UserID:          userID,
		Metadata:        data.Clone(),
		MetadataOptions: options,
	})
}

func (s *Storage) SetUserMetadata(userID string, data *Metadata, options *MetadataOptions) (uint64, error) {
	return s.userMetadata(defs.OpSetUserMetadata, userID, data, options)
}

func (s *Storage) UpdateUserMetadata(userID string, data *Metadata, options *MetadataOptions) (uint64, error) {
	return s.userMetadata(defs.OpUpdateUserMetadata, userID, data, options)
}

func (s *Storage) RemoveUserMetadata(userID string, data *Metadata, options *MetadataOptions) (uint64, error) {
	return s.userMetadata(defs.OpRemoveUserMetadata, userID, data, options)
}

func (s *Storage) GetUserMetadata(userID string) (uint64, error) {
	return s.c.submit(clientOwner, &defs.Request{
		Op:     defs.OpGetUserMetadata,
		UserID: userID,
	})
}

func (s *Storage) SubscribeUserMetadata(userID string) (uint64, error) {
	return s.c.submit(clientOwner, &defs.Request{
		Op:     defs.OpSubscribeUserMetadata,
		UserID: userID,
	})
}

func (s *Storage) UnsubscribeUserMetadata(userID string) (uint64, error) {
	return s.c.submit(clientOwner, &defs.Request{
		Op:     defs.OpUnsubscribeUserMetadata,
		UserID: userID,
	})
}

package rtm

// EventHandler receives every event and result of a client. All methods run on the client's dispatcher
// routine, one at a time. Embed NopEventHandler to implement only the methods you need.
type EventHandler interface {
	OnMessageEvent(event *MessageEvent)
	OnPresenceEvent(event *PresenceEvent)
	OnTopicEvent(event *TopicEvent)
	OnLockEvent(event *LockEvent)
	OnStorageEvent(event *StorageEvent)
	OnLinkStateEvent(event *LinkStateEvent)
	OnConnectionStateChanged(channelName string, state ConnectionState, reason ConnectionChangeReason)
	OnTokenPrivilegeWillExpire(channelName string)

	OnLoginResult(requestID uint64, errorCode ErrorCode)
	OnLogoutResult(requestID uint64, errorCode ErrorCode)
	OnRenewTokenResult(requestID uint64, serverType ServiceType, channelName string, errorCode ErrorCode)
	OnPublishResult(requestID uint64, errorCode ErrorCode)
	OnSubscribeResult(requestID uint64, channelName string, errorCode ErrorCode)
	OnUnsubscribeResult(requestID uint64, channelName string, errorCode ErrorCode)

	OnJoinResult(requestID uint64, channelName, userID string, errorCode ErrorCode)
	OnLeaveResult(requestID uint64, channelName, userID string, errorCode ErrorCode)
	OnJoinTopicResult(requestID uint64, channelName, userID, topic, meta string, errorCode ErrorCode)
	OnLeaveTopicResult(requestID uint64, channelName, userID, topic, meta string, errorCode ErrorCode)
	OnPublishTopicMessageResult(requestID uint64, channelName, topic string, errorCode ErrorCode)
	OnSubscribeTopicResult(requestID uint64, channelName, userID, topic string, succeedUsers, failedUsers []string,
		errorCode ErrorCode)
	OnUnsubscribeTopicResult(requestID uint64, channelName, topic string, errorCode ErrorCode)
	OnGetSubscribedUserListResult(requestID uint64, channelName, topic string, users []string, errorCode ErrorCode)

	OnSetChannelMetadataResult(requestID uint64, channelName string, channelType ChannelType, errorCode ErrorCode)
	OnUpdateChannelMetadataResult(requestID uint64, channelName string, channelType ChannelType, errorCode ErrorCode)
	OnRemoveChannelMetadataResult(requestID uint64, channelName string, channelType ChannelType, errorCode ErrorCode)
	OnGetChannelMetadataResult(requestID uint64, channelName string, channelType ChannelType, data *Metadata,
		errorCode ErrorCode)
	OnSetUserMetadataResult(requestID uint64, userID string, errorCode ErrorCode)
	OnUpdateUserMetadataResult(requestID uint64, userID string, errorCode ErrorCode)
	OnRemoveUserMetadataResult(requestID uint64, userID string, errorCode ErrorCode)
	OnGetUserMetadataResult(requestID uint64, userID string, data *Metadata, errorCode ErrorCode)
	OnSubscribeUserMetadataResult(requestID uint64, userID string, errorCode ErrorCode)
	OnUnsubscribeUserMetadataResult(requestID uint64, userID string, errorCode ErrorCode)

	OnSetLockResult(requestID uint64, channelName string, channelType ChannelType, lockName string, errorCode ErrorCode)
	OnRemoveLockResult(requestID uint64, channelName string, channelType ChannelType, lockName string, errorCode ErrorCode)
	OnReleaseLockResult(requestID uint64, channelName string, channelType ChannelType, lockName string, errorCode ErrorCode)
	OnAcquireLockResult(requestID uint64, channelName string, channelType ChannelType, lockName string,
		errorCode ErrorCode, errorDetails string)
	OnRevokeLockResult(requestID uint64, channelName string, channelType ChannelType, lockName string, errorCode ErrorCode)
	OnGetLocksResult(requestID uint64, channelName string, channelType ChannelType, lockDetails []LockDetail,
		errorCode ErrorCode)

	OnWhoNowResult(requestID uint64, userStates []UserState, nextPage string, errorCode ErrorCode)
	OnGetOnlineUsersResult(requestID uint64, userStates []UserState, nextPage string, errorCode ErrorCode)
	OnWhereNowResult(requestID uint64, channels []ChannelInfo, errorCode ErrorCode)
	OnGetUserChannelsResult(requestID uint64, channels []ChannelInfo, errorCode ErrorCode)
	OnPresenceSetStateResult(requestID uint64, errorCode ErrorCode)
	OnPresenceRemoveStateResult(requestID uint64, errorCode ErrorCode)
	OnPresenceGetStateResult(requestID uint64, state *UserState, errorCode ErrorCode)

	OnGetHistoryMessagesResult(requestID uint64, messages []HistoryMessage, newStart uint64, errorCode ErrorCode)
}

// NopEventHandler drops everything.
type NopEventHandler struct{}

func (NopEventHandler) OnMessageEvent(*MessageEvent) {}
func (NopEventHandler) OnPresenceEvent(*PresenceEvent) {}
func (NopEventHandler) OnTopicEvent(*TopicEvent) {}
func (NopEventHandler) OnLockEvent(*LockEvent) {}
func (NopEventHandler) OnStorageEvent(*StorageEvent) {}
func (NopEventHandler) OnLinkStateEvent(*LinkStateEvent) {}
func (NopEventHandler) OnConnectionStateChanged(string, ConnectionState, ConnectionChangeReason) {}
func (NopEventHandler) OnTokenPrivilegeWillExpire(string) {}

func (NopEventHandler) OnLoginResult(uint64, ErrorCode) {}
func (NopEventHandler) OnLogoutResult(uint64, ErrorCode) {}
func (NopEventHandler) OnRenewTokenResult(uint64, ServiceType, string, ErrorCode) {}
func (NopEventHandler) OnPublishResult(uint64, ErrorCode) {}
func (NopEventHandler) OnSubscribeResult(uint64, string, ErrorCode) {}
func (NopEventHandler) OnUnsubscribeResult(uint64, string, ErrorCode) {}
func (NopEventHandler) OnJoinResult(uint64, string, string, ErrorCode) {}
func (NopEventHandler) OnLeaveResult(uint64, string, string, ErrorCode) {}
func (NopEventHandler) OnJoinTopicResult(uint64, string, string, string, string, ErrorCode) {}
func (NopEventHandler) OnLeaveTopicResult(uint64, string, string, string, string, ErrorCode) {}
func (NopEventHandler) OnPublishTopicMessageResult(uint64, string, string, ErrorCode) {}
func (NopEventHandler) OnSubscribeTopicResult(uint64, string, string, string, []string, []string, ErrorCode) {}
func (NopEventHandler) OnUnsubscribeTopicResult(uint64, string, string, ErrorCode) {}
func (NopEventHandler) OnGetSubscribedUserListResult(uint64, string, string, []string, ErrorCode) {}

func (NopEventHandler) OnSetChannelMetadataResult(uint64, string, ChannelType, ErrorCode) {}
func (NopEventHandler) OnUpdateChannelMetadataResult(uint64, string, ChannelType, ErrorCode) {}
func (NopEventHandler) OnRemoveChannelMetadataResult(uint64, string, ChannelType, ErrorCode) {}
func (NopEventHandler) OnGetChannelMetadataResult(uint64, string, ChannelType, *Metadata, ErrorCode) {}
func (NopEventHandler) OnSetUserMetadataResult(uint64, string, ErrorCode) {}
func (NopEventHandler) OnUpdateUserMetadataResult(uint64, string, ErrorCode) {}
func (NopEventHandler) OnRemoveUserMetadataResult(uint64, string, ErrorCode) {}
func (NopEventHandler) OnGetUserMetadataResult(uint64, string, *Metadata, ErrorCode) {}
func (NopEventHandler) OnSubscribeUserMetadataResult(uint64, string, ErrorCode) {}
func (NopEventHandler) OnUnsubscribeUserMetadataResult(uint64, string, ErrorCode) {}

func (NopEventHandler) OnSetLockResult(uint64, string, ChannelType, string, ErrorCode) {}
func (NopEventHandler) OnRemoveLockResult(uint64, string, ChannelType, string, ErrorCode) {}
func (NopEventHandler) OnReleaseLockResult(uint64, string, ChannelType, string, ErrorCode) {}
func (NopEventHandler) OnAcquireLockResult(uint64, string, ChannelType, string, ErrorCode, string) {}
func (NopEventHandler) OnRevokeLockResult(uint64, string, ChannelType, string, ErrorCode) {}
func (NopEventHandler) OnGetLocksResult(uint64, string, ChannelType, []LockDetail, ErrorCode) {}

func (NopEventHandler) OnWhoNowResult(uint64, []UserState, string, ErrorCode) {}
func (NopEventHandler) OnGetOnlineUsersResult(uint64, []UserState, string, ErrorCode) {}
func (NopEventHandler) OnWhereNowResult(uint64, []ChannelInfo, ErrorCode) {}
func (NopEventHandler) OnGetUserChannelsResult(uint64, []ChannelInfo, ErrorCode) {}
func (NopEventHandler) OnPresenceSetStateResult(uint64, ErrorCode) {}
func (NopEventHandler) OnPresenceRemoveStateResult(uint64, ErrorCode) {}
func (NopEventHandler) OnPresenceGetStateResult(uint64, *UserState, ErrorCode) {}

func (NopEventHandler) OnGetHistoryMessagesResult(uint64, []HistoryMessage, uint64, ErrorCode) {}

// HandlerFuncs is an EventHandler built from optional funcs. Results of operations without a func
// are passed to Result when it is set.
type HandlerFuncs struct {
	Message         func(event *MessageEvent)
	Presence        func(event *PresenceEvent)
	Topic           func(event *TopicEvent)
	Lock            func(event *LockEvent)
	Storage         func(event *StorageEvent)
	LinkState       func(event *LinkStateEvent)
	ConnectionState func(channelName string, state ConnectionState, reason ConnectionChangeReason)
	TokenWillExpire func(channelName string)

	Login       func(requestID uint64, errorCode ErrorCode)
	Logout      func(requestID uint64, errorCode ErrorCode)
	AcquireLock func(requestID uint64, lockName string, errorCode ErrorCode, errorDetails string)
	GetMetadata func(requestID uint64, data *Metadata, errorCode ErrorCode)

	// Result sees every other result, named by its operation.
	Result func(op string, requestID uint64, errorCode ErrorCode)
}

func (h *HandlerFuncs) result(op string, requestID uint64, errorCode ErrorCode) {
	if h.Result != nil {
		h.Result(op, requestID, errorCode)
	}
}

func (h *HandlerFuncs) OnMessageEvent(event *MessageEvent) {
	if h.Message != nil {
		h.Message(event)
	}
}

func (h *HandlerFuncs) OnPresenceEvent(event *PresenceEvent) {
	if h.Presence != nil {
		h.Presence(event)
	}
}

func (h *HandlerFuncs) OnTopicEvent(event *TopicEvent) {
	if h.Topic != nil {
		h.Topic(event)
	}
}

func (h *HandlerFuncs) OnLockEvent(event *LockEvent) {
	if h.Lock != nil {
		h.Lock(event)
	}
}

func (h *HandlerFuncs) OnStorageEvent(event *StorageEvent) {
	if h.Storage != nil {
		h.Storage(event)
	}
}

func (h *HandlerFuncs) OnLinkStateEvent(event *LinkStateEvent) {
	if h.LinkState != nil {
		h.LinkState(event)
	}
}

func (h *HandlerFuncs) OnConnectionStateChanged(channelName string, state ConnectionState, reason ConnectionChangeReason) {
	if h.ConnectionState != nil {
		h.ConnectionState(channelName, state, reason)
	}
}

func (h *HandlerFuncs) OnTokenPrivilegeWillExpire(channelName string) {
	if h.TokenWillExpire != nil {
		h.TokenWillExpire(channelName)
	}
}

func (h *HandlerFuncs) OnLoginResult(requestID uint64, errorCode ErrorCode) {
	if h.Login != nil {
		h.Login(requestID, errorCode)

		return
	}

	h.result("Login", requestID, errorCode)
}

func (h *HandlerFuncs) OnLogoutResult(requestID uint64, errorCode ErrorCode) {
	if h.Logout != nil {
		h.Logout(requestID, errorCode)

		return
	}

	h.result("Logout", requestID, errorCode)
}

func (h *HandlerFuncs) OnRenewTokenResult(requestID uint64, _ ServiceType, _ string, errorCode ErrorCode) {
	h.result("RenewToken", requestID, errorCode)
}

func (h *HandlerFuncs) OnPublishResult(requestID uint64, errorCode ErrorCode) {
	h.result("Publish", requestID, errorCode)
}

func (h *HandlerFuncs) OnSubscribeResult(requestID uint64, _ string, errorCode ErrorCode) {
	h.result("Subscribe", requestID, errorCode)
}

func (h *HandlerFuncs) OnUnsubscribeResult(requestID uint64, _ string, errorCode ErrorCode) {
	h.result("Unsubscribe", requestID, errorCode)
}

func (h *HandlerFuncs) OnJoinResult(requestID uint64, _, _ string, errorCode ErrorCode) {
	h.result("Join", requestID, errorCode)
}

func (h *HandlerFuncs) OnLeaveResult(requestID uint64, _, _ string, errorCode ErrorCode) {
	h.result("Leave", requestID, errorCode)
}

func (h *HandlerFuncs) OnJoinTopicResult(requestID uint64, _, _, _, _ string, errorCode ErrorCode) {
	h.result("JoinTopic", requestID, errorCode)
}

func (h *HandlerFuncs) OnLeaveTopicResult(requestID uint64, _, _, _, _ string, errorCode ErrorCode) {
	h.result("LeaveTopic", requestID, errorCode)
}

func (h *HandlerFuncs) OnPublishTopicMessageResult(requestID uint64, _, _ string, errorCode ErrorCode) {
	h.result("PublishTopicMessage", requestID, errorCode)
}

func (h *HandlerFuncs) OnSubscribeTopicResult(requestID uint64, _, _, _ string, _, _ []string, errorCode ErrorCode) {
	h.result("SubscribeTopic", requestID, errorCode)
}

func (h *HandlerFuncs) OnUnsubscribeTopicResult(requestID uint64, _, _ string, errorCode ErrorCode) {
	h.result("UnsubscribeTopic", requestID, errorCode)
}

func (h *HandlerFuncs) OnGetSubscribedUserListResult(requestID uint64, _, _ string, _ []string, errorCode ErrorCode) {
	h.result("GetSubscribedUserList", requestID, errorCode)
}

func (h *HandlerFuncs) OnSetChannelMetadataResult(requestID uint64, _ string, _ ChannelType, errorCode ErrorCode) {
	h.result("SetChannelMetadata", requestID, errorCode)
}

func (h *HandlerFuncs) OnUpdateChannelMetadataResult(requestID uint64, _ string, _ ChannelType, errorCode ErrorCode) {
	h.result("UpdateChannelMetadata", requestID, errorCode)
}

func (h *HandlerFuncs) OnRemoveChannelMetadataResult(requestID uint64, _ string, _ ChannelType, errorCode ErrorCode) {
	h.result("RemoveChannelMetadata", requestID, errorCode)
}

func (h *HandlerFuncs) OnGetChannelMetadataResult(requestID uint64, _ string, _ ChannelType, data *Metadata,
	errorCode ErrorCode) {
	if h.GetMetadata != nil {
		h.GetMetadata(requestID, data, errorCode)

		return
	}

	h.result("GetChannelMetadata", requestID, errorCode)
}

func (h *HandlerFuncs) OnSetUserMetadataResult(requestID uint64, _ string, errorCode ErrorCode) {
	h.result("SetUserMetadata", requestID, errorCode)
}

func (h *HandlerFuncs) OnUpdateUserMetadataResult(requestID uint64, _ string, errorCode ErrorCode) {
	h.result("UpdateUserMetadata", requestID, errorCode)
}

func (h *HandlerFuncs) OnRemoveUserMetadataResult(requestID uint64, _ string, errorCode ErrorCode) {
	h.result("RemoveUserMetadata", requestID, errorCode)
}

func (h *HandlerFuncs) OnGetUserMetadataResult(requestID uint64, _ string, data *Metadata, errorCode ErrorCode) {
	if h.GetMetadata != nil {
		h.GetMetadata(requestID, data, errorCode)

		return
	}

	h.result("GetUserMetadata", requestID, errorCode)
}

func (h *HandlerFuncs) OnSubscribeUserMetadataResult(requestID uint64, _ string, errorCode ErrorCode) {
	h.result("SubscribeUserMetadata", requestID, errorCode)
}

func (h *HandlerFuncs) OnUnsubscribeUserMetadataResult(requestID uint64, _ string, errorCode ErrorCode) {
	h.result("UnsubscribeUserMetadata", requestID, errorCode)
}

func (h *HandlerFuncs) OnSetLockResult(requestID uint64, _ string, _ ChannelType, _ string, errorCode ErrorCode) {
	h.result("SetLock", requestID, errorCode)
}

func (h *HandlerFuncs) OnRemoveLockResult(requestID uint64, _ string, _ ChannelType, _ string, errorCode ErrorCode) {
	h.result("RemoveLock", requestID, errorCode)
}

func (h *HandlerFuncs) OnReleaseLockResult(requestID uint64, _ string, _ ChannelType, _ string, errorCode ErrorCode) {
	h.result("ReleaseLock", requestID, errorCode)
}

func (h *HandlerFuncs) OnAcquireLockResult(requestID uint64, _ string, _ ChannelType, lockName string,
	errorCode ErrorCode, errorDetails string) {
	if h.AcquireLock != nil {
		h.AcquireLock(requestID, lockName, errorCode, errorDetails)

		return
	}

	h.result("AcquireLock", requestID, errorCode)
}

func (h *HandlerFuncs) OnRevokeLockResult(requestID uint64, _ string, _ ChannelType, _ string, errorCode ErrorCode) {
	h.result("RevokeLock", requestID, errorCode)
}

func (h *HandlerFuncs) OnGetLocksResult(requestID uint64, _ string, _ ChannelType, _ []LockDetail, errorCode ErrorCode) {
	h.result("GetLocks", requestID, errorCode)
}

func (h *HandlerFuncs) OnWhoNowResult(requestID uint64, _ []UserState, _ string, errorCode ErrorCode) {
	h.result("WhoNow", requestID, errorCode)
}

func (h *HandlerFuncs) OnGetOnlineUsersResult(requestID uint64, _ []UserState, _ string, errorCode ErrorCode) {
	h.result("GetOnlineUsers", requestID, errorCode)
}

func (h *HandlerFuncs) OnWhereNowResult(requestID uint64, _ []ChannelInfo, errorCode ErrorCode) {
	h.result("WhereNow", requestID, errorCode)
}

func (h *HandlerFuncs) OnGetUserChannelsResult(requestID uint64, _ []ChannelInfo, errorCode ErrorCode) {
	h.result("GetUserChannels", requestID, errorCode)
}

func (h *HandlerFuncs) OnPresenceSetStateResult(requestID uint64, errorCode ErrorCode) {
	h.result("SetState", requestID, errorCode)
}

func (h *HandlerFuncs) OnPresenceRemoveStateResult(requestID uint64, errorCode ErrorCode) {
	h.result("RemoveState", requestID, errorCode)
}

func (h *HandlerFuncs) OnPresenceGetStateResult(requestID uint64, _ *UserState, errorCode ErrorCode) {
	h.result("GetState", requestID, errorCode)
}

func (h *HandlerFuncs) OnGetHistoryMessagesResult(requestID uint64, _ []HistoryMessage, _ uint64, errorCode ErrorCode) {
	h.result("GetHistoryMessages", requestID, errorCode)
}

package rtm

import "github.com/sbasestarter/rtm-harness/internal/defs"

type (
	Backend = defs.Backend

	ChannelType            = defs.ChannelType
	MessageType            = defs.MessageType
	StorageType            = defs.StorageType
	StorageEventType       = defs.StorageEventType
	LockEventType          = defs.LockEventType
	PresenceEventType      = defs.PresenceEventType
	TopicEventType         = defs.TopicEventType
	LinkState              = defs.LinkState
	LinkOperation          = defs.LinkOperation
	ServiceType            = defs.ServiceType
	ConnectionState        = defs.ConnectionState
	ConnectionChangeReason = defs.ConnectionChangeReason
	Qos                    = defs.Qos
	MessagePriority        = defs.MessagePriority

	Metadata        = defs.Metadata
	MetadataItem    = defs.MetadataItem
	MetadataOptions = defs.MetadataOptions
	LockDetail      = defs.LockDetail
	StateItem       = defs.StateItem
	UserState       = defs.UserState
	ChannelInfo     = defs.ChannelInfo
	PublisherInfo   = defs.PublisherInfo
	TopicInfo       = defs.TopicInfo
	HistoryMessage  = defs.HistoryMessage

	SubscribeOptions          = defs.SubscribeOptions
	JoinChannelOptions        = defs.JoinChannelOptions
	JoinTopicOptions          = defs.JoinTopicOptions
	PublishOptions            = defs.PublishOptions
	TopicMessageOptions       = defs.TopicMessageOptions
	PresenceOptions           = defs.PresenceOptions
	GetOnlineUsersOptions     = defs.GetOnlineUsersOptions
	GetHistoryMessagesOptions = defs.GetHistoryMessagesOptions

	MessageEvent         = defs.MessageEvent
	PresenceEvent        = defs.PresenceEvent
	TopicEvent           = defs.TopicEvent
	LockEvent            = defs.LockEvent
	StorageEvent         = defs.StorageEvent
	LinkStateEvent       = defs.LinkStateEvent
	SnapshotInfo         = defs.SnapshotInfo
	ConnectionStateEvent = defs.ConnectionStateEvent
)

const (
	ChannelTypeNone    = defs.ChannelTypeNone
	ChannelTypeMessage = defs.ChannelTypeMessage
	ChannelTypeStream  = defs.ChannelTypeStream
	ChannelTypeUser    = defs.ChannelTypeUser

	MessageTypeBinary = defs.MessageTypeBinary
	MessageTypeString = defs.MessageTypeString

	StorageTypeNone    = defs.StorageTypeNone
	StorageTypeUser    = defs.StorageTypeUser
	StorageTypeChannel = defs.StorageTypeChannel

	StorageEventTypeNone     = defs.StorageEventTypeNone
	StorageEventTypeSnapshot = defs.StorageEventTypeSnapshot
	StorageEventTypeSet      = defs.StorageEventTypeSet
	StorageEventTypeUpdate   = defs.StorageEventTypeUpdate
	StorageEventTypeRemove   = defs.StorageEventTypeRemove

	LockEventTypeNone         = defs.LockEventTypeNone
	LockEventTypeSnapshot     = defs.LockEventTypeSnapshot
	LockEventTypeLockSet      = defs.LockEventTypeLockSet
	LockEventTypeLockRemoved  = defs.LockEventTypeLockRemoved
	LockEventTypeLockAcquired = defs.LockEventTypeLockAcquired
	LockEventTypeLockReleased = defs.LockEventTypeLockReleased
	LockEventTypeLockExpired  = defs.LockEventTypeLockExpired

	PresenceEventTypeNone               = defs.PresenceEventTypeNone
	PresenceEventTypeSnapshot           = defs.PresenceEventTypeSnapshot
	PresenceEventTypeInterval           = defs.PresenceEventTypeInterval
	PresenceEventTypeRemoteJoinChannel  = defs.PresenceEventTypeRemoteJoinChannel
	PresenceEventTypeRemoteLeaveChannel = defs.PresenceEventTypeRemoteLeaveChannel
	PresenceEventTypeRemoteTimeout      = defs.PresenceEventTypeRemoteTimeout
	PresenceEventTypeRemoteStateChanged = defs.PresenceEventTypeRemoteStateChanged
	PresenceEventTypeErrorOutOfService  = defs.PresenceEventTypeErrorOutOfService

	TopicEventTypeNone             = defs.TopicEventTypeNone
	TopicEventTypeSnapshot         = defs.TopicEventTypeSnapshot
	TopicEventTypeRemoteJoinTopic  = defs.TopicEventTypeRemoteJoinTopic
	TopicEventTypeRemoteLeaveTopic = defs.TopicEventTypeRemoteLeaveTopic

	LinkStateIdle         = defs.LinkStateIdle
	LinkStateConnecting   = defs.LinkStateConnecting
	LinkStateConnected    = defs.LinkStateConnected
	LinkStateDisconnected = defs.LinkStateDisconnected
	LinkStateSuspended    = defs.LinkStateSuspended
	LinkStateFailed       = defs.LinkStateFailed

	LinkOperationLogin            = defs.LinkOperationLogin
	LinkOperationLogout           = defs.LinkOperationLogout
	LinkOperationJoin             = defs.LinkOperationJoin
	LinkOperationLeave            = defs.LinkOperationLeave
	LinkOperationServerReject     = defs.LinkOperationServerReject
	LinkOperationAutoReconnect    = defs.LinkOperationAutoReconnect
	LinkOperationReconnected      = defs.LinkOperationReconnected
	LinkOperationHeartbeatTimeout = defs.LinkOperationHeartbeatTimeout
	LinkOperationServerTimeout    = defs.LinkOperationServerTimeout
	LinkOperationNetworkChange    = defs.LinkOperationNetworkChange

	ServiceTypeNone    = defs.ServiceTypeNone
	ServiceTypeMessage = defs.ServiceTypeMessage
	ServiceTypeStream  = defs.ServiceTypeStream

	ConnectionStateDisconnected = defs.ConnectionStateDisconnected
	ConnectionStateConnecting   = defs.ConnectionStateConnecting
	ConnectionStateConnected    = defs.ConnectionStateConnected
	ConnectionStateReconnecting = defs.ConnectionStateReconnecting
	ConnectionStateFailed       = defs.ConnectionStateFailed

	ConnectionChangeReasonConnecting       = defs.ConnectionChangeReasonConnecting
	ConnectionChangeReasonJoinSuccess      = defs.ConnectionChangeReasonJoinSuccess
	ConnectionChangeReasonInterrupted      = defs.ConnectionChangeReasonInterrupted
	ConnectionChangeReasonJoinFailed       = defs.ConnectionChangeReasonJoinFailed
	ConnectionChangeReasonLeaveChannel     = defs.ConnectionChangeReasonLeaveChannel
	ConnectionChangeReasonInvalidToken     = defs.ConnectionChangeReasonInvalidToken
	ConnectionChangeReasonTokenExpired     = defs.ConnectionChangeReasonTokenExpired
	ConnectionChangeReasonRejectedByServer = defs.ConnectionChangeReasonRejectedByServer
	ConnectionChangeReasonRenewToken       = defs.ConnectionChangeReasonRenewToken
	ConnectionChangeReasonLost             = defs.ConnectionChangeReasonLost

	QosUnordered = defs.QosUnordered
	QosOrdered   = defs.QosOrdered

	MessagePriorityHighest = defs.MessagePriorityHighest
	MessagePriorityHigh    = defs.MessagePriorityHigh
	MessagePriorityNormal  = defs.MessagePriorityNormal
	MessagePriorityLow     = defs.MessagePriorityLow
)

// NewMetadata returns an empty container. Its major revision -1 skips the revision check on write.
func NewMetadata() *Metadata {
	return defs.NewMetadata()
}

// NewMetadataItem returns an item written without a revision check. Set Revision on the result
// to make the write conditional.
func NewMetadataItem(key, value string) MetadataItem {
	return defs.NewMetadataItem(key, value)
}

package defs

type ChannelType int

const (
	ChannelTypeNone ChannelType = iota
	ChannelTypeMessage
	ChannelTypeStream
	ChannelTypeUser
)

func (t ChannelType) String() string {
	switch t {
	case ChannelTypeMessage:
		return "message"
	case ChannelTypeStream:
		return "stream"
	case ChannelTypeUser:
		return "user"
	}

	return "none"
}

type MessageType int

const (
	MessageTypeBinary MessageType = iota
	MessageTypeString
)

type StorageType int

const (
	StorageTypeNone StorageType = iota
	StorageTypeUser
	StorageTypeChannel
)

type StorageEventType int

const (
	StorageEventTypeNone StorageEventType = iota
	StorageEventTypeSnapshot
	StorageEventTypeSet
	StorageEventTypeUpdate
	StorageEventTypeRemove
)

type LockEventType int

const (
	LockEventTypeNone LockEventType = iota
	LockEventTypeSnapshot
	LockEventTypeLockSet
	LockEventTypeLockRemoved
	LockEventTypeLockAcquired
	LockEventTypeLockReleased
	LockEventTypeLockExpired
)

type PresenceEventType int

const (
	PresenceEventTypeNone PresenceEventType = iota
	PresenceEventTypeSnapshot
	PresenceEventTypeInterval
	PresenceEventTypeRemoteJoinChannel
	PresenceEventTypeRemoteLeaveChannel
	PresenceEventTypeRemoteTimeout
	PresenceEventTypeRemoteStateChanged
	PresenceEventTypeErrorOutOfService
)

type TopicEventType int

const (
	TopicEventTypeNone TopicEventType = iota
	TopicEventTypeSnapshot
	TopicEventTypeRemoteJoinTopic
	TopicEventTypeRemoteLeaveTopic
)

type LinkState int

const (
	LinkStateIdle LinkState = iota
	LinkStateConnecting
	LinkStateConnected
	LinkStateDisconnected
	LinkStateSuspended
	LinkStateFailed
)

func (s LinkState) String() string {
	switch s {
	case LinkStateIdle:
		return "idle"
	case LinkStateConnecting:
		return "connecting"
	case LinkStateConnected:
		return "connected"
	case LinkStateDisconnected:
		return "disconnected"
	case LinkStateSuspended:
		return "suspended"
	case LinkStateFailed:
		return "failed"
	}

	return "unknown"
}

type LinkOperation int

const (
	LinkOperationLogin LinkOperation = iota
	LinkOperationLogout
	LinkOperationJoin
	LinkOperationLeave
	LinkOperationServerReject
	LinkOperationAutoReconnect
	LinkOperationReconnected
	LinkOperationHeartbeatTimeout
	LinkOperationServerTimeout
	LinkOperationNetworkChange
)

type ServiceType int

const (
	ServiceTypeNone    ServiceType = 0
	ServiceTypeMessage ServiceType = 1
	ServiceTypeStream  ServiceType = 2
)

type ConnectionState int

const (
	ConnectionStateDisconnected ConnectionState = iota + 1
	ConnectionStateConnecting
	ConnectionStateConnected
	ConnectionStateReconnecting
	ConnectionStateFailed
)

type ConnectionChangeReason int

const (
	ConnectionChangeReasonConnecting ConnectionChangeReason = iota
	ConnectionChangeReasonJoinSuccess
	ConnectionChangeReasonInterrupted
	ConnectionChangeReasonBannedByServer
	ConnectionChangeReasonJoinFailed
	ConnectionChangeReasonLeaveChannel
	ConnectionChangeReasonInvalidAppID
	ConnectionChangeReasonInvalidChannelName
	ConnectionChangeReasonInvalidToken
	ConnectionChangeReasonTokenExpired
	ConnectionChangeReasonRejectedByServer
	ConnectionChangeReasonSettingProxyServer
	ConnectionChangeReasonRenewToken
	ConnectionChangeReasonClientIPAddressChanged
	ConnectionChangeReasonKeepAliveTimeout
	ConnectionChangeReasonRejoinSuccess
	ConnectionChangeReasonLost
	ConnectionChangeReasonEchoTest
	ConnectionChangeReasonClientIPAddressChangedByUser
	ConnectionChangeReasonSameUIDLogin
	ConnectionChangeReasonTooManyBroadcasters
)

type Qos int

const (
	QosUnordered Qos = iota
	QosOrdered
)

type MessagePriority int

const (
	MessagePriorityHighest MessagePriority = 0
	MessagePriorityHigh    MessagePriority = 1
	MessagePriorityNormal  MessagePriority = 4
	MessagePriorityLow     MessagePriority = 8
)

package defs

type MessageEvent struct {
	ChannelType  ChannelType `json:"channelType"`
	MessageType  MessageType `json:"messageType"`
	ChannelName  string      `json:"channelName"`
	ChannelTopic string      `json:"channelTopic,omitempty"`
	Message      []byte      `json:"message,omitempty"`
	Publisher    string      `json:"publisher"`
	CustomType   string      `json:"customType,omitempty"`
	Timestamp    uint64      `json:"timestamp"`
}

type SnapshotInfo struct {
	UserStateList []UserState `json:"userStateList,omitempty"`
}

type PresenceEvent struct {
	Type        PresenceEventType `json:"type"`
	ChannelType ChannelType       `json:"channelType"`
	ChannelName string            `json:"channelName"`
	Publisher   string            `json:"publisher,omitempty"`
	StateItems  []StateItem       `json:"stateItems,omitempty"`
	Snapshot    *SnapshotInfo     `json:"snapshot,omitempty"`
	Timestamp   uint64            `json:"timestamp"`
}

type TopicEvent struct {
	Type        TopicEventType `json:"type"`
	ChannelName string         `json:"channelName"`
	Publisher   string         `json:"publisher,omitempty"`
	TopicInfos  []TopicInfo    `json:"topicInfos,omitempty"`
	Timestamp   uint64         `json:"timestamp"`
}

type LockEvent struct {
	ChannelType    ChannelType   `json:"channelType"`
	EventType      LockEventType `json:"eventType"`
	ChannelName    string        `json:"channelName"`
	LockDetailList []LockDetail  `json:"lockDetailList,omitempty"`
	Timestamp      uint64        `json:"timestamp"`
}

type StorageEvent struct {
	ChannelType ChannelType      `json:"channelType"`
	StorageType StorageType      `json:"storageType"`
	EventType   StorageEventType `json:"eventType"`
	Target      string           `json:"target"`
	Data        *Metadata        `json:"data,omitempty"`
	Timestamp   uint64           `json:"timestamp"`
}

type LinkStateEvent struct {
	CurrentState       LinkState     `json:"currentState"`
	PreviousState      LinkState     `json:"previousState"`
	ServiceType        ServiceType   `json:"serviceType"`
	Operation          LinkOperation `json:"operation"`
	ReasonCode         ErrorCode     `json:"reasonCode,omitempty"`
	Reason             string        `json:"reason,omitempty"`
	AffectedChannels   []string      `json:"affectedChannels,omitempty"`
	UnrestoredChannels []string      `json:"unrestoredChannels,omitempty"`
	IsResumed          bool          `json:"isResumed,omitempty"`
	Timestamp          uint64        `json:"timestamp"`
}

type ConnectionStateEvent struct {
	ChannelName string                 `json:"channelName"`
	State       ConnectionState        `json:"state"`
	Reason      ConnectionChangeReason `json:"reason"`
}

type TokenWillExpireEvent struct {
	ChannelName string `json:"channelName,omitempty"`
}

// Event is an unsolicited notification. Exactly one member is set.
type Event struct {
	Message         *MessageEvent         `json:"message,omitempty"`
	Presence        *PresenceEvent        `json:"presence,omitempty"`
	Topic           *TopicEvent           `json:"topic,omitempty"`
	Lock            *LockEvent            `json:"lock,omitempty"`
	Storage         *StorageEvent         `json:"storage,omitempty"`
	LinkState       *LinkStateEvent       `json:"linkState,omitempty"`
	ConnectionState *ConnectionStateEvent `json:"connectionState,omitempty"`
	TokenWillExpire *TokenWillExpireEvent `json:"tokenWillExpire,omitempty"`
}

func (e *Event) Kind() string {
	switch {
	case e == nil:
		return "nil"
	case e.Message != nil:
		return "message"
	case e.Presence != nil:
		return "presence"
	case e.Topic != nil:
		return "topic"
	case e.Lock != nil:
		return "lock"
	case e.Storage != nil:
		return "storage"
	case e.LinkState != nil:
		return "linkState"
	case e.ConnectionState != nil:
		return "connectionState"
	case e.TokenWillExpire != nil:
		return "tokenWillExpire"
	}

	return "empty"
}

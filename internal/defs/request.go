package defs

import "strconv"

type Op int

const (
	OpNone Op = iota
	OpLogin
	OpLogout
	OpRenewToken
	OpPublish
	OpSubscribe
	OpUnsubscribe

	OpJoin
	OpLeave
	OpRenewStreamToken
	OpJoinTopic
	OpPublishTopicMessage
	OpLeaveTopic
	OpSubscribeTopic
	OpUnsubscribeTopic
	OpGetSubscribedUserList

	OpSetChannelMetadata
	OpUpdateChannelMetadata
	OpRemoveChannelMetadata
	OpGetChannelMetadata
	OpSetUserMetadata
	OpUpdateUserMetadata
	OpRemoveUserMetadata
	OpGetUserMetadata
	OpSubscribeUserMetadata
	OpUnsubscribeUserMetadata

	OpSetLock
	OpGetLocks
	OpRemoveLock
	OpAcquireLock
	OpReleaseLock
	OpRevokeLock

	OpWhoNow
	OpGetOnlineUsers
	OpWhereNow
	OpGetUserChannels
	OpSetState
	OpRemoveState
	OpGetState

	OpGetHistoryMessages
)

var opNames = map[Op]string{
	OpLogin:                   "Login",
	OpLogout:                  "Logout",
	OpRenewToken:              "RenewToken",
	OpPublish:                 "Publish",
	OpSubscribe:               "Subscribe",
	OpUnsubscribe:             "Unsubscribe",
	OpJoin:                    "Join",
	OpLeave:                   "Leave",
	OpRenewStreamToken:        "RenewStreamToken",
	OpJoinTopic:               "JoinTopic",
	OpPublishTopicMessage:     "PublishTopicMessage",
	OpLeaveTopic:              "LeaveTopic",
	OpSubscribeTopic:          "SubscribeTopic",
	OpUnsubscribeTopic:        "UnsubscribeTopic",
	OpGetSubscribedUserList:   "GetSubscribedUserList",
	OpSetChannelMetadata:      "SetChannelMetadata",
	OpUpdateChannelMetadata:   "UpdateChannelMetadata",
	OpRemoveChannelMetadata:   "RemoveChannelMetadata",
	OpGetChannelMetadata:      "GetChannelMetadata",
	OpSetUserMetadata:         "SetUserMetadata",
	OpUpdateUserMetadata:      "UpdateUserMetadata",
	OpRemoveUserMetadata:      "RemoveUserMetadata",
	OpGetUserMetadata:         "GetUserMetadata",
	OpSubscribeUserMetadata:   "SubscribeUserMetadata",
	OpUnsubscribeUserMetadata: "UnsubscribeUserMetadata",
	OpSetLock:                 "SetLock",
	OpGetLocks:                "GetLocks",
	OpRemoveLock:              "RemoveLock",
	OpAcquireLock:             "AcquireLock",
	OpReleaseLock:             "ReleaseLock",
	OpRevokeLock:              "RevokeLock",
	OpWhoNow:                  "WhoNow",
	OpGetOnlineUsers:          "GetOnlineUsers",
	OpWhereNow:                "WhereNow",
	OpGetUserChannels:         "GetUserChannels",
	OpSetState:                "SetState",
	OpRemoveState:             "RemoveState",
	OpGetState:                "GetState",
	OpGetHistoryMessages:      "GetHistoryMessages",
}

func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}

	return "Op(" + strconv.Itoa(int(op)) + ")"
}

// Request is one operation submitted by a session. Only the fields the operation uses are set.
type Request struct {
	Op        Op     `json:"op"`
	RequestID uint64 `json:"requestId"`

	Token       string      `json:"token,omitempty"`
	ChannelName string      `json:"channelName,omitempty"`
	ChannelType ChannelType `json:"channelType,omitempty"`
	UserID      string      `json:"userId,omitempty"`

	Message        []byte          `json:"message,omitempty"`
	PublishOptions *PublishOptions `json:"publishOptions,omitempty"`

	SubscribeOptions *SubscribeOptions    `json:"subscribeOptions,omitempty"`
	JoinOptions      *JoinChannelOptions  `json:"joinOptions,omitempty"`
	Topic            string               `json:"topic,omitempty"`
	JoinTopicOptions *JoinTopicOptions    `json:"joinTopicOptions,omitempty"`
	TopicMessage     *TopicMessageOptions `json:"topicMessage,omitempty"`
	Users            []string             `json:"users,omitempty"`

	Metadata        *Metadata        `json:"metadata,omitempty"`
	MetadataOptions *MetadataOptions `json:"metadataOptions,omitempty"`
	LockName        string           `json:"lockName,omitempty"`

	TTL   uint32 `json:"ttl,omitempty"`
	Retry bool   `json:"retry,omitempty"`

	PresenceOptions *PresenceOptions `json:"presenceOptions,omitempty"`
	States          []StateItem      `json:"states,omitempty"`
	Keys            []string         `json:"keys,omitempty"`

	HistoryOptions *GetHistoryMessagesOptions `json:"historyOptions,omitempty"`
}

// Result is the terminal outcome of one request.
type Result struct {
	Op           Op        `json:"op"`
	RequestID    uint64    `json:"requestId"`
	ErrorCode    ErrorCode `json:"errorCode"`
	ErrorDetails string    `json:"errorDetails,omitempty"`

	ChannelName string      `json:"channelName,omitempty"`
	ChannelType ChannelType `json:"channelType,omitempty"`
	UserID      string      `json:"userId,omitempty"`
	Topic       string      `json:"topic,omitempty"`
	Meta        string      `json:"meta,omitempty"`
	LockName    string      `json:"lockName,omitempty"`
	ServiceType ServiceType `json:"serviceType,omitempty"`

	Metadata *Metadata    `json:"metadata,omitempty"`
	Locks    []LockDetail `json:"locks,omitempty"`

	UserStates []UserState   `json:"userStates,omitempty"`
	State      *UserState    `json:"state,omitempty"`
	NextPage   string        `json:"nextPage,omitempty"`
	Count      int           `json:"count,omitempty"`
	Channels   []ChannelInfo `json:"channels,omitempty"`

	SucceedUsers []string `json:"succeedUsers,omitempty"`
	FailedUsers  []string `json:"failedUsers,omitempty"`
	Users        []string `json:"users,omitempty"`

	Messages []HistoryMessage `json:"messages,omitempty"`
	NewStart uint64           `json:"newStart,omitempty"`
}

// NewResult starts the terminal result of a request, echoing its routing fields.
func NewResult(request *Request, code ErrorCode) *Result {
	return &Result{
		Op:          request.Op,
		RequestID:   request.RequestID,
		ErrorCode:   code,
		ChannelName: request.ChannelName,
		ChannelType: request.ChannelType,
		UserID:      request.UserID,
		Topic:       request.Topic,
		LockName:    request.LockName,
	}
}

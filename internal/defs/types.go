package defs

import "strings"

// MetadataItem is one key of a metadata container. A Revision of -1 writes unconditionally; any
// other value must match the stored revision, where a missing key counts as 0.
type MetadataItem struct {
	Key          string `json:"key"`
	Value        string `json:"value,omitempty"`
	AuthorUserID string `json:"authorUserId,omitempty"`
	Revision     int64  `json:"revision"`
	UpdateTs     int64  `json:"updateTs,omitempty"`
}

type Metadata struct {
	MajorRevision int64          `json:"majorRevision"`
	Items         []MetadataItem `json:"items,omitempty"`
}

func NewMetadata() *Metadata {
	return &Metadata{MajorRevision: -1}
}

func NewMetadataItem(key, value string) MetadataItem {
	return MetadataItem{Key: key, Value: value, Revision: -1}
}

func (m *Metadata) Clone() *Metadata {
	if m == nil {
		return nil
	}

	n := &Metadata{MajorRevision: m.MajorRevision}
	if len(m.Items) > 0 {
		n.Items = append([]MetadataItem(nil), m.Items...)
	}

	return n
}

func (m *Metadata) Item(key string) (MetadataItem, bool) {
	if m == nil {
		return MetadataItem{}, false
	}

	for _, item := range m.Items {
		if item.Key == key {
			return item, true
		}
	}

	return MetadataItem{}, false
}

func (m *Metadata) SetMajorRevision(revision int64) {
	m.MajorRevision = revision
}

func (m *Metadata) SetMetadataItem(item MetadataItem) {
	for idx := range m.Items {
		if m.Items[idx].Key == item.Key {
			m.Items[idx] = item

			return
		}
	}

	m.Items = append(m.Items, item)
}

func (m *Metadata) ClearMetadata() {
	m.MajorRevision = -1
	m.Items = nil
}

type MetadataOptions struct {
	RecordTs     bool `json:"recordTs,omitempty"`
	RecordUserID bool `json:"recordUserId,omitempty"`
}

type LockDetail struct {
	LockName string `json:"lockName"`
	Owner    string `json:"owner,omitempty"`
	TTL      uint32 `json:"ttl"`
}

type StateItem struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type UserState struct {
	UserID string      `json:"userId"`
	States []StateItem `json:"states,omitempty"`
}

type ChannelInfo struct {
	ChannelName string      `json:"channelName"`
	ChannelType ChannelType `json:"channelType"`
}

type PublisherInfo struct {
	PublisherUserID string `json:"publisherUserId"`
	PublisherMeta   string `json:"publisherMeta,omitempty"`
}

type TopicInfo struct {
	Topic      string          `json:"topic"`
	Publishers []PublisherInfo `json:"publishers,omitempty"`
}

type HistoryMessage struct {
	MessageType MessageType `json:"messageType"`
	Publisher   string      `json:"publisher"`
	Message     []byte      `json:"message,omitempty"`
	CustomType  string      `json:"customType,omitempty"`
	Timestamp   uint64      `json:"timestamp"`
}

type SubscribeOptions struct {
	WithMessage  bool `json:"withMessage,omitempty"`
	WithMetadata bool `json:"withMetadata,omitempty"`
	WithPresence bool `json:"withPresence,omitempty"`
	WithLock     bool `json:"withLock,omitempty"`
	BeQuiet      bool `json:"beQuiet,omitempty"`
}

type JoinChannelOptions struct {
	Token        string `json:"token,omitempty"`
	WithMetadata bool   `json:"withMetadata,omitempty"`
	WithPresence bool   `json:"withPresence,omitempty"`
	WithLock     bool   `json:"withLock,omitempty"`
	BeQuiet      bool   `json:"beQuiet,omitempty"`
}

type JoinTopicOptions struct {
	Qos      Qos             `json:"qos,omitempty"`
	Priority MessagePriority `json:"priority,omitempty"`
	Meta     string          `json:"meta,omitempty"`
	SyncWith bool            `json:"syncWithMedia,omitempty"`
}

type PublishOptions struct {
	ChannelType    ChannelType `json:"channelType,omitempty"`
	MessageType    MessageType `json:"messageType,omitempty"`
	CustomType     string      `json:"customType,omitempty"`
	StoreInHistory bool        `json:"storeInHistory,omitempty"`
}

type TopicMessageOptions struct {
	MessageType MessageType `json:"messageType,omitempty"`
	SendTs      uint64      `json:"sendTs,omitempty"`
	CustomType  string      `json:"customType,omitempty"`
}

type PresenceOptions struct {
	IncludeUserID bool   `json:"includeUserId,omitempty"`
	IncludeState  bool   `json:"includeState,omitempty"`
	Page          string `json:"page,omitempty"`
}

type GetOnlineUsersOptions = PresenceOptions

type GetHistoryMessagesOptions struct {
	MessageCount int    `json:"messageCount,omitempty"`
	Start        uint64 `json:"start,omitempty"`
	End          uint64 `json:"end,omitempty"`
}

// Target addresses an event fan-out scope: a channel or a single user.
type Target struct {
	ChannelName string      `json:"channelName,omitempty"`
	ChannelType ChannelType `json:"channelType,omitempty"`
	UserID      string      `json:"userId,omitempty"`
}

func ChannelTarget(channelName string, channelType ChannelType) Target {
	return Target{ChannelName: channelName, ChannelType: channelType}
}

func UserTarget(userID string) Target {
	return Target{UserID: userID}
}

func (t Target) IsUser() bool {
	return t.UserID != "" && t.ChannelName == ""
}

func (t Target) Key() string {
	if t.IsUser() {
		return "user:" + t.UserID
	}

	return strings.Join([]string{"channel", t.ChannelType.String(), t.ChannelName}, ":")
}

package model

import (
	"context"
	"sync"

	"github.com/sbasestarter/rtm-harness/internal/defs"
)

const (
	DefaultHistoryCount = 100
	MaxHistoryCount     = 100
)

func NormalizeHistoryCount(count int) int {
	if count <= 0 || count > MaxHistoryCount {
		return DefaultHistoryCount
	}

	return count
}

// pageHistory cuts newest-first candidates into one page. A page never splits a timestamp, so the
// returned newStart, used as an inclusive start, repeats nothing: messages sharing the boundary
// timestamp move to the next page, or all stay on this one when they alone exceed count.
func pageHistory(candidates []defs.HistoryMessage, count int) ([]defs.HistoryMessage, uint64) {
	if len(candidates) <= count {
		return candidates, 0
	}

	boundary := candidates[count].Timestamp

	cut := count
	for cut > 0 && candidates[cut-1].Timestamp == boundary {
		cut--
	}

	if cut > 0 {
		return candidates[:cut], boundary
	}

	for cut < len(candidates) && candidates[cut].Timestamp == boundary {
		cut++
	}

	if cut == len(candidates) {
		return candidates, 0
	}

	return candidates[:cut], candidates[cut].Timestamp
}

func NewMemModel() defs.Model {
	return &memModelImpl{
		metadata: make(map[string]*defs.Metadata),
		history:  make(map[defs.ChannelInfo][]defs.HistoryMessage),
	}
}

type memModelImpl struct {
	lock     sync.Mutex
	metadata map[string]*defs.Metadata
	history  map[defs.ChannelInfo][]defs.HistoryMessage
}

func (m *memModelImpl) LoadMetadata(_ context.Context, target defs.Target) (*defs.Metadata, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if metadata, ok := m.metadata[target.Key()]; ok {
		return metadata.Clone(), nil
	}

	return &defs.Metadata{}, nil
}

func (m *memModelImpl) SaveMetadata(_ context.Context, target defs.Target, metadata *defs.Metadata) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if metadata == nil {
		delete(m.metadata, target.Key())

		return nil
	}

	m.metadata[target.Key()] = metadata.Clone()

	return nil
}

func (m *memModelImpl) AddHistoryMessage(_ context.Context, channel defs.ChannelInfo, message *defs.HistoryMessage) error {
	if message == nil {
		return nil
	}

	m.lock.Lock()
	defer m.lock.Unlock()

	messages := m.history[channel]

	idx := len(messages)
	for idx > 0 && messages[idx-1].Timestamp > message.Timestamp {
		idx--
	}

	messages = append(messages, defs.HistoryMessage{})
	copy(messages[idx+1:], messages[idx:])
	messages[idx] = *message

	m.history[channel] = messages

	return nil
}

func (m *memModelImpl) GetHistoryMessages(_ context.Context, channel defs.ChannelInfo,
	opts defs.GetHistoryMessagesOptions) (messages []defs.HistoryMessage, newStart uint64, _ error) {
	count := NormalizeHistoryCount(opts.MessageCount)

	m.lock.Lock()
	defer m.lock.Unlock()

	all := m.history[channel]

	var candidates []defs.HistoryMessage

	for idx := len(all) - 1; idx >= 0; idx-- {
		message := all[idx]

		if opts.Start > 0 && message.Timestamp > opts.Start {
			continue
		}

		if message.Timestamp <= opts.End {
			break
		}

		candidates = append(candidates, message)
	}

	messages, newStart = pageHistory(candidates, count)

	return
}

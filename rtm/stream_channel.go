package rtm

import (
	"github.com/sbasestarter/rtm-harness/internal/defs"
	"go.uber.org/atomic"
)

// StreamChannel is a joinable channel with topics. Create it with Client.CreateStreamChannel.
type StreamChannel struct {
	c        *Client
	name     string
	owner    uint64
	released *atomic.Bool
}

func (s *StreamChannel) ChannelName() string {
	return s.name
}

func (s *StreamChannel) submit(request *defs.Request) (uint64, error) {
	if s.released.Load() {
		return 0, newError(request.Op.String(), ErrorCodeInstanceAlreadyReleased, nil)
	}

	request.ChannelName = s.name
	request.ChannelType = ChannelTypeStream

	return s.c.submit(s.owner, request)
}

func (s *StreamChannel) Join(options *JoinChannelOptions) (uint64, error) {
	return s.submit(&defs.Request{
		Op:          defs.OpJoin,
		JoinOptions: options,
	})
}

func (s *StreamChannel) RenewToken(token string) (uint64, error) {
	return s.submit(&defs.Request{
		Op:    defs.OpRenewStreamToken,
		Token: token,
	})
}

func (s *StreamChannel) Leave() (uint64, error) {
	return s.submit(&defs.Request{
		Op: defs.OpLeave,
	})
}

func (s *StreamChannel) JoinTopic(topic string, options *JoinTopicOptions) (uint64, error) {
	return s.submit(&defs.Request{
		Op:               defs.OpJoinTopic,
		Topic:            topic,
		JoinTopicOptions: options,
	})
}

func (s *StreamChannel) PublishTopicMessage(topic string, message []byte, options *TopicMessageOptions) (uint64, error) {
	return s.submit(&defs.Request{
		Op:           defs.OpPublishTopicMessage,
		Topic:        topic,
		Message:      message,
		TopicMessage: options,
	})
}

func (s *StreamChannel) LeaveTopic(topic string) (uint64, error) {
	return s.submit(&defs.Request{
		Op:    defs.OpLeaveTopic,
		Topic: topic,
	})
}

// SubscribeTopic subscribes to the messages of users on topic. No users means every publisher.
func (s *StreamChannel) SubscribeTopic(topic string, users []string) (uint64, error) {
	return s.submit(&defs.Request{
		Op:    defs.OpSubscribeTopic,
		Topic: topic,
		Users: users,
	})
}

func (s *StreamChannel) UnsubscribeTopic(topic string, users []string) (uint64, error) {
	return s.submit(&defs.Request{
		Op:    defs.OpUnsubscribeTopic,
		Topic: topic,
		Users: users,
	})
}

func (s *StreamChannel) GetSubscribedUserList(topic string) (uint64, error) {
	return s.submit(&defs.Request{
		Op:    defs.OpGetSubscribedUserList,
		Topic: topic,
	})
}

// Release drops the handle. Results of requests issued through it are no longer delivered, and a joined
// channel is left.
func (s *StreamChannel) Release() error {
	if s.released.Swap(true) {
		return newError("Release", ErrorCodeInstanceAlreadyReleased, nil)
	}

	c := s.c

	c.mu.Lock()
	if c.streams[s.name] == s {
		delete(c.streams, s.name)
	}

	delete(c.owners, s.owner)
	c.mu.Unlock()

	for range c.corr.AbandonOwner(s.owner) {
		c.metrics.CallbackSuppressed()
	}

	// queued behind any join still in flight; its result is dropped with the handle
	_, _ = c.submit(s.owner, &defs.Request{
		Op:          defs.OpLeave,
		ChannelName: s.name,
		ChannelType: ChannelTypeStream,
	})

	return nil
}

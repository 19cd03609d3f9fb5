package impls

import (
	"context"
	"sort"

	"github.com/sbasestarter/rtm-harness/internal/defs"
	"github.com/sgostarter/i/l"
)

func streamInfo(name string) defs.ChannelInfo {
	return defs.ChannelInfo{ChannelName: name, ChannelType: defs.ChannelTypeStream}
}

func (impl *mdImpl) connectionState(sd *sessionData, name string, state defs.ConnectionState,
	reason defs.ConnectionChangeReason) {
	impl.sendEvent(sd, &defs.Event{
		ConnectionState: &defs.ConnectionStateEvent{
			ChannelName: name,
			State:       state,
			Reason:      reason,
		},
	})
}

func (impl *mdImpl) topicInfos(ch *channelData) []defs.TopicInfo {
	publishers := make(map[string][]defs.PublisherInfo)

	for _, sd := range sortedSessions(ch.members, nil) {
		membership, ok := sd.joined[ch.info.ChannelName]
		if !ok {
			continue
		}

		for topic, options := range membership.topics {
			publishers[topic] = append(publishers[topic], defs.PublisherInfo{
				PublisherUserID: sd.userID,
				PublisherMeta:   options.Meta,
			})
		}
	}

	infos := make([]defs.TopicInfo, 0, len(publishers))

	for topic, list := range publishers {
		infos = append(infos, defs.TopicInfo{Topic: topic, Publishers: list})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Topic < infos[j].Topic
	})

	return infos
}

func (impl *mdImpl) topicEvent(ch *channelData, eventType defs.TopicEventType, publisher string,
	infos []defs.TopicInfo) *defs.Event {
	return &defs.Event{
		Topic: &defs.TopicEvent{
			Type:        eventType,
			ChannelName: ch.info.ChannelName,
			Publisher:   publisher,
			TopicInfos:  infos,
			Timestamp:   impl.now(),
		},
	}
}

func (impl *mdImpl) handleJoin(ctx context.Context, sd *sessionData, request *defs.Request) {
	if request.ChannelName == "" {
		impl.reply(sd, request, defs.ErrorCodeInvalidChannelName)

		return
	}

	if _, ok := sd.joined[request.ChannelName]; ok {
		impl.reply(sd, request, defs.ErrorCodeDuplicateOperation)

		return
	}

	var options defs.JoinChannelOptions
	if request.JoinOptions != nil {
		options = *request.JoinOptions
	}

	impl.connectionState(sd, request.ChannelName, defs.ConnectionStateConnecting, defs.ConnectionChangeReasonConnecting)

	info, err := impl.tokenCenter.VerifyToken(sd.userID, request.ChannelName, options.Token)
	if err != nil {
		code := tokenErrorCode(err)

		reason := defs.ConnectionChangeReasonInvalidToken
		if code == defs.ErrorCodeTokenExpired {
			reason = defs.ConnectionChangeReasonTokenExpired
		}

		impl.connectionState(sd, request.ChannelName, defs.ConnectionStateFailed, reason)
		impl.reply(sd, request, code)

		return
	}

	membership := &streamMembership{
		options:       options,
		topics:        make(map[string]defs.JoinTopicOptions),
		subscriptions: make(map[string]*topicSubscription),
	}

	ch := impl.channel(streamInfo(request.ChannelName))

	sd.joined[request.ChannelName] = membership
	impl.joinChannel(sd, ch, options.BeQuiet)

	name := request.ChannelName

	impl.armTokenTimers(&membership.token, info, func(gen uint64) {
		if sd.joined[name] != membership || membership.token.gen != gen {
			return
		}

		impl.sendEvent(sd, &defs.Event{TokenWillExpire: &defs.TokenWillExpireEvent{ChannelName: name}})
	}, func(gen uint64) {
		if sd.joined[name] != membership || membership.token.gen != gen {
			return
		}

		impl.logger.WithFields(l.StringField("userID", sd.userID), l.StringField("channel", name)).Info("StreamTokenExpired")

		impl.leaveStream(sd, name, false)
		impl.connectionState(sd, name, defs.ConnectionStateDisconnected, defs.ConnectionChangeReasonTokenExpired)
	})

	impl.connectionState(sd, request.ChannelName, defs.ConnectionStateConnected, defs.ConnectionChangeReasonJoinSuccess)

	impl.reply(sd, request, defs.ErrorCodeOK)

	impl.sendEvent(sd, impl.topicEvent(ch, defs.TopicEventTypeSnapshot, "", impl.topicInfos(ch)))
	impl.sendSnapshots(ctx, sd, ch, options.WithPresence, options.WithLock, options.WithMetadata)
}

// leaveStream drops the session from a stream channel: its topics are announced as left and its
// channel token timers stop.
func (impl *mdImpl) leaveStream(sd *sessionData, name string, graceful bool) {
	membership, ok := sd.joined[name]
	if !ok {
		return
	}

	delete(sd.joined, name)

	membership.token.stop()

	ch, ok := impl.channels[streamInfo(name)]
	if !ok {
		return
	}

	if len(membership.topics) > 0 {
		infos := make([]defs.TopicInfo, 0, len(membership.topics))

		for topic, options := range membership.topics {
			infos = append(infos, defs.TopicInfo{
				Topic:      topic,
				Publishers: []defs.PublisherInfo{{PublisherUserID: sd.userID, PublisherMeta: options.Meta}},
			})
		}

		sort.Slice(infos, func(i, j int) bool {
			return infos[i].Topic < infos[j].Topic
		})

		impl.publishEvent(defs.ChannelTarget(name, defs.ChannelTypeStream), sd.uniqueID,
			impl.topicEvent(ch, defs.TopicEventTypeRemoteLeaveTopic, sd.userID, infos))
	}

	impl.leaveChannel(sd, ch, graceful)
}

func (impl *mdImpl) handleLeave(_ context.Context, sd *sessionData, request *defs.Request) {
	if _, ok := sd.joined[request.ChannelName]; !ok {
		impl.reply(sd, request, defs.ErrorCodeChannelNotJoined)

		return
	}

	impl.leaveStream(sd, request.ChannelName, true)
	impl.connectionState(sd, request.ChannelName, defs.ConnectionStateDisconnected, defs.ConnectionChangeReasonLeaveChannel)
	impl.reply(sd, request, defs.ErrorCodeOK)
}

func (impl *mdImpl) handleRenewStreamToken(_ context.Context, sd *sessionData, request *defs.Request) {
	membership, ok := sd.joined[request.ChannelName]
	if !ok {
		impl.reply(sd, request, defs.ErrorCodeChannelNotJoined)

		return
	}

	result := defs.NewResult(request, defs.ErrorCodeOK)
	result.ServiceType = defs.ServiceTypeStream

	info, err := impl.tokenCenter.VerifyToken(sd.userID, request.ChannelName, request.Token)
	if err != nil {
		result.ErrorCode = tokenErrorCode(err)

		impl.replyResult(sd, result)

		return
	}

	name := request.ChannelName

	impl.rearmTokenTimers(&membership.token, info, func() bool { return sd.joined[name] == membership }, func() {
		impl.sendEvent(sd, &defs.Event{TokenWillExpire: &defs.TokenWillExpireEvent{ChannelName: name}})
	})

	impl.replyResult(sd, result)
}

func checkTopicName(topic string) defs.ErrorCode {
	if topic == "" || len(topic) > maxTopicNameLength {
		return defs.ErrorCodeChannelInvalidTopicName
	}

	return defs.ErrorCodeOK
}

// joinedStream resolves the membership a topic request works on, answering the request when
// it cannot proceed.
func (impl *mdImpl) joinedStream(sd *sessionData, request *defs.Request) (*streamMembership, bool) {
	membership, ok := sd.joined[request.ChannelName]
	if !ok {
		impl.reply(sd, request, defs.ErrorCodeChannelNotJoined)

		return nil, false
	}

	if code := checkTopicName(request.Topic); !code.OK() {
		impl.reply(sd, request, code)

		return nil, false
	}

	return membership, true
}

func (impl *mdImpl) handleJoinTopic(_ context.Context, sd *sessionData, request *defs.Request) {
	membership, ok := impl.joinedStream(sd, request)
	if !ok {
		return
	}

	var options defs.JoinTopicOptions
	if request.JoinTopicOptions != nil {
		options = *request.JoinTopicOptions
	}

	if len(options.Meta) > maxTopicMetaLength {
		impl.reply(sd, request, defs.ErrorCodeChannelInvalidTopicMeta)

		return
	}

	if _, ok = membership.topics[request.Topic]; ok {
		impl.reply(sd, request, defs.ErrorCodeDuplicateOperation)

		return
	}

	if len(membership.topics) >= maxTopicsPerMember {
		impl.reply(sd, request, defs.ErrorCodeChannelExceedTopicLimitation)

		return
	}

	membership.topics[request.Topic] = options

	ch := impl.channel(streamInfo(request.ChannelName))

	impl.publishEvent(defs.ChannelTarget(request.ChannelName, defs.ChannelTypeStream), sd.uniqueID,
		impl.topicEvent(ch, defs.TopicEventTypeRemoteJoinTopic, sd.userID, []defs.TopicInfo{{
			Topic:      request.Topic,
			Publishers: []defs.PublisherInfo{{PublisherUserID: sd.userID, PublisherMeta: options.Meta}},
		}}))

	result := defs.NewResult(request, defs.ErrorCodeOK)
	result.Meta = options.Meta

	impl.replyResult(sd, result)
}

func (impl *mdImpl) handlePublishTopicMessage(_ context.Context, sd *sessionData, request *defs.Request) {
	membership, ok := impl.joinedStream(sd, request)
	if !ok {
		return
	}

	if _, ok = membership.topics[request.Topic]; !ok {
		impl.reply(sd, request, defs.ErrorCodeChannelTopicNotJoined)

		return
	}

	var options defs.TopicMessageOptions
	if request.TopicMessage != nil {
		options = *request.TopicMessage
	}

	if code := impl.checkPayload(request.Message, options.CustomType); !code.OK() {
		impl.reply(sd, request, code)

		return
	}

	ts := options.SendTs
	if ts == 0 {
		ts = impl.now()
	}

	impl.publishEvent(defs.ChannelTarget(request.ChannelName, defs.ChannelTypeStream), sd.uniqueID, &defs.Event{
		Message: &defs.MessageEvent{
			ChannelType:  defs.ChannelTypeStream,
			MessageType:  options.MessageType,
			ChannelName:  request.ChannelName,
			ChannelTopic: request.Topic,
			Message:      request.Message,
			Publisher:    sd.userID,
			CustomType:   options.CustomType,
			Timestamp:    ts,
		},
	})

	impl.reply(sd, request, defs.ErrorCodeOK)
}

func (impl *mdImpl) handleLeaveTopic(_ context.Context, sd *sessionData, request *defs.Request) {
	membership, ok := impl.joinedStream(sd, request)
	if !ok {
		return
	}

	options, ok := membership.topics[request.Topic]
	if !ok {
		impl.reply(sd, request, defs.ErrorCodeChannelTopicNotJoined)

		return
	}

	delete(membership.topics, request.Topic)

	ch := impl.channel(streamInfo(request.ChannelName))

	impl.publishEvent(defs.ChannelTarget(request.ChannelName, defs.ChannelTypeStream), sd.uniqueID,
		impl.topicEvent(ch, defs.TopicEventTypeRemoteLeaveTopic, sd.userID, []defs.TopicInfo{{
			Topic:      request.Topic,
			Publishers: []defs.PublisherInfo{{PublisherUserID: sd.userID, PublisherMeta: options.Meta}},
		}}))

	result := defs.NewResult(request, defs.ErrorCodeOK)
	result.Meta = options.Meta

	impl.replyResult(sd, result)
}

func (impl *mdImpl) handleSubscribeTopic(_ context.Context, sd *sessionData, request *defs.Request) {
	membership, ok := impl.joinedStream(sd, request)
	if !ok {
		return
	}

	if len(request.Users) > maxTopicUsers {
		impl.reply(sd, request, defs.ErrorCodeChannelExceedTopicUserLimitation)

		return
	}

	for _, userID := range request.Users {
		if userID == "" {
			impl.reply(sd, request, defs.ErrorCodeChannelInvalidUserList)

			return
		}
	}

	sub, ok := membership.subscriptions[request.Topic]
	if !ok {
		sub = &topicSubscription{users: make(map[string]bool)}
		membership.subscriptions[request.Topic] = sub
	}

	if len(request.Users) == 0 {
		sub.all = true
		sub.users = make(map[string]bool)
	} else {
		sub.all = false

		for _, userID := range request.Users {
			sub.users[userID] = true
		}

		if len(sub.users) > maxTopicUsers {
			for _, userID := range request.Users {
				delete(sub.users, userID)
			}

			impl.reply(sd, request, defs.ErrorCodeChannelExceedTopicUserLimitation)

			return
		}
	}

	result := defs.NewResult(request, defs.ErrorCodeOK)
	result.SucceedUsers = append([]string(nil), request.Users...)

	impl.replyResult(sd, result)
}

func (impl *mdImpl) handleUnsubscribeTopic(_ context.Context, sd *sessionData, request *defs.Request) {
	membership, ok := impl.joinedStream(sd, request)
	if !ok {
		return
	}

	sub, ok := membership.subscriptions[request.Topic]
	if !ok {
		impl.reply(sd, request, defs.ErrorCodeChannelTopicNotSubscribed)

		return
	}

	if len(request.Users) == 0 {
		delete(membership.subscriptions, request.Topic)
	} else if !sub.all {
		for _, userID := range request.Users {
			delete(sub.users, userID)
		}

		if len(sub.users) == 0 {
			delete(membership.subscriptions, request.Topic)
		}
	}

	impl.reply(sd, request, defs.ErrorCodeOK)
}

func (impl *mdImpl) handleGetSubscribedUserList(_ context.Context, sd *sessionData, request *defs.Request) {
	membership, ok := impl.joinedStream(sd, request)
	if !ok {
		return
	}

	sub, ok := membership.subscriptions[request.Topic]
	if !ok {
		impl.reply(sd, request, defs.ErrorCodeChannelTopicNotSubscribed)

		return
	}

	result := defs.NewResult(request, defs.ErrorCodeOK)

	for userID := range sub.users {
		result.Users = append(result.Users, userID)
	}

	sort.Strings(result.Users)

	impl.replyResult(sd, result)
}

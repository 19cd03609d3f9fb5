package impls

import (
	"context"

	"github.com/sbasestarter/rtm-harness/internal/defs"
	"github.com/sgostarter/i/l"
)

func (impl *mdImpl) checkPayload(message []byte, customType string) defs.ErrorCode {
	if len(message) > impl.opts.MaxMessageSize {
		return defs.ErrorCodeChannelMessageLengthExceedLimitation
	}

	if len(customType) > maxCustomTypeLength {
		return defs.ErrorCodeChannelCustomTypeLengthOverflow
	}

	return defs.ErrorCodeOK
}

func (impl *mdImpl) handlePublish(ctx context.Context, sd *sessionData, request *defs.Request) {
	var options defs.PublishOptions
	if request.PublishOptions != nil {
		options = *request.PublishOptions
	}

	if request.ChannelName == "" {
		impl.reply(sd, request, defs.ErrorCodeInvalidChannelName)

		return
	}

	if code := impl.checkPayload(request.Message, options.CustomType); !code.OK() {
		impl.reply(sd, request, code)

		return
	}

	event := &defs.MessageEvent{
		MessageType: options.MessageType,
		ChannelName: request.ChannelName,
		Message:     request.Message,
		Publisher:   sd.userID,
		CustomType:  options.CustomType,
		Timestamp:   impl.now(),
	}

	switch options.ChannelType {
	case defs.ChannelTypeUser:
		if len(impl.users[request.ChannelName]) == 0 {
			impl.reply(sd, request, defs.ErrorCodeChannelReceiverOffline)

			return
		}

		event.ChannelType = defs.ChannelTypeUser
		event.ChannelName = sd.userID

		impl.publishEvent(defs.UserTarget(request.ChannelName), sd.uniqueID, &defs.Event{Message: event})
	case defs.ChannelTypeNone, defs.ChannelTypeMessage:
		event.ChannelType = defs.ChannelTypeMessage

		if options.StoreInHistory {
			err := impl.m.AddHistoryMessage(ctx, defs.ChannelInfo{
				ChannelName: request.ChannelName,
				ChannelType: defs.ChannelTypeMessage,
			}, &defs.HistoryMessage{
				MessageType: event.MessageType,
				Publisher:   event.Publisher,
				Message:     event.Message,
				CustomType:  event.CustomType,
				Timestamp:   event.Timestamp,
			})
			if err != nil {
				impl.logger.WithFields(l.StringField("channel", request.ChannelName), l.ErrorField(err)).
					Error("AddHistoryMessageFailed")

				impl.reply(sd, request, defs.ErrorCodeChannelPublishMessageFailed)

				return
			}
		}

		impl.publishEvent(defs.ChannelTarget(request.ChannelName, defs.ChannelTypeMessage), sd.uniqueID,
			&defs.Event{Message: event})
	default:
		impl.reply(sd, request, defs.ErrorCodeInvalidChannelType)

		return
	}

	result := defs.NewResult(request, defs.ErrorCodeOK)
	result.ChannelType = event.ChannelType

	impl.replyResult(sd, result)
}

func (impl *mdImpl) handleSubscribe(ctx context.Context, sd *sessionData, request *defs.Request) {
	if request.ChannelName == "" {
		impl.reply(sd, request, defs.ErrorCodeInvalidChannelName)

		return
	}

	options := defs.SubscribeOptions{WithMessage: true}
	if request.SubscribeOptions != nil {
		options = *request.SubscribeOptions
	}

	info := defs.ChannelInfo{ChannelName: request.ChannelName, ChannelType: defs.ChannelTypeMessage}

	if _, ok := sd.subscribed[info.ChannelName]; ok {
		sd.subscribed[info.ChannelName] = options

		impl.reply(sd, request, defs.ErrorCodeOK)

		return
	}

	ch := impl.channel(info)

	sd.subscribed[info.ChannelName] = options
	impl.joinChannel(sd, ch, options.BeQuiet)

	impl.reply(sd, request, defs.ErrorCodeOK)
	impl.sendSnapshots(ctx, sd, ch, options.WithPresence, options.WithLock, options.WithMetadata)
}

func (impl *mdImpl) handleUnsubscribe(_ context.Context, sd *sessionData, request *defs.Request) {
	if _, ok := sd.subscribed[request.ChannelName]; !ok {
		impl.reply(sd, request, defs.ErrorCodeChannelNotSubscribed)

		return
	}

	delete(sd.subscribed, request.ChannelName)

	if ch, ok := impl.channels[defs.ChannelInfo{ChannelName: request.ChannelName, ChannelType: defs.ChannelTypeMessage}]; ok {
		impl.leaveChannel(sd, ch, true)
	}

	impl.reply(sd, request, defs.ErrorCodeOK)
}

package impls

import (
	"context"

	"github.com/sbasestarter/rtm-harness/internal/defs"
	"github.com/sgostarter/i/l"
)

func (impl *mdImpl) handleGetHistoryMessages(ctx context.Context, sd *sessionData, request *defs.Request) {
	info, code := channelInfoOf(request)
	if !code.OK() {
		impl.reply(sd, request, code)

		return
	}

	var options defs.GetHistoryMessagesOptions
	if request.HistoryOptions != nil {
		options = *request.HistoryOptions
	}

	if options.Start > 0 && options.End > 0 && options.Start <= options.End {
		impl.reply(sd, request, defs.ErrorCodeInvalidParameter)

		return
	}

	messages, newStart, err := impl.m.GetHistoryMessages(ctx, info, options)
	if err != nil {
		impl.logger.WithFields(l.StringField("channel", info.ChannelName), l.ErrorField(err)).Error("GetHistoryMessagesFailed")

		impl.reply(sd, request, defs.ErrorCodeStorageOperationFailed)

		return
	}

	result := defs.NewResult(request, defs.ErrorCodeOK)
	result.Messages = messages
	result.NewStart = newStart
	result.Count = len(messages)

	impl.replyResult(sd, result)
}

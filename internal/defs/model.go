package defs

import (
	"context"
)

type Model interface {
	LoadMetadata(ctx context.Context, target Target) (metadata *Metadata, err error)
	SaveMetadata(ctx context.Context, target Target, metadata *Metadata) error

	AddHistoryMessage(ctx context.Context, channel ChannelInfo, message *HistoryMessage) error
	GetHistoryMessages(ctx context.Context, channel ChannelInfo, options GetHistoryMessagesOptions) (
		messages []HistoryMessage, newStart uint64, err error)
}

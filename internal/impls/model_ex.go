package impls

import (
	"context"

	"github.com/sbasestarter/rtm-harness/internal/defs"
	"github.com/sgostarter/libeasygo/commerr"
)

// ModelEx keeps metadata containers cached on the main routine and writes them through to the model.
type ModelEx interface {
	defs.Model

	GetMetadata(ctx context.Context, target defs.Target) (*defs.Metadata, error)
	PutMetadata(ctx context.Context, target defs.Target, metadata *defs.Metadata) error
}

func NewModelEx(m defs.Model) ModelEx {
	return &modelExImpl{
		m:        m,
		metadata: make(map[string]*defs.Metadata),
	}
}

type modelExImpl struct {
	m defs.Model

	metadata map[string]*defs.Metadata
}

func (impl *modelExImpl) LoadMetadata(ctx context.Context, target defs.Target) (*defs.Metadata, error) {
	return impl.m.LoadMetadata(ctx, target)
}

func (impl *modelExImpl) SaveMetadata(ctx context.Context, target defs.Target, metadata *defs.Metadata) error {
	return impl.m.SaveMetadata(ctx, target, metadata)
}

func (impl *modelExImpl) AddHistoryMessage(ctx context.Context, channel defs.ChannelInfo, message *defs.HistoryMessage) error {
	return impl.m.AddHistoryMessage(ctx, channel, message)
}

func (impl *modelExImpl) GetHistoryMessages(ctx context.Context, channel defs.ChannelInfo,
	options defs.GetHistoryMessagesOptions) ([]defs.HistoryMessage, uint64, error) {
	return impl.m.GetHistoryMessages(ctx, channel, options)
}

// GetMetadata returns the cached container. Callers must not mutate it.
func (impl *modelExImpl) GetMetadata(ctx context.Context, target defs.Target) (metadata *defs.Metadata, err error) {
	if metadata = impl.metadata[target.Key()]; metadata != nil {
		return
	}

	metadata, err = impl.m.LoadMetadata(ctx, target)
	if err != nil {
		return
	}

	if metadata == nil {
		metadata = &defs.Metadata{}
	}

	impl.metadata[target.Key()] = metadata

	return
}

func (impl *modelExImpl) PutMetadata(ctx context.Context, target defs.Target, metadata *defs.Metadata) (err error) {
	if metadata == nil {
		err = commerr.ErrInvalidArgument

		return
	}

	if err = impl.m.SaveMetadata(ctx, target, metadata); err != nil {
		return
	}

	impl.metadata[target.Key()] = metadata

	return
}

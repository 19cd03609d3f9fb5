package impls

import (
	"context"

	"github.com/sbasestarter/rtm-harness/internal/defs"
	"github.com/sgostarter/i/l"
)

// NewRabbitMQMDI fans events out through one exchange per tracked target.
// The engine serves its own sessions before calling SendEvent, so envelopes from this instance are skipped on receipt.
func NewRabbitMQMDI(mqURL string, logger l.Wrapper) (defs.MDI, error) {
	if logger == nil {
		logger = l.NewNopLoggerWrapper()
	}

	mq, err := NewRabbitMQ(mqURL, logger)
	if err != nil {
		return nil, err
	}

	return &rabbitMQMDIImpl{
		logger:   logger,
		rabbitMQ: mq,
	}, nil
}

type rabbitMQMDIImpl struct {
	logger l.Wrapper

	rabbitMQ RabbitMQ
}

func (impl *rabbitMQMDIImpl) SetObserver(ob defs.Observer) {
	impl.rabbitMQ.SetObserver(ob)
}

func (impl *rabbitMQMDIImpl) Load(_ context.Context) error {
	return nil
}

func (impl *rabbitMQMDIImpl) AddTrack(_ context.Context, target defs.Target) error {
	return impl.rabbitMQ.AddTrack(target)
}

func (impl *rabbitMQMDIImpl) RemoveTrack(_ context.Context, target defs.Target) {
	impl.rabbitMQ.RemoveTrack(target)
}

func (impl *rabbitMQMDIImpl) SendEvent(target defs.Target, excludeUniqueID uint64, event *defs.Event) {
	if err := impl.rabbitMQ.SendData(&mqData{
		Origin:          impl.rabbitMQ.InstanceID(),
		Target:          target,
		ExcludeUniqueID: excludeUniqueID,
		Event:           event,
	}); err != nil {
		impl.logger.WithFields(l.StringField("target", target.Key()), l.ErrorField(err)).Error("SendDataFailed")
	}
}

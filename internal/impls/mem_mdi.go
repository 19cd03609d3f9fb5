package impls

import (
	"context"

	"github.com/sbasestarter/rtm-harness/internal/defs"
	"github.com/sgostarter/i/l"
)

// NewMemMDI serves a single engine instance. The engine already delivers to its own sessions,
// so there is nobody else to distribute to.
func NewMemMDI(logger l.Wrapper) defs.MDI {
	if logger == nil {
		logger = l.NewNopLoggerWrapper()
	}

	return &memMDIImpl{
		logger: logger,
	}
}

type memMDIImpl struct {
	logger l.Wrapper
}

func (impl *memMDIImpl) SetObserver(_ defs.Observer) {
}

func (impl *memMDIImpl) Load(_ context.Context) (_ error) {
	return
}

func (impl *memMDIImpl) AddTrack(_ context.Context, target defs.Target) error {
	impl.logger.WithFields(l.StringField("target", target.Key())).Debug("AddTrack")

	return nil
}

func (impl *memMDIImpl) RemoveTrack(_ context.Context, target defs.Target) {
	impl.logger.WithFields(l.StringField("target", target.Key())).Debug("RemoveTrack")
}

func (impl *memMDIImpl) SendEvent(_ defs.Target, _ uint64, _ *defs.Event) {
}

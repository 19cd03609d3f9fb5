package rtm

import (
	"time"

	"github.com/sbasestarter/rtm-harness/internal/clock"
	"github.com/sbasestarter/rtm-harness/internal/controller"
	"github.com/sbasestarter/rtm-harness/internal/defs"
	"github.com/sbasestarter/rtm-harness/internal/fixture"
	"github.com/sbasestarter/rtm-harness/internal/impls"
	"github.com/sbasestarter/rtm-harness/internal/metrics"
	"github.com/sbasestarter/rtm-harness/internal/user"
	"github.com/sgostarter/i/l"
)

// HarnessConfig configures an in-process engine. The zero value accepts any non-empty token.
type HarnessConfig struct {
	AppID          string
	AppCertificate string
	TokenExpire    time.Duration

	LockRetryTimeout     time.Duration
	TokenWillExpireAhead time.Duration
	MaxMessageSize       int

	MDI     defs.MDI
	Model   defs.Model
	Fixture *fixture.Fixture
	Clock   clock.Clock
	Logger  l.Wrapper
	Metrics *metrics.Metrics
}

// Harness is an engine running inside the process. Its Backend serves any number of clients.
type Harness struct {
	controller  *controller.Controller
	tokenCenter user.Center
}

func NewHarness(cfg HarnessConfig) (*Harness, error) {
	if cfg.TokenExpire <= 0 {
		cfg.TokenExpire = time.Hour
	}

	tokenCenter := user.NewTokenCenter(cfg.AppID, cfg.AppCertificate, cfg.TokenExpire, cfg.Clock)

	c := controller.NewController(controller.Params{
		MDI:         cfg.MDI,
		Model:       cfg.Model,
		TokenCenter: tokenCenter,
		Clock:       cfg.Clock,
		Options: impls.Options{
			LockRetryTimeout:     cfg.LockRetryTimeout,
			TokenWillExpireAhead: cfg.TokenWillExpireAhead,
			MaxMessageSize:       cfg.MaxMessageSize,
		},
		Fixture: cfg.Fixture,
		Metrics: cfg.Metrics,
	}, cfg.Logger)

	if err := c.LoadErr(); err != nil {
		c.Stop()

		return nil, err
	}

	return &Harness{
		controller:  c,
		tokenCenter: tokenCenter,
	}, nil
}

func (h *Harness) Backend() Backend {
	return h.controller
}

// NewToken signs a login token for userID, or a join token when channelName is set.
func (h *Harness) NewToken(userID, channelName string) (string, error) {
	token, _, err := h.tokenCenter.NewToken(userID, channelName)

	return token, err
}

// Stop shuts the engine down. Attached clients are removed and their pending requests fail with
// ErrorCodeNotConnected.
func (h *Harness) Stop() {
	h.controller.Stop()
	<-h.controller.Done()
}

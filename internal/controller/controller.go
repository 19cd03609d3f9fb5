package controller

import (
	"context"

	"github.com/sbasestarter/rtm-harness/internal/clock"
	"github.com/sbasestarter/rtm-harness/internal/defs"
	"github.com/sbasestarter/rtm-harness/internal/fixture"
	"github.com/sbasestarter/rtm-harness/internal/impls"
	"github.com/sbasestarter/rtm-harness/internal/metrics"
	"github.com/sbasestarter/rtm-harness/internal/model"
	"github.com/sbasestarter/rtm-harness/internal/queue"
	"github.com/sbasestarter/rtm-harness/internal/user"
	"github.com/sgostarter/i/l"
	"github.com/sgostarter/libeasygo/commerr"
	"github.com/sgostarter/libeasygo/routineman"
	"go.uber.org/atomic"
)

const (
	defMaxCache = 1024
)

type Params struct {
	MaxCache    int
	MDI         defs.MDI
	Model       defs.Model
	TokenCenter user.Center
	Clock       clock.Clock
	Options     impls.Options
	Fixture     *fixture.Fixture
	Metrics     *metrics.Metrics
}

type sessionCommandType int

const (
	sessionCommandAttach sessionCommandType = iota
	sessionCommandDetach
	sessionCommandRequest
)

type sessionCommand struct {
	cmd      sessionCommandType
	session  defs.Session
	graceful bool
	request  *defs.Request
}

// Controller owns the engine state on one main routine. Sessions talk to it through a single
// intake channel so attach, requests and detach of a session keep their order.
type Controller struct {
	params     Params
	logger     l.Wrapper
	ctxCancel  context.CancelFunc
	routineMan routineman.RoutineMan

	chSessionCommand chan *sessionCommand
	runners          *queue.Queue[func()]
	stopped          *atomic.Bool
	loaded           chan struct{}
	loadErr          error
	done             chan struct{}
}

func NewController(params Params, logger l.Wrapper) *Controller {
	if logger == nil {
		logger = l.NewNopLoggerWrapper()
	}

	if params.MaxCache <= 0 {
		params.MaxCache = defMaxCache
	}

	if params.MDI == nil {
		params.MDI = impls.NewMemMDI(logger)
	}

	if params.Model == nil {
		params.Model = model.NewMemModel()
	}

	ctx, cancel := context.WithCancel(context.Background())

	controller := &Controller{
		params:           params,
		logger:           logger.WithFields(l.StringField(l.ClsKey, "Controller")),
		ctxCancel:        cancel,
		routineMan:       routineman.NewRoutineMan(ctx, logger),
		chSessionCommand: make(chan *sessionCommand, params.MaxCache),
		runners:          queue.New[func()](),
		stopped:          atomic.NewBool(false),
		loaded:           make(chan struct{}),
		done:             make(chan struct{}),
	}

	controller.init()

	return controller
}

//
// impls.MainRoutineRunner
//

// Post runs f on the main routine. Posted work is never dropped while the controller runs.
func (c *Controller) Post(f func()) {
	if f == nil {
		return
	}

	c.runners.Push(f)
}

//
// defs.Backend
//

func (c *Controller) Attach(session defs.Session) error {
	if session == nil {
		return commerr.ErrInvalidArgument
	}

	return c.submit(&sessionCommand{
		cmd:     sessionCommandAttach,
		session: session,
	})
}

func (c *Controller) Detach(session defs.Session, graceful bool) error {
	if session == nil {
		return commerr.ErrInvalidArgument
	}

	return c.submit(&sessionCommand{
		cmd:      sessionCommandDetach,
		session:  session,
		graceful: graceful,
	})
}

func (c *Controller) Submit(session defs.Session, request *defs.Request) error {
	if session == nil || request == nil {
		return commerr.ErrInvalidArgument
	}

	if err := c.submit(&sessionCommand{
		cmd:     sessionCommandRequest,
		session: session,
		request: request,
	}); err != nil {
		return err
	}

	c.params.Metrics.RequestSubmitted(request.Op.String())

	return nil
}

func (c *Controller) submit(command *sessionCommand) error {
	if c.stopped.Load() {
		return commerr.ErrCanceled
	}

	select {
	case c.chSessionCommand <- command:
	default:
		return commerr.ErrCanceled
	}

	return nil
}

//
//
//

// Loaded is closed once the engine state is loaded. LoadErr tells whether it succeeded.
func (c *Controller) Loaded() <-chan struct{} {
	return c.loaded
}

func (c *Controller) LoadErr() error {
	<-c.loaded

	return c.loadErr
}

func (c *Controller) Stop() {
	if c.stopped.Swap(true) {
		return
	}

	c.ctxCancel()
}

func (c *Controller) Done() <-chan struct{} {
	return c.done
}

func (c *Controller) init() {
	c.routineMan.StartRoutine(c.mainRoutine, "mainRoutine")
}

func (c *Controller) mainRoutine(ctx context.Context, exiting func() bool) {
	logger := c.logger.WithFields(l.StringField(l.RoutineKey, "mainRoutine"))

	logger.Debug("enter")
	defer logger.Debug("leave")

	defer close(c.done)

	md := impls.NewMD(impls.MDParams{
		Runner:      c,
		MDI:         c.params.MDI,
		Model:       c.params.Model,
		TokenCenter: c.params.TokenCenter,
		Clock:       c.params.Clock,
		Options:     c.params.Options,
		Fixture:     c.params.Fixture,
		Metrics:     c.params.Metrics,
	}, c.logger)

	c.loadErr = md.Load(ctx)
	close(c.loaded)

	if c.loadErr != nil {
		logger.WithFields(l.ErrorField(c.loadErr)).Error("LoadFailed")

		c.stopped.Store(true)
		c.runners.Close()

		return
	}

	for !exiting() {
		select {
		case <-ctx.Done():
			continue
		case command := <-c.chSessionCommand:
			switch command.cmd {
			case sessionCommandAttach:
				md.AttachSession(ctx, command.session)
			case sessionCommandDetach:
				md.DetachSession(ctx, command.session, command.graceful)
			case sessionCommandRequest:
				md.HandleRequest(ctx, command.session, command.request)
			}
		case <-c.runners.Notify():
			for {
				runner, ok := c.runners.Pop()
				if !ok {
					break
				}

				runner()
			}
		}
	}

	c.shutdown(md)
}

// shutdown removes every session, including those whose attach is still queued, so their
// pending requests fail instead of waiting on a stopped engine.
func (c *Controller) shutdown(md impls.MD) {
	ctx := context.Background()

	for {
		select {
		case command := <-c.chSessionCommand:
			switch command.cmd {
			case sessionCommandAttach:
				md.AttachSession(ctx, command.session)
			case sessionCommandDetach:
				md.DetachSession(ctx, command.session, command.graceful)
			}

			continue
		default:
		}

		break
	}

	md.Shutdown(ctx, "EngineStopped")

	c.runners.Close()
}

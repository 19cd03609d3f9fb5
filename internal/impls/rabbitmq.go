package impls

import (
	"context"
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/sbasestarter/rtm-harness/internal/codec"
	"github.com/sbasestarter/rtm-harness/internal/defs"
	"github.com/sgostarter/i/l"
	"github.com/sgostarter/libeasygo/commerr"
	"github.com/sgostarter/libeasygo/routineman"
	"github.com/streadway/amqp"
)

type RabbitMQ interface {
	InstanceID() string
	AddTrack(target defs.Target) error
	RemoveTrack(target defs.Target)
	SendData(data *mqData) error
	SetObserver(ob defs.Observer)
	Close()
}

func NewRabbitMQ(url string, logger l.Wrapper) (RabbitMQ, error) {
	if logger == nil {
		logger = l.NewNopLoggerWrapper()
	}

	ctx, cancel := context.WithCancel(context.Background())

	impl := &rabbitMQImpl{
		instanceID: uuid.NewString(),
		logger:     logger.WithFields(l.StringField(l.ClsKey, "rabbitMQImpl")),

		ctxCancel:           cancel,
		routineMan:          routineman.NewRoutineMan(ctx, logger),
		chTrackStartRequest: make(chan string, 100),
		chTrackStopRequest:  make(chan string, 100),
		chTrackStartedEvent: make(chan *trackStartedEventData, 100),
		chTrackStoppedEvent: make(chan *trackStoppedEventData, 100),
		chSend:              make(chan *mqData, 1000),
	}

	if err := impl.init(url); err != nil {
		cancel()

		return nil, err
	}

	return impl, nil
}

type mqData struct {
	Origin          string      `json:"origin"`
	Target          defs.Target `json:"target"`
	ExcludeUniqueID uint64      `json:"excludeUniqueId,omitempty"`
	Event           *defs.Event `json:"event"`
}

type trackStartedEventData struct {
	key       string
	ctxCancel context.CancelFunc
}

type trackStoppedEventData struct {
	key string
	err error
}

type rabbitMQImpl struct {
	instanceID string
	ob         defs.Observer
	logger     l.Wrapper

	conn *amqp.Connection

	ctxCancel  context.CancelFunc
	routineMan routineman.RoutineMan

	chTrackStartRequest chan string
	chTrackStopRequest  chan string
	chTrackStartedEvent chan *trackStartedEventData
	chTrackStoppedEvent chan *trackStoppedEventData
	chSend              chan *mqData
}

func (impl *rabbitMQImpl) InstanceID() string {
	return impl.instanceID
}

func (impl *rabbitMQImpl) SendData(data *mqData) error {
	if data == nil || data.Event == nil {
		return commerr.ErrInvalidArgument
	}

	select {
	case impl.chSend <- data:
	default:
		return commerr.ErrCanceled
	}

	return nil
}

func (impl *rabbitMQImpl) AddTrack(target defs.Target) error {
	select {
	case impl.chTrackStartRequest <- target.Key():
	default:
		return commerr.ErrCanceled
	}

	return nil
}

func (impl *rabbitMQImpl) RemoveTrack(target defs.Target) {
	select {
	case impl.chTrackStopRequest <- target.Key():
	default:
	}
}

func (impl *rabbitMQImpl) SetObserver(ob defs.Observer) {
	impl.ob = ob
}

func (impl *rabbitMQImpl) Close() {
	impl.ctxCancel()

	if impl.conn != nil {
		_ = impl.conn.Close()
	}
}

func (impl *rabbitMQImpl) init(url string) (err error) {
	impl.conn, err = amqp.DialConfig(url, amqp.Config{
		ChannelMax: math.MaxUint16,
	})
	if err != nil {
		impl.logger.WithFields(l.ErrorField(err)).Error("DialFailed")

		return
	}

	impl.routineMan.StartRoutine(impl.mainRoutine, "mainRoutine")

	return
}

type trackData struct {
	cancel   context.CancelFunc
	stopping bool
}

func (impl *rabbitMQImpl) mainRoutine(ctx context.Context, _ func() bool) {
	logger := impl.logger.WithFields(l.StringField(l.RoutineKey, "mainRoutine"))

	logger.Debug("enter")
	defer logger.Debug("leave")

	trackMap := make(map[string]*trackData)

	channelSend, err := impl.conn.Channel()
	if err != nil {
		logger.WithFields(l.ErrorField(err)).Error("ChannelFailed")

		return
	}

	loop := true

	for loop {
		select {
		case <-ctx.Done():
			loop = false

			continue
		case key := <-impl.chTrackStartRequest:
			if _, ok := trackMap[key]; ok {
				logger.WithFields(l.StringField("key", key)).Warn("TrackExists")

				continue
			}

			trackMap[key] = &trackData{}

			ret := make(chan error, 2)

			impl.routineMan.StartRoutine(func(ctx context.Context, _ func() bool) {
				impl.trackRoutine(ctx, key, ret)
			}, "trackRoutine")

			if err = <-ret; err != nil {
				logger.WithFields(l.StringField("key", key), l.ErrorField(err)).Error("TrackFailed")
			}
		case key := <-impl.chTrackStopRequest:
			if track, ok := trackMap[key]; ok {
				if track.cancel != nil {
					track.cancel()
				} else {
					track.stopping = true
				}
			} else {
				logger.WithFields(l.StringField("key", key)).Warn("TrackNotExists")
			}
		case d := <-impl.chTrackStartedEvent:
			if track, ok := trackMap[d.key]; ok {
				track.cancel = d.ctxCancel

				if track.stopping {
					track.cancel()
				}
			} else {
				d.ctxCancel()
			}
		case d := <-impl.chTrackStoppedEvent:
			if track, ok := trackMap[d.key]; ok {
				if track.cancel != nil {
					track.cancel()
				}

				delete(trackMap, d.key)
			}

			if d.err != nil {
				logger.WithFields(l.StringField("key", d.key), l.ErrorField(d.err)).Warn("TrackStopped")
			}
		case sendD := <-impl.chSend:
			channelSend, err = impl.publish(channelSend, sendD, logger)
			if err != nil {
				logger.WithFields(l.ErrorField(err)).Error("ChannelLost")

				loop = false
			}
		}
	}

	if channelSend != nil {
		_ = channelSend.Close()
	}
}

func (impl *rabbitMQImpl) publish(channel *amqp.Channel, sendD *mqData, logger l.Wrapper) (*amqp.Channel, error) {
	d, err := codec.Marshal(sendD)
	if err != nil {
		logger.WithFields(l.ErrorField(err)).Error("MarshalFailed")

		return channel, nil
	}

	exchange := impl.exchangeName(sendD.Target.Key())

	err = impl.declareExchange(channel, exchange)
	if err == nil {
		err = channel.Publish(exchange, "", false, false, amqp.Publishing{
			ContentType: "application/cbor",
			Body:        d,
		})
	}

	if err == nil {
		return channel, nil
	}

	logger.WithFields(l.ErrorField(err), l.StringField("exchange", exchange),
		l.StringField("size", humanize.Bytes(uint64(len(d))))).Error("PublishFailed")

	_ = channel.Close()

	return impl.conn.Channel()
}

func (impl *rabbitMQImpl) declareExchange(channel *amqp.Channel, exchange string) error {
	return channel.ExchangeDeclare(exchange, "fanout", false, true, false, false, nil)
}

func (impl *rabbitMQImpl) exchangeName(key string) string {
	return "rtm:" + key
}

func (impl *rabbitMQImpl) trackRoutine(ctx context.Context, key string, start chan<- error) {
	logger := impl.logger.WithFields(l.StringField("key", key), l.StringField(l.RoutineKey, "trackRoutine"))

	logger.Debug("enter")
	defer logger.Debug("leave")

	fnQuitWithErrorAndLabel := func(err error, label string) {
		start <- err
		select {
		case impl.chTrackStoppedEvent <- &trackStoppedEventData{
			key: key,
			err: fmt.Errorf("%s: %w", label, err),
		}:
		default:
		}
	}

	channel, err := impl.conn.Channel()
	if err != nil {
		fnQuitWithErrorAndLabel(err, "Channel")

		return
	}

	defer channel.Close()

	if err = impl.declareExchange(channel, impl.exchangeName(key)); err != nil {
		fnQuitWithErrorAndLabel(err, "ExchangeDeclare")

		return
	}

	q, err := channel.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		fnQuitWithErrorAndLabel(err, "QueueDeclare")

		return
	}

	err = channel.QueueBind(q.Name, "", impl.exchangeName(key), false, nil)
	if err != nil {
		fnQuitWithErrorAndLabel(err, "QueueBind")

		return
	}

	deliveries, err := channel.Consume(q.Name, "", true, false, false, false, nil)
	if err != nil {
		fnQuitWithErrorAndLabel(err, "Consume")

		return
	}

	start <- nil

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	select {
	case impl.chTrackStartedEvent <- &trackStartedEventData{
		key:       key,
		ctxCancel: cancel,
	}:
	default:
	}

	loop := true

	for loop {
		select {
		case <-ctx.Done():
			loop = false

			continue
		case d, ok := <-deliveries:
			if !ok {
				loop = false

				continue
			}

			var obj mqData

			if err = codec.Unmarshal(d.Body, &obj); err != nil {
				logger.WithFields(l.ErrorField(err), l.StringField("size", humanize.Bytes(uint64(len(d.Body))))).
					Error("UnmarshalFailed")

				continue
			}

			if obj.Origin == impl.instanceID {
				continue
			}

			if obj.Event == nil {
				logger.Error("UnknownMqData")

				continue
			}

			if impl.ob != nil {
				impl.ob.OnEvent(obj.Target, obj.ExcludeUniqueID, obj.Event)
			}
		}
	}

	select {
	case impl.chTrackStoppedEvent <- &trackStoppedEventData{
		key: key,
	}:
	default:
	}
}

package transport

import (
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/websocket"
	"github.com/sbasestarter/rtm-harness/internal/metrics"
	"github.com/sgostarter/i/l"
	"github.com/sgostarter/libeasygo/commerr"
)

const (
	sendCacheSize = 100
	maxFrameSize  = 1 << 20
	closeTimeout  = time.Second
)

// pump owns one websocket connection: a single writer routine fed by a bounded queue and a read loop.
type pump struct {
	ws      *websocket.Conn
	metrics *metrics.Metrics
	logger  l.Wrapper

	chSend    chan *Frame
	chClosed  chan struct{}
	closeOnce sync.Once
}

func newPump(ws *websocket.Conn, m *metrics.Metrics, logger l.Wrapper) *pump {
	ws.SetReadLimit(maxFrameSize)

	return &pump{
		ws:       ws,
		metrics:  m,
		logger:   logger,
		chSend:   make(chan *Frame, sendCacheSize),
		chClosed: make(chan struct{}),
	}
}

// send queues frame without blocking. A full queue fails with commerr.ErrAborted.
func (p *pump) send(frame *Frame) error {
	select {
	case <-p.chClosed:
		return commerr.ErrCanceled
	default:
	}

	select {
	case p.chSend <- frame:
	default:
		return commerr.ErrAborted
	}

	return nil
}

func (p *pump) closed() <-chan struct{} {
	return p.chClosed
}

func (p *pump) close() {
	p.closeOnce.Do(func() {
		close(p.chClosed)

		_ = p.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(closeTimeout))
		_ = p.ws.Close()
	})
}

func (p *pump) writeRoutine() {
	logger := p.logger.WithFields(l.StringField(l.RoutineKey, "writeRoutine"))

	logger.Debug("enter")
	defer logger.Debug("leave")

	for {
		select {
		case <-p.chClosed:
			return
		case frame := <-p.chSend:
			d, err := encodeFrame(frame)
			if err != nil {
				logger.WithFields(l.ErrorField(err)).Error("EncodeFrameFailed")

				continue
			}

			err = p.ws.WriteMessage(websocket.BinaryMessage, d)
			if err != nil {
				logger.WithFields(l.ErrorField(err)).Error("WriteMessageFailed")

				p.close()

				return
			}

			p.metrics.Frame("out", string(frame.Kind), len(d))
		}
	}
}

// readLoop hands every decoded frame to handle until the connection fails or is closed.
func (p *pump) readLoop(handle func(frame *Frame)) {
	logger := p.logger.WithFields(l.StringField(l.RoutineKey, "readLoop"))

	logger.Debug("enter")
	defer logger.Debug("leave")

	for {
		messageType, d, err := p.ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("ConnectionClosed")
			} else {
				select {
				case <-p.chClosed:
				default:
					logger.WithFields(l.ErrorField(err)).Error("ReadMessageFailed")
				}
			}

			return
		}

		if messageType != websocket.BinaryMessage {
			logger.Warn("NonBinaryMessage")

			continue
		}

		frame, err := decodeFrame(d)
		if err != nil {
			logger.WithFields(l.ErrorField(err), l.StringField("size", humanize.Bytes(uint64(len(d))))).
				Error("DecodeFrameFailed")

			continue
		}

		p.metrics.Frame("in", string(frame.Kind), len(d))

		handle(frame)
	}
}

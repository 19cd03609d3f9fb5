package transport

import (
	"github.com/pkg/errors"
	"github.com/sbasestarter/rtm-harness/internal/codec"
	"github.com/sbasestarter/rtm-harness/internal/defs"
)

type FrameKind string

const (
	FrameKindAttach  FrameKind = "attach"
	FrameKindDetach  FrameKind = "detach"
	FrameKindRequest FrameKind = "request"
	FrameKindResult  FrameKind = "result"
	FrameKindEvent   FrameKind = "event"
	FrameKindError   FrameKind = "error"
)

// Frame is one websocket message. SessionID is the id the client chose for its session;
// the server never exposes its own session ids.
type Frame struct {
	Kind      FrameKind `json:"kind"`
	SessionID uint64    `json:"sessionId"`

	UserID   string `json:"userId,omitempty"`
	Graceful bool   `json:"graceful,omitempty"`

	Request *defs.Request `json:"request,omitempty"`
	Result  *defs.Result  `json:"result,omitempty"`
	Event   *defs.Event   `json:"event,omitempty"`

	Code    uint32 `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

func encodeFrame(frame *Frame) ([]byte, error) {
	d, err := codec.Marshal(frame)
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s frame", frame.Kind)
	}

	return d, nil
}

func decodeFrame(d []byte) (*Frame, error) {
	var frame Frame

	if err := codec.Unmarshal(d, &frame); err != nil {
		return nil, errors.Wrap(err, "decode frame")
	}

	if frame.Kind == "" {
		return nil, errors.New("decode frame: no kind")
	}

	return &frame, nil
}

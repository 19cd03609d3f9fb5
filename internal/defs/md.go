package defs

import (
	"context"
)

// MD is the engine state. Every method runs on the engine main routine.
type MD interface {
	Load(ctx context.Context) (err error)
	AttachSession(ctx context.Context, session Session)
	DetachSession(ctx context.Context, session Session, graceful bool)
	HandleRequest(ctx context.Context, session Session, request *Request)
	// Shutdown detaches every session and removes it with msg.
	Shutdown(ctx context.Context, msg string)
}

package defs

// Session is one client instance attached to the engine.
type Session interface {
	GetUniqueID() uint64
	GetUserID() string
	SendResult(result *Result) error
	SendEvent(event *Event) error
	Remove(msg string)
}

// Backend accepts requests on behalf of attached sessions and answers through them.
// Every call is non-blocking.
type Backend interface {
	Attach(session Session) error
	Detach(session Session, graceful bool) error
	Submit(session Session, request *Request) error
}

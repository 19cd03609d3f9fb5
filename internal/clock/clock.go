package clock

import "time"

type Timer interface {
	Stop() bool
}

// Clock abstracts time so lock TTLs, retry windows and token expiry can be driven by tests.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type Real struct{}

func (Real) Now() time.Time {
	return time.Now()
}

func (Real) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

func UnixMilli(c Clock) uint64 {
	return uint64(c.Now().UnixMilli())
}

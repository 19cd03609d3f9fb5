package rtm

import (
	"github.com/pkg/errors"
)

const version = "2.2.0"

// Error is a failure reported synchronously by a call. Asynchronous outcomes only reach result callbacks.
type Error struct {
	Code ErrorCode
	Op   string
	Err  error
}

func newError(op string, code ErrorCode, err error) *Error {
	return &Error{
		Code: code,
		Op:   op,
		Err:  err,
	}
}

func (e *Error) Error() string {
	msg := "rtm: " + e.Op + ": " + e.Code.Reason()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf extracts the error code of err. A nil error is ErrorCodeOK; errors not raised by this package
// map to ErrorCodeNotInitialized.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ErrorCodeOK
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return ErrorCodeNotInitialized
}

func GetErrorReason(code ErrorCode) string {
	return code.Reason()
}

func GetVersion() string {
	return version
}

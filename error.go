package ws281x

import (
	"errors"

	"github.com/rpi-ws281x/rpi-ws281x-go/sys"
)

// ErrClosed is returned by a Controller used after Close.
var ErrClosed = errors.New("ws281x: controller closed")

// Error is a failure reported by the native library.
type Error struct {
	Code sys.Ws2811Return
	msg  string
}

func newError(d driver, code sys.Ws2811Return) *Error {
	return &Error{Code: code, msg: d.Describe(code)}
}

// Error returns the library's description of the code, or the code's name
// when none is available.
func (e *Error) Error() string {
	if e.msg != "" {
		return e.msg
	}
	return e.Code.String()
}

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

package reactive

import (
	"errors"
	"fmt"

	rerrors "github.com/vango-dev/reactive/internal/errors"
)

// ErrCascadeDepth is matched (via errors.Is) by the panic value raised when
// effect executions nest deeper than the limit set with WithMaxDepth.
var ErrCascadeDepth = errors.New("reactive: cascade depth exceeded")

// ErrOwnerDisposed is matched by the panic value raised when an effect is
// created inside, or work is run in, a disposed Owner.
var ErrOwnerDisposed = errors.New("reactive: owner disposed")

// PanicError carries a recovered panic value that was not itself an error.
type PanicError struct {
	Value any
}

// Error implements the error interface.
func (p *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", p.Value)
}

// Catch runs fn and converts a panic raised anywhere in the notification
// cascade it triggers into an error. Panics carrying an error are wrapped so
// errors.Is and errors.As still see the original; other values are wrapped
// in a *PanicError.
//
// The core itself never recovers: Catch is for hosts that must survive a
// faulty effect.
//
// Example:
//
//	if err := reactive.Catch(func() { count.Set(n) }); err != nil {
//	    logger.Error("update failed", "error", err)
//	}
func Catch(fn func()) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if e, ok := r.(error); ok {
			err = rerrors.FromError(e, "R004")
			return
		}
		err = rerrors.New("R004").Wrap(&PanicError{Value: r})
	}()
	fn()
	return nil
}

package collide

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks errors caused by invalid setup.
	ErrConfiguration = errors.New("collide: configuration error")
	// ErrInvalidState marks operations on objects in the wrong lifecycle state.
	ErrInvalidState = errors.New("collide: invalid state")

	ErrInvalidListener   = fmt.Errorf("%w: contact listener is nil or disposed", ErrConfiguration)
	ErrWorldDisposed     = fmt.Errorf("%w: collision world disposed", ErrInvalidState)
	ErrComponentDisposed = fmt.Errorf("%w: physics component disposed", ErrInvalidState)
	ErrAlreadyRegistered = fmt.Errorf("%w: component already registered", ErrInvalidState)
	ErrNotRegistered     = fmt.Errorf("%w: component not registered", ErrInvalidState)
	ErrStillRegistered   = fmt.Errorf("%w: component still registered", ErrInvalidState)
	ErrOutsideContact    = fmt.Errorf("%w: collision change outside a contact callback", ErrInvalidState)
)

// CallbackError is one contact callback that failed or panicked. The pass
// that produced it still ran to completion.
type CallbackError struct {
	A, B  *CollisionObject
	Err   error
	Panic any
}

func (e *CallbackError) Error() string {
	if e.Panic != nil {
		return fmt.Sprintf("collide: contact callback panicked for %s/%s: %v", e.A.Tag(), e.B.Tag(), e.Panic)
	}
	return fmt.Sprintf("collide: contact callback failed for %s/%s: %v", e.A.Tag(), e.B.Tag(), e.Err)
}

func (e *CallbackError) Unwrap() error { return e.Err }

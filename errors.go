package chanflow

import "errors"

var (
	// ErrClosed is returned by Put when the target channel has been closed.
	// Take never returns ErrClosed; a closed, drained channel signals
	// end-of-stream via ok=false instead.
	ErrClosed = errors.New("chanflow: channel closed")

	// ErrAlreadyStarted is returned when Produce or Consume is called
	// on a component that has already been started.
	ErrAlreadyStarted = errors.New("chanflow: already started")

	// ErrInvalidCapacity is returned by NewChannel when the configuration
	// cannot produce a usable channel, such as a negative capacity or a
	// zero capacity combined with a non-blocking policy.
	ErrInvalidCapacity = errors.New("chanflow: invalid capacity")
)

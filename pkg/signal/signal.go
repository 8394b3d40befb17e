// Package signal shows the state of the running meeting outside of it, like
// on a lamp in the room or at a webhook of another system.
package signal

type Signal interface {
	// Ensure brings the target into the state of the given context.
	Ensure(Context) error

	// Update refreshes whatever the signal discovered on initialization.
	Update() error

	Dispose() error

	GetType() Type
}

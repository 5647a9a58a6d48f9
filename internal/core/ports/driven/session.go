package driven

import "context"

// SessionStore holds the vault PIN for the lifetime of the process.
// Implementations must never write the PIN to durable storage.
type SessionStore interface {
	// PIN returns the stored PIN, if any.
	PIN() (string, bool)

	// SetPIN stores the PIN for the session.
	SetPIN(pin string)

	// ClearPIN forgets the PIN.
	ClearPIN()
}

// PINPrompter asks the user for the 4-digit vault PIN.
type PINPrompter interface {
	// PromptPIN blocks until the user enters four digits or cancels.
	// Cancellation returns ok=false with a nil error.
	PromptPIN(ctx context.Context) (pin string, ok bool, err error)
}

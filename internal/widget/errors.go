package widget

import "errors"

var (
	// ErrAuthenticationRequired is returned before any network call when no
	// customer is signed in. The host handles the login redirect.
	ErrAuthenticationRequired = errors.New("authentication required")

	ErrSessionNotFound = errors.New("chat session not found")

	// ErrAlreadyBound and ErrBootstrapInFlight reject redundant bootstraps;
	// a bound session is never re-bootstrapped while it stays open.
	ErrAlreadyBound      = errors.New("conversation already bound")
	ErrBootstrapInFlight = errors.New("bootstrap already in flight")

	// Send admission errors. None of them mutate any session state.
	ErrEmptyMessage = errors.New("message text is empty")
	ErrNotBound     = errors.New("conversation not bound yet")
	ErrSendInFlight = errors.New("a send is already in flight")
)

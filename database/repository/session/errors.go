package sessionRepo

import "errors"

var (
	// ErrSessionNotFound is returned when no session exists for the given ID.
	ErrSessionNotFound = errors.New("auction session not found")

	// ErrSessionNotOpen is returned by CommitAcceptance when the session
	// status guard fails: another acceptance won the race or the session
	// already left the open state.
	ErrSessionNotOpen = errors.New("auction session is not open")

	// ErrOfferNotPending is returned by CommitAcceptance when the winning
	// offer is no longer pending.
	ErrOfferNotPending = errors.New("offer is not pending")

	// ErrOpenSessionExists is returned by Create when the unique open-session
	// index rejects a second open session for the same booking.
	ErrOpenSessionExists = errors.New("an open auction session already exists for booking")
)

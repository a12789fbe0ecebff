package bookingRepo

import "errors"

// ErrBookingNotFound is returned when no booking exists for the given ID.
var ErrBookingNotFound = errors.New("booking request not found")

package ledgerRepo

import "errors"

// ErrEscrowNotFound is returned when no escrow transaction exists for the
// given ID or booking.
var ErrEscrowNotFound = errors.New("escrow transaction not found")

// ErrEscrowExists is returned when a hold already exists for the booking.
var ErrEscrowExists = errors.New("escrow transaction already exists for booking")

package auction

import (
	"errors"
	"fmt"
)

// Error codes returned by the auction layer. Races on acceptance are
// expected, so callers must be able to tell a lost race apart from misuse.
const (
	CodeInvalidState      = "invalidState"
	CodeInsufficientFunds = "insufficientFunds"
	CodeSessionAlreadyWon = "sessionAlreadyWon"
	CodeNotFound          = "notFound"
	CodeForbidden         = "forbidden"
)

type AuctionError struct {
	Code    string
	Message string
}

func (e *AuctionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewInvalidState(msg string) error {
	return &AuctionError{Code: CodeInvalidState, Message: msg}
}

func NewInsufficientFunds(msg string) error {
	return &AuctionError{Code: CodeInsufficientFunds, Message: msg}
}

func NewSessionAlreadyWon(msg string) error {
	return &AuctionError{Code: CodeSessionAlreadyWon, Message: msg}
}

func NewNotFound(msg string) error {
	return &AuctionError{Code: CodeNotFound, Message: msg}
}

func NewForbidden(msg string) error {
	return &AuctionError{Code: CodeForbidden, Message: msg}
}

// ErrCode extracts the auction error code, or "" for foreign errors.
func ErrCode(err error) string {
	var ae *AuctionError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

package escrow

import (
	"errors"
	"fmt"
)

// Error codes returned by the settlement engine.
const (
	CodeInvalidState      = "invalidState"
	CodeInsufficientFunds = "insufficientFunds"
	CodeTerminalState     = "terminalState"
	CodeNotFound          = "notFound"
)

type EscrowError struct {
	Code    string
	Message string
}

func (e *EscrowError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewInvalidState(msg string) error {
	return &EscrowError{Code: CodeInvalidState, Message: msg}
}

func NewInsufficientFunds(msg string) error {
	return &EscrowError{Code: CodeInsufficientFunds, Message: msg}
}

func NewTerminalState(msg string) error {
	return &EscrowError{Code: CodeTerminalState, Message: msg}
}

func NewNotFound(msg string) error {
	return &EscrowError{Code: CodeNotFound, Message: msg}
}

// ErrCode extracts the escrow error code, or "" for foreign errors.
func ErrCode(err error) string {
	var ee *EscrowError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ""
}

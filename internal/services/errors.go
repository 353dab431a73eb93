package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a domain error so the HTTP layer can map it to a
// status code without inspecting messages.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNotFound
	KindNotAuthorized
	KindConflict
	KindInvalidState
	KindValidation
	KindTransaction
)

// DomainError is the error type returned by all service operations.
type DomainError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error { return e.Err }

func ErrNotFound(msg string) *DomainError {
	return &DomainError{Kind: KindNotFound, Message: msg}
}

func ErrNotAuthorized(msg string) *DomainError {
	return &DomainError{Kind: KindNotAuthorized, Message: msg}
}

func ErrConflict(msg string) *DomainError {
	return &DomainError{Kind: KindConflict, Message: msg}
}

func ErrInvalidState(msg string) *DomainError {
	return &DomainError{Kind: KindInvalidState, Message: msg}
}

func ErrValidation(msg string) *DomainError {
	return &DomainError{Kind: KindValidation, Message: msg}
}

// ErrTransaction wraps a store failure that aborted a multi-step operation.
// The store has been rolled back by the time this is returned.
func ErrTransaction(msg string, err error) *DomainError {
	return &DomainError{Kind: KindTransaction, Message: msg, Err: err}
}

// KindOf extracts the ErrorKind from err, or KindUnknown for plain errors.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}

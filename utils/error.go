package utils

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every failure the assignment manager and the ledger report.
type ErrorKind string

const (
	KindValidationFailed    ErrorKind = "ValidationFailed"
	KindConstraintViolation ErrorKind = "ConstraintViolation"
	KindNotFound            ErrorKind = "NotFound"
	KindTransactionAborted  ErrorKind = "TransactionAborted"
)

// Sentinels for errors.Is; every *DomainError matches the sentinel of its kind.
var (
	ErrValidationFailed    = &DomainError{Kind: KindValidationFailed}
	ErrConstraintViolation = &DomainError{Kind: KindConstraintViolation}
	ErrNotFound            = &DomainError{Kind: KindNotFound}
	ErrTransactionAborted  = &DomainError{Kind: KindTransactionAborted}
)

type DomainError struct {
	Kind ErrorKind
	// Field names the offending input field for ValidationFailed.
	Field string
	// Relation names the table whose rule rejected a write for ConstraintViolation.
	Relation string
	Message  string
	Err      error
}

func (e *DomainError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	switch {
	case e.Field != "":
		msg = fmt.Sprintf("%s: %s", e.Field, msg)
	case e.Relation != "":
		msg = fmt.Sprintf("%s: %s", e.Relation, msg)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches on kind only, so errors.Is(err, ErrNotFound) holds for any NotFound.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func ValidationFailed(field string, message string) *DomainError {
	return &DomainError{Kind: KindValidationFailed, Field: field, Message: message}
}

func ConstraintViolation(relation string, err error) *DomainError {
	return &DomainError{Kind: KindConstraintViolation, Relation: relation, Message: "constraint violated", Err: err}
}

func NotFound(entity string, id int) *DomainError {
	return &DomainError{Kind: KindNotFound, Relation: entity, Message: fmt.Sprintf("id %d not found", id)}
}

func TransactionAborted(err error) *DomainError {
	return &DomainError{Kind: KindTransactionAborted, Message: "transaction aborted", Err: err}
}

// KindOf returns the kind of a domain error, or "" for anything else.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

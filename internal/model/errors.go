package model

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes record errors.
type ErrorCode string

const (
	// ErrCodeValidation indicates a duplicate unique key, a dangling
	// reference at write time, or a malformed field.
	ErrCodeValidation ErrorCode = "VALIDATION"

	// ErrCodeNotFound indicates an unknown identifier.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodePersistence indicates the snapshot write failed. The in-memory
	// change has already been applied.
	ErrCodePersistence ErrorCode = "PERSISTENCE"

	// ErrCodeMalformedBackup indicates a restore payload failed structural
	// validation. Nothing was changed.
	ErrCodeMalformedBackup ErrorCode = "MALFORMED_BACKUP"
)

// Entity kinds used in error context and integrity reports.
const (
	KindStudent      = "student"
	KindTeacher      = "teacher"
	KindSubject      = "subject"
	KindClassSection = "class section"
	KindGrade        = "grade"
	KindAttendance   = "attendance"
)

// Error is the error type returned by record operations.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Op is the operation that failed, e.g. "add student".
	Op string

	// Kind and ID identify the entity involved, when there is one.
	Kind string
	ID   string

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Kind != "" && e.ID != "" {
		msg = fmt.Sprintf("%s (%s %s)", msg, e.Kind, e.ID)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewValidationError creates a VALIDATION error.
func NewValidationError(op, kind, message string) *Error {
	return &Error{Code: ErrCodeValidation, Op: op, Kind: kind, Message: message}
}

// NewNotFoundError creates a NOT_FOUND error for kind/id.
func NewNotFoundError(op, kind, id string) *Error {
	return &Error{Code: ErrCodeNotFound, Op: op, Kind: kind, ID: id, Message: kind + " not found"}
}

// NewPersistenceError wraps a failed snapshot write.
func NewPersistenceError(op string, err error) *Error {
	return &Error{Code: ErrCodePersistence, Op: op, Message: "snapshot write failed, change kept in memory only", Err: err}
}

// NewMalformedBackupError creates a MALFORMED_BACKUP error.
func NewMalformedBackupError(message string, err error) *Error {
	return &Error{Code: ErrCodeMalformedBackup, Op: "restore backup", Message: message, Err: err}
}

func hasCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsValidation returns true if err is (or wraps) a VALIDATION error.
func IsValidation(err error) bool { return hasCode(err, ErrCodeValidation) }

// IsNotFound returns true if err is (or wraps) a NOT_FOUND error.
func IsNotFound(err error) bool { return hasCode(err, ErrCodeNotFound) }

// IsPersistence returns true if err is (or wraps) a PERSISTENCE error.
func IsPersistence(err error) bool { return hasCode(err, ErrCodePersistence) }

// IsMalformedBackup returns true if err is (or wraps) a MALFORMED_BACKUP error.
func IsMalformedBackup(err error) bool { return hasCode(err, ErrCodeMalformedBackup) }

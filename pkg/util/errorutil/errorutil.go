package errorutil

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation           = "23505"
	pgInvalidTextRepresentation = "22P02"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Title      string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches on Code so callers can compare against the exported sentinels.
func (e *DomainError) Is(target error) bool {
	var other *DomainError
	if !errors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, title, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Title: title, Message: message, HTTPStatus: status, Details: details}
}

// Sentinels usable with errors.Is.
var (
	ErrAuthentication = &DomainError{Code: "AUTHENTICATION_FAILED"}
	ErrInvalidSession = &DomainError{Code: "INVALID_SESSION"}
	ErrForbidden      = &DomainError{Code: "FORBIDDEN"}
	ErrNotFound       = &DomainError{Code: "NOT_FOUND"}
	ErrUpdate         = &DomainError{Code: "UPDATE_FAILED"}
	ErrSessionClose   = &DomainError{Code: "SESSION_CLOSE_FAILED"}
	ErrConflict       = &DomainError{Code: "CONFLICT"}
	ErrValidation     = &DomainError{Code: "VALIDATION_FAILED"}
)

func NewAuthentication(message string) error {
	return NewDomainError(ErrAuthentication.Code, "Unauthenticated", message, http.StatusUnauthorized, nil)
}

func NewInvalidSession(message string) error {
	if message == "" {
		message = "Session not valid or not exists"
	}
	return NewDomainError(ErrInvalidSession.Code, "Invalid session", message, http.StatusBadRequest, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(ErrForbidden.Code, "Unauthorized", message, http.StatusForbidden, nil)
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(ErrValidation.Code, "Bad request", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       ErrNotFound.Code,
		Title:      "Not found",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUpdateError(resource string) error {
	return NewDomainError(ErrUpdate.Code, "Update failed", fmt.Sprintf("%s was not updated", resource), http.StatusBadRequest, nil)
}

func NewSessionCloseError(sessionID string) error {
	return NewDomainError(ErrSessionClose.Code, "Session close failed", "previous session could not be closed",
		http.StatusInternalServerError, map[string]any{"session_id": sessionID})
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(ErrConflict.Code, "Conflict", message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Title:      "Internal error",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return NewDomainError("HTTP_"+fmt.Sprint(fiberErr.Code), http.StatusText(fiberErr.Code), fiberErr.Message, fiberErr.Code, nil)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return NewNotFound("resource", nil).(*DomainError)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return NewConflict("resource already exists", map[string]any{"constraint": pgErr.ConstraintName}).(*DomainError)
		case pgInvalidTextRepresentation:
			return NewValidationError("malformed identifier", nil).(*DomainError)
		}
	}
	return NewInternalError(err).(*DomainError)
}

// MapError converts generic errors to DomainError.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	return ToDomainError(err)
}

// IsInvalidTextRepresentation reports whether Postgres rejected a value for its column type,
// such as a non-UUID id.
func IsInvalidTextRepresentation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgInvalidTextRepresentation
}

// IsUniqueViolation reports whether err is a Postgres unique constraint failure.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

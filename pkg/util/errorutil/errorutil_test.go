package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestSentinelMatching(t *testing.T) {
	err := fmt.Errorf("logout: %w", NewInvalidSession(""))
	assert.ErrorIs(t, err, ErrInvalidSession)
	assert.NotErrorIs(t, err, ErrNotFound)

	de := ToDomainError(err)
	assert.Equal(t, http.StatusBadRequest, de.HTTPStatus)
	assert.Equal(t, "Session not valid or not exists", de.Message)
}

func TestToDomainErrorMapsDriverErrors(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, ToDomainError(pgx.ErrNoRows).HTTPStatus)

	unique := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	de := ToDomainError(fmt.Errorf("insert: %w", unique))
	assert.Equal(t, http.StatusConflict, de.HTTPStatus)
	assert.True(t, IsUniqueViolation(unique))

	internal := ToDomainError(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, internal.HTTPStatus)
	assert.Equal(t, "internal server error", internal.Message)
}

func TestForbiddenTitle(t *testing.T) {
	de := ToDomainError(NewForbidden("role not allowed"))
	assert.Equal(t, "Unauthorized", de.Title)
	assert.Equal(t, http.StatusForbidden, de.HTTPStatus)
}

func TestMapErrorNil(t *testing.T) {
	assert.NoError(t, MapError(nil))
	assert.Nil(t, ToDomainError(nil))
}

func TestToDomainErrorKeepsFiberStatus(t *testing.T) {
	de := ToDomainError(fiber.ErrMethodNotAllowed)
	assert.Equal(t, http.StatusMethodNotAllowed, de.HTTPStatus)
	assert.Equal(t, "Method Not Allowed", de.Title)
}

func TestToDomainErrorMapsMalformedIdentifier(t *testing.T) {
	malformed := &pgconn.PgError{Code: "22P02", Message: `invalid input syntax for type uuid: "abc"`}
	err := fmt.Errorf("get ticket: %w", malformed)

	de := ToDomainError(err)
	assert.Equal(t, http.StatusBadRequest, de.HTTPStatus)
	assert.ErrorIs(t, de, ErrValidation)
	assert.True(t, IsInvalidTextRepresentation(err))
	assert.False(t, IsInvalidTextRepresentation(pgx.ErrNoRows))
}

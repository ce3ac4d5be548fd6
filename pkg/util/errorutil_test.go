package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

func TestToDomainErrorPassthrough(t *testing.T) {
	original := NewConflict(MsgEmailTaken)

	mapped := ToDomainError(original)
	require.Equal(t, "CONFLICT", mapped.Code)
	require.Equal(t, http.StatusConflict, mapped.HTTPStatus)
	require.Equal(t, MsgEmailTaken, mapped.Message)
}

func TestToDomainErrorWrapsNoRowsAsNotFound(t *testing.T) {
	mapped := ToDomainError(fmt.Errorf("lookup: %w", pgx.ErrNoRows))
	require.Equal(t, "NOT_FOUND", mapped.Code)
	require.Equal(t, http.StatusNotFound, mapped.HTTPStatus)
}

func TestToDomainErrorMapsFiberErrors(t *testing.T) {
	mapped := ToDomainError(fiber.ErrNotFound)
	require.Equal(t, "NOT_FOUND", mapped.Code)
	require.Equal(t, http.StatusNotFound, mapped.HTTPStatus)

	mapped = ToDomainError(fiber.ErrMethodNotAllowed)
	require.Equal(t, "METHOD_NOT_ALLOWED", mapped.Code)
	require.Equal(t, http.StatusMethodNotAllowed, mapped.HTTPStatus)
}

func TestToDomainErrorHidesInternalDetail(t *testing.T) {
	mapped := ToDomainError(errors.New("connection refused to db-host:5432"))
	require.Equal(t, "INTERNAL_ERROR", mapped.Code)
	require.Equal(t, "internal server error", mapped.Message)
	require.NotContains(t, mapped.Message, "db-host")
}

func TestInvalidCredentialsMessagesMatch(t *testing.T) {
	generic := ToDomainError(NewInvalidCredentials())
	require.Equal(t, MsgInvalidCredentials, generic.Message)
	require.Equal(t, http.StatusUnauthorized, generic.HTTPStatus)

	reasoned := ToDomainError(NewInvalidCredentialsReason(MsgPasswordsMustMatch))
	require.Equal(t, generic.Code, reasoned.Code)
	require.Equal(t, generic.HTTPStatus, reasoned.HTTPStatus)
}

func TestDomainErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	wrapped := NewInternalError(inner)

	var domainErr *DomainError
	require.ErrorAs(t, wrapped, &domainErr)
	require.ErrorIs(t, wrapped, inner)
}

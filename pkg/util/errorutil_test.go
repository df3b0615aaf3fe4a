package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHasCodeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("save: %w", NewMonthLocked("2024-02"))
	require.True(t, HasCode(err, CodeMonthLocked))
	require.False(t, HasCode(err, CodeForbidden))
	require.False(t, HasCode(errors.New("plain"), CodeMonthLocked))
	require.False(t, HasCode(nil, CodeMonthLocked))
}

func TestToDomainErrorHidesInternals(t *testing.T) {
	require.Nil(t, ToDomainError(nil))

	cause := errors.New("connection refused")
	de := ToDomainError(cause)
	require.Equal(t, CodeInternal, de.Code)
	require.Equal(t, http.StatusInternalServerError, de.HTTPStatus)
	require.Equal(t, "internal server error", de.Message)
	require.ErrorIs(t, de, cause)
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		code   string
		status int
	}{
		{NewForbidden("no"), CodeForbidden, http.StatusForbidden},
		{NewUnauthorized("who"), CodeUnauthorized, http.StatusUnauthorized},
		{NewMonthLocked("2024-02"), CodeMonthLocked, http.StatusConflict},
		{NewOutOfRangeDate(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "2024-02"), CodeOutOfRangeDate, http.StatusBadRequest},
		{NewValidationError("bad", nil), CodeValidation, http.StatusBadRequest},
		{NewUserNotFound("u1"), CodeUserNotFound, http.StatusNotFound},
		{NewMonthNotFound("2024-02"), CodeMonthNotFound, http.StatusNotFound},
		{NewConflict("dup", nil), CodeConflict, http.StatusConflict},
		{NewNotFound("thing", nil), CodeNotFound, http.StatusNotFound},
	}
	for _, tc := range cases {
		de := ToDomainError(tc.err)
		require.Equal(t, tc.code, de.Code)
		require.Equal(t, tc.status, de.HTTPStatus)
	}
}

func TestOutOfRangeDateDetails(t *testing.T) {
	de := ToDomainError(NewOutOfRangeDate(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "2024-02"))
	require.Equal(t, "2024-03-01", de.Details["date"])
	require.Equal(t, "2024-02", de.Details["month"])
	require.Contains(t, de.Message, "2024-03-01")
}

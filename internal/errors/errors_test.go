package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthErrorMatchesUnauthorized(t *testing.T) {
	err := fmt.Errorf("failed to load profile: %w", &AuthError{Message: "Invalid token"})

	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.Equal(t, "Invalid token", Message(err))
	assert.Equal(t, "authentication required", (&AuthError{}).Error())
}

func TestRejectionNotFound(t *testing.T) {
	assert.True(t, errors.Is(&APIRejection{Status: 404, Message: "No venue with such ID"}, ErrNotFound))
	assert.False(t, errors.Is(&APIRejection{Status: 400, Message: "bad"}, ErrNotFound))
}

func TestAPIKeyFailure(t *testing.T) {
	assert.True(t, (&APIRejection{Status: 401, Message: "No API key header was found"}).IsAPIKeyFailure())
	assert.False(t, (&APIRejection{Status: 401, Message: "Invalid token"}).IsAPIKeyFailure())
}

func TestMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"validation", Validation("guests", "Guests must be between 1 and 4."), "Guests must be between 1 and 4."},
		{"rejection", fmt.Errorf("failed to create venue: %w", &APIRejection{Status: 400, Message: "Could not create venue"}), "Could not create venue"},
		{"network", &NetworkError{Op: "GET /holidaze/venues", Err: errors.New("dial tcp: refused")}, "Could not reach the booking service, try again later"},
		{"forbidden", ErrForbidden, "You are not allowed to do that"},
		{"not found", ErrNotFound, "Not found"},
		{"other", errors.New("boom"), "Something went wrong, try again later"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Message(tt.err))
		})
	}
}

func TestNetworkErrorUnwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := &NetworkError{Op: "POST /holidaze/bookings", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "POST /holidaze/bookings")
}

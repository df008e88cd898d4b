package common

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserError(t *testing.T) {
	err := NewUserError("could not reach the server", ErrNotFound)

	assert.Equal(t, "could not reach the server: not found", err.Error())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "could not reach the server", UserMessage(err))
	assert.Equal(t, "could not reach the server", UserMessage(fmt.Errorf("save: %w", err)))

	bare := NewUserError("just a message", nil)
	assert.Equal(t, "just a message", bare.Error())

	assert.Equal(t, "boom", UserMessage(errors.New("boom")))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorClass
	}{
		{"nil", nil, ClassNone},
		{"unauthenticated", fmt.Errorf("load: %w", ErrUnauthenticated), ClassUnauthenticated},
		{"validation", fmt.Errorf("save profile: %w", ErrValidation), ClassValidation},
		{"local", fmt.Errorf("%w: unknown field", ErrInvalidInput), ClassLocal},
		{"remote", errors.New("connection refused"), ClassRemote},
		{"user error keeps class", NewUserError("log in first", ErrUnauthenticated), ClassUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestErrorClassString(t *testing.T) {
	assert.Equal(t, "none", ClassNone.String())
	assert.Equal(t, "expected-unauthenticated", ClassUnauthenticated.String())
	assert.Equal(t, "suppressed-validation", ClassValidation.String())
	assert.Equal(t, "local", ClassLocal.String())
	assert.Equal(t, "unexpected-remote", ClassRemote.String())
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrRateLimit))
	assert.True(t, IsRetryable(fmt.Errorf("fetch: %w", ErrPlaidRateLimit)))
	assert.True(t, IsRetryable(context.DeadlineExceeded))
	assert.True(t, IsRetryable(&RetryableError{Err: errors.New("503"), Retryable: true}))

	assert.False(t, IsRetryable(&RetryableError{Err: errors.New("400"), Retryable: false}))
	assert.False(t, IsRetryable(ErrValidation))
	assert.False(t, IsRetryable(nil))
}

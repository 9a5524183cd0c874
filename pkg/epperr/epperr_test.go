package epperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	base := New(CodeStatusProhibits, "Alloc token was already redeemed")

	assert.Equal(t, CodeStatusProhibits, CodeOf(base))
	assert.Equal(t, CodeStatusProhibits, CodeOf(fmt.Errorf("renew: %w", base)))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
	assert.Equal(t, CodeInternal, CodeOf(nil))
}

func TestSentinelMatching(t *testing.T) {
	sentinel := New(CodeAuthorizationError, "The allocation token is invalid")
	wrapped := fmt.Errorf("load token: %w", sentinel)

	assert.True(t, errors.Is(wrapped, sentinel))
	assert.False(t, errors.Is(wrapped, New(CodeAuthorizationError, "The allocation token is invalid")))
}

func TestWrapPreservesChain(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(cause, CodeInternal, "failed to load default tokens")

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, CodeInternal, CodeOf(err))
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, "failed to load default tokens", err.Message())
}

func TestHasCode(t *testing.T) {
	inner := New(CodeStatusProhibits, "Alloc token invalid for client")
	outer := Wrap(inner, CodeInternal, "command failed")

	assert.True(t, HasCode(outer, CodeInternal))
	assert.True(t, HasCode(outer, CodeStatusProhibits))
	assert.False(t, HasCode(outer, CodeAuthorizationError))
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(New(CodeStatusProhibits, "x")))
	assert.False(t, IsClientError(New(CodeInternal, "x")))
	assert.False(t, IsClientError(errors.New("plain")))
}

package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_ErrorIncludesWrapped(t *testing.T) {
	inner := fmt.Errorf("connection refused")
	err := NewAppError(ErrProviderRequest, "failed to fetch slots", inner)

	assert.Contains(t, err.Error(), "PROVIDER_REQUEST_FAILED")
	assert.Contains(t, err.Error(), "connection refused")
	assert.ErrorIs(t, err, inner)
}

func TestIsCode(t *testing.T) {
	err := NewAppError(ErrNotFound, "account not found", nil)

	assert.True(t, IsCode(err, ErrNotFound))
	assert.False(t, IsCode(err, ErrDatabase))
	assert.False(t, IsCode(fmt.Errorf("plain"), ErrNotFound))
}

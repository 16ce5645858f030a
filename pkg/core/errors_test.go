package core_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	tiermem "github.com/oceanbase/tiermem-go/pkg/core"
)

func TestMemoryError(t *testing.T) {
	err := &tiermem.MemoryError{
		Op:  "Store",
		Err: tiermem.ErrCapacityExceeded,
	}

	assert.Equal(t, "tiermem: Store: capacity exceeded", err.Error())
	assert.ErrorIs(t, err, tiermem.ErrCapacityExceeded)
	assert.Equal(t, tiermem.ErrCapacityExceeded, errors.Unwrap(err))
}

func TestNewMemoryError(t *testing.T) {
	assert.Nil(t, tiermem.NewMemoryError("Get", nil))

	wrapped := fmt.Errorf("%w: 42", tiermem.ErrNotFound)
	err := tiermem.NewMemoryError("Get", wrapped)

	var memErr *tiermem.MemoryError
	if assert.True(t, errors.As(err, &memErr)) {
		assert.Equal(t, "Get", memErr.Op)
	}
	assert.ErrorIs(t, err, tiermem.ErrNotFound)
	assert.Equal(t, "tiermem: Get: memory not found: 42", err.Error())
}

func TestSentinelErrorsAreDistinct(t *testing.T) {
	sentinels := []error{
		tiermem.ErrCapacityExceeded,
		tiermem.ErrUnsupportedKind,
		tiermem.ErrNotFound,
		tiermem.ErrInvalidConfig,
		tiermem.ErrInvalidInput,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j {
				assert.NotErrorIs(t, a, b)
			}
		}
	}
}

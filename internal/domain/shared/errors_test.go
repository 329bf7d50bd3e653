package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_IsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewDomainError("NOT_FOUND", "account not found"))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrInvalidState))
}

func TestCompareIDs_FollowsCreationOrder(t *testing.T) {
	first := NewID()
	second := NewID()

	assert.Equal(t, -1, CompareIDs(first, second))
	assert.Equal(t, 1, CompareIDs(second, first))
	assert.Equal(t, 0, CompareIDs(first, first))
}

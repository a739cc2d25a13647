package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHelpersWrapSentinels(t *testing.T) {
	err := Validation("amount", "must be positive, got %s", "-1")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "amount: must be positive, got -1")

	err = NotFound("payment", "p-1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), `payment "p-1"`)

	err = Transition("ledger entry", "posted", "pending")
	assert.ErrorIs(t, err, ErrInvalidStateTransition)
	assert.Contains(t, err.Error(), "posted -> pending")
}

func TestRetryableAndIsDomain(t *testing.T) {
	wrapped := fmt.Errorf("confirm: %w", ErrTransactionFailure)
	assert.True(t, Retryable(wrapped))
	assert.True(t, IsDomain(wrapped))

	assert.False(t, Retryable(ErrNotFound))
	assert.True(t, IsDomain(ErrDuplicateObligation))

	plain := errors.New("disk full")
	assert.False(t, Retryable(plain))
	assert.False(t, IsDomain(plain))
}

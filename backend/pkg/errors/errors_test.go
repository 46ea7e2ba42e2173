package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPredicates(t *testing.T) {
	invalid := NewInvalidEdge("u1")
	assert.True(t, IsInvalidEdge(invalid))
	assert.False(t, IsInvalidEdge(errors.New("other")))

	unavailable := NewStoreUnavailable("save", errors.New("dial tcp: refused"))
	assert.True(t, IsStoreUnavailable(unavailable))
	assert.True(t, IsRetryable(unavailable))

	notConfigured := NewNotConfigured("g1")
	assert.True(t, IsNotConfigured(notConfigured))
	assert.False(t, IsRetryable(notConfigured))

	published := NewPublishFailed("graph_g1_x.html", errors.New("403"))
	assert.True(t, IsRetryable(published))
}

func TestErrorMessagesCarryCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewStoreUnavailable("save", cause)
	assert.Contains(t, err.Error(), "store unavailable during save")
	assert.Contains(t, err.Error(), "connection reset")
	assert.ErrorIs(t, fmt.Errorf("wrapped: %w", err), err)
	assert.Equal(t, cause, errors.Unwrap(err.BaseError))
}

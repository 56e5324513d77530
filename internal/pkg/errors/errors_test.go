package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithDetails_DoesNotMutateSentinel(t *testing.T) {
	withDetails := ErrNoViableCandidate.WithDetails(map[string]interface{}{"candidates": 3})

	assert.Nil(t, ErrNoViableCandidate.Details)
	assert.Equal(t, 3, withDetails.Details["candidates"])
	assert.Equal(t, http.StatusBadRequest, withDetails.StatusCode)
	assert.ErrorIs(t, withDetails, ErrNoViableCandidate)
}

func TestAs(t *testing.T) {
	wrapped := fmt.Errorf("recommend: %w", ErrUpstreamUnavailable)

	appErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, "UPSTREAM_UNAVAILABLE", appErr.Code)

	_, ok = As(fmt.Errorf("plain"))
	assert.False(t, ok)
}

func TestNoViableCandidateMessage(t *testing.T) {
	assert.Equal(t, "NO_VIABLE_CANDIDATE: no route found", ErrNoViableCandidate.Error())
}

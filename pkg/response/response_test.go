package response

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesCodeAndMessage(t *testing.T) {
	err := NewError(http.StatusNotFound, "session not found")
	wrapped := fmt.Errorf("load: %w", err)

	assert.ErrorIs(t, wrapped, NewError(http.StatusNotFound, "session not found"))
	assert.NotErrorIs(t, wrapped, NewError(http.StatusBadRequest, "session not found"))
	assert.NotErrorIs(t, wrapped, NewError(http.StatusNotFound, "course not found"))
}

func TestStatus(t *testing.T) {
	assert.Equal(t, http.StatusConflict, Status(fmt.Errorf("x: %w", NewError(http.StatusConflict, "busy"))))
	assert.Equal(t, http.StatusInternalServerError, Status(fmt.Errorf("plain")))
}

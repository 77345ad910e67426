package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelsMatchWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("open target: %w", New(ErrorTypeConsentDeclined, "user pressed n"))
	assert.True(t, IsCancelled(wrapped))
	assert.False(t, IsEmptyHarvest(wrapped))

	empty := fmt.Errorf("harvest: %w", ErrEmptyHarvest)
	assert.True(t, IsEmptyHarvest(empty))
	assert.False(t, IsCancelled(empty))
}

func TestFromStatusCode(t *testing.T) {
	err := FromStatusCode(404)
	assert.Equal(t, ErrorTypeHTTPStatus, err.Type)
	assert.Equal(t, 404, err.Code)
	assert.Equal(t, "http_status error (code 404): unexpected status 404", err.Error())
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"typed", New(ErrorTypeWrite, "disk full"), ErrorTypeWrite},
		{"wrapped", fmt.Errorf("x: %w", New(ErrorTypeNetwork, "reset")), ErrorTypeNetwork},
		{"plain", fmt.Errorf("boom"), ErrorTypeUnknown},
		{"nil", nil, ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TypeOf(tt.err))
		})
	}
}

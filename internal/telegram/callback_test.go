package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCallbackDataRoundTrip(t *testing.T) {
	tests := []struct {
		action    string
		sessionID string
	}{
		{ActionConfirm, "abc-123"},
		{ActionDecline, "abc-123"},
		{ActionJoin, "abc-123"},
		{ActionLeave, "abc-123"},
		{ActionDelete, "abc-123"},
		{ActionDetail, "abc-123"},
	}

	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			action, sessionID := ParseCallback(CallbackData(tt.action, tt.sessionID))
			assert.Equal(t, tt.action, action)
			assert.Equal(t, tt.sessionID, sessionID)
		})
	}
}

func TestParseCallbackSessionIDWithUnderscore(t *testing.T) {
	action, sessionID := ParseCallback("session_info_id_with_underscores")
	assert.Equal(t, ActionDetail, action)
	assert.Equal(t, "id_with_underscores", sessionID)
}

func TestParseCallbackUnknownData(t *testing.T) {
	action, sessionID := ParseCallback("something_else")
	assert.Equal(t, "something_else", action)
	assert.Equal(t, "", sessionID)
}

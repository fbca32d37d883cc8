package telegram

import "strings"

// Callback actions carried in inline keyboard data. The payload after the
// underscore is the session ID.
const (
	ActionConfirm = "confirm"
	ActionDecline = "decline"
	ActionJoin    = "join"
	ActionLeave   = "leave"
	ActionDelete  = "delete"
	ActionDetail  = "session_info"
)

// CallbackData builds the wire form of an action on a session
func CallbackData(action, sessionID string) string {
	return action + "_" + sessionID
}

// ParseCallback splits callback data into action and session ID. The
// second return is empty for payload-less actions.
func ParseCallback(data string) (action, sessionID string) {
	// ActionDetail itself contains an underscore, so match prefixes
	// longest-first instead of splitting on the first underscore.
	for _, known := range []string{ActionDetail, ActionConfirm, ActionDecline, ActionJoin, ActionLeave, ActionDelete} {
		if strings.HasPrefix(data, known+"_") {
			return known, data[len(known)+1:]
		}
		if data == known {
			return known, ""
		}
	}
	return data, ""
}

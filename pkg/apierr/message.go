package apierr

import (
	"encoding/json"
	"strings"
)

// ExtractMessage returns the most specific human readable message found in
// an error payload. Fields are consulted in priority order: message, error
// (a string or an object with its own message), errorMessage, errors[].
// Bodies that are not JSON are returned trimmed.
func ExtractMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return trimmed
	}

	if msg := stringField(payload["message"]); msg != "" {
		return msg
	}
	if msg := stringField(payload["error"]); msg != "" {
		return msg
	}
	if msg := stringField(payload["errorMessage"]); msg != "" {
		return msg
	}
	if list, ok := payload["errors"].([]interface{}); ok {
		var msgs []string
		for _, item := range list {
			if msg := stringField(item); msg != "" {
				msgs = append(msgs, msg)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}
	return trimmed
}

func stringField(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case map[string]interface{}:
		if msg, ok := val["message"].(string); ok {
			return msg
		}
	}
	return ""
}

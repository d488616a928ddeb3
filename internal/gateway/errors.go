package gateway

import (
	"encoding/json"
	"fmt"
	"strings"
)

type errorObject struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// normalizeErrors flattens the gateway's errors field into one readable
// string. The field shows up as a string, an object with a message, an
// array of strings, an array of objects, or an empty array depending on
// the failure.
func normalizeErrors(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" || trimmed == "[]" || trimmed == "{}" {
		return "unknown error"
	}

	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return plain
	}

	var obj errorObject
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Message != "" {
		if obj.Code != 0 {
			return fmt.Sprintf("%s (code %d)", obj.Message, obj.Code)
		}
		return obj.Message
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return strings.Join(list, ", ")
	}

	var objList []errorObject
	if err := json.Unmarshal(raw, &objList); err == nil && len(objList) > 0 {
		messages := make([]string, 0, len(objList))
		for _, o := range objList {
			if o.Message != "" {
				messages = append(messages, o.Message)
			}
		}
		if len(messages) > 0 {
			return strings.Join(messages, ", ")
		}
	}

	return trimmed
}

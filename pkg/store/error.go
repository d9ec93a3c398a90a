package store

import (
	"encoding/json"
	"fmt"
)

// Error is a failure reported by the store backend. The backend message is
// preserved verbatim so callers can surface it to the user.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("store error (code %d)", e.Code)
}

func decodeError(status int, body []byte) error {
	var se Error
	if err := json.Unmarshal(body, &se); err != nil || se.Message == "" {
		return &Error{Code: status, Message: fmt.Sprintf("unexpected status %d", status)}
	}
	if se.Code == 0 {
		se.Code = status
	}
	return &se
}

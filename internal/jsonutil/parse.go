// Package jsonutil parses provider response bodies that are not guaranteed to
// be JSON. Gateways in front of the media APIs return HTML error pages, plain
// text, or truncated bodies; extraction here never fails the caller, it just
// returns what it could find.
package jsonutil

import (
	"encoding/json"
	"strings"
)

// errorBody matches the provider's error envelope. Both the nested
// {"error":{"message":...}} and the flat {"message":...} shapes occur.
type errorBody struct {
	Error *struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
	Message string `json:"message"`
}

// ErrorMessage extracts a human-readable error message from a response body.
// Returns "" when the body carries none, including when it is not JSON.
func ErrorMessage(body []byte) string {
	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}
	if parsed.Error != nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return strings.TrimSpace(parsed.Message)
}

// Decode unmarshals body into T, returning the zero value and the
// unmarshalling error on malformed input.
func Decode[T any](body []byte) (T, error) {
	var v T
	err := json.Unmarshal(body, &v)
	return v, err
}

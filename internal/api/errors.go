package api

import (
	"encoding/json"
	"fmt"
	"strings"
)

// genericErrorText is the last-resort message shown when a failure body
// carries nothing usable.
const genericErrorText = "The request failed. Please try again."

// Error is a failed backend call with the parsed user-facing message.
type Error struct {
	StatusCode int
	Method     string
	Path       string
	Detail     string // parsed per the priority order below
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %d: %s", e.Method, e.Path, e.StatusCode, e.Detail)
}

// UserMessage returns the message suitable for a transient notification.
func (e *Error) UserMessage() string {
	if e.Detail == "" {
		return genericErrorText
	}
	return e.Detail
}

// errorBody mirrors the failure shapes the backend emits. detail can be a
// string, an object with message/errors, or absent; message is a fallback.
type errorBody struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
}

type errorDetail struct {
	Message string           `json:"message"`
	Errors  []fieldErrorItem `json:"errors"`
}

type fieldErrorItem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ParseErrorBody maps a failure response body into one user-facing message.
// Priority order: structured detail.errors list, then string detail, then
// detail.message, then top-level message, then generic fallback text.
func ParseErrorBody(body []byte) string {
	if len(body) == 0 {
		return genericErrorText
	}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return genericErrorText
	}

	if len(eb.Detail) > 0 {
		// detail as object with an errors list
		var det errorDetail
		if err := json.Unmarshal(eb.Detail, &det); err == nil {
			if len(det.Errors) > 0 {
				parts := make([]string, 0, len(det.Errors))
				for _, fe := range det.Errors {
					if fe.Field != "" {
						parts = append(parts, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
					} else {
						parts = append(parts, fe.Message)
					}
				}
				return strings.Join(parts, "; ")
			}
			if det.Message != "" {
				return det.Message
			}
		}

		// detail as plain string
		var s string
		if err := json.Unmarshal(eb.Detail, &s); err == nil && s != "" {
			return s
		}
	}

	if eb.Message != "" {
		return eb.Message
	}

	return genericErrorText
}

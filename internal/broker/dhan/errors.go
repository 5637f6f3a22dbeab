package dhan

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// APIError is a failure reported by the broker, keyed by its error code.
type APIError struct {
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("dhan: %s: %s", e.Code, e.Message)
	}
	return "dhan: " + e.Message
}

// Spoken renders the failure as a sentence suitable for reading aloud.
func (e *APIError) Spoken() string {
	switch e.Code {
	case "DH-905":
		return "The order failed. The broker said the Security ID was invalid."
	case "DH-900":
		return "Authentication failed. The API token is invalid or expired."
	}
	if e.Message != "" {
		return "Sorry, the order failed. The broker said: " + e.Message
	}
	return "Sorry, the order failed for an unknown reason."
}

// SpokenError turns any broker error into a sentence for the speaker.
func SpokenError(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Spoken()
	}
	return "A system error occurred. Please check the logs."
}

// remarks is the error envelope inside a failed order response.
type remarks struct {
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

func (r remarks) asError() error {
	return &APIError{Code: r.ErrorCode, Message: r.ErrorMessage}
}

// translateHTTPError recovers the broker error code from an HTTP-level
// failure. Dhan returns a JSON body with errorCode/errorMessage on 4xx.
func translateHTTPError(err error) error {
	msg := err.Error()
	start := strings.Index(msg, "{")
	if start < 0 {
		return err
	}

	var body struct {
		ErrorCode    string `json:"errorCode"`
		ErrorMessage string `json:"errorMessage"`
	}
	if json.Unmarshal([]byte(msg[start:]), &body) != nil || body.ErrorCode == "" {
		return err
	}
	return &APIError{Code: body.ErrorCode, Message: body.ErrorMessage}
}

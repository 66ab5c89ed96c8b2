package gatesdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNoToken is returned by Session methods once the session was logged out.
var ErrNoToken = errors.New("gatesdk: session has no token")

// APIError is a non-success reply from the service.
type APIError struct {
	StatusCode int
	Message    string
	Fields     []FieldError
}

func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("gate: %d %s", e.StatusCode, e.Message)
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Msg
	}
	return fmt.Sprintf("gate: %d %s (%s)", e.StatusCode, e.Message, strings.Join(parts, "; "))
}

// FieldMessages groups validation messages by field.
func (e *APIError) FieldMessages() map[string][]string {
	out := make(map[string][]string, len(e.Fields))
	for _, f := range e.Fields {
		out[f.Field] = append(out[f.Field], f.Msg)
	}
	return out
}

// ChallengeRequiredError is returned by Login when the account has 2FA
// enabled. Pass it to SDKClient.CompleteTwoFactor with the current code.
type ChallengeRequiredError struct {
	Token   string
	Message string
}

func (e *ChallengeRequiredError) Error() string {
	return "gate: second factor required"
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

func parseErrorResponse(resp *http.Response, body []byte) error {
	var er ErrorResponse
	if err := json.Unmarshal(body, &er); err != nil || er.Message == "" {
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: er.Message, Fields: er.Errors}
}

package restapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var (
	// ErrEncoding is returned when a query cannot be encoded into a request.
	ErrEncoding = errors.New("restapi: cannot encode request")

	ErrMissingField   = errors.New("restapi: missing field")
	ErrTypeMismatch   = errors.New("restapi: type mismatch")
	ErrSessionExpired = errors.New("restapi: session expired or invalid")
	ErrEmptyResponse  = errors.New("restapi: empty response")
)

// HTTPError is a non-2xx answer from the org.
type HTTPError struct {
	StatusCode int
	Code       string // errorCode from the body, when present
	Message    string
}

func (e *HTTPError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "http %d", e.StatusCode)
	if e.Code != "" {
		b.WriteString(" " + e.Code)
	}
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	return b.String()
}

// Is lets errors.Is(err, ErrSessionExpired) match a 401.
func (e *HTTPError) Is(target error) bool {
	return target == ErrSessionExpired && e.StatusCode == http.StatusUnauthorized
}

type apiErrorBody struct {
	Message   string `json:"message"`
	ErrorCode string `json:"errorCode"`
}

// newHTTPError decodes the org's error list; the first entry wins.
// OAuth endpoints answer with {"error","error_description"} instead.
func newHTTPError(status int, body []byte) *HTTPError {
	e := &HTTPError{StatusCode: status}
	var list []apiErrorBody
	if err := jsoniter.Unmarshal(body, &list); err == nil && len(list) > 0 {
		e.Code, e.Message = list[0].ErrorCode, list[0].Message
		return e
	}
	var oauth struct {
		Error       string `json:"error"`
		Description string `json:"error_description"`
	}
	if err := jsoniter.Unmarshal(body, &oauth); err == nil && oauth.Error != "" {
		e.Code, e.Message = oauth.Error, oauth.Description
		return e
	}
	e.Message = strings.TrimSpace(string(body))
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}

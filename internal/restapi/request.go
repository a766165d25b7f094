package restapi

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"
)

// DefaultAPIVersion is the REST API version requests are built against
// unless configuration overrides it.
const DefaultAPIVersion = "v62.0"

// Request is an unsent REST call relative to the instance URL.
type Request struct {
	Method string
	Path   string // e.g. /services/data/v62.0/query?q=...
}

func (r *Request) String() string { return r.Method + " " + r.Path }

// NewQueryRequest builds a SOQL query request.
func NewQueryRequest(apiVersion, soql string) (*Request, error) {
	apiVersion = strings.TrimSpace(apiVersion)
	if apiVersion == "" {
		return nil, fmt.Errorf("%w: empty api version", ErrEncoding)
	}
	if !strings.HasPrefix(apiVersion, "v") {
		apiVersion = "v" + apiVersion
	}
	if strings.TrimSpace(soql) == "" {
		return nil, fmt.Errorf("%w: empty query", ErrEncoding)
	}
	if !utf8.ValidString(soql) {
		return nil, fmt.Errorf("%w: query is not valid UTF-8", ErrEncoding)
	}
	return &Request{
		Method: http.MethodGet,
		Path:   "/services/data/" + url.PathEscape(apiVersion) + "/query?q=" + url.QueryEscape(soql),
	}, nil
}

func newUserInfoRequest() *Request {
	return &Request{Method: http.MethodGet, Path: "/services/oauth2/userinfo"}
}

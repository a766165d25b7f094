package restapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	jsoniter "github.com/json-iterator/go"
)

var jsonAPI = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

// Response wraps a completed HTTP exchange. The body is read lazily by
// ConsumeQuietly (or the first parse) and closed exactly once.
type Response struct {
	status int
	body   io.ReadCloser

	once sync.Once
	data []byte
	err  error
}

func newResponse(status int, body io.ReadCloser) *Response {
	return &Response{status: status, body: body}
}

// NewResponse builds a response from an in-memory body.
func NewResponse(status int, body []byte) *Response {
	return newResponse(status, io.NopCloser(bytes.NewReader(body)))
}

func (r *Response) StatusCode() int { return r.status }

// ConsumeQuietly drains and closes the body, releasing the connection.
// Read errors are kept and reported by the parse methods.
func (r *Response) ConsumeQuietly() {
	r.once.Do(func() {
		if r.body == nil {
			return
		}
		r.data, r.err = io.ReadAll(r.body)
		_ = r.body.Close()
	})
}

func (r *Response) Bytes() ([]byte, error) {
	r.ConsumeQuietly()
	return r.data, r.err
}

func (r *Response) AsString() (string, error) {
	b, err := r.Bytes()
	return string(b), err
}

// AsJSONObject parses the body as a JSON object.
func (r *Response) AsJSONObject() (JSONObject, error) {
	b, err := r.Bytes()
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	var obj map[string]any
	if err := jsonAPI.Unmarshal(b, &obj); err != nil {
		return nil, fmt.Errorf("parse body: %w", err)
	}
	if obj == nil {
		return nil, fmt.Errorf("parse body: %w: not a JSON object", ErrTypeMismatch)
	}
	return JSONObject(obj), nil
}

// JSONObject is a decoded JSON object with typed, checked accessors.
type JSONObject map[string]any

// JSONArray is a decoded JSON array.
type JSONArray []any

func (o JSONObject) get(key string) (any, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return nil, fmt.Errorf("%w: %q", ErrMissingField, key)
	}
	return v, nil
}

func (o JSONObject) GetString(key string) (string, error) {
	v, err := o.get(key)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q is %s, not string", ErrTypeMismatch, key, kind(v))
	}
	return s, nil
}

func (o JSONObject) GetJSONObject(key string) (JSONObject, error) {
	v, err := o.get(key)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q is %s, not object", ErrTypeMismatch, key, kind(v))
	}
	return JSONObject(m), nil
}

func (o JSONObject) GetJSONArray(key string) (JSONArray, error) {
	v, err := o.get(key)
	if err != nil {
		return nil, err
	}
	a, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q is %s, not array", ErrTypeMismatch, key, kind(v))
	}
	return JSONArray(a), nil
}

func (a JSONArray) Len() int { return len(a) }

func (a JSONArray) GetJSONObject(i int) (JSONObject, error) {
	if i < 0 || i >= len(a) {
		return nil, fmt.Errorf("%w: index %d out of range [0,%d)", ErrMissingField, i, len(a))
	}
	m, ok := a[i].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: [%d] is %s, not object", ErrTypeMismatch, i, kind(a[i]))
	}
	return JSONObject(m), nil
}

func kind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "bool"
	case json.Number, float64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}

package restapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AsyncRequestCallback receives the outcome of SendAsync. Exactly one of
// the two methods is called, once, on a goroutine owned by the client.
type AsyncRequestCallback interface {
	OnSuccess(req *Request, resp *Response)
	OnError(err error)
}

// Client is an authenticated handle on one org instance.
type Client struct {
	instanceURL *url.URL
	token       string
	http        *http.Client
	userAgent   string
}

type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithUserAgent sets the User-Agent sent with every request. Empty keeps
// the default.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// New returns a client for instanceURL authenticated with token.
func New(instanceURL, token string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(instanceURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("instance url: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return nil, fmt.Errorf("instance url: unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("instance url: missing host")
	}
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("empty access token")
	}
	c := &Client{
		instanceURL: u,
		token:       token,
		http:        http.DefaultClient,
		userAgent:   "forcelist/1.0",
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func (c *Client) InstanceURL() string { return c.instanceURL.String() }

// Send performs req and blocks until the status line and headers arrive.
// The caller owns the returned response body.
func (c *Client) Send(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	hreq, err := http.NewRequestWithContext(ctx, req.Method, c.instanceURL.String()+req.Path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	id := uuid.NewString()
	hreq.Header.Set("Authorization", "Bearer "+c.token)
	hreq.Header.Set("Accept", "application/json")
	hreq.Header.Set("User-Agent", c.userAgent)
	hreq.Header.Set("X-Request-Id", id)

	start := time.Now()
	hresp, err := c.http.Do(hreq)
	if err != nil {
		log.Printf("restapi: %s %s id=%s failed after %s: %v", req.Method, pathOnly(req.Path), id, time.Since(start), err)
		return nil, fmt.Errorf("%s: %w", req, err)
	}
	log.Printf("restapi: %s %s id=%s status=%d in %s", req.Method, pathOnly(req.Path), id, hresp.StatusCode, time.Since(start))

	if hresp.StatusCode < 200 || hresp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(hresp.Body, 64<<10))
		_ = hresp.Body.Close()
		return nil, newHTTPError(hresp.StatusCode, body)
	}
	return newResponse(hresp.StatusCode, hresp.Body), nil
}

// SendAsync runs req on its own goroutine and reports to cb. It returns
// immediately. There is no cancellation: the request lives as long as
// the transport lets it.
func (c *Client) SendAsync(req *Request, cb AsyncRequestCallback) {
	go func() {
		resp, err := c.Send(context.Background(), req)
		if err != nil {
			cb.OnError(err)
			return
		}
		cb.OnSuccess(req, resp)
	}()
}

// UserInfo fetches the identity of the session owner.
func (c *Client) UserInfo(ctx context.Context) (UserInfo, error) {
	resp, err := c.Send(ctx, newUserInfoRequest())
	if err != nil {
		return UserInfo{}, err
	}
	b, err := resp.Bytes()
	if err != nil {
		return UserInfo{}, fmt.Errorf("read userinfo: %w", err)
	}
	var ui UserInfo
	if err := jsonAPI.Unmarshal(b, &ui); err != nil {
		return UserInfo{}, fmt.Errorf("parse userinfo: %w", err)
	}
	return ui, nil
}

// Revoke invalidates the access token server-side.
func (c *Client) Revoke(ctx context.Context) error {
	form := url.Values{"token": {c.token}}
	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.instanceURL.String()+"/services/oauth2/revoke", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	hreq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	hreq.Header.Set("User-Agent", c.userAgent)
	hresp, err := c.http.Do(hreq)
	if err != nil {
		return fmt.Errorf("revoke: %w", err)
	}
	defer hresp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(hresp.Body, 64<<10))
	if hresp.StatusCode != http.StatusOK {
		return fmt.Errorf("revoke: %w", newHTTPError(hresp.StatusCode, body))
	}
	return nil
}

// UserInfo is the subset of the OpenID userinfo document we show.
type UserInfo struct {
	UserID            string `json:"user_id"`
	OrganizationID    string `json:"organization_id"`
	PreferredUsername string `json:"preferred_username"`
	Name              string `json:"name"`
	Email             string `json:"email"`
}

// pathOnly keeps query strings (which carry SOQL) out of the log.
func pathOnly(p string) string {
	if i := strings.IndexByte(p, '?'); i >= 0 {
		return p[:i]
	}
	return p
}

// Package api holds the clients for the remote storefront REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const HeaderRequestID = "X-Request-ID"

// Credentials supplies the bearer token for outgoing requests. An empty token
// sends the request unauthenticated.
type Credentials interface {
	AccessToken() string
}

type Options struct {
	HTTP        *http.Client
	Credentials Credentials
	// OnUnauthorized runs after any authenticated call is answered with 401.
	OnUnauthorized func(ctx context.Context)
	Logger         *log.Logger
}

type Client struct {
	BaseURL        *url.URL
	HTTP           *http.Client
	creds          Credentials
	onUnauthorized func(ctx context.Context)
	logger         *log.Logger
}

func NewClient(baseURL string, opts Options) (*Client, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api base url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api base url %q: scheme and host required", baseURL)
	}
	httpClient := opts.HTTP
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Client{
		BaseURL:        u,
		HTTP:           httpClient,
		creds:          opts.Credentials,
		onUnauthorized: opts.OnUnauthorized,
		logger:         logger,
	}, nil
}

type request struct {
	method string
	path   string
	query  url.Values
	body   any
	// anonymous requests carry no bearer token and never trigger OnUnauthorized.
	anonymous bool
}

// do sends req and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, req request) ([]byte, error) {
	rel := &url.URL{Path: strings.TrimPrefix(req.path, "/")}
	if len(req.query) > 0 {
		rel.RawQuery = req.query.Encode()
	}
	u := c.BaseURL.ResolveReference(rel)

	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", req.method, req.path, err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u.String(), body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set(HeaderRequestID, uuid.NewString())

	authenticated := false
	if !req.anonymous && c.creds != nil {
		if token := c.creds.AccessToken(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
			authenticated = true
		}
	}

	start := time.Now()
	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		c.logger.Printf("api: %s %s error=%v", req.method, u.Path, err)
		return nil, &Error{Kind: ErrUnreachable, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Printf("api: %s %s read error=%v", req.method, u.Path, err)
		return nil, &Error{Kind: ErrUnreachable, Status: resp.StatusCode, Err: err}
	}
	c.logger.Printf("api: %s %s status=%d elapsed=%s", req.method, u.Path, resp.StatusCode, time.Since(start))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return data, nil
	}

	apiErr := errorFromResponse(resp.StatusCode, data)
	if resp.StatusCode == http.StatusUnauthorized && authenticated && c.onUnauthorized != nil {
		c.onUnauthorized(ctx)
	}
	return nil, apiErr
}

// doJSON sends req and decodes a 2xx body into out. An empty body leaves out untouched.
func (c *Client) doJSON(ctx context.Context, op string, req request, out any) error {
	data, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &ParseError{Op: op, Err: err}
	}
	return nil
}

package connection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yndnr/reqguard/pkg/windowtoken"
)

// DefaultTimeout bounds one request.
const DefaultTimeout = 30 * time.Second

// HTTPClient sends requests signed with a window token in the Auth header.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	secret  string
	digest  windowtoken.Digest
	now     func() time.Time
}

// NewHTTPClient creates a new HTTP client for server. An empty secret
// sends requests without an Auth header.
func NewHTTPClient(server, secret string, digest windowtoken.Digest) *HTTPClient {
	// Ensure baseURL has http:// prefix
	baseURL := server
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	if digest == "" {
		digest = windowtoken.DefaultDigest
	}

	return &HTTPClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		secret:  secret,
		digest:  digest,
		now:     time.Now,
		client: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int         `json:"status" yaml:"status"`
	Header     http.Header `json:"-" yaml:"-"`
	Body       []byte      `json:"-" yaml:"-"`
}

// JSON decodes the body, returning the raw text when it is not JSON.
func (r *Response) JSON() any {
	var v any
	if err := json.Unmarshal(r.Body, &v); err != nil {
		return string(r.Body)
	}
	return v
}

// Do sends method path with an optional raw body. path may be absolute
// ("/orders") or a full URL.
func (c *HTTPClient) Do(ctx context.Context, method, path string, body []byte, header http.Header) (*Response, error) {
	url := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		url = c.baseURL + "/" + strings.TrimPrefix(path, "/")
	}

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	c.addHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

// addHeaders adds authentication and common headers.
func (c *HTTPClient) addHeaders(req *http.Request) {
	if c.secret != "" {
		req.Header.Set("Auth", windowtoken.Generate(c.digest, c.secret, c.now().Unix()))
	}
	req.Header.Set("User-Agent", "reqguard-cli/1.0")
}

// BaseURL returns the base URL of the client.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

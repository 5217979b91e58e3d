// Package providers implements channel.ProviderAdapter for each supported
// social platform.
package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/orris-inc/channelsync/internal/domain/channel"
)

const (
	// DefaultHTTPTimeout bounds every single provider call.
	DefaultHTTPTimeout = 15 * time.Second

	maxResponseBytes = 1 << 20
)

// NewHTTPClient returns the client shared by all adapters.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	return &http.Client{Timeout: timeout}
}

// apiClient sends requests for one provider and classifies transport failures.
type apiClient struct {
	provider channel.Provider
	http     *http.Client
}

type response struct {
	StatusCode int
	Body       []byte
}

func (r *response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// retryable reports statuses a later attempt may get past.
func (r *response) retryable() bool {
	return r.StatusCode == http.StatusTooManyRequests || r.StatusCode >= 500
}

// do sends req. Transport failures and timeouts come back as transient errors.
// Any HTTP answer is returned as a response for the caller to interpret.
func (c *apiClient) do(req *http.Request, op string) (*response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, channel.NewTransientError(c.provider, op, 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, channel.NewTransientError(c.provider, op, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err))
	}
	return &response{StatusCode: resp.StatusCode, Body: body}, nil
}

// postForm posts a form body. user and pass, when set, go into a Basic auth header.
func (c *apiClient) postForm(ctx context.Context, op, endpoint string, form url.Values, user, pass string) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	if user != "" {
		req.SetBasicAuth(url.QueryEscape(user), url.QueryEscape(pass))
	}
	return c.do(req, op)
}

// get issues a GET with an optional bearer token.
func (c *apiClient) get(ctx context.Context, op, endpoint, bearer string) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return c.do(req, op)
}

// getJSON decodes a 2xx answer into out. Anything else is a transient error.
func (c *apiClient) getJSON(ctx context.Context, op, endpoint, bearer string, out any) error {
	resp, err := c.get(ctx, op, endpoint, bearer)
	if err != nil {
		return err
	}
	return c.decode(resp, op, out)
}

// postJSON sends body as JSON with a bearer token and decodes a 2xx answer into out.
func (c *apiClient) postJSON(ctx context.Context, op, endpoint, bearer string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.do(req, op)
	if err != nil {
		return err
	}
	return c.decode(resp, op, out)
}

func (c *apiClient) decode(resp *response, op string, out any) error {
	if !resp.OK() {
		return channel.NewTransientError(c.provider, op, resp.StatusCode, fmt.Errorf("unexpected response: %s", truncate(string(resp.Body), 512)))
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return channel.NewTransientError(c.provider, op, resp.StatusCode, fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

// decodeLenient unmarshals body, tolerating an empty body.
func decodeLenient(body []byte, out any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

// tokenResponse covers the token endpoint answers of all form-based providers.
type tokenResponse struct {
	AccessToken      string     `json:"access_token"`
	RefreshToken     string     `json:"refresh_token"`
	ExpiresIn        flexString `json:"expires_in"`
	OpenID           string     `json:"open_id"`
	UserID           flexString `json:"user_id"`
	Error            flexString `json:"error"`
	ErrorCode        flexString `json:"error_code"`
	ErrorDescription string     `json:"error_description"`
}

func (t *tokenResponse) expiresIn() int64 {
	n, err := strconv.ParseInt(string(t.ExpiresIn), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// flexString accepts a JSON string or number. Providers are not consistent
// about ids and error codes.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(s, "\"") {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*f = flexString(str)
		return nil
	}
	if strings.HasPrefix(s, "{") {
		// error objects are not codes
		*f = ""
		return nil
	}
	*f = flexString(s)
	return nil
}

// expiryFrom returns now+seconds, falling back to fallback when the provider
// did not say.
func expiryFrom(now time.Time, seconds int64, fallback time.Duration) *time.Time {
	d := time.Duration(seconds) * time.Second
	if seconds <= 0 {
		d = fallback
	}
	t := now.Add(d).UTC()
	return &t
}

func parseTime(layout, value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse(layout, value)
	if err != nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func int64Ptr(n int64) *int64 { return &n }

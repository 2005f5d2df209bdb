package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/procare-io/srportal/sdk/go/auth"
	"github.com/procare-io/srportal/sdk/go/errors"
	"github.com/procare-io/srportal/sdk/go/types"
)

// Client represents the service request API client
type Client struct {
	httpClient *resty.Client
	baseURL    string
	userAgent  string
	timeout    time.Duration

	mu             sync.RWMutex
	auth           auth.Authenticator
	onUnauthorized func()

	// Service clients
	Auth      *AuthService
	Reference *ReferenceService
	Lookups   *LookupsService
	Intake    *IntakeService
	Requests  *RequestsService
	Files     *FilesService
}

// Config represents client configuration
type Config struct {
	BaseURL   string
	Auth      auth.Authenticator
	UserAgent string
	Timeout   time.Duration
	Debug     bool
	// OnUnauthorized runs whenever the API answers 401, typically to send
	// the user back to the login screen.
	OnUnauthorized func()
}

// NewClient creates a new API client. Requests are never retried: a
// submission that timed out may still have been stored.
func NewClient(config *Config) *Client {
	if config.UserAgent == "" {
		config.UserAgent = "srportal-go-sdk/1.0.0"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.Auth == nil {
		config.Auth = auth.NewNoAuth()
	}
	baseURL := strings.TrimRight(config.BaseURL, "/")

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(config.Timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", config.UserAgent).
		SetHeader("Accept", "application/json")

	if config.Debug {
		httpClient.SetDebug(true)
	}

	client := &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		auth:           config.Auth,
		onUnauthorized: config.OnUnauthorized,
		userAgent:      config.UserAgent,
		timeout:        config.Timeout,
	}

	client.Auth = &AuthService{client: client}
	client.Reference = &ReferenceService{client: client}
	client.Lookups = &LookupsService{client: client}
	client.Intake = &IntakeService{client: client}
	client.Requests = &RequestsService{client: client}
	client.Files = &FilesService{client: client}

	httpClient.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		return client.setAuth(req)
	})

	httpClient.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		return client.handleError(resp)
	})

	return client
}

// NewClientWithToken creates a client that sends token as a bearer token.
func NewClientWithToken(baseURL, token string, expiresAt time.Time) *Client {
	return NewClient(&Config{
		BaseURL: baseURL,
		Auth:    auth.NewJWTAuth(token, expiresAt),
	})
}

func (c *Client) authenticator() auth.Authenticator {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.auth
}

func (c *Client) unauthorized() {
	c.mu.RLock()
	hook := c.onUnauthorized
	c.mu.RUnlock()
	if hook != nil {
		hook()
	}
}

func (c *Client) setAuth(req *resty.Request) error {
	a := c.authenticator()
	if a == nil {
		return nil
	}

	if a.IsExpired() {
		if err := a.Refresh(); err != nil {
			c.unauthorized()
			return &errors.APIError{
				StatusCode: http.StatusUnauthorized,
				Detail:     "Session expired. Please sign in again.",
				Err:        err,
			}
		}
	}

	if header := a.GetAuthHeader(); header != "" && a.Type() == auth.AuthMethodJWT {
		req.SetHeader("Authorization", header)
	}
	return nil
}

// handleError turns non-2xx responses into *errors.APIError. The message is
// the server's "detail", falling back to "error" and then the status text.
func (c *Client) handleError(resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}

	status := resp.StatusCode()
	if status == http.StatusUnauthorized {
		c.unauthorized()
	}

	var body types.ErrorResponse
	if err := json.Unmarshal(resp.Body(), &body); err == nil {
		msg := body.Detail
		if msg == "" {
			msg = body.Error
		}
		if msg != "" {
			return errors.NewAPIError(status, msg)
		}
	}

	return &errors.APIError{
		StatusCode: status,
		Detail:     errors.DefaultDetail(status),
		Body:       string(resp.Body()),
	}
}

// SetAuth replaces the authenticator, e.g. after login.
func (c *Client) SetAuth(authenticator auth.Authenticator) {
	c.mu.Lock()
	c.auth = authenticator
	c.mu.Unlock()
}

// OnUnauthorized replaces the 401 hook.
func (c *Client) OnUnauthorized(fn func()) {
	c.mu.Lock()
	c.onUnauthorized = fn
	c.mu.Unlock()
}

func (c *Client) SetTimeout(timeout time.Duration) {
	c.timeout = timeout
	c.httpClient.SetTimeout(timeout)
}

func (c *Client) SetDebug(debug bool) {
	c.httpClient.SetDebug(debug)
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// execute runs req and normalizes the error: API errors raised by the
// response hook pass through, anything else is a network error.
func (c *Client) execute(req *resty.Request, method, path string) (*resty.Response, error) {
	resp, err := req.Execute(method, path)
	if err != nil {
		if apiErr, ok := errors.AsAPIError(err); ok {
			return resp, apiErr
		}
		return resp, &errors.NetworkError{
			Operation: method,
			URL:       c.baseURL + path,
			Err:       err,
		}
	}
	return resp, nil
}

// Get performs a GET request
func (c *Client) Get(ctx context.Context, path string, query map[string]string, result interface{}) error {
	req := c.httpClient.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	if result != nil {
		req.SetResult(result)
	}
	_, err := c.execute(req, http.MethodGet, path)
	return err
}

// Post performs a POST request
func (c *Client) Post(ctx context.Context, path string, body interface{}, result interface{}) error {
	req := c.httpClient.R().SetContext(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}
	_, err := c.execute(req, http.MethodPost, path)
	return err
}

// Patch performs a PATCH request
func (c *Client) Patch(ctx context.Context, path string, body interface{}, result interface{}) error {
	req := c.httpClient.R().SetContext(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}
	_, err := c.execute(req, http.MethodPatch, path)
	return err
}

// Ping checks if the API is reachable
func (c *Client) Ping(ctx context.Context) (*types.HealthResponse, error) {
	var health types.HealthResponse
	if err := c.Get(ctx, "/health", nil, &health); err != nil {
		return nil, fmt.Errorf("health check failed: %w", err)
	}
	return &health, nil
}

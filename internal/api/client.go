package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout = 30 * time.Second

	// maxBodySize bounds how much of a response is read into memory.
	maxBodySize = 16 << 20
)

// Credentials is the part of the session the client needs: read the bearer
// token, and clear it when the server answers 401.
type Credentials interface {
	Token() (string, error)
	ClearToken() error
}

// Client talks to the bidmatch REST API.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	creds      Credentials
	search     *rate.Limiter
	logger     *slog.Logger
}

// ClientOptions configures the API client
type ClientOptions struct {
	Logger *slog.Logger

	// HTTPClient replaces the default client; its Transport is wrapped to
	// add the bearer header.
	HTTPClient *http.Client

	// Timeout applies when HTTPClient is nil. Zero means 30s.
	Timeout time.Duration

	// SearchRate caps contractor searches per second. Zero disables the cap.
	SearchRate  float64
	SearchBurst int
}

// NewClient creates a new API client for baseURL.
func NewClient(baseURL string, creds Credentials, opts ClientOptions) (*Client, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("API base URL is required")
	}

	if creds == nil {
		return nil, fmt.Errorf("credentials are required")
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid API base URL %q: scheme must be http or https", baseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}

		httpClient = &http.Client{Timeout: timeout}
	}

	c := &Client{
		httpClient: httpClient,
		baseURL:    u,
		creds:      creds,
		logger:     logger,
	}

	if opts.SearchRate > 0 {
		burst := opts.SearchBurst
		if burst <= 0 {
			burst = 1
		}

		c.search = rate.NewLimiter(rate.Limit(opts.SearchRate), burst)
	}

	logger.Debug("creating API client", slog.String("base_url", u.String()))

	return c, nil
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// request describes one call. body, when set, is already encoded.
type request struct {
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
	public      bool
}

func jsonRequest(method, path string, payload any) (request, error) {
	req := request{method: method, path: path}

	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return req, fmt.Errorf("failed to marshal request body: %w", err)
		}

		req.body = b
		req.contentType = "application/json"
	}

	return req, nil
}

// authorized returns an http.Client that adds the bearer token. A missing
// token fails here, before any request is built.
func (c *Client) authorized() (*http.Client, error) {
	token, err := c.creds.Token()
	if err != nil {
		return nil, fmt.Errorf("read credential: %w", err)
	}

	if token == "" {
		return nil, ErrNoCredential
	}

	return &http.Client{
		Timeout:       c.httpClient.Timeout,
		CheckRedirect: c.httpClient.CheckRedirect,
		Jar:           c.httpClient.Jar,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
			Base:   c.httpClient.Transport,
		},
	}, nil
}

// do performs the request and returns the validated envelope body.
func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	httpClient := c.httpClient

	if !r.public {
		authed, err := c.authorized()
		if err != nil {
			return nil, err
		}

		httpClient = authed
	}

	u := c.baseURL.JoinPath(r.path)
	if len(r.query) > 0 {
		u.RawQuery = r.query.Encode()
	}

	c.logger.Debug("making API request",
		slog.String("method", r.method),
		slog.String("path", r.path),
	)

	var bodyReader io.Reader
	if r.body != nil {
		bodyReader = bytes.NewReader(r.body)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: r.method + " " + r.path, Err: err}
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &TransportError{Op: "read " + r.path, Err: err}
	}

	// a 401 on a public endpoint is a plain rejection such as a bad password
	if resp.StatusCode == http.StatusUnauthorized && !r.public {
		c.logger.Warn("credential rejected, clearing it", slog.String("path", r.path))

		if clearErr := c.creds.ClearToken(); clearErr != nil {
			c.logger.Error("failed to clear credential", slog.Any("error", clearErr))
		}

		return nil, ErrUnauthorized
	}

	if resp.StatusCode >= 400 {
		msg := firstMessage(body)
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}

		c.logger.Debug("API request rejected",
			slog.String("path", r.path),
			slog.Int("status", resp.StatusCode),
			slog.String("message", msg),
		)

		return nil, &APIError{Status: resp.StatusCode, Message: msg, Fields: fieldErrors(body)}
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return []byte(`{"success":true}`), nil
	}

	if err := validateEnvelope(body); err != nil {
		return nil, err
	}

	if !succeeded(body) {
		return nil, &APIError{Status: resp.StatusCode, Message: firstMessage(body), Fields: fieldErrors(body)}
	}

	return body, nil
}

// get issues an authorized GET.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.do(ctx, request{method: http.MethodGet, path: path, query: query})
}

// send issues an authorized request with a JSON body.
func (c *Client) send(ctx context.Context, method, path string, payload any) ([]byte, error) {
	req, err := jsonRequest(method, path, payload)
	if err != nil {
		return nil, err
	}

	return c.do(ctx, req)
}

func pageQuery(page int) url.Values {
	if page <= 1 {
		return nil
	}

	return url.Values{"page": []string{fmt.Sprint(page)}}
}

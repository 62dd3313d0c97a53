// Package client is a typed client for the token booking API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"tokenbook/internal/entities"
)

const (
	PathBook        = "/api/book"
	PathCheckToken  = "/api/check-token"
	PathDisableDate = "/api/admin/disable-date"
	PathCloseToday  = "/api/admin/close-today"
	PathLogin       = "/api/admin/login"
)

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 1 << 20

// TransportError is a failure to obtain a usable response: the request
// could not be sent, the server failed, or the body was not the expected JSON.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

type Client struct {
	baseURL    string
	httpClient *http.Client
	adminToken string
}

type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithAdminToken sends token as a bearer credential on admin endpoints.
func WithAdminToken(token string) Option {
	return func(c *Client) { c.adminToken = token }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Book(ctx context.Context, req entities.BookingRequest) (*entities.BookingResponse, error) {
	var resp entities.BookingResponse
	if err := c.post(ctx, PathBook, req, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) CheckToken(ctx context.Context, req entities.TokenCheckRequest) (*entities.TokenCheckResponse, error) {
	var resp entities.TokenCheckResponse
	if err := c.post(ctx, PathCheckToken, req, &resp, false); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) DisableDate(ctx context.Context, req entities.DisableDateRequest) (*entities.DisableDateResponse, error) {
	var resp entities.DisableDateResponse
	if err := c.post(ctx, PathDisableDate, req, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) CloseToday(ctx context.Context) (*entities.CloseTodayResponse, error) {
	var resp entities.CloseTodayResponse
	if err := c.post(ctx, PathCloseToday, nil, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login exchanges admin credentials for a token. Later admin calls on this
// client use the returned token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp entities.LoginResponse
	if err := c.post(ctx, PathLogin, entities.LoginRequest{Username: username, Password: password}, &resp, false); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", &TransportError{Op: PathLogin, Err: fmt.Errorf("empty token in response")}
	}
	c.adminToken = resp.Token
	return resp.Token, nil
}

// post sends body as JSON and decodes the reply into out. A 4xx reply whose
// body decodes is an application answer and is returned without error.
func (c *Client) post(ctx context.Context, path string, body, out interface{}, admin bool) error {
	var payload io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", path, err)
		}
		payload = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, payload)
	if err != nil {
		return &TransportError{Op: path, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if admin && c.adminToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.adminToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &TransportError{Op: path, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode >= 500 {
		return &TransportError{Op: path, StatusCode: resp.StatusCode, Err: fmt.Errorf("%s", strings.TrimSpace(string(raw)))}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &TransportError{Op: path, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

package gql

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	ErrRequest  = errors.New("gql: request failed")
	ErrResponse = errors.New("gql: invalid response")
)

// Client posts GraphQL documents to a single endpoint.
type Client struct {
	http     *http.Client
	header   http.Header
	endpoint string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) { cl.http = c }
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) ClientOption {
	return func(cl *Client) { cl.header.Add(key, value) }
}

func NewClient(endpoint string, opts ...ClientOption) *Client {
	c := &Client{
		http:     &http.Client{Timeout: 15 * time.Second},
		header:   make(http.Header),
		endpoint: endpoint,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do sends req and decodes response data into out. GraphQL errors in the
// response are returned as Errors; transport failures wrap ErrRequest.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequest, err)
	}

	hr, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequest, err)
	}
	hr.Header = c.header.Clone()
	hr.Header.Set("Content-Type", "application/json")
	hr.Header.Set("Accept", "application/json")

	res, err := c.http.Do(hr)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequest, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequest, err)
	}

	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		if res.StatusCode >= http.StatusBadRequest {
			return fmt.Errorf("%w: status %d", ErrRequest, res.StatusCode)
		}
		return fmt.Errorf("%w: %w", ErrResponse, err)
	}
	if len(resp.Errors) > 0 {
		return resp.Errors
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%w: status %d", ErrRequest, res.StatusCode)
	}
	if out == nil || len(resp.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("%w: %w", ErrResponse, err)
	}
	return nil
}

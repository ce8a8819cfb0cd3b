//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Copyright (C) 2025 Stormworks Group
//
// This file is part of Drainpipe.
//
// Drainpipe is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Drainpipe is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Drainpipe. If not, see https://www.gnu.org/licenses/.

// Package extract provides core.Source implementations for the company's
// operational systems: Trello boards, Float schedules, Xero and Simpro
// quotes, and Google Sheets. All of them sit on RESTSource, a paginating
// JSON API reader with authentication, rate limiting, and retry support.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/stormworks/drainpipe/core"
)

// RESTError provides structured error information for REST source operations.
type RESTError struct {
	Op         string // Operation that failed (e.g., "request", "parse", "status")
	StatusCode int    // HTTP status code if applicable
	URL        string // URL being accessed when the error occurred
	Err        error  // Underlying error
}

func (e *RESTError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("rest source %s [%d] %s: %v", e.Op, e.StatusCode, e.URL, e.Err)
	}
	return fmt.Sprintf("rest source %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *RESTError) Unwrap() error {
	return e.Err
}

// AuthConfig defines how requests to a source system are authenticated.
type AuthConfig struct {
	Type       string            // "bearer", "basic", "query", "header"
	Token      string            // Bearer token or API key
	Username   string            // For basic auth
	Password   string            // For basic auth
	HeaderName string            // Header name when Type is "header"
	Params     map[string]string // Query parameters when Type is "query"
	Headers    map[string]string // Additional headers sent on every request
}

// PaginationConfig defines how the source walks multi-page responses.
type PaginationConfig struct {
	Type        string // "none", "page", "offset", "cursor"
	LimitParam  string // Parameter name for the page size
	PageParam   string // Parameter name for the page number
	OffsetParam string // Parameter name for the offset
	CursorParam string // Parameter name for the cursor
	CursorField string // JSON field carrying the next cursor
	PageSize    int    // Records requested per page
	MaxPages    int    // Safety cap on pages fetched (0 = unlimited)
}

// RESTOptions configures a RESTSource.
type RESTOptions struct {
	Method      string            // HTTP method (default GET)
	QueryParams map[string]string // Base query parameters
	Auth        *AuthConfig       // Authentication configuration
	Pagination  *PaginationConfig // Pagination configuration
	DataPath    string            // Dot path to the record array in the response
	Timeout     time.Duration     // Per-request timeout
	MaxRetries  int               // Retry attempts for 429/5xx responses
	RateLimit   time.Duration     // Minimum time between requests
	UserAgent   string
	Client      *http.Client // Custom client (tests)
}

// RESTOption is a functional option for RESTOptions.
type RESTOption func(*RESTOptions)

// WithAuth sets the authentication configuration.
func WithAuth(auth *AuthConfig) RESTOption {
	return func(o *RESTOptions) { o.Auth = auth }
}

// WithPagination sets the pagination configuration.
func WithPagination(pg *PaginationConfig) RESTOption {
	return func(o *RESTOptions) { o.Pagination = pg }
}

// WithQueryParams merges base query parameters into every request.
func WithQueryParams(params map[string]string) RESTOption {
	return func(o *RESTOptions) {
		if o.QueryParams == nil {
			o.QueryParams = make(map[string]string)
		}
		for k, v := range params {
			o.QueryParams[k] = v
		}
	}
}

// WithDataPath sets the dot path to the record array inside the response
// body (e.g. "response.quotes"). Empty means the body itself is the array.
func WithDataPath(path string) RESTOption {
	return func(o *RESTOptions) { o.DataPath = path }
}

// WithRateLimit enforces a minimum delay between requests.
func WithRateLimit(min time.Duration) RESTOption {
	return func(o *RESTOptions) { o.RateLimit = min }
}

// WithMaxRetries sets how many times a retryable response is retried.
func WithMaxRetries(n int) RESTOption {
	return func(o *RESTOptions) { o.MaxRetries = n }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) RESTOption {
	return func(o *RESTOptions) { o.Client = client }
}

// RESTSource implements core.Source over a paginated JSON HTTP API.
type RESTSource struct {
	baseURL string
	client  *http.Client
	opts    *RESTOptions

	buffer      []core.Record
	bufferIndex int
	page        int
	cursor      string
	pagesRead   int
	exhausted   bool
	lastRequest time.Time
}

// NewRESTSource creates a streaming source for the given API endpoint.
func NewRESTSource(baseURL string, options ...RESTOption) *RESTSource {
	opts := &RESTOptions{
		Method:     http.MethodGet,
		Timeout:    30 * time.Second,
		MaxRetries: 3,
		UserAgent:  "drainpipe/1.0",
	}
	for _, option := range options {
		option(opts)
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	return &RESTSource{
		baseURL: baseURL,
		client:  client,
		opts:    opts,
		page:    1,
	}
}

// Read implements core.Source, returning the next record or io.EOF once
// every page has been drained.
func (s *RESTSource) Read(ctx context.Context) (core.Record, error) {
	for s.bufferIndex >= len(s.buffer) {
		if s.exhausted {
			return nil, io.EOF
		}
		if err := s.fetchPage(ctx); err != nil {
			return nil, err
		}
	}
	rec := s.buffer[s.bufferIndex]
	s.bufferIndex++
	return rec, nil
}

// Close implements core.Source. The REST source holds no resources beyond
// the shared HTTP client.
func (s *RESTSource) Close() error { return nil }

// fetchPage requests the next page, honouring the rate limit, and refills
// the record buffer.
func (s *RESTSource) fetchPage(ctx context.Context) error {
	if s.opts.RateLimit > 0 {
		if wait := s.opts.RateLimit - time.Since(s.lastRequest); wait > 0 {
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return &RESTError{Op: "rate_limit", URL: s.baseURL, Err: ctx.Err()}
			}
		}
	}

	requestURL, err := s.pageURL()
	if err != nil {
		return err
	}

	body, err := s.request(ctx, requestURL)
	s.lastRequest = time.Now()
	if err != nil {
		return err
	}

	records, next, err := s.parse(body)
	if err != nil {
		return &RESTError{Op: "parse", URL: requestURL, Err: err}
	}

	s.buffer = records
	s.bufferIndex = 0
	s.pagesRead++
	s.advance(len(records), next)
	return nil
}

// pageURL builds the URL for the current page.
func (s *RESTSource) pageURL() (string, error) {
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return "", &RESTError{Op: "url", URL: s.baseURL, Err: err}
	}

	q := u.Query()
	for k, v := range s.opts.QueryParams {
		q.Set(k, v)
	}
	if s.opts.Auth != nil && s.opts.Auth.Type == "query" {
		for k, v := range s.opts.Auth.Params {
			q.Set(k, v)
		}
	}

	if pg := s.opts.Pagination; pg != nil {
		if pg.LimitParam != "" && pg.PageSize > 0 {
			q.Set(pg.LimitParam, strconv.Itoa(pg.PageSize))
		}
		switch pg.Type {
		case "page":
			q.Set(pg.PageParam, strconv.Itoa(s.page))
		case "offset":
			q.Set(pg.OffsetParam, strconv.Itoa((s.page-1)*pg.PageSize))
		case "cursor":
			if s.cursor != "" {
				q.Set(pg.CursorParam, s.cursor)
			}
		}
	}

	u.RawQuery = q.Encode()
	return u.String(), nil
}

// request executes one HTTP request, retrying rate-limit and server errors
// with exponential backoff. Client errors are terminal.
func (s *RESTSource) request(ctx context.Context, requestURL string) ([]byte, error) {
	var body []byte

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, s.opts.Method, requestURL, nil)
		if err != nil {
			return backoff.Permanent(&RESTError{Op: "request", URL: requestURL, Err: err})
		}
		req.Header.Set("User-Agent", s.opts.UserAgent)
		req.Header.Set("Accept", "application/json")
		s.authenticate(req)

		resp, err := s.client.Do(req)
		if err != nil {
			return &RESTError{Op: "request", URL: requestURL, Err: err}
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return &RESTError{Op: "read_body", URL: requestURL, Err: err}
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			body = data
			return nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return &RESTError{Op: "status", StatusCode: resp.StatusCode, URL: requestURL,
				Err: fmt.Errorf("retryable response")}
		default:
			return backoff.Permanent(&RESTError{Op: "status", StatusCode: resp.StatusCode, URL: requestURL,
				Err: fmt.Errorf("unexpected response")})
		}
	}

	b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(s.opts.MaxRetries))
	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return nil, err
	}
	return body, nil
}

// authenticate applies the configured auth scheme to a request.
func (s *RESTSource) authenticate(req *http.Request) {
	auth := s.opts.Auth
	if auth == nil {
		return
	}
	switch auth.Type {
	case "bearer":
		req.Header.Set("Authorization", "Bearer "+auth.Token)
	case "basic":
		req.SetBasicAuth(auth.Username, auth.Password)
	case "header":
		req.Header.Set(auth.HeaderName, auth.Token)
	}
	for k, v := range auth.Headers {
		req.Header.Set(k, v)
	}
}

// parse decodes a response body into records and extracts the next cursor.
func (s *RESTSource) parse(body []byte) ([]core.Record, string, error) {
	var payload interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, "", err
	}

	data := payload
	if s.opts.DataPath != "" {
		for _, part := range strings.Split(s.opts.DataPath, ".") {
			obj, ok := data.(map[string]interface{})
			if !ok {
				return nil, "", fmt.Errorf("data path %q: %q is not an object", s.opts.DataPath, part)
			}
			data = obj[part]
		}
	}

	var records []core.Record
	switch v := data.(type) {
	case nil:
		// Empty page.
	case []interface{}:
		for _, item := range v {
			obj, ok := item.(map[string]interface{})
			if !ok {
				return nil, "", fmt.Errorf("array element is not an object")
			}
			records = append(records, core.Record(obj))
		}
	case map[string]interface{}:
		records = append(records, core.Record(v))
	default:
		return nil, "", fmt.Errorf("unsupported response shape %T", v)
	}

	next := ""
	if pg := s.opts.Pagination; pg != nil && pg.Type == "cursor" && pg.CursorField != "" {
		if obj, ok := payload.(map[string]interface{}); ok {
			if c, ok := obj[pg.CursorField].(string); ok {
				next = c
			}
		}
	}
	return records, next, nil
}

// advance updates pagination state after a page has been read.
func (s *RESTSource) advance(pageLen int, nextCursor string) {
	pg := s.opts.Pagination
	if pg == nil || pg.Type == "none" || pg.Type == "" {
		s.exhausted = true
		return
	}
	if pg.MaxPages > 0 && s.pagesRead >= pg.MaxPages {
		s.exhausted = true
		return
	}
	switch pg.Type {
	case "page", "offset":
		if pg.PageSize > 0 && pageLen < pg.PageSize {
			s.exhausted = true
			return
		}
		if pageLen == 0 {
			s.exhausted = true
			return
		}
		s.page++
	case "cursor":
		if nextCursor == "" {
			s.exhausted = true
			return
		}
		s.cursor = nextCursor
	default:
		s.exhausted = true
	}
}

// Copyright 2020 Carleton University Library.
// All rights reserved.
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE.txt file.

// Package api provides an HTTP client which works with the Alma API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/time/rate"
)

const (
	// RequestTimeout is the amount of time the client will wait for API calls to complete before they are cancelled.
	RequestTimeout = 30 * time.Second

	// LimitParam is the default limit parameter to offset+limit calls.
	LimitParam = 100

	// DefaultThreshold is the minimum number of API calls remaining before the toolkit automatically stops working.
	DefaultThreshold = 50000

	// DefaultAlmaAPIHost is the default Alma API Server domain name.
	DefaultAlmaAPIHost = "api-na.hosted.exlibrisgroup.com"

	// DefaultPollInterval is how long WaitForCompletion sleeps between job status checks.
	DefaultPollInterval = 15 * time.Second

	// DefaultRequestsPerSecond is the per institution request rate allowed by Alma.
	DefaultRequestsPerSecond = 25

	// RemainingHeader reports the number of API calls left for the day.
	RemainingHeader = "X-Exl-Api-Remaining"
)

// Format is the data format requested from and sent to the API.
type Format string

// The formats the Alma API understands.
const (
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
)

// Code is a coded value and its description, as Alma returns them in JSON.
type Code struct {
	Value string `json:"value"`
	Desc  string `json:"desc,omitempty"`
}

// Client is a custom HTTP client for the Alma API.
type Client struct {
	// Client is the embedded http client.
	*http.Client
	// Host is the host name (domain name) for the Alma API we are calling.
	Host string
	// Key is the authorization key to use when calling the Alma API.
	Key string
	// Threshold is the minimum number of API calls remaining before
	// calls fail with a ThresholdReachedError. Zero disables the check.
	Threshold int
	// Limiter, if set, is waited on before every request.
	Limiter *rate.Limiter
	// Logger receives debug events for requests, pages and polls.
	Logger zerolog.Logger
	// PageSize is the limit used when retrieving set members. Zero means LimitParam.
	PageSize int
	// PollInterval is the time between job status checks. Zero means DefaultPollInterval.
	PollInterval time.Duration
	// MaxPolls bounds the number of job status checks. Zero means no bound other than the context.
	MaxPolls int
	// Retries is the number of times a request is retried after a connection failure.
	// Responses, whatever their status, are never retried.
	Retries int
}

// NewClient returns a client for the default host which uses the key.
func NewClient(key string, opts ...Option) *Client {
	c := &Client{
		Client:       &http.Client{},
		Host:         DefaultAlmaAPIHost,
		Key:          key,
		Limiter:      rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), DefaultRequestsPerSecond),
		Logger:       zerolog.Nop(),
		PageSize:     LimitParam,
		PollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ThresholdReachedError is an error returned when the API remaining call limit has been reached.
type ThresholdReachedError struct {
	// Remaining is the number of calls remaining.
	Remaining int
	// Threshold is the call number minimum threshold.
	Threshold int
}

func (e ThresholdReachedError) Error() string {
	return fmt.Sprintf("call threshold of %v reached, %v calls remaining", e.Threshold, e.Remaining)
}

// BaseURL is the scheme and host every API path is relative to.
func (c *Client) BaseURL() string {
	return "https://" + c.Host
}

// url returns the full URL for api, which is either a full URL on the client's Host or an /almaws/... path.
// Full URLs for any other host are an ErrForeignURL, so the key is never sent elsewhere.
func (c *Client) url(api string) (string, error) {
	base := c.BaseURL()
	if api == base || strings.HasPrefix(api, base+"/") || strings.HasPrefix(api, base+"?") {
		return api, nil
	}
	if strings.Contains(api, "://") {
		return "", fmt.Errorf("%w: %v is not on %v", ErrForeignURL, api, c.Host)
	}
	return base + api, nil
}

func (c *Client) pageSize() int {
	if c.PageSize <= 0 {
		return LimitParam
	}
	return c.PageSize
}

func (c *Client) pollInterval() time.Duration {
	if c.PollInterval <= 0 {
		return DefaultPollInterval
	}
	return c.PollInterval
}

// CheckAPIandKey ensures the API is available and that the key provided has the right permissions.
func (c *Client) CheckAPIandKey(ctx context.Context, readAccess, writeAccess []string) error {
	for _, endpoint := range readAccess {
		_, err := c.call(ctx, http.MethodGet, endpoint+"/test", nil, nil, FormatJSON, "read access check failed for "+endpoint)
		if err != nil {
			return err
		}
	}
	for _, endpoint := range writeAccess {
		_, err := c.call(ctx, http.MethodPost, endpoint+"/test", nil, nil, FormatJSON, "write access check failed for "+endpoint)
		if err != nil {
			return err
		}
	}
	return nil
}

// call validates the method and format, sends the request, and wraps the result.
// Responses without a success status are returned as an *Error carrying message.
func (c *Client) call(ctx context.Context, method, api string, params url.Values, data any, format Format, message string) (*Response, error) {
	method = strings.ToUpper(method)
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedMethod, method)
	}
	var body io.Reader
	switch format {
	case FormatJSON:
		if data != nil {
			b, err := json.Marshal(data)
			if err != nil {
				return nil, fmt.Errorf("marshalling request JSON failed: %w", err)
			}
			body = bytes.NewReader(b)
		}
	case FormatXML:
		switch d := data.(type) {
		case nil:
		case []byte:
			body = bytes.NewReader(d)
		case string:
			body = strings.NewReader(d)
		default:
			return nil, fmt.Errorf("%w: XML data must be []byte or string, not %T", ErrUnsupportedFormat, data)
		}
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}
	full, err := c.url(api)
	if err != nil {
		return nil, err
	}
	u, err := url.Parse(full)
	if err != nil {
		return nil, err
	}
	if len(params) > 0 {
		q := u.Query()
		for key, values := range params {
			for _, value := range values {
				q.Add(key, value)
			}
		}
		u.RawQuery = q.Encode()
	}
	r, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	r.Header.Set("Accept", "application/"+string(format))
	r.Header.Set("Content-Type", "application/"+string(format))
	resp, err := c.Do(ctx, r)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, newError(resp, message)
	}
	return resp, nil
}

// Do makes HTTP requests with the Client to the Host using the Key.
// Requests without a scheme and host are sent to the client's Host over https.
// If the request fails to reach the server it is retried up to Retries times,
// with linear backoff, until RequestTimeout is reached.
// The response body is read and closed, and returned as a Response whatever its status.
// See https://golang.org/pkg/net/http/#Client.Do
func (c *Client) Do(ctx context.Context, r *http.Request) (*Response, error) {
	// Create a new context with a timeout so we don't retry forever.
	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()
	if r.URL.Scheme == "" {
		r.URL.Scheme = "https"
	}
	if r.URL.Host == "" {
		r.URL.Host = c.Host
	}
	r = r.WithContext(ctx)
	// Add the api key authorization header. https://developers.exlibrisgroup.com/alma/apis/#calling
	r.Header.Set("Authorization", "apikey "+c.Key)
	backoff := 0
	attempts := 0
	for {
		select {
		// The context is cancelled or timed out.
		case <-ctx.Done():
			return nil, fmt.Errorf("%v %v: %w", r.Method, r.URL.String(), ctx.Err())
		// We've waited backoff seconds, send the request.
		case <-time.After(time.Duration(backoff) * time.Second):
			// The select statement chooses one case at random if multiple are ready.
			// It is therefore possible that the context is cancelled.
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%v %v: %w", r.Method, r.URL.String(), ctx.Err())
			}
			if c.Limiter != nil {
				err := c.Limiter.Wait(ctx)
				if err != nil {
					return nil, fmt.Errorf("%v %v: %w", r.Method, r.URL.String(), err)
				}
			}
			req, err := rewind(r, attempts)
			if err != nil {
				return nil, err
			}
			attempts++
			resp, err := c.Client.Do(req)
			// "An error is returned if caused by client policy (such as CheckRedirect),
			//  or failure to speak HTTP (such as a network connectivity problem).
			//  A non-2xx status code doesn't cause an error."
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			if err != nil {
				if attempts > c.Retries {
					return nil, err
				}
				backoff++
				c.Logger.Warn().Err(err).Int("backoff", backoff).Msg("Call to API failed, retrying")
				continue
			}
			body, err := io.ReadAll(resp.Body)
			if err != nil {
				_ = resp.Body.Close()
				return nil, err
			}
			err = resp.Body.Close()
			if err != nil {
				return nil, err
			}
			response := NewResponse(resp.StatusCode, resp.Header, body)
			c.Logger.Debug().
				Str("method", r.Method).
				Str("url", r.URL.String()).
				Int("status", resp.StatusCode).
				Str("remaining", resp.Header.Get(RemainingHeader)).
				Msg("Alma API call")
			// If the number of remaining API calls is below the threshold,
			// return a custom error called ThresholdReachedError, which can be checked later using
			// errors.As().
			rem, err := strconv.Atoi(resp.Header.Get(RemainingHeader))
			if c.Threshold > 0 && err == nil && rem <= c.Threshold {
				return response, &ThresholdReachedError{rem, c.Threshold}
			}
			return response, nil
		}
	}
}

// rewind returns the request to send on the given attempt, with a fresh body after the first.
func rewind(r *http.Request, attempt int) (*http.Request, error) {
	if attempt == 0 || r.Body == nil || r.GetBody == nil {
		return r, nil
	}
	body, err := r.GetBody()
	if err != nil {
		return nil, err
	}
	req := r.Clone(r.Context())
	req.Body = body
	return req, nil
}

// DefaultProgressBar returns a progress bar with common options already set.
func DefaultProgressBar(max int) *progressbar.ProgressBar {
	bar := progressbar.NewOptions(
		max,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionSetWidth(10),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionFullWidth(),
	)
	_ = bar.RenderBlank()
	return bar
}

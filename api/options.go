// Copyright 2020 Carleton University Library.
// All rights reserved.
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE.txt file.

package api

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Option configures a Client built by NewClient.
type Option func(*Client)

// WithHost sets the Alma API host, for example api-eu.hosted.exlibrisgroup.com.
func WithHost(host string) Option {
	return func(c *Client) {
		c.Host = host
	}
}

// WithHTTPClient sets the underlying http client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.Client = client
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.Logger = logger
	}
}

// WithThreshold sets the minimum number of remaining API calls.
func WithThreshold(threshold int) Option {
	return func(c *Client) {
		c.Threshold = threshold
	}
}

// WithRateLimit allows perSecond requests per second. Zero or less removes the limit.
func WithRateLimit(perSecond int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.Limiter = nil
			return
		}
		c.Limiter = rate.NewLimiter(rate.Limit(perSecond), perSecond)
	}
}

// WithPageSize sets the number of set members requested per call.
func WithPageSize(size int) Option {
	return func(c *Client) {
		c.PageSize = size
	}
}

// WithPollInterval sets the time between job status checks.
func WithPollInterval(interval time.Duration) Option {
	return func(c *Client) {
		c.PollInterval = interval
	}
}

// WithMaxPolls bounds the number of job status checks.
func WithMaxPolls(max int) Option {
	return func(c *Client) {
		c.MaxPolls = max
	}
}

// WithRetries sets the number of retries after connection failures.
func WithRetries(retries int) Option {
	return func(c *Client) {
		c.Retries = retries
	}
}

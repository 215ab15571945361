// Copyright 2020 Carleton University Library.
// All rights reserved.
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE.txt file.

package api

import (
	"context"
	"net/http"
	"net/url"
)

// Vendors returns the vendors matching params.
func (c *Client) Vendors(ctx context.Context, params url.Values) (*Response, error) {
	return c.call(ctx, http.MethodGet, "/almaws/v1/acq/vendors", params, nil, FormatJSON, "retrieving vendors failed")
}

// Vendor returns the vendor with the code.
func (c *Client) Vendor(ctx context.Context, code string, params url.Values) (*Response, error) {
	return c.call(ctx, http.MethodGet, "/almaws/v1/acq/vendors/"+code, params, nil, FormatJSON, "retrieving vendor failed")
}

// Funds returns the funds matching params.
func (c *Client) Funds(ctx context.Context, params url.Values) (*Response, error) {
	return c.call(ctx, http.MethodGet, "/almaws/v1/acq/funds", params, nil, FormatJSON, "retrieving funds failed")
}

// Fund returns the fund with the ID.
func (c *Client) Fund(ctx context.Context, fundID string, params url.Values) (*Response, error) {
	return c.call(ctx, http.MethodGet, "/almaws/v1/acq/funds/"+fundID, params, nil, FormatJSON, "retrieving fund failed")
}

// UpdateFund replaces the fund with the ID.
func (c *Client) UpdateFund(ctx context.Context, fundID string, data any, params url.Values) (*Response, error) {
	return c.call(ctx, http.MethodPut, "/almaws/v1/acq/funds/"+fundID, params, data, FormatJSON, "updating fund failed")
}

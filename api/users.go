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

// CreateUser creates a user from data, which is marshalled to JSON.
func (c *Client) CreateUser(ctx context.Context, data any, params url.Values) (*Response, error) {
	return c.call(ctx, http.MethodPost, "/almaws/v1/users", params, data, FormatJSON, "creating user failed")
}

// User returns the user with the primary ID.
func (c *Client) User(ctx context.Context, userID string, params url.Values) (*Response, error) {
	return c.call(ctx, http.MethodGet, "/almaws/v1/users/"+userID, params, nil, FormatJSON, "retrieving user failed")
}

// UpdateUser replaces the user with the primary ID.
func (c *Client) UpdateUser(ctx context.Context, userID string, data any, params url.Values) (*Response, error) {
	return c.call(ctx, http.MethodPut, "/almaws/v1/users/"+userID, params, data, FormatJSON, "updating user failed")
}

// DeleteUser deletes the user with the primary ID.
func (c *Client) DeleteUser(ctx context.Context, userID string, params url.Values) (*Response, error) {
	return c.call(ctx, http.MethodDelete, "/almaws/v1/users/"+userID, params, nil, FormatJSON, "deleting user failed")
}

// Fees returns the fines and fees of the user.
func (c *Client) Fees(ctx context.Context, userID string, params url.Values) (*Response, error) {
	return c.call(ctx, http.MethodGet, "/almaws/v1/users/"+userID+"/fees", params, nil, FormatJSON, "retrieving fees failed")
}

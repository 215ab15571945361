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

// IntegrationProfiles returns the integration profiles.
func (c *Client) IntegrationProfiles(ctx context.Context, params url.Values) (*Response, error) {
	return c.call(ctx, http.MethodGet, "/almaws/v1/conf/integration-profiles", params, nil, FormatJSON, "retrieving integration profiles failed")
}

// GeneralConfiguration returns the institution's general configuration.
func (c *Client) GeneralConfiguration(ctx context.Context) (*Response, error) {
	return c.call(ctx, http.MethodGet, "/almaws/v1/conf/general", nil, nil, FormatJSON, "retrieving general configuration failed")
}

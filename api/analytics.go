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

// AnalyticsReport returns a page of an Analytics report. The report is chosen with the path
// parameter on the first call and the token parameter afterwards.
func (c *Client) AnalyticsReport(ctx context.Context, params url.Values) (*Response, error) {
	return c.call(ctx, http.MethodGet, "/almaws/v1/analytics/reports", params, nil, FormatJSON, "retrieving analytics report failed")
}

// AnalyticsPath returns the Analytics reports and folders under the path.
func (c *Client) AnalyticsPath(ctx context.Context, path string, params url.Values) (*Response, error) {
	return c.call(ctx, http.MethodGet, "/almaws/v1/analytics/paths/"+url.PathEscape(path), params, nil, FormatJSON, "retrieving analytics path failed")
}

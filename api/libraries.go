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

// Library stores data about a library in Alma, which represents a physical library in the institution, which gives library services.
// https://developers.exlibrisgroup.com/alma/apis/docs/xsd/rest_library.xsd/
type Library struct {
	Link            string `json:"link"`
	Code            string `json:"code"`
	Path            string `json:"path"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	ResourceSharing bool   `json:"resource_sharing"`
	Campus          Code   `json:"campus"`
	Proxy           string `json:"proxy"`
	DefaultLocation Code   `json:"default_location"`
}

// Libraries returns the libraries configured for the institution.
func (c *Client) Libraries(ctx context.Context) (*Response, error) {
	return c.call(ctx, http.MethodGet, "/almaws/v1/conf/libraries", nil, nil, FormatJSON, "retrieving libraries failed")
}

// LibraryList returns the libraries configured for the institution, decoded.
func (c *Client) LibraryList(ctx context.Context) ([]Library, error) {
	resp, err := c.Libraries(ctx)
	if err != nil {
		return nil, err
	}
	libraries := struct {
		Libraries []Library `json:"library"`
	}{}
	err = resp.Decode(&libraries)
	if err != nil {
		return nil, err
	}
	return libraries.Libraries, nil
}

// Library returns the library with the code.
func (c *Client) Library(ctx context.Context, code string) (*Response, error) {
	return c.call(ctx, http.MethodGet, "/almaws/v1/conf/libraries/"+code, nil, nil, FormatJSON, "retrieving library failed")
}

// CirculationDesks returns the circulation desks of the library with the code.
func (c *Client) CirculationDesks(ctx context.Context, code string, params url.Values) (*Response, error) {
	return c.call(ctx, http.MethodGet, "/almaws/v1/conf/libraries/"+code+"/circ-desks/", params, nil, FormatJSON, "retrieving circulation desks failed")
}

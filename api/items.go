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

// DefaultCircDesk is the default circulation desk code used when scanning an item in.
const DefaultCircDesk = "DEFAULT_CIRC_DESK"

// Item stores data about an item.
// https://developers.exlibrisgroup.com/alma/apis/docs/xsd/rest_item.xsd/
type Item struct {
	Link    string `json:"link"`
	BibData struct {
		MMSID  string `json:"mms_id"`
		Title  string `json:"title"`
		Author string `json:"author"`
	} `json:"bib_data"`
	HoldingData struct {
		HoldingID  string `json:"holding_id"`
		CallNumber string `json:"call_number"`
	} `json:"holding_data"`
	ItemData struct {
		PID     string `json:"pid"`
		Barcode string `json:"barcode"`
	} `json:"item_data"`
}

// CreateItem attaches a new item, built from data, to a holding record.
func (c *Client) CreateItem(ctx context.Context, bibID, holdingID string, data any, params url.Values) (*Response, error) {
	return c.call(ctx, http.MethodPost, "/almaws/v1/bibs/"+bibID+"/holdings/"+holdingID+"/items", params, data, FormatJSON, "creating item failed")
}

// Items returns the items attached to a holding record.
func (c *Client) Items(ctx context.Context, bibID, holdingID string, params url.Values) (*Response, error) {
	return c.call(ctx, http.MethodGet, "/almaws/v1/bibs/"+bibID+"/holdings/"+holdingID+"/items", params, nil, FormatJSON, "retrieving items failed")
}

// ScanInItem POSTs the scan operation on the item at link, as found in a member of an ITEM set.
func (c *Client) ScanInItem(ctx context.Context, link, circdesk, library string) (item Item, err error) {
	params := url.Values{}
	params.Set("op", "scan")
	params.Set("register_in_house_use", "false")
	params.Set("circ_desk", circdesk)
	params.Set("library", library)
	resp, err := c.call(ctx, http.MethodPost, link, params, nil, FormatJSON, "scanning in item failed")
	if err != nil {
		return item, err
	}
	err = resp.Decode(&item)
	return item, err
}

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

// HoldingListMember stores data about a holding record when it's returned from the Holdings list.
// HoldingListMember != HoldingRecord
// https://developers.exlibrisgroup.com/alma/apis/docs/xsd/rest_holdings.xsd
type HoldingListMember struct {
	Link                   string `json:"link"`
	HoldingID              string `json:"holding_id"`
	Library                Code   `json:"library"`
	Location               Code   `json:"location"`
	CallNumber             string `json:"call_number"`
	SuppressFromPublishing string `json:"suppress_from_publishing"`
}

// HoldingList stores data about holdings under a bib record.
// https://developers.exlibrisgroup.com/alma/apis/docs/xsd/rest_holdings.xsd/
type HoldingList struct {
	TotalRecordCount   int                 `json:"total_record_count"`
	HoldingListMembers []HoldingListMember `json:"holding"`
	BibData            struct {
		Link      string `json:"link"`
		MMSID     string `json:"mms_id"`
		Title     string `json:"title"`
		ISSN      string `json:"issn"`
		Publisher string `json:"publisher"`
	} `json:"bib_data"`
}

// HoldingRecord is a holdings record and the Alma data around it.
// https://developers.exlibrisgroup.com/alma/apis/docs/xsd/rest_holding.xsd/
type HoldingRecord struct {
	Record
	HoldingID              Value
	SuppressFromPublishing Value
	CreatedBy              Value
	CreatedDate            Value
	LastModifiedBy         Value
	LastModifiedDate       Value
	OriginatingSystem      Value
	OriginatingSystemID    Value
}

func (h *HoldingRecord) fields() []namedField {
	return []namedField{
		{"holding_id", &h.HoldingID},
		{"suppress_from_publishing", &h.SuppressFromPublishing},
		{"created_by", &h.CreatedBy},
		{"created_date", &h.CreatedDate},
		{"last_modified_by", &h.LastModifiedBy},
		{"last_modified_date", &h.LastModifiedDate},
		{"originating_system", &h.OriginatingSystem},
		{"originating_system_id", &h.OriginatingSystemID},
	}
}

// NewHoldingRecord reads a holding record from a response to an XML request.
func NewHoldingRecord(resp *Response) (*HoldingRecord, error) {
	h := &HoldingRecord{}
	err := decodeRecord(resp, HoldingType, &h.Record, h.fields())
	if err != nil {
		return nil, err
	}
	return h, nil
}

// Type returns HoldingType.
func (h *HoldingRecord) Type() RecordType {
	return HoldingType
}

// XML returns the record as sent to the API.
func (h *HoldingRecord) XML() ([]byte, error) {
	return encodeRecord(HoldingType, &h.Record, h.fields())
}

// CallNumber returns the h and i parts of the 852, seperated with a space.
func (h *HoldingRecord) CallNumber() (callnumber string) {
	if h.MARC == nil {
		return ""
	}
	for _, field := range h.MARC.Fields("852") {
		for _, value := range field.SubfieldValues("h") {
			callnumber = value
		}
		for _, value := range field.SubfieldValues("i") {
			callnumber = callnumber + " " + value
		}
	}
	return callnumber
}

// Holdings returns the list of holdings attached to a bib record.
func (c *Client) Holdings(ctx context.Context, bibID string, params url.Values) (*Response, error) {
	return c.call(ctx, http.MethodGet, "/almaws/v1/bibs/"+bibID+"/holdings", params, nil, FormatJSON, "retrieving holdings failed")
}

// BibHoldings returns the holding list members for a bib record.
func (c *Client) BibHoldings(ctx context.Context, bibID string) ([]HoldingListMember, error) {
	resp, err := c.Holdings(ctx, bibID, nil)
	if err != nil {
		return nil, err
	}
	list := HoldingList{}
	err = resp.Decode(&list)
	if err != nil {
		return nil, err
	}
	return list.HoldingListMembers, nil
}

// HoldingRecord returns a holding record attached to a bib record.
func (c *Client) HoldingRecord(ctx context.Context, bibID, holdingID string, params url.Values) (*HoldingRecord, error) {
	return c.holdingRecord(ctx, "/almaws/v1/bibs/"+bibID+"/holdings/"+holdingID, params)
}

// HoldingRecordFromLink returns the holding record at link, as found in a HoldingListMember.
func (c *Client) HoldingRecordFromLink(ctx context.Context, link string) (*HoldingRecord, error) {
	return c.holdingRecord(ctx, link, nil)
}

func (c *Client) holdingRecord(ctx context.Context, api string, params url.Values) (*HoldingRecord, error) {
	resp, err := c.call(ctx, http.MethodGet, api, params, nil, FormatXML, "retrieving holding record failed")
	if err != nil {
		return nil, err
	}
	return NewHoldingRecord(resp)
}

// CreateHoldingRecord attaches a new holding record to a bib record and returns it as stored by Alma.
func (c *Client) CreateHoldingRecord(ctx context.Context, bibID string, holding *HoldingRecord, params url.Values) (*HoldingRecord, error) {
	data, err := holding.XML()
	if err != nil {
		return nil, err
	}
	resp, err := c.call(ctx, http.MethodPost, "/almaws/v1/bibs/"+bibID+"/holdings", params, data, FormatXML, "creating holding record failed")
	if err != nil {
		return nil, err
	}
	return NewHoldingRecord(resp)
}

// UpdateHoldingRecord replaces the holding record with the holding's ID and returns it as stored by Alma.
func (c *Client) UpdateHoldingRecord(ctx context.Context, bibID string, holding *HoldingRecord, params url.Values) (*HoldingRecord, error) {
	data, err := holding.XML()
	if err != nil {
		return nil, err
	}
	api := "/almaws/v1/bibs/" + bibID + "/holdings/" + holding.HoldingID.Text
	resp, err := c.call(ctx, http.MethodPut, api, params, data, FormatXML, "updating holding record failed")
	if err != nil {
		return nil, err
	}
	return NewHoldingRecord(resp)
}

// DeleteHoldingRecord deletes a holding record attached to a bib record.
func (c *Client) DeleteHoldingRecord(ctx context.Context, bibID, holdingID string, params url.Values) (*Response, error) {
	return c.call(ctx, http.MethodDelete, "/almaws/v1/bibs/"+bibID+"/holdings/"+holdingID, params, nil, FormatJSON, "deleting holding record failed")
}

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

// BibRecord is a bibliographic record and the Alma data around it.
// https://developers.exlibrisgroup.com/alma/apis/docs/xsd/rest_bib.xsd/
type BibRecord struct {
	Record
	MMSID                      Value
	RecordFormat               Value
	SuppressFromPublishing     Value
	SuppressFromExternalSearch Value
	CatalogingLevel            Value
	BriefLevel                 Value
	OriginatingSystem          Value
	OriginatingSystemID        Value
}

func (b *BibRecord) fields() []namedField {
	return []namedField{
		{"mms_id", &b.MMSID},
		{"record_format", &b.RecordFormat},
		{"suppress_from_publishing", &b.SuppressFromPublishing},
		{"suppress_from_external_search", &b.SuppressFromExternalSearch},
		{"cataloging_level", &b.CatalogingLevel},
		{"brief_level", &b.BriefLevel},
		{"originating_system", &b.OriginatingSystem},
		{"originating_system_id", &b.OriginatingSystemID},
	}
}

// NewBibRecord reads a bib record from a response to an XML request.
func NewBibRecord(resp *Response) (*BibRecord, error) {
	b := &BibRecord{}
	err := decodeRecord(resp, BibType, &b.Record, b.fields())
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Type returns BibType.
func (b *BibRecord) Type() RecordType {
	return BibType
}

// XML returns the record as sent to the API.
func (b *BibRecord) XML() ([]byte, error) {
	return encodeRecord(BibType, &b.Record, b.fields())
}

// BibRecord returns the bib record with the MMS ID.
func (c *Client) BibRecord(ctx context.Context, mmsID string, params url.Values) (*BibRecord, error) {
	resp, err := c.call(ctx, http.MethodGet, "/almaws/v1/bibs/"+mmsID, params, nil, FormatXML, "retrieving bib record failed")
	if err != nil {
		return nil, err
	}
	return NewBibRecord(resp)
}

// CreateBibRecord creates a bib record and returns it as stored by Alma, with its new MMS ID.
func (c *Client) CreateBibRecord(ctx context.Context, bib *BibRecord, params url.Values) (*BibRecord, error) {
	data, err := bib.XML()
	if err != nil {
		return nil, err
	}
	resp, err := c.call(ctx, http.MethodPost, "/almaws/v1/bibs", params, data, FormatXML, "creating bib record failed")
	if err != nil {
		return nil, err
	}
	return NewBibRecord(resp)
}

// UpdateBibRecord replaces the bib record with the MMS ID and returns it as stored by Alma.
func (c *Client) UpdateBibRecord(ctx context.Context, mmsID string, bib *BibRecord, params url.Values) (*BibRecord, error) {
	data, err := bib.XML()
	if err != nil {
		return nil, err
	}
	resp, err := c.call(ctx, http.MethodPut, "/almaws/v1/bibs/"+mmsID, params, data, FormatXML, "updating bib record failed")
	if err != nil {
		return nil, err
	}
	return NewBibRecord(resp)
}

// DeleteBibRecord deletes the bib record with the MMS ID.
func (c *Client) DeleteBibRecord(ctx context.Context, mmsID string, params url.Values) (*Response, error) {
	return c.call(ctx, http.MethodDelete, "/almaws/v1/bibs/"+mmsID, params, nil, FormatJSON, "deleting bib record failed")
}

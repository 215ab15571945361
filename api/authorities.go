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

// AuthorityRecord is an authority record and the Alma data around it.
// https://developers.exlibrisgroup.com/alma/apis/docs/xsd/rest_authority.xsd/
type AuthorityRecord struct {
	Record
	MMSID               Value
	RecordFormat        Value
	Vocabulary          Value
	CatalogingLevel     Value
	BriefLevel          Value
	OriginatingSystem   Value
	OriginatingSystemID Value
}

func (a *AuthorityRecord) fields() []namedField {
	return []namedField{
		{"mms_id", &a.MMSID},
		{"record_format", &a.RecordFormat},
		{"vocabulary", &a.Vocabulary},
		{"cataloging_level", &a.CatalogingLevel},
		{"brief_level", &a.BriefLevel},
		{"originating_system", &a.OriginatingSystem},
		{"originating_system_id", &a.OriginatingSystemID},
	}
}

// NewAuthorityRecord reads an authority record from a response to an XML request.
func NewAuthorityRecord(resp *Response) (*AuthorityRecord, error) {
	a := &AuthorityRecord{}
	err := decodeRecord(resp, AuthorityType, &a.Record, a.fields())
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Type returns AuthorityType.
func (a *AuthorityRecord) Type() RecordType {
	return AuthorityType
}

// XML returns the record as sent to the API.
func (a *AuthorityRecord) XML() ([]byte, error) {
	return encodeRecord(AuthorityType, &a.Record, a.fields())
}

// AuthorityRecord returns the authority record with the ID.
func (c *Client) AuthorityRecord(ctx context.Context, authorityID string, params url.Values) (*AuthorityRecord, error) {
	resp, err := c.call(ctx, http.MethodGet, "/almaws/v1/bibs/authorities/"+authorityID, params, nil, FormatXML, "retrieving authority record failed")
	if err != nil {
		return nil, err
	}
	return NewAuthorityRecord(resp)
}

// UpdateAuthorityRecord replaces the authority record with the ID and returns it as stored by Alma.
func (c *Client) UpdateAuthorityRecord(ctx context.Context, authorityID string, authority *AuthorityRecord, params url.Values) (*AuthorityRecord, error) {
	data, err := authority.XML()
	if err != nil {
		return nil, err
	}
	resp, err := c.call(ctx, http.MethodPut, "/almaws/v1/bibs/authorities/"+authorityID, params, data, FormatXML, "updating authority record failed")
	if err != nil {
		return nil, err
	}
	return NewAuthorityRecord(resp)
}

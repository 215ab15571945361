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

// CodeTable stores data about codes and their related descriptions.
// https://developers.exlibrisgroup.com/alma/apis/docs/xsd/rest_code_table.xsd/
type CodeTable struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	SubSystem    Code   `json:"sub_system"`
	PatronFacing bool   `json:"patron_facing"`
	Language     Code   `json:"language"`
	Scope        struct {
		InstitutionID Code `json:"institution_id"`
		LibraryID     Code `json:"library_id"`
	} `json:"scope"`
	Rows []struct {
		Code        string `json:"code"`
		Description string `json:"description"`
		Default     bool   `json:"default"`
		Enabled     bool   `json:"enabled"`
	} `json:"row"`
}

// CodeTableSummary is a code table as listed by CodeTables.
type CodeTableSummary struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Link        string `json:"link"`
}

// CodeTables returns the list of code tables.
func (c *Client) CodeTables(ctx context.Context) (*Response, error) {
	return c.call(ctx, http.MethodGet, "/almaws/v1/conf/code-tables", nil, nil, FormatJSON, "retrieving code tables failed")
}

// CodeTableList returns the list of code tables, decoded.
func (c *Client) CodeTableList(ctx context.Context) ([]CodeTableSummary, error) {
	resp, err := c.CodeTables(ctx)
	if err != nil {
		return nil, err
	}
	tables := struct {
		CodeTables []CodeTableSummary `json:"code_table"`
	}{}
	err = resp.Decode(&tables)
	if err != nil {
		return nil, err
	}
	return tables.CodeTables, nil
}

// CodeTable returns a code table.
func (c *Client) CodeTable(ctx context.Context, name string, params url.Values) (*Response, error) {
	return c.call(ctx, http.MethodGet, "/almaws/v1/conf/code-tables/"+name, params, nil, FormatJSON, "retrieving code table failed")
}

// DecodedCodeTable returns a code table, decoded.
func (c *Client) DecodedCodeTable(ctx context.Context, name string) (table CodeTable, err error) {
	resp, err := c.CodeTable(ctx, name, nil)
	if err != nil {
		return table, err
	}
	err = resp.Decode(&table)
	return table, err
}

// MappingTables returns the list of mapping tables.
func (c *Client) MappingTables(ctx context.Context) (*Response, error) {
	return c.call(ctx, http.MethodGet, "/almaws/v1/conf/mapping-tables", nil, nil, FormatJSON, "retrieving mapping tables failed")
}

// MappingTable returns a mapping table.
func (c *Client) MappingTable(ctx context.Context, name string, params url.Values) (*Response, error) {
	return c.call(ctx, http.MethodGet, "/almaws/v1/conf/mapping-tables/"+name, params, nil, FormatJSON, "retrieving mapping table failed")
}

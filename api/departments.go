// Copyright 2020 Carleton University Library.
// All rights reserved.
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE.txt file.

package api

import (
	"context"
	"net/http"
)

// Department stores data about a location within a library or institution where a service is performed.
// https://developers.exlibrisgroup.com/alma/apis/docs/xsd/rest_department.xsd/
type Department struct {
	Code            string `json:"code"`
	Name            string `json:"name"`
	Type            Code   `json:"type"`
	Printer         Code   `json:"printer"`
	Owner           Code   `json:"owner"`
	ServedLibraries struct {
		Library []Code `json:"library"`
	} `json:"served_libraries"`
	Operators struct {
		Operator []struct {
			Link      string `json:"link"`
			PrimaryID string `json:"primary_id"`
			FullName  string `json:"full_name"`
		} `json:"operator"`
	} `json:"operators"`
	Description string `json:"description"`
}

// Departments returns the departments configured for the institution.
func (c *Client) Departments(ctx context.Context) (*Response, error) {
	return c.call(ctx, http.MethodGet, "/almaws/v1/conf/departments", nil, nil, FormatJSON, "retrieving departments failed")
}

// DepartmentList returns the departments configured for the institution, decoded.
func (c *Client) DepartmentList(ctx context.Context) ([]Department, error) {
	resp, err := c.Departments(ctx)
	if err != nil {
		return nil, err
	}
	departments := struct {
		Departments []Department `json:"department"`
	}{}
	err = resp.Decode(&departments)
	if err != nil {
		return nil, err
	}
	return departments.Departments, nil
}

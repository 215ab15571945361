// Copyright 2020 Carleton University Library.
// All rights reserved.
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE.txt file.

package api

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const singleErrorJSON = `{"errorsExist":true,"errorList":{"error":{"errorCode":"402204","errorMessage":"Set not found: Set ID abc","trackingId":"E01-1"}},"result":null}`

const multipleErrorsJSON = `{"errorsExist":true,"errorList":{"error":[` +
	`{"errorCode":"401652","errorMessage":"General Error - An error has occurred while processing the request.","trackingId":"E01-2"},` +
	`{"errorCode":"401664","errorMessage":"Mandatory field is missing: primary_id","trackingId":"E01-3"}` +
	`]}}`

const singleErrorXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<web_service_result xmlns="http://com/exlibris/urm/general/xmlbeans">` +
	`<errorsExist>true</errorsExist><errorList><error><errorCode>402203</errorCode>` +
	`<errorMessage>Input parameters mmsId 1 is not valid.</errorMessage><trackingId>E01-4</trackingId></error></errorList>` +
	`</web_service_result>`

const multipleErrorsXML = `<web_service_result><errorsExist>true</errorsExist><errorList>` +
	`<error><errorCode>1</errorCode><errorMessage>First</errorMessage></error>` +
	`<error><errorCode>2</errorCode></error>` +
	`<error><errorCode>3</errorCode><errorMessage>Third</errorMessage></error>` +
	`</errorList></web_service_result>`

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		expected    []string
	}{
		{"single JSON", "application/json;charset=UTF-8", singleErrorJSON, []string{"Set not found: Set ID abc"}},
		{"multiple JSON", "application/json;charset=UTF-8", multipleErrorsJSON, []string{
			"General Error - An error has occurred while processing the request.",
			"Mandatory field is missing: primary_id",
		}},
		{"single XML", "application/xml;charset=UTF-8", singleErrorXML, []string{"Input parameters mmsId 1 is not valid."}},
		{"multiple XML", "application/xml;charset=UTF-8", multipleErrorsXML, []string{"First", "", "Third"}},
		{"no error list", "application/json;charset=UTF-8", `{"errorsExist":false}`, []string{}},
		{"empty body", "application/json;charset=UTF-8", ``, []string{}},
		{"XML without result", "application/xml;charset=UTF-8", `<other/>`, []string{}},
		{"invalid XML", "application/xml;charset=UTF-8", `<web_service_result>`, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := NewResponse(http.StatusBadRequest, header(tt.contentType), []byte(tt.body))
			assert.Equal(t, tt.expected, newError(resp, "failed").ErrorMessages())
		})
	}
}

func TestErrorXMLData(t *testing.T) {
	resp := NewResponse(http.StatusBadRequest, header("application/xml;charset=UTF-8"), []byte(singleErrorXML))
	err := newError(resp, "failed")
	assert.Equal(t, "true", err.Data["errorsExist"])
	// The response the error was built from is unchanged.
	assert.Equal(t, []byte(singleErrorXML), resp.Data[ContentKey])
}

func TestErrorFromCall(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json;charset=UTF-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(singleErrorJSON))
	})
	_, err := c.Set(context.Background(), "abc", false)
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "retrieving set failed", apiErr.Message)
	assert.Equal(t, []string{"Set not found: Set ID abc"}, apiErr.ErrorMessages())
	assert.Equal(t, "retrieving set failed [500]: Set not found: Set ID abc", apiErr.Error())
}

// Copyright 2020 Carleton University Library.
// All rights reserved.
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE.txt file.

package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func header(contentType string) http.Header {
	h := http.Header{}
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	return h
}

func TestContentKind(t *testing.T) {
	tests := map[string]ContentKind{
		"application/json;charset=UTF-8":  JSON,
		"application/json; charset=utf-8": JSON,
		"application/xml;charset=UTF-8":   XML,
		"application/json":                Unknown,
		"text/plain;charset=UTF-8":        Unknown,
		"application/pdf;charset=UTF-8":   Unknown,
		"":                                Unknown,
	}
	for contentType, kind := range tests {
		resp := NewResponse(http.StatusOK, header(contentType), nil)
		assert.Equal(t, kind, resp.Kind, contentType)
	}
}

func TestNewResponseJSON(t *testing.T) {
	body := []byte(`{"name":"A set","number_of_members":{"value":250},"tags":["a","b"]}`)
	resp := NewResponse(http.StatusOK, header("application/json;charset=UTF-8"), body)
	assert.Equal(t, map[string]any{
		"name":              "A set",
		"number_of_members": map[string]any{"value": json.Number("250")},
		"tags":              []any{"a", "b"},
	}, resp.Data)
}

func TestNewResponseJSONNeverFails(t *testing.T) {
	for _, body := range []string{"", "not json", "[1, 2]", `[{"a":1}]`, "null", `{"truncated":`,
		`{"a":1} trailing`, `{"a":1}{"b":2}`, `{"a":1}}`} {
		resp := NewResponse(http.StatusOK, header("application/json;charset=UTF-8"), []byte(body))
		assert.Equal(t, map[string]any{}, resp.Data, body)
	}
	resp := NewResponse(http.StatusOK, header("application/json;charset=UTF-8"), []byte("{\"a\":1}\n  "))
	assert.Equal(t, map[string]any{"a": json.Number("1")}, resp.Data)
}

func TestNewResponseXML(t *testing.T) {
	for _, body := range [][]byte{nil, []byte("<bib><mms_id>1</mms_id></bib>"), []byte("<not xml")} {
		resp := NewResponse(http.StatusOK, header("application/xml;charset=UTF-8"), body)
		assert.Equal(t, map[string]any{ContentKey: body}, resp.Data)
		assert.Equal(t, body, resp.Content())
	}
}

func TestAPICallsRemaining(t *testing.T) {
	tests := map[string]int{
		"12345": 12345,
		"":      0,
		"many":  0,
		"12.5":  0,
	}
	for value, expected := range tests {
		h := header("")
		if value != "" {
			h.Set(RemainingHeader, value)
		}
		resp := NewResponse(http.StatusOK, h, nil)
		assert.Equal(t, expected, resp.APICallsRemaining(), value)
	}
}

func TestOKAndRaiseForStatus(t *testing.T) {
	for _, status := range []int{200, 204, 302, 399} {
		resp := NewResponse(status, nil, nil)
		assert.True(t, resp.OK(), status)
		assert.NoError(t, resp.RaiseForStatus())
	}
	for _, status := range []int{199, 400, 404, 500} {
		resp := NewResponse(status, nil, nil)
		assert.False(t, resp.OK(), status)
		err := resp.RaiseForStatus()
		var apiErr *Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, status, apiErr.StatusCode)
	}
}

func TestDecode(t *testing.T) {
	resp := NewResponse(http.StatusOK, header("application/json;charset=UTF-8"), []byte(`{"code":"MAIN","campus":{"value":"C1","desc":"Main campus"}}`))
	library := Library{}
	require.NoError(t, resp.Decode(&library))
	assert.Equal(t, "MAIN", library.Code)
	assert.Equal(t, Code{Value: "C1", Desc: "Main campus"}, library.Campus)

	resp = NewResponse(http.StatusOK, header("text/plain"), []byte("MAIN"))
	assert.Error(t, resp.Decode(&library))
}

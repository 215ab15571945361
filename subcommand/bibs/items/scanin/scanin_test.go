// Copyright 2020 Carleton University Library.
// All rights reserved.
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE.txt file.

package scanin

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cu-library/almaclient/api"
)

func TestScanIn(t *testing.T) {
	ts := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "scan", r.URL.Query().Get("op"))
		assert.Equal(t, "false", r.URL.Query().Get("register_in_house_use"))
		assert.Equal(t, api.DefaultCircDesk, r.URL.Query().Get("circ_desk"))
		assert.Equal(t, "MAIN", r.URL.Query().Get("library"))
		w.Header().Set("Content-Type", "application/json;charset=UTF-8")
		if r.URL.Path == "/almaws/v1/bibs/991/holdings/22/items/missing" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"errorsExist": true,
				"errorList":   map[string]any{"error": []any{map[string]any{"errorCode": "401690", "errorMessage": "No items found"}}},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"bib_data":     map[string]any{"mms_id": "991", "title": "Cats", "author": "Smith, Jane"},
			"holding_data": map[string]any{"holding_id": "22", "call_number": "QA76.73 G63"},
			"item_data":    map[string]any{"pid": "23", "barcode": "12345"},
		})
	}))
	defer ts.Close()
	tsURL, err := url.Parse(ts.URL)
	require.NoError(t, err)
	c := api.NewClient("a test key", api.WithHTTPClient(ts.Client()), api.WithHost(tsURL.Host), api.WithRateLimit(0))

	items := []api.SetMember{
		{ID: "23", Description: "Cats", Link: ts.URL + "/almaws/v1/bibs/991/holdings/22/items/23"},
		{ID: "missing", Description: "Dogs", Link: ts.URL + "/almaws/v1/bibs/991/holdings/22/items/missing"},
	}
	var b bytes.Buffer
	err = ScanIn(context.Background(), c, zerolog.Nop(), &b, items, api.DefaultCircDesk, "MAIN", false)
	assert.EqualError(t, err, "1 error(s) occured when scanning in items")
	assert.Equal(t, "MMS ID,Title,Author,Call Number,Barcode,Scanned in in Alma\n"+
		"991,Cats,\"Smith, Jane\",QA76.73 G63,12345,yes\n", b.String())
}

func TestScanInDryRun(t *testing.T) {
	c := api.NewClient("a test key", api.WithHost("localhost:1"), api.WithRateLimit(0))
	var b bytes.Buffer
	items := []api.SetMember{{ID: "23", Description: "Cats", Link: "https://localhost:1/almaws/v1/bibs/991/holdings/22/items/23"}}
	err := ScanIn(context.Background(), c, zerolog.Nop(), &b, items, api.DefaultCircDesk, "MAIN", true)
	require.NoError(t, err)
	assert.Contains(t, b.String(), ",Cats,,,,no\n")
}

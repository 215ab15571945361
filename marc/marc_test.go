// Copyright 2020 Carleton University Library.
// All rights reserved.
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE.txt file.

package marc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRecord = `<record>` +
	`<leader>01234cam a2200301 i 4500</leader>` +
	`<controlfield tag="001">9992524713606533</controlfield>` +
	`<controlfield tag="008">200101s2020    onc           000 0 eng d</controlfield>` +
	`<datafield ind1="1" ind2="0" tag="245"><subfield code="a">A title :</subfield><subfield code="b">a subtitle.</subfield></datafield>` +
	`<datafield ind1=" " ind2="4" tag="650"><subfield code="a">Cataloging.</subfield></datafield>` +
	`<datafield ind1=" " ind2="4" tag="650"><subfield code="a">Libraries.</subfield></datafield>` +
	`</record>`

func TestParseXMLRoundTrip(t *testing.T) {
	records, err := ParseXML([]byte(testRecord))
	require.NoError(t, err)
	require.Len(t, records, 1)
	r := records[0]
	assert.Equal(t, "01234cam a2200301 i 4500", r.Leader)
	id, ok := r.ControlField("001")
	assert.True(t, ok)
	assert.Equal(t, "9992524713606533", id)
	out, err := Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, testRecord, string(out))
}

func TestParseXMLCollection(t *testing.T) {
	collection := `<?xml version="1.0" encoding="UTF-8"?><collection xmlns="` + Namespace + `">` +
		`<record><leader>a</leader></record><record><leader>b</leader></record></collection>`
	records, err := ParseXML([]byte(collection))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a", records[0].Leader)
	assert.Equal(t, "b", records[1].Leader)
}

func TestParseXMLNone(t *testing.T) {
	records, err := ParseXML([]byte(`<bib><mms_id>1</mms_id></bib>`))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestParseXMLMalformed(t *testing.T) {
	_, err := ParseXML([]byte(`<record><leader>`))
	assert.Error(t, err)
}

func TestFieldsAndSubfields(t *testing.T) {
	records, err := ParseXML([]byte(testRecord))
	require.NoError(t, err)
	r := records[0]
	subjects := r.Fields("650")
	require.Len(t, subjects, 2)
	v, ok := subjects[1].Subfield("a")
	assert.True(t, ok)
	assert.Equal(t, "Libraries.", v)
	_, ok = subjects[1].Subfield("z")
	assert.False(t, ok)
	title := r.Fields("245")[0]
	assert.Equal(t, []string{"A title :"}, title.SubfieldValues("a"))
	// Fields returns pointers into the record.
	title.Subfields[0].Value = "Another title :"
	assert.Equal(t, "Another title :", r.DataFields[0].Subfields[0].Value)
}

func TestAddAndRemoveFields(t *testing.T) {
	records, err := ParseXML([]byte(testRecord))
	require.NoError(t, err)
	r := records[0]
	r.AddDataField(DataField{Ind1: " ", Ind2: " ", Tag: "500", Subfields: []Subfield{{Code: "a", Value: "A note."}}})
	tags := []string{}
	for _, f := range r.DataFields {
		tags = append(tags, f.Tag)
	}
	assert.Equal(t, []string{"245", "500", "650", "650"}, tags)
	assert.Equal(t, 2, r.RemoveFields("650"))
	assert.Len(t, r.DataFields, 2)
	assert.Equal(t, 0, r.RemoveFields("999"))
}

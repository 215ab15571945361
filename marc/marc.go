// Copyright 2020 Carleton University Library.
// All rights reserved.
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE.txt file.

// Package marc models MARC21 records (bibliographic, holdings and authority)
// and converts them to and from MARCXML.
// http://www.loc.gov/standards/marcxml/
package marc

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"sort"
)

// Namespace is the MARCXML slim schema namespace.
const Namespace = "http://www.loc.gov/MARC21/slim"

// Record is a MARC21 record.
type Record struct {
	XMLName       xml.Name       `xml:"record"`
	Leader        string         `xml:"leader,omitempty"`
	ControlFields []ControlField `xml:"controlfield"`
	DataFields    []DataField    `xml:"datafield"`
}

// ControlField is a 00X field, which has a tag and a value but no indicators or subfields.
type ControlField struct {
	Tag   string `xml:"tag,attr"`
	Value string `xml:",chardata"`
}

// DataField is a variable field with two indicators and subfields.
type DataField struct {
	Ind1      string     `xml:"ind1,attr"`
	Ind2      string     `xml:"ind2,attr"`
	Tag       string     `xml:"tag,attr"`
	Subfields []Subfield `xml:"subfield"`
}

// Subfield is a coded part of a data field.
type Subfield struct {
	Code  string `xml:"code,attr"`
	Value string `xml:",chardata"`
}

// ParseXML returns every record in b, which can be a bare <record> or a <collection> of them.
func ParseXML(b []byte) (records []*Record, err error) {
	d := xml.NewDecoder(bytes.NewReader(b))
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "record" {
			continue
		}
		r := &Record{}
		err = d.DecodeElement(r, &se)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
}

// Marshal returns the MARCXML encoding of r, without an XML declaration.
func Marshal(r *Record) ([]byte, error) {
	return xml.Marshal(r)
}

// ControlField returns the value of the first control field with the tag.
func (r *Record) ControlField(tag string) (value string, ok bool) {
	for _, f := range r.ControlFields {
		if f.Tag == tag {
			return f.Value, true
		}
	}
	return "", false
}

// Fields returns the data fields with the tag. The fields can be modified in place.
func (r *Record) Fields(tag string) []*DataField {
	var fields []*DataField
	for i := range r.DataFields {
		if r.DataFields[i].Tag == tag {
			fields = append(fields, &r.DataFields[i])
		}
	}
	return fields
}

// AddDataField inserts f after the last data field whose tag sorts at or before f's tag.
func (r *Record) AddDataField(f DataField) {
	i := sort.Search(len(r.DataFields), func(i int) bool {
		return r.DataFields[i].Tag > f.Tag
	})
	r.DataFields = append(r.DataFields, DataField{})
	copy(r.DataFields[i+1:], r.DataFields[i:])
	r.DataFields[i] = f
}

// RemoveFields removes every data field with the tag and returns how many were removed.
func (r *Record) RemoveFields(tag string) (removed int) {
	kept := r.DataFields[:0]
	for _, f := range r.DataFields {
		if f.Tag == tag {
			removed++
			continue
		}
		kept = append(kept, f)
	}
	r.DataFields = kept
	return removed
}

// Subfield returns the value of the first subfield with the code.
func (f *DataField) Subfield(code string) (value string, ok bool) {
	for _, sub := range f.Subfields {
		if sub.Code == code {
			return sub.Value, true
		}
	}
	return "", false
}

// SubfieldValues returns the values of every subfield with the code, in order.
func (f *DataField) SubfieldValues(code string) (values []string) {
	for _, sub := range f.Subfields {
		if sub.Code == code {
			values = append(values, sub.Value)
		}
	}
	return values
}

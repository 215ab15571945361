// Copyright 2020 Carleton University Library.
// All rights reserved.
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE.txt file.

package api

import (
	"bytes"
	"fmt"

	"github.com/beevik/etree"

	"github.com/cu-library/almaclient/marc"
	"github.com/cu-library/almaclient/xmltree"
)

// RecordType is the name of the element Alma wraps a MARC record in.
type RecordType string

// The MARC record wrappers returned by the Alma API.
const (
	AuthorityType RecordType = "authority"
	BibType       RecordType = "bib"
	HoldingType   RecordType = "holding"
)

const recordTag = "record"

// Value is the text of a wrapper element, and its optional desc attribute.
type Value struct {
	Text string
	Desc string
}

func (v Value) String() string {
	return v.Text
}

// MARCRecord is a MARC record in its Alma wrapper.
type MARCRecord interface {
	// Type is the wrapper's root element.
	Type() RecordType
	// XML returns the wrapper and MARC record as sent to the API, without an XML declaration.
	XML() ([]byte, error)
}

// Record is the part of a wrapped MARC record shared by every record type.
type Record struct {
	// MARC is the embedded record. It is nil when the wrapper has no <record> element.
	MARC *marc.Record
	// Attributes holds every element of the wrapper other than the MARC record,
	// as converted by xmltree. It is not used when the record is serialized.
	Attributes map[string]any

	// wrapper is the XML the record was read from.
	wrapper []byte
	// marcXML is the MARC record as it was when read.
	marcXML []byte
}

// namedField binds a wrapper element to the field of a record type which holds its value.
type namedField struct {
	name  string
	value *Value
}

// decodeRecord reads the wrapper XML in the response's content into rec and fields.
func decodeRecord(resp *Response, rt RecordType, rec *Record, fields []namedField) error {
	content := resp.Content()
	doc := etree.NewDocument()
	err := doc.ReadFromBytes(content)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedWrapper, err)
	}
	root := doc.Root()
	if root == nil {
		return fmt.Errorf("%w: no root element", ErrMalformedWrapper)
	}
	if root.Tag != string(rt) {
		return fmt.Errorf("%w: expected <%v>, found <%v>", ErrMalformedWrapper, rt, root.FullTag())
	}
	records := root.SelectElements(recordTag)
	if len(records) > 1 {
		return fmt.Errorf("%w: %v record elements in <%v>", ErrMalformedRecord, len(records), rt)
	}
	if len(records) == 1 {
		sub := etree.NewDocument()
		sub.SetRoot(records[0].Copy())
		b, err := sub.WriteToBytes()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedRecord, err)
		}
		parsed, err := marc.ParseXML(b)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedRecord, err)
		}
		if len(parsed) != 1 {
			return fmt.Errorf("%w: %v records decoded", ErrMalformedRecord, len(parsed))
		}
		rec.MARC = parsed[0]
		rec.marcXML, err = marc.Marshal(parsed[0])
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedRecord, err)
		}
	}
	attributes := map[string]any{}
	if tree, ok := xmltree.FromElement(root).(map[string]any); ok {
		for k, v := range tree {
			if k == recordTag {
				continue
			}
			attributes[k] = v
		}
	}
	for _, f := range fields {
		v, ok := attributes[f.name]
		if !ok {
			continue
		}
		*f.value = Value{Text: xmltree.Text(v)}
		if m, ok := v.(map[string]any); ok {
			f.value.Desc = xmltree.Text(m[xmltree.AttrPrefix+"desc"])
		}
	}
	rec.Attributes = attributes
	rec.wrapper = content
	return nil
}

// encodeRecord serializes rec and fields as a wrapped record.
// When rec was read from a wrapper, that wrapper is edited: elements for changed fields are updated,
// missing elements are added for fields which have been set, and the MARC record is replaced if it changed.
// Otherwise a new wrapper is built with an element for every field, in order.
// Output is in etree's canonical form, so an unchanged record is byte-exact only when its
// input was too: empty elements become self-closing, attributes are double quoted,
// and &apos; and &quot; in text are written as the characters. Alma's own output is canonical.
func encodeRecord(rt RecordType, rec *Record, fields []namedField) ([]byte, error) {
	if rec.MARC == nil {
		return nil, fmt.Errorf("%w: <%v> has no MARC record", ErrSerialization, rt)
	}
	marcXML, err := marc.Marshal(rec.MARC)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	var root *etree.Element
	if rec.wrapper != nil {
		doc := etree.NewDocument()
		err := doc.ReadFromBytes(rec.wrapper)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
		}
		root = doc.Root()
	}
	if root == nil {
		root = etree.NewElement(string(rt))
		for _, f := range fields {
			setValue(root.CreateElement(f.name), *f.value)
		}
	} else {
		for _, f := range fields {
			el := root.SelectElement(f.name)
			if el == nil {
				if *f.value == (Value{}) {
					continue
				}
				el = etree.NewElement(f.name)
				insertBeforeRecord(root, el)
			}
			if elementValue(el) != *f.value {
				setValue(el, *f.value)
			}
		}
	}
	existing := root.SelectElement(recordTag)
	if existing == nil || !bytes.Equal(marcXML, rec.marcXML) {
		recDoc := etree.NewDocument()
		err := recDoc.ReadFromBytes(marcXML)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
		}
		replacement := recDoc.Root().Copy()
		if existing == nil {
			root.AddChild(replacement)
		} else {
			i := existing.Index()
			root.RemoveChildAt(i)
			root.InsertChildAt(i, replacement)
		}
	}
	// Alma rejects some documents which start with an XML declaration, so the output has none.
	out := etree.NewDocument()
	out.WriteSettings.CanonicalText = true
	out.SetRoot(root)
	b, err := out.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return b, nil
}

func elementValue(el *etree.Element) Value {
	return Value{Text: el.Text(), Desc: el.SelectAttrValue("desc", "")}
}

func setValue(el *etree.Element, v Value) {
	el.SetText(v.Text)
	if v.Desc == "" {
		el.RemoveAttr("desc")
		return
	}
	el.CreateAttr("desc", v.Desc)
}

func insertBeforeRecord(root *etree.Element, el *etree.Element) {
	record := root.SelectElement(recordTag)
	if record == nil {
		root.AddChild(el)
		return
	}
	root.InsertChildAt(record.Index(), el)
}

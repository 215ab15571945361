// Copyright 2020 Carleton University Library.
// All rights reserved.
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE.txt file.

// Package xmltree converts XML documents into generic trees of maps, slices
// and strings, so that XML and JSON responses from the Alma API can be read
// the same way.
//
// An element with neither attributes nor child elements becomes its text.
// Any other element becomes a map: attributes are stored under their name
// prefixed with AttrPrefix, child elements under their tag, and non-blank
// text under TextKey. Repeated child elements become a []any in document order.
package xmltree

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

const (
	// AttrPrefix prefixes the keys of attributes.
	AttrPrefix = "@"
	// TextKey is the key of the text of an element which also has attributes or children.
	TextKey = "#text"
)

// Parse converts an XML document into a map with a single key, the tag of the root element.
func Parse(b []byte) (map[string]any, error) {
	doc := etree.NewDocument()
	err := doc.ReadFromBytes(b)
	if err != nil {
		return nil, err
	}
	return FromDocument(doc), nil
}

// FromDocument converts a parsed document into a tree. A document without a root is an empty map.
func FromDocument(doc *etree.Document) map[string]any {
	root := doc.Root()
	if root == nil {
		return map[string]any{}
	}
	return map[string]any{root.FullTag(): FromElement(root)}
}

// FromElement converts an element and its descendants.
func FromElement(el *etree.Element) any {
	text := strings.TrimSpace(elementText(el))
	children := el.ChildElements()
	if len(children) == 0 && len(el.Attr) == 0 {
		return text
	}
	m := make(map[string]any, len(el.Attr)+len(children)+1)
	for _, a := range el.Attr {
		m[AttrPrefix+a.FullKey()] = a.Value
	}
	for _, child := range children {
		key := child.FullTag()
		value := FromElement(child)
		prev, seen := m[key]
		if !seen {
			m[key] = value
			continue
		}
		// FromElement never returns a slice, so a slice here is a list we built.
		if list, ok := prev.([]any); ok {
			m[key] = append(list, value)
		} else {
			m[key] = []any{prev, value}
		}
	}
	if text != "" {
		m[TextKey] = text
	}
	return m
}

// elementText concatenates the character data directly under el.
func elementText(el *etree.Element) string {
	var b strings.Builder
	for _, t := range el.Child {
		if cd, ok := t.(*etree.CharData); ok {
			b.WriteString(cd.Data)
		}
	}
	return b.String()
}

// Slice normalizes v into a sequence. The API returns a bare object instead
// of a one element list in several places.
func Slice(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	default:
		return []any{t}
	}
}

// Lookup follows path through nested maps.
func Lookup(v any, path ...string) (any, bool) {
	for _, key := range path {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return v, true
}

// Text returns the scalar content of v. Maps yield their TextKey entry;
// anything without a scalar form yields the empty string.
func Text(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case map[string]any:
		return Text(t[TextKey])
	default:
		return ""
	}
}

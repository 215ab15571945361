// Copyright 2020 Carleton University Library.
// All rights reserved.
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE.txt file.

package api

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
)

// ContentKind is the format of a response body, taken from its Content-Type header.
type ContentKind int

// The content kinds a Response distinguishes.
const (
	Unknown ContentKind = iota
	JSON
	XML
)

func (k ContentKind) String() string {
	switch k {
	case JSON:
		return "json"
	case XML:
		return "xml"
	default:
		return "unknown"
	}
}

// ContentKey is the Data key holding the raw body of responses which are not JSON.
const ContentKey = "content"

// The header looks like application/json;charset=UTF-8
var contentTypePattern = regexp.MustCompile(`application/([a-z][^;]*);\s*charset=(?i:utf-8)`)

// Response wraps a response from the Alma API.
// Data is decoded once, when the Response is built, and never fails:
// JSON bodies are decoded into Data, a body which can't be decoded leaves Data empty,
// and any other body is stored undecoded under ContentKey.
// Alma's JSON responses are objects, so a body holding anything other than exactly
// one JSON object, such as an array or an object followed by more data, also leaves Data empty.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Kind       ContentKind
	Data       map[string]any
}

// NewResponse builds a Response from the parts of a raw HTTP response.
func NewResponse(statusCode int, header http.Header, body []byte) *Response {
	if header == nil {
		header = http.Header{}
	}
	r := &Response{
		StatusCode: statusCode,
		Header:     header,
		Body:       body,
		Kind:       contentKind(header.Get("Content-Type")),
	}
	if r.Kind != JSON {
		r.Data = map[string]any{ContentKey: body}
		return r
	}
	r.Data = map[string]any{}
	d := json.NewDecoder(bytes.NewReader(body))
	d.UseNumber()
	var data map[string]any
	// Some responses have no body, which can't be decoded.
	if err := d.Decode(&data); err != nil || data == nil {
		return r
	}
	if _, err := d.Token(); !errors.Is(err, io.EOF) {
		return r
	}
	r.Data = data
	return r
}

func contentKind(contentType string) ContentKind {
	match := contentTypePattern.FindStringSubmatch(contentType)
	if match == nil {
		return Unknown
	}
	switch match[1] {
	case "json":
		return JSON
	case "xml":
		return XML
	default:
		return Unknown
	}
}

// APICallsRemaining is the number of API calls the institution has left today, or 0 if unknown.
func (r *Response) APICallsRemaining() int {
	remaining, err := strconv.Atoi(r.Header.Get(RemainingHeader))
	if err != nil {
		return 0
	}
	return remaining
}

// OK reports whether the status is in the 200-399 range.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 400
}

// RaiseForStatus returns an *Error if the response status is not OK.
func (r *Response) RaiseForStatus() error {
	if r.OK() {
		return nil
	}
	return newError(r, http.StatusText(r.StatusCode))
}

// Content returns the undecoded body stored under ContentKey.
func (r *Response) Content() []byte {
	b, _ := r.Data[ContentKey].([]byte)
	return b
}

// Decode unmarshals the body into v according to the response's content kind.
func (r *Response) Decode(v any) error {
	switch r.Kind {
	case JSON:
		err := json.Unmarshal(r.Body, v)
		if err != nil {
			return fmt.Errorf("unmarshalling JSON failed: %w\n%v", err, string(r.Body))
		}
	case XML:
		err := xml.Unmarshal(r.Body, v)
		if err != nil {
			return fmt.Errorf("unmarshalling XML failed: %w\n%v", err, string(r.Body))
		}
	default:
		return fmt.Errorf("cannot decode a response with content type %q", r.Header.Get("Content-Type"))
	}
	return nil
}

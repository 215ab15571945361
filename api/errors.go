// Copyright 2020 Carleton University Library.
// All rights reserved.
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE.txt file.

package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cu-library/almaclient/xmltree"
)

var (
	// ErrUnsupportedMethod is returned, before any request is made, for methods other than GET, POST, PUT and DELETE.
	ErrUnsupportedMethod = errors.New("unsupported method")
	// ErrUnsupportedFormat is returned, before any request is made, for formats other than json and xml.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrMalformedRecord is returned when a wrapper holds anything other than exactly one MARC record.
	ErrMalformedRecord = errors.New("malformed MARC record")
	// ErrMalformedWrapper is returned when the XML around a MARC record can't be read.
	ErrMalformedWrapper = errors.New("malformed record wrapper")
	// ErrSerialization is returned when a record can't be turned into XML for the API.
	ErrSerialization = errors.New("record serialization failed")
	// ErrUnknownContentType is returned for set content types outside SetContentType.
	ErrUnknownContentType = errors.New("unknown set content type")
	// ErrMemberCountMismatch is returned when the members retrieved don't match the set's declared size.
	ErrMemberCountMismatch = errors.New("set member count mismatch")
	// ErrJobNotFinished is returned when polling stops before the job instance finishes.
	ErrJobNotFinished = errors.New("job instance not finished")
	// ErrForeignURL is returned for full URLs which aren't on the client's Host.
	ErrForeignURL = errors.New("URL is not on the API host")
)

// Error is returned when the Alma API responds with a status outside the 200-399 range.
// For XML responses, Data holds the contents of the web_service_result element.
type Error struct {
	*Response
	// Message describes the call which failed.
	Message string
}

func newError(resp *Response, message string) *Error {
	if resp.Kind == XML {
		r := *resp
		r.Data = map[string]any{}
		tree, err := xmltree.Parse(resp.Body)
		if err == nil {
			if result, ok := tree["web_service_result"].(map[string]any); ok {
				r.Data = result
			}
		}
		resp = &r
	}
	return &Error{Response: resp, Message: message}
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%v [%v]", e.Message, e.StatusCode)
	if messages := e.ErrorMessages(); len(messages) > 0 {
		msg += ": " + strings.Join(messages, "; ")
	}
	return msg
}

// ErrorMessages returns the messages in the errorList of the response, in order.
// The API returns a single error as an object and several as a list; both give a slice.
func (e *Error) ErrorMessages() []string {
	messages := []string{}
	errs, ok := xmltree.Lookup(e.Data, "errorList", "error")
	if !ok {
		return messages
	}
	switch t := errs.(type) {
	case []any:
		for _, entry := range t {
			msg, _ := xmltree.Lookup(entry, "errorMessage")
			messages = append(messages, xmltree.Text(msg))
		}
	case map[string]any:
		messages = append(messages, xmltree.Text(t["errorMessage"]))
	}
	return messages
}

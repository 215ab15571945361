// Copyright 2020 Carleton University Library.
// All rights reserved.
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE.txt file.

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/cu-library/almaclient/xmltree"
)

// SetContentType is the kind of entity the members of a set refer to.
// Derived from /almaws/v1/conf/code-tables/SetContentType
type SetContentType string

// The set content types Alma defines.
const (
	ContentAuthorityMMS         SetContentType = "AUTHORITY_MMS"
	ContentBibMMS               SetContentType = "BIB_MMS"
	ContentBibMMSDiscovery      SetContentType = "BIB_MMS_DISCOVERY"
	ContentCourse               SetContentType = "COURSE"
	ContentFile                 SetContentType = "FILE"
	ContentHolding              SetContentType = "HOLDING"
	ContentIEC                  SetContentType = "IEC"
	ContentIED                  SetContentType = "IED"
	ContentIEE                  SetContentType = "IEE"
	ContentIE                   SetContentType = "IE"
	ContentIEPA                 SetContentType = "IEPA"
	ContentIEP                  SetContentType = "IEP"
	ContentIER                  SetContentType = "IER"
	ContentItem                 SetContentType = "ITEM"
	ContentPOLine               SetContentType = "PO_LINE"
	ContentPortfolio            SetContentType = "PORTFOLIO"
	ContentReadingListCitation  SetContentType = "READING_LIST_CITATION"
	ContentReadingList          SetContentType = "READING_LIST"
	ContentRemoteRepresentation SetContentType = "REMOTE_REPRESENTATION"
	ContentRepresentation       SetContentType = "REPRESENTATION"
	ContentResearchers          SetContentType = "RESEARCHERS"
	ContentUser                 SetContentType = "USER"
	ContentVendor               SetContentType = "VENDOR"
)

var setContentTypeDescriptions = map[SetContentType]string{
	ContentAuthorityMMS:         "Authorities",
	ContentBibMMS:               "All Titles",
	ContentBibMMSDiscovery:      "All Discovery Titles",
	ContentCourse:               "Courses",
	ContentFile:                 "Digital files",
	ContentHolding:              "Physical holdings",
	ContentIEC:                  "Collections",
	ContentIED:                  "Digital titles",
	ContentIEE:                  "Electronic titles",
	ContentIE:                   "Inventory titles",
	ContentIEPA:                 "Electronic collections",
	ContentIEP:                  "Physical titles",
	ContentIER:                  "Research assets",
	ContentItem:                 "Physical items",
	ContentPOLine:               "Order lines",
	ContentPortfolio:            "Electronic portfolios",
	ContentReadingListCitation:  "Citations",
	ContentReadingList:          "Reading lists",
	ContentRemoteRepresentation: "Digital remote representations",
	ContentRepresentation:       "Digital representations",
	ContentResearchers:          "Researchers",
	ContentUser:                 "User",
	ContentVendor:               "Vendor",
}

// Description is the name Alma displays for the content type.
func (t SetContentType) Description() string {
	return setContentTypeDescriptions[t]
}

// ParseSetContentType returns the content type with the description.
// The code itself is accepted when no description matches.
func ParseSetContentType(s string) (SetContentType, error) {
	for t, desc := range setContentTypeDescriptions {
		if desc == s {
			return t, nil
		}
	}
	if _, ok := setContentTypeDescriptions[SetContentType(s)]; ok {
		return SetContentType(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownContentType, s)
}

// SetType is how the members of a set are chosen.
type SetType string

// The set types Alma defines.
const (
	// SetItemized sets have members added one by one.
	SetItemized SetType = "ITEMIZED"
	// SetLogical sets have the members matching a query.
	SetLogical SetType = "LOGICAL"
)

// SetMember is a reference to an entity in a set.
// https://developers.exlibrisgroup.com/alma/apis/docs/xsd/rest_member.xsd/
type SetMember struct {
	ID          string
	Description string
	Link        string
}

func (m SetMember) String() string {
	return m.Description + " : " + m.Link
}

// Set stores data about sets.
// https://developers.exlibrisgroup.com/alma/apis/docs/xsd/rest_set.xsd/
type Set struct {
	ID              string
	Name            string
	Type            SetType
	ContentType     SetContentType
	NumberOfMembers int
	// MembersLink is the API to call for the set's members.
	MembersLink string

	members []SetMember
}

// NewSet reads a set from a JSON or XML response.
func NewSet(resp *Response) (*Set, error) {
	data := resp.Data
	if resp.Kind == XML {
		tree, err := xmltree.Parse(resp.Content())
		if err != nil {
			return nil, fmt.Errorf("parsing set XML failed: %w", err)
		}
		data, _ = tree["set"].(map[string]any)
	}
	contentType, err := ParseSetContentType(property(data["content"], "desc"))
	if err != nil {
		return nil, err
	}
	set := &Set{
		ID:          xmltree.Text(data["id"]),
		Name:        xmltree.Text(data["name"]),
		Type:        SetType(property(data["type"], "value")),
		ContentType: contentType,
		MembersLink: property(data["number_of_members"], "link"),
	}
	if n := property(data["number_of_members"], "value"); n != "" {
		set.NumberOfMembers, err = strconv.Atoi(n)
		if err != nil {
			return nil, fmt.Errorf("reading set size failed: %w", err)
		}
	}
	return set, nil
}

// AddMembers attaches the members to the set, replacing any already attached.
func (s *Set) AddMembers(members []SetMember) {
	s.members = members
}

// Members returns the members attached to the set, in the order they were retrieved.
func (s *Set) Members() []SetMember {
	return s.members
}

// property reads a property which JSON holds as a key and XML as an attribute.
// The "value" property of XML elements is their text.
func property(v any, name string) string {
	m, ok := v.(map[string]any)
	if !ok {
		if name == "value" {
			return xmltree.Text(v)
		}
		return ""
	}
	if p, ok := m[name]; ok {
		return xmltree.Text(p)
	}
	if p, ok := m[xmltree.AttrPrefix+name]; ok {
		return xmltree.Text(p)
	}
	if name == "value" {
		return xmltree.Text(m[xmltree.TextKey])
	}
	return ""
}

func newSetMember(v any) SetMember {
	m, _ := v.(map[string]any)
	return SetMember{
		ID:          xmltree.Text(m["id"]),
		Description: xmltree.Text(m["description"]),
		Link:        property(m, "link"),
	}
}

// Set returns the set with the ID. If allMembers is true, every member is retrieved and attached.
func (c *Client) Set(ctx context.Context, ID string, allMembers bool) (*Set, error) {
	resp, err := c.call(ctx, http.MethodGet, "/almaws/v1/conf/sets/"+ID, nil, nil, FormatJSON, "retrieving set failed")
	if err != nil {
		return nil, err
	}
	set, err := NewSet(resp)
	if err != nil {
		return nil, err
	}
	if set.ID == "" {
		set.ID = ID
	}
	if !allMembers {
		return set, nil
	}
	members, err := c.SetMembers(ctx, set)
	if err != nil {
		return nil, err
	}
	set.AddMembers(members)
	return set, nil
}

// SetMembers retrieves every member of the set, one page at a time.
// The next offset is the number of members retrieved so far.
// A page without members, or more members than the set declares, is an ErrMemberCountMismatch.
func (c *Client) SetMembers(ctx context.Context, set *Set) ([]SetMember, error) {
	link := set.MembersLink
	if link == "" {
		link = "/almaws/v1/conf/sets/" + set.ID + "/members"
	}
	members := make([]SetMember, 0, set.NumberOfMembers)
	for len(members) < set.NumberOfMembers {
		page, err := c.SetMembersPage(ctx, link, len(members), c.pageSize())
		if err != nil {
			return nil, fmt.Errorf("getting set members failed: %w", err)
		}
		c.Logger.Debug().
			Str("set", set.ID).
			Int("offset", len(members)).
			Int("count", len(page)).
			Int("total", set.NumberOfMembers).
			Msg("Retrieved set members")
		if len(page) == 0 {
			return nil, fmt.Errorf("%w: set %v declares %v members, no more returned after %v",
				ErrMemberCountMismatch, set.ID, set.NumberOfMembers, len(members))
		}
		members = append(members, page...)
	}
	if len(members) != set.NumberOfMembers {
		return nil, fmt.Errorf("%w: %v members found for set %v with size %v",
			ErrMemberCountMismatch, len(members), set.ID, set.NumberOfMembers)
	}
	return members, nil
}

// SetMembersPage returns the members at link from offset, at most limit of them.
func (c *Client) SetMembersPage(ctx context.Context, link string, offset, limit int) ([]SetMember, error) {
	params := url.Values{}
	params.Set("offset", strconv.Itoa(offset))
	params.Set("limit", strconv.Itoa(limit))
	resp, err := c.call(ctx, http.MethodGet, link, params, nil, FormatJSON, "retrieving set members failed")
	if err != nil {
		return nil, err
	}
	return setMembersFromResponse(resp)
}

func setMembersFromResponse(resp *Response) ([]SetMember, error) {
	data := resp.Data
	if resp.Kind == XML {
		tree, err := xmltree.Parse(resp.Content())
		if err != nil {
			return nil, fmt.Errorf("parsing set members XML failed: %w", err)
		}
		data, _ = tree["members"].(map[string]any)
	}
	// A page with one member has an object, not a list.
	entries := xmltree.Slice(data["member"])
	members := make([]SetMember, 0, len(entries))
	for _, entry := range entries {
		members = append(members, newSetMember(entry))
	}
	return members, nil
}

// SetFromNameOrID returns the set when provided the name or ID.
func (c *Client) SetFromNameOrID(ctx context.Context, name, ID string, allMembers bool) (*Set, error) {
	if name != "" {
		var err error
		ID, err = c.SetIDFromName(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("getting set ID from name failed: %w", err)
		}
	}
	set, err := c.Set(ctx, ID, allMembers)
	if err != nil {
		return nil, fmt.Errorf("getting set from ID failed: %w", err)
	}
	return set, nil
}

// SetIDFromName returns the ID for the set with the given set name.
func (c *Client) SetIDFromName(ctx context.Context, name string) (ID string, err error) {
	params := url.Values{}
	params.Set("q", "name~"+name)
	resp, err := c.call(ctx, http.MethodGet, "/almaws/v1/conf/sets", params, nil, FormatJSON, "searching sets failed")
	if err != nil {
		return ID, err
	}
	sets := struct {
		Sets []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"set"`
	}{}
	err = resp.Decode(&sets)
	if err != nil {
		return ID, err
	}
	for _, set := range sets.Sets {
		if strings.TrimSpace(set.Name) == strings.TrimSpace(name) {
			return set.ID, nil
		}
	}
	return ID, fmt.Errorf("no set with name '%v' found", name)
}

// Copyright 2020 Carleton University Library.
// All rights reserved.
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE.txt file.

package api

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setServer serves a set of size members, and records the offset and limit of every member page request.
type setServer struct {
	sync.Mutex
	size int
	// pageMembers, if set, overrides the number of members returned for a page.
	pageMembers func(offset, limit int) int
	offsets     []int
	limits      []int
}

func (s *setServer) handle(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/almaws/v1/conf/sets/123":
		writeJSON(w, http.StatusOK, map[string]any{
			"id":      "123",
			"name":    "Items to scan in",
			"type":    map[string]any{"value": "LOGICAL", "desc": "Logical"},
			"content": map[string]any{"value": "ITEM", "desc": "Physical items"},
			"number_of_members": map[string]any{
				"value": s.size,
				"link":  "https://" + r.Host + "/almaws/v1/conf/sets/123/members",
			},
		})
	case "/almaws/v1/conf/sets/123/members":
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		s.Lock()
		s.offsets = append(s.offsets, offset)
		s.limits = append(s.limits, limit)
		s.Unlock()
		n := limit
		if offset+n > s.size {
			n = s.size - offset
		}
		if s.pageMembers != nil {
			n = s.pageMembers(offset, limit)
		}
		members := []any{}
		for i := offset; i < offset+n; i++ {
			id := strconv.Itoa(i)
			members = append(members, map[string]any{
				"id":          id,
				"description": "Item " + id,
				"link":        "https://" + r.Host + "/almaws/v1/bibs/1/holdings/2/items/" + id,
			})
		}
		page := map[string]any{"total_record_count": s.size}
		switch len(members) {
		case 0:
		case 1:
			page["member"] = members[0]
		default:
			page["member"] = members
		}
		writeJSON(w, http.StatusOK, page)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func TestSetPagination(t *testing.T) {
	s := &setServer{size: 250}
	c := newTestClient(t, s.handle)
	set, err := c.Set(context.Background(), "123", true)
	require.NoError(t, err)
	assert.Equal(t, "Items to scan in", set.Name)
	assert.Equal(t, SetLogical, set.Type)
	assert.Equal(t, ContentItem, set.ContentType)
	assert.Equal(t, 250, set.NumberOfMembers)
	assert.Equal(t, []int{0, 100, 200}, s.offsets)
	assert.Equal(t, []int{100, 100, 100}, s.limits)
	members := set.Members()
	require.Len(t, members, 250)
	for i, member := range members {
		assert.Equal(t, strconv.Itoa(i), member.ID)
	}
	assert.Equal(t, "Item 249", members[249].Description)
}

func TestSetPaginationSingleMemberPage(t *testing.T) {
	s := &setServer{size: 101}
	c := newTestClient(t, s.handle)
	set, err := c.Set(context.Background(), "123", true)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 100}, s.offsets)
	require.Len(t, set.Members(), 101)
	assert.Equal(t, "100", set.Members()[100].ID)
}

func TestSetPaginationShortPages(t *testing.T) {
	s := &setServer{size: 100}
	s.pageMembers = func(offset, limit int) int {
		// The API returns fewer members than asked for.
		return min(30, s.size-offset)
	}
	c := newTestClient(t, s.handle, WithPageSize(50))
	set, err := c.Set(context.Background(), "123", true)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 30, 60, 90}, s.offsets)
	assert.Equal(t, []int{50, 50, 50, 50}, s.limits)
	assert.Len(t, set.Members(), 100)
}

func TestSetPaginationEmptyPage(t *testing.T) {
	s := &setServer{size: 250}
	s.pageMembers = func(offset, limit int) int {
		if offset >= 100 {
			return 0
		}
		return limit
	}
	c := newTestClient(t, s.handle)
	set, err := c.Set(context.Background(), "123", true)
	assert.ErrorIs(t, err, ErrMemberCountMismatch)
	assert.Nil(t, set)
	assert.Equal(t, []int{0, 100}, s.offsets)
}

func TestSetPaginationOvershoot(t *testing.T) {
	s := &setServer{size: 2}
	s.pageMembers = func(offset, limit int) int {
		return 3
	}
	c := newTestClient(t, s.handle)
	_, err := c.Set(context.Background(), "123", true)
	assert.ErrorIs(t, err, ErrMemberCountMismatch)
}

func TestSetWithoutMembers(t *testing.T) {
	s := &setServer{size: 250}
	c := newTestClient(t, s.handle)
	set, err := c.Set(context.Background(), "123", false)
	require.NoError(t, err)
	assert.Empty(t, s.offsets)
	assert.Empty(t, set.Members())
}

func TestNewSetXML(t *testing.T) {
	body := `<set link="https://api-na.hosted.exlibrisgroup.com/almaws/v1/conf/sets/456"><id>456</id><name>Bibs</name>` +
		`<type desc="Itemized">ITEMIZED</type><content desc="All Titles">BIB_MMS</content>` +
		`<number_of_members link="https://api-na.hosted.exlibrisgroup.com/almaws/v1/conf/sets/456/members">2</number_of_members></set>`
	set, err := NewSet(xmlResponse(body))
	require.NoError(t, err)
	assert.Equal(t, "456", set.ID)
	assert.Equal(t, "Bibs", set.Name)
	assert.Equal(t, SetItemized, set.Type)
	assert.Equal(t, ContentBibMMS, set.ContentType)
	assert.Equal(t, 2, set.NumberOfMembers)
	assert.Equal(t, "https://api-na.hosted.exlibrisgroup.com/almaws/v1/conf/sets/456/members", set.MembersLink)
}

func TestSetMembersXML(t *testing.T) {
	body := `<members total_record_count="1"><member link="https://api-na.hosted.exlibrisgroup.com/almaws/v1/bibs/991">` +
		`<id>991</id><description>A title</description></member></members>`
	members, err := setMembersFromResponse(xmlResponse(body))
	require.NoError(t, err)
	assert.Equal(t, []SetMember{{ID: "991", Description: "A title", Link: "https://api-na.hosted.exlibrisgroup.com/almaws/v1/bibs/991"}}, members)
}

func TestParseSetContentType(t *testing.T) {
	tests := map[string]SetContentType{
		"Physical items":       ContentItem,
		"All Titles":           ContentBibMMS,
		"All Discovery Titles": ContentBibMMSDiscovery,
		"Vendor":               ContentVendor,
		"PO_LINE":              ContentPOLine,
	}
	for s, expected := range tests {
		actual, err := ParseSetContentType(s)
		require.NoError(t, err, s)
		assert.Equal(t, expected, actual)
	}
	_, err := ParseSetContentType("Physical Items")
	assert.ErrorIs(t, err, ErrUnknownContentType)
	_, err = ParseSetContentType("")
	assert.ErrorIs(t, err, ErrUnknownContentType)
	assert.Equal(t, "Order lines", ContentPOLine.Description())
}

func TestNewSetUnknownContentType(t *testing.T) {
	resp := NewResponse(http.StatusOK, header("application/json;charset=UTF-8"),
		[]byte(`{"name":"New","content":{"value":"NEW_THING","desc":"New things"},"number_of_members":{"value":1}}`))
	_, err := NewSet(resp)
	assert.ErrorIs(t, err, ErrUnknownContentType)
}

func TestSetIDFromName(t *testing.T) {
	var mu sync.Mutex
	var queries []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/almaws/v1/conf/sets", r.URL.Path)
		mu.Lock()
		queries = append(queries, r.URL.Query().Get("q"))
		mu.Unlock()
		// Alma's name~ search matches substrings, so both searches get both sets.
		writeJSON(w, http.StatusOK, map[string]any{
			"set": []any{
				map[string]any{"id": "1", "name": "Items to scan in"},
				map[string]any{"id": "2", "name": " Items "},
			},
			"total_record_count": 2,
		})
	})
	ID, err := c.SetIDFromName(context.Background(), "Items")
	require.NoError(t, err)
	assert.Equal(t, "2", ID)
	// Only an exact name match counts.
	_, err = c.SetIDFromName(context.Background(), "Items to scan")
	assert.Error(t, err)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"name~Items", "name~Items to scan"}, queries)
}

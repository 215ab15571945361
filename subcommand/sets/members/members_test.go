// Copyright 2020 Carleton University Library.
// All rights reserved.
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE.txt file.

package members

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cu-library/almaclient/api"
)

func TestWrite(t *testing.T) {
	set := &api.Set{ID: "1", Name: "Titles", ContentType: api.ContentBibMMS, NumberOfMembers: 2}
	set.AddMembers([]api.SetMember{
		{ID: "991", Description: "Cats", Link: "https://api-na.hosted.exlibrisgroup.com/almaws/v1/bibs/991"},
		{ID: "992", Description: "Dogs, and other animals", Link: "https://api-na.hosted.exlibrisgroup.com/almaws/v1/bibs/992"},
	})
	var b bytes.Buffer
	require.NoError(t, Write(&b, set))
	assert.Equal(t, "ID,Description,Link\n"+
		"991,Cats,https://api-na.hosted.exlibrisgroup.com/almaws/v1/bibs/991\n"+
		"992,\"Dogs, and other animals\",https://api-na.hosted.exlibrisgroup.com/almaws/v1/bibs/992\n", b.String())
}

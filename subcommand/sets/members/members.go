// Copyright 2020 Carleton University Library.
// All rights reserved.
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE.txt file.

// Package members provides a subcommand which lists the members of a set.
package members

import (
	"context"
	"flag"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/cu-library/almaclient/api"
	"github.com/cu-library/almaclient/subcommand"
)

// Config returns a new subcommand config.
func Config() *subcommand.Config {
	fs := flag.NewFlagSet("sets-members", flag.ExitOnError)
	ID := fs.String("setid", "", "The ID of the set we are processing. This flag or setname are required.")
	name := fs.String("setname", "", "The name of the set we are processing. This flag or setid are required.")
	fs.Usage = func() {
		subcommand.Usage("Print the ID, description, and link of every member of a set as CSV.")
		fs.PrintDefaults()
	}
	return &subcommand.Config{
		ReadAccess: []string{"/almaws/v1/conf"},
		FlagSet:    fs,
		ValidateFlags: func() error {
			return subcommand.ValidateSetNameAndSetIDFlags(*name, *ID)
		},
		Run: func(ctx context.Context, c *api.Client, logger zerolog.Logger) error {
			set, err := c.SetFromNameOrID(ctx, *name, *ID, true)
			if err != nil {
				return err
			}
			logger.Info().
				Str("set", set.Name).
				Str("id", set.ID).
				Str("content", set.ContentType.Description()).
				Int("members", set.NumberOfMembers).
				Msg("Retrieved set.")
			return Write(os.Stdout, set)
		},
	}
}

// Write writes the set's members to w as CSV.
func Write(w io.Writer, set *api.Set) error {
	report, err := subcommand.NewCSVWriter(w, "ID", "Description", "Link")
	if err != nil {
		return err
	}
	for _, member := range set.Members() {
		err := report.Write(member.ID, member.Description, member.Link)
		if err != nil {
			return err
		}
	}
	return report.Flush()
}

// Copyright 2020 Carleton University Library.
// All rights reserved.
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE.txt file.

// Package suppress provides a subcommand which suppresses bib records from publishing.
package suppress

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/cu-library/almaclient/api"
	"github.com/cu-library/almaclient/subcommand"
)

// Config returns a new subcommand config.
func Config() *subcommand.Config {
	fs := flag.NewFlagSet("bibs-suppress", flag.ExitOnError)
	ID := fs.String("setid", "", "The ID of the set we are processing. This flag or setname are required.")
	name := fs.String("setname", "", "The name of the set we are processing. This flag or setid are required.")
	unsuppress := fs.Bool("unsuppress", false, "Remove the suppression instead.")
	dryrun := fs.Bool("dryrun", false, "Do not perform any updates. Report on what changes would have been made.")
	fs.Usage = func() {
		subcommand.Usage("Suppress the bib records in a set from publishing.\n" +
			"Records which already have the requested suppression are not updated.")
		fs.PrintDefaults()
	}
	return &subcommand.Config{
		ReadAccess:  []string{"/almaws/v1/conf"},
		WriteAccess: []string{"/almaws/v1/bibs"},
		FlagSet:     fs,
		ValidateFlags: func() error {
			return subcommand.ValidateSetNameAndSetIDFlags(*name, *ID)
		},
		Run: func(ctx context.Context, c *api.Client, logger zerolog.Logger) error {
			subcommand.LogDryRun(logger, *dryrun)
			set, err := c.SetFromNameOrID(ctx, *name, *ID, true)
			if err != nil {
				return err
			}
			err = subcommand.CheckSet(set, api.ContentBibMMS, api.SetItemized)
			if err != nil {
				return err
			}
			return Suppress(ctx, c, logger, os.Stdout, set.Members(), !*unsuppress, *dryrun)
		},
	}
}

// Suppress sets suppress_from_publishing on each bib record and writes a CSV report to w.
// Records which fail to update are logged, and counted in the returned error.
func Suppress(ctx context.Context, c *api.Client, logger zerolog.Logger, w io.Writer, bibs []api.SetMember, suppress, dryrun bool) error {
	report, err := subcommand.NewCSVWriter(w, "MMS ID", "Description", "Suppressed before", "Changed in Alma")
	if err != nil {
		return err
	}
	value := strconv.FormatBool(suppress)
	bar := api.DefaultProgressBar(len(bibs))
	bar.Describe("Suppressing bib records")
	updates, failures := 0, 0
	for _, member := range bibs {
		// Ignore the possible error returned by the progress bar.
		_ = bar.Add(1)
		bib, err := c.BibRecord(ctx, member.ID, nil)
		if err != nil {
			failures++
			logger.Error().Err(err).Str("bib", member.ID).Msg("Retrieving bib record failed")
			continue
		}
		before := bib.SuppressFromPublishing.Text
		updated := false
		if before != value && !dryrun {
			bib.SuppressFromPublishing.Text = value
			_, err = c.UpdateBibRecord(ctx, member.ID, bib, nil)
			if err != nil {
				failures++
				logger.Error().Err(err).Str("bib", member.ID).Msg("Updating bib record failed")
			} else {
				updates++
				updated = true
			}
		}
		err = report.Write(member.ID, member.Description, before, subcommand.YesNo(updated))
		if err != nil {
			return err
		}
	}
	err = report.Flush()
	if err != nil {
		return err
	}
	logger.Info().Int("updates", updates).Msg("Successful updates to bib records.")
	if failures != 0 {
		return fmt.Errorf("%v error(s) occured when updating bib records", failures)
	}
	return nil
}

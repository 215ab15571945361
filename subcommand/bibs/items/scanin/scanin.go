// Copyright 2020 Carleton University Library.
// All rights reserved.
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE.txt file.

// Package scanin provides a subcommand which scans in items in a set.
package scanin

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/cu-library/almaclient/api"
	"github.com/cu-library/almaclient/subcommand"
)

// Config returns a new subcommand config.
func Config() *subcommand.Config {
	fs := flag.NewFlagSet("items-scan-in", flag.ExitOnError)
	ID := fs.String("setid", "", "The ID of the set we are processing. This flag or setname are required.")
	name := fs.String("setname", "", "The name of the set we are processing. This flag or setid are required.")
	circdesk := fs.String("circdesk", api.DefaultCircDesk, "The circ desk code. The possible values are not available through the API, "+
		"see https://developers.exlibrisgroup.com/alma/apis/docs/xsd/rest_item_loan.xsd/?tags=GET.")
	library := fs.String("library", "", "The library code. Use the conf-dump subcommand to see the possible values.")
	dryrun := fs.Bool("dryrun", false, "Do not perform any updates. Report on what changes would have been made.")
	fs.Usage = func() {
		subcommand.Usage("Scan the members of a set of items in.")
		fs.PrintDefaults()
	}
	return &subcommand.Config{
		ReadAccess:  []string{"/almaws/v1/conf"},
		WriteAccess: []string{"/almaws/v1/bibs"},
		FlagSet:     fs,
		ValidateFlags: func() error {
			err := subcommand.ValidateSetNameAndSetIDFlags(*name, *ID)
			if err != nil {
				return err
			}
			if *circdesk == "" {
				return fmt.Errorf("a circ desk code is required")
			}
			if *library == "" {
				return fmt.Errorf("a library code is required")
			}
			return nil
		},
		Run: func(ctx context.Context, c *api.Client, logger zerolog.Logger) error {
			subcommand.LogDryRun(logger, *dryrun)
			set, err := c.SetFromNameOrID(ctx, *name, *ID, true)
			if err != nil {
				return err
			}
			err = subcommand.CheckSet(set, api.ContentItem, "")
			if err != nil {
				return err
			}
			logger.Info().Str("set", set.Name).Str("id", set.ID).Int("members", set.NumberOfMembers).Msg("Scanning in members of set.")
			return ScanIn(ctx, c, logger, os.Stdout, set.Members(), *circdesk, *library, *dryrun)
		},
	}
}

// ScanIn scans in each item and writes a CSV report to w.
// Items which fail to scan in are logged, and counted in the returned error.
func ScanIn(ctx context.Context, c *api.Client, logger zerolog.Logger, w io.Writer, items []api.SetMember, circdesk, library string, dryrun bool) error {
	report, err := subcommand.NewCSVWriter(w, "MMS ID", "Title", "Author", "Call Number", "Barcode", "Scanned in in Alma")
	if err != nil {
		return err
	}
	bar := api.DefaultProgressBar(len(items))
	bar.Describe("Scanning in items")
	scanned, failures := 0, 0
	for _, member := range items {
		// Ignore the possible error returned by the progress bar.
		_ = bar.Add(1)
		if dryrun {
			err = report.Write("", member.Description, "", "", "", subcommand.YesNo(false))
			if err != nil {
				return err
			}
			continue
		}
		item, err := c.ScanInItem(ctx, member.Link, circdesk, library)
		if err != nil {
			failures++
			logger.Error().Err(err).Str("item", member.Link).Msg("Scanning in item failed")
			continue
		}
		scanned++
		err = report.Write(item.BibData.MMSID, item.BibData.Title, item.BibData.Author,
			item.HoldingData.CallNumber, item.ItemData.Barcode, subcommand.YesNo(true))
		if err != nil {
			return err
		}
	}
	err = report.Flush()
	if err != nil {
		return err
	}
	logger.Info().Int("scanned", scanned).Msg("Successful scan in operations.")
	if failures != 0 {
		return fmt.Errorf("%v error(s) occured when scanning in items", failures)
	}
	return nil
}

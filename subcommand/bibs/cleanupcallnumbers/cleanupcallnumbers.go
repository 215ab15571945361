// Copyright 2020 Carleton University Library.
// All rights reserved.
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE.txt file.

// Package cleanupcallnumbers provides a subcommand which cleans up call numbers in holdings records.
package cleanupcallnumbers

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cu-library/almaclient/api"
	"github.com/cu-library/almaclient/subcommand"
)

// Config returns a new subcommand config.
func Config() *subcommand.Config {
	fs := flag.NewFlagSet("bibs-clean-up-call-numbers", flag.ExitOnError)
	ID := fs.String("setid", "", "The ID of the set we are processing. This flag or setname are required.")
	name := fs.String("setname", "", "The name of the set we are processing. This flag or setid are required.")
	dryrun := fs.Bool("dryrun", false, "Do not perform any updates. Report on what changes would have been made.")
	fs.Usage = func() {
		subcommand.Usage("Clean up the call numbers in the holdings records for a set of bib records.\n" +
			"\n" +
			"The following rules are run on the call numbers:\n" +
			"Add a space between a number then a letter.\n" +
			"Add a space between a number and a period when the period is followed by a letter.\n" +
			"Remove the extra periods from any substring matching space period period...\n" +
			"Remove any spaces between a period and a number.\n" +
			"Remove any leading or trailing whitespace.")
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
			return CleanUp(ctx, c, logger, os.Stdout, set.Members(), *dryrun)
		},
	}
}

// CleanUp cleans the call numbers of every holdings record of the bibs, and writes a CSV report to w.
// Errors on individual records are logged, and counted in the returned error.
func CleanUp(ctx context.Context, c *api.Client, logger zerolog.Logger, w io.Writer, bibs []api.SetMember, dryrun bool) error {
	report, err := subcommand.NewCSVWriter(w, "Link", "Original call number", "Updated call number", "Changed in Alma")
	if err != nil {
		return err
	}
	bar := api.DefaultProgressBar(len(bibs))
	bar.Describe("Cleaning call numbers")
	updates, failures := 0, 0
	for _, bib := range bibs {
		// Ignore the possible error returned by the progress bar.
		_ = bar.Add(1)
		bibID := bib.ID
		if bibID == "" {
			bibID = path.Base(bib.Link)
		}
		holdings, err := c.BibHoldings(ctx, bibID)
		if err != nil {
			failures++
			logger.Error().Err(err).Str("bib", bibID).Msg("Retrieving holdings failed")
			continue
		}
		for _, member := range holdings {
			holding, err := c.HoldingRecordFromLink(ctx, member.Link)
			if err != nil {
				failures++
				logger.Error().Err(err).Str("holding", member.Link).Msg("Retrieving holding record failed")
				continue
			}
			original := holding.CallNumber()
			if !CleanUpCallNumbers(holding) {
				continue
			}
			updated := false
			if !dryrun {
				_, err = c.UpdateHoldingRecord(ctx, bibID, holding, nil)
				if err != nil {
					failures++
					logger.Error().Err(err).Str("holding", member.Link).Msg("Updating holding record failed")
				} else {
					updates++
					updated = true
				}
			}
			err = report.Write(member.Link, original, holding.CallNumber(), subcommand.YesNo(updated))
			if err != nil {
				return err
			}
		}
	}
	err = report.Flush()
	if err != nil {
		return err
	}
	logger.Info().Int("updates", updates).Msg("Successful updates to call numbers.")
	if failures != 0 {
		return fmt.Errorf("%v error(s) occured when cleaning up call numbers", failures)
	}
	return nil
}

// CleanUpCallNumbers cleans the 852 $h and $i subfields of the holding record in place.
// It returns true if any subfield changed.
func CleanUpCallNumbers(holding *api.HoldingRecord) (updated bool) {
	if holding.MARC == nil {
		return false
	}
	for _, field := range holding.MARC.Fields("852") {
		for si, sub := range field.Subfields {
			if sub.Code == "h" || sub.Code == "i" {
				cleaned := CleanupCallNumberSubfield(sub.Value)
				if cleaned != sub.Value {
					field.Subfields[si].Value = cleaned
					updated = true
				}
			}
		}
	}
	return updated
}

var (
	numberLetter       = regexp.MustCompile(`([0-9])([a-zA-Z])`)
	numberPeriodLetter = regexp.MustCompile(`([0-9])\.([a-zA-Z])`)
	spacePeriodPeriods = regexp.MustCompile(` \.\.+`)
	periodSpacesNumber = regexp.MustCompile(`\. +([0-9])`)
)

// CleanupCallNumberSubfield returns a call number which is cleaned up.
func CleanupCallNumberSubfield(callNum string) string {
	// Add a space between a number then a letter.
	callNum = numberLetter.ReplaceAllString(callNum, "$1 $2")
	// Add a space between a number and a period when the period is followed by a letter.
	callNum = numberPeriodLetter.ReplaceAllString(callNum, "$1 .$2")
	// Remove the extra periods from any substring matching space period period...
	callNum = spacePeriodPeriods.ReplaceAllString(callNum, " .")
	// Remove any spaces between a period and a number.
	callNum = periodSpacesNumber.ReplaceAllString(callNum, ".$1")
	// Remove any leading or trailing whitespace.
	callNum = strings.TrimSpace(callNum)
	return callNum
}

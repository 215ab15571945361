// Copyright 2020 Carleton University Library.
// All rights reserved.
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE.txt file.

// Package dump provides output from the API about Alma configuration.
package dump

import (
	"context"
	"encoding/json"
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
	fs := flag.NewFlagSet("conf-dump", flag.ExitOnError)
	general := fs.Bool("general", false, "Also print the general configuration of the institution as JSON.")
	fs.Usage = func() {
		subcommand.Usage("Print the output of the library and departments endpoints, and the code tables.\n" +
			"This command is meant to help run other subcommands which sometimes need a particular code\n" +
			"from a code table or the code for a library or department.")
		fs.PrintDefaults()
	}
	return &subcommand.Config{
		ReadAccess: []string{"/almaws/v1/conf"},
		FlagSet:    fs,
		Run: func(ctx context.Context, c *api.Client, logger zerolog.Logger) error {
			return Dump(ctx, c, logger, os.Stdout, *general)
		},
	}
}

// Dump writes the configuration to w. A code table which can't be retrieved is logged and skipped.
func Dump(ctx context.Context, c *api.Client, logger zerolog.Logger, w io.Writer, general bool) error {
	if general {
		resp, err := c.GeneralConfiguration(ctx)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(resp.Data, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "General Configuration:")
		fmt.Fprintln(w, string(out))
		fmt.Fprintln(w)
	}
	libraries, err := c.LibraryList(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "Libraries:")
	for _, library := range libraries {
		fmt.Fprintf(w, "%v (%v)\n", library.Code, library.Name)
		fmt.Fprintf(w, "Description: %v\n", library.Description)
		fmt.Fprintf(w, "Resource Sharing: %v\n", library.ResourceSharing)
		fmt.Fprintf(w, "Campus: %v (%v)\n", library.Campus.Value, library.Campus.Desc)
		fmt.Fprintf(w, "Proxy: %v\n", library.Proxy)
		fmt.Fprintf(w, "Default Location: %v (%v)\n", library.DefaultLocation.Value, library.DefaultLocation.Desc)
		fmt.Fprintln(w)
	}
	departments, err := c.DepartmentList(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "Departments:")
	for _, department := range departments {
		fmt.Fprintf(w, "%v (%v)\n", department.Code, department.Name)
		fmt.Fprintf(w, "Type: %v (%v)\n", department.Type.Value, department.Type.Desc)
		fmt.Fprintf(w, "Printer: %v (%v)\n", department.Printer.Value, department.Printer.Desc)
		fmt.Fprintf(w, "Owner: %v (%v)\n", department.Owner.Value, department.Owner.Desc)
		fmt.Fprintln(w, "Served Libraries:")
		for _, library := range department.ServedLibraries.Library {
			fmt.Fprintf(w, "  %v (%v)\n", library.Value, library.Desc)
		}
		fmt.Fprintln(w, "Operators:")
		for _, operator := range department.Operators.Operator {
			fmt.Fprintf(w, "  %v (%v)\n", operator.PrimaryID, operator.FullName)
		}
		fmt.Fprintln(w)
	}
	summaries, err := c.CodeTableList(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "Code Tables:")
	failed := 0
	for _, summary := range summaries {
		table, err := c.DecodedCodeTable(ctx, summary.Name)
		if err != nil {
			failed++
			logger.Error().Err(err).Str("table", summary.Name).Msg("Retrieving code table failed")
			continue
		}
		fmt.Fprintf(w, "%v (%v)\n", table.Name, table.Description)
		fmt.Fprintf(w, "Subsystem: %v (%v)\n", table.SubSystem.Value, table.SubSystem.Desc)
		fmt.Fprintf(w, "Patron Facing: %v\n", table.PatronFacing)
		fmt.Fprintf(w, "Language: %v (%v)\n", table.Language.Value, table.Language.Desc)
		fmt.Fprintln(w, "Scope:")
		fmt.Fprintf(w, "  Institution : %v (%v)\n", table.Scope.InstitutionID.Value, table.Scope.InstitutionID.Desc)
		fmt.Fprintf(w, "  Library : %v (%v)\n", table.Scope.LibraryID.Value, table.Scope.LibraryID.Desc)
		fmt.Fprintln(w, "Rows:")
		for _, row := range table.Rows {
			fmt.Fprintf(w, "%v (%v) Default: %v Enabled: %v\n", row.Code, row.Description, row.Default, row.Enabled)
		}
		fmt.Fprintln(w)
	}
	if failed != 0 {
		return fmt.Errorf("%v of %v code tables could not be retrieved", failed, len(summaries))
	}
	return nil
}

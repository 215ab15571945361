// Copyright 2020 Carleton University Library.
// All rights reserved.
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE.txt file.

// Package report provides a subcommand which runs an Analytics report.
package report

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/cu-library/almaclient/analytics"
	"github.com/cu-library/almaclient/api"
	"github.com/cu-library/almaclient/subcommand"
)

// Config returns a new subcommand config.
func Config() *subcommand.Config {
	fs := flag.NewFlagSet("analytics-report", flag.ExitOnError)
	path := fs.String("path", "", "The full path of the report, like /shared/Carleton University/Reports/Titles. Required.")
	table := fs.String("table", "", "The subject area table of the filtered field, like \"Bibliographic Details\".")
	field := fs.String("field", "", "The filtered field, like \"MMS Id\". The report needs an \"is prompted\" filter on it.")
	equal := fs.String("equal", "", "Filter on the field being equal to this value.")
	like := fs.String("like", "", "Filter on the field being like this value, which should contain % wildcards.")
	rows := fs.Int("rows", analytics.DefaultRowsPerFetch, "The number of rows to retrieve with each call.")
	fs.Usage = func() {
		subcommand.Usage("Run an Alma Analytics report and print the rows as CSV.")
		fs.PrintDefaults()
	}
	return &subcommand.Config{
		ReadAccess: []string{"/almaws/v1/analytics"},
		FlagSet:    fs,
		ValidateFlags: func() error {
			if *path == "" {
				return fmt.Errorf("a report path is required")
			}
			if *equal != "" && *like != "" {
				return fmt.Errorf("an equal OR a like filter can be provided, not both")
			}
			if (*equal != "" || *like != "") && (*table == "" || *field == "") {
				return fmt.Errorf("a table and field are required to filter the report")
			}
			if *rows < analytics.MinRowsPerFetch || *rows > analytics.MaxRowsPerFetch {
				return analytics.ErrRowsPerFetch
			}
			return nil
		},
		Run: func(ctx context.Context, c *api.Client, logger zerolog.Logger) error {
			report := analytics.NewReport(*path)
			err := report.SetRowsPerFetch(*rows)
			if err != nil {
				return err
			}
			switch {
			case *equal != "":
				report.SetFilterEqual(*table, *field, *equal)
			case *like != "":
				report.SetFilterLike(*table, *field, *like)
			}
			return Run(ctx, analytics.NewRunner(c, logger), os.Stdout, report)
		},
	}
}

// Run runs the report and writes the rows to w as CSV, with a header of column names.
func Run(ctx context.Context, runner *analytics.Runner, w io.Writer, report *analytics.Report) error {
	result, err := runner.Run(ctx, report)
	if err != nil {
		return err
	}
	out, err := subcommand.NewCSVWriter(w, result.Columns...)
	if err != nil {
		return err
	}
	for _, row := range result.Rows {
		line := make([]string, 0, len(result.Columns))
		for _, column := range result.Columns {
			line = append(line, row[column])
		}
		err := out.Write(line...)
		if err != nil {
			return err
		}
	}
	runner.Logger.Info().Int("rows", len(result.Rows)).Msg("Report complete.")
	return out.Flush()
}

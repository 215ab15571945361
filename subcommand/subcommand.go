// Copyright 2020 Carleton University Library.
// All rights reserved.
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE.txt file.

// Package subcommand defines commands in the Alma client toolkit.
package subcommand

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cu-library/almaclient/api"
)

// Config stores information about subcommands.
type Config struct {
	ReadAccess    []string                                                 // The API endpoints which will require read-only access.
	WriteAccess   []string                                                 // The API endpoints which will require write access.
	FlagSet       *flag.FlagSet                                            // The Flag set for this subcommand.
	ValidateFlags func() error                                             // A function which validates that the flagset is valid after it is parsed.
	Run           func(context.Context, *api.Client, zerolog.Logger) error // Call this function for this subcommand.
}

// Registry maps the string from the command line to the properties of a subcommand.
// The key is always the same as the FlagSet's name.
type Registry map[string]*Config

// Register the config with the registry.
func (r Registry) Register(c *Config) {
	r[c.FlagSet.Name()] = c
}

// Usage prints the description of a subcommand, indented under its name.
func Usage(description string) {
	for _, line := range strings.Split(description, "\n") {
		fmt.Fprintf(flag.CommandLine.Output(), "  %v\n", line)
	}
}

// ValidateSetNameAndSetIDFlags ensures set name XOR set ID.
func ValidateSetNameAndSetIDFlags(name, ID string) error {
	if name == "" && ID == "" {
		return fmt.Errorf("a set name or a set ID are required")
	}
	if name != "" && ID != "" {
		return fmt.Errorf("a set name OR a set ID can be provided, not both")
	}
	return nil
}

// LogDryRun logs whether changes will be made in Alma.
func LogDryRun(logger zerolog.Logger, dryrun bool) {
	if dryrun {
		logger.Info().Msg("Running in dry run mode, no changes will be made in Alma.")
	} else {
		logger.Warn().Msg("Not running in dry run mode, changes will be made in Alma!")
	}
}

// CheckSet returns an error if the set's members aren't of the expected content type,
// or if setType is not empty and the set is of another type.
func CheckSet(set *api.Set, content api.SetContentType, setType api.SetType) error {
	if set.ContentType != content {
		return fmt.Errorf("the set '%v' (ID %v) must be a set of %v, not %v",
			set.Name, set.ID, content.Description(), set.ContentType.Description())
	}
	if setType != "" && set.Type != setType {
		return fmt.Errorf("the set '%v' (ID %v) must be an %v set, not %v",
			set.Name, set.ID, strings.ToLower(string(setType)), strings.ToLower(string(set.Type)))
	}
	return nil
}

// CSVWriter writes lines of a report as CSV.
type CSVWriter struct {
	w *csv.Writer
}

// NewCSVWriter writes the header line to w, and returns a writer for the rest of the report.
func NewCSVWriter(w io.Writer, header ...string) (*CSVWriter, error) {
	c := &CSVWriter{w: csv.NewWriter(w)}
	err := c.w.Write(header)
	if err != nil {
		return nil, fmt.Errorf("error writing csv header: %w", err)
	}
	return c, nil
}

// Write writes a line.
func (c *CSVWriter) Write(line ...string) error {
	err := c.w.Write(line)
	if err != nil {
		return fmt.Errorf("error writing line to csv: %w", err)
	}
	return nil
}

// Flush writes any buffered lines.
func (c *CSVWriter) Flush() error {
	c.w.Flush()
	err := c.w.Error()
	if err != nil {
		return fmt.Errorf("error after flushing csv: %w", err)
	}
	return nil
}

// YesNo formats a bool for a report.
func YesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

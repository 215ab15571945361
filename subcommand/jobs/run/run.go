// Copyright 2020 Carleton University Library.
// All rights reserved.
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE.txt file.

// Package run provides a subcommand which runs an Alma job.
package run

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/cu-library/almaclient/api"
	"github.com/cu-library/almaclient/subcommand"
)

// Config returns a new subcommand config.
func Config() *subcommand.Config {
	fs := flag.NewFlagSet("jobs-run", flag.ExitOnError)
	jobID := fs.String("jobid", "", "The ID of the job to run. Required.")
	wait := fs.Bool("wait", false, "Wait for the job instance to finish.")
	timeout := fs.Duration("timeout", time.Hour, "How long to wait for the job instance to finish.")
	fs.Usage = func() {
		subcommand.Usage("Run a scheduled job, and optionally wait for it to finish.\n" +
			"Job IDs are listed by the /almaws/v1/conf/jobs endpoint.")
		fs.PrintDefaults()
	}
	return &subcommand.Config{
		WriteAccess: []string{"/almaws/v1/conf"},
		FlagSet:     fs,
		ValidateFlags: func() error {
			if *jobID == "" {
				return fmt.Errorf("a job ID is required")
			}
			return nil
		},
		Run: func(ctx context.Context, c *api.Client, logger zerolog.Logger) error {
			status, err := Run(ctx, c, logger, *jobID, *wait, *timeout)
			if err != nil {
				return err
			}
			if status != "" {
				fmt.Println(status)
			}
			return nil
		},
	}
}

// Run starts the job. If wait is true, it waits up to timeout for the instance to finish and returns its status.
func Run(ctx context.Context, c *api.Client, logger zerolog.Logger, jobID string, wait bool, timeout time.Duration) (status string, err error) {
	params := url.Values{}
	params.Set("op", "run")
	resp, err := c.RunJob(ctx, jobID, nil, params)
	if err != nil {
		return "", err
	}
	instanceID, err := api.JobInstanceID(resp)
	if err != nil {
		return "", err
	}
	logger.Info().Str("job", jobID).Str("instance", instanceID).Msg("Job started.")
	if !wait {
		return "", nil
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	resp, err = c.WaitForCompletion(ctx, jobID, instanceID)
	if err != nil {
		return "", err
	}
	status = api.JobStatus(resp)
	logger.Info().Str("job", jobID).Str("instance", instanceID).Str("status", status).Msg("Job finished.")
	return status, nil
}

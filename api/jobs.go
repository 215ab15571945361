// Copyright 2020 Carleton University Library.
// All rights reserved.
// Use of this source code is governed by the MIT
// license that can be found in the LICENSE.txt file.

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/cu-library/almaclient/xmltree"
)

// The job instance statuses which mean the instance hasn't finished.
// https://developers.exlibrisgroup.com/alma/apis/docs/xsd/rest_job_instance.xsd/
var jobInProgress = map[string]bool{
	"QUEUED":       true,
	"PENDING":      true,
	"INITIALIZING": true,
	"RUNNING":      true,
	"FINALIZING":   true,
}

// Jobs returns the jobs which can be run.
func (c *Client) Jobs(ctx context.Context, params url.Values) (*Response, error) {
	return c.call(ctx, http.MethodGet, "/almaws/v1/conf/jobs", params, nil, FormatJSON, "retrieving jobs failed")
}

// RunJob queues the job to run. It does not wait for the job to finish.
// Scheduled jobs are run with empty data, which is sent when data is nil.
func (c *Client) RunJob(ctx context.Context, jobID string, data any, params url.Values) (*Response, error) {
	if data == nil {
		data = map[string]any{}
	}
	return c.call(ctx, http.MethodPost, "/almaws/v1/conf/jobs/"+jobID, params, data, FormatJSON, "running job failed")
}

// JobInstance returns an instance of a job.
func (c *Client) JobInstance(ctx context.Context, jobID, instanceID string) (*Response, error) {
	return c.call(ctx, http.MethodGet, "/almaws/v1/conf/jobs/"+jobID+"/instances/"+instanceID, nil, nil, FormatJSON, "retrieving job instance failed")
}

// JobStatus returns the status.value of a job instance response.
func JobStatus(resp *Response) string {
	status, _ := xmltree.Lookup(resp.Data, "status", "value")
	return xmltree.Text(status)
}

// JobInstanceID returns the ID of the instance started by RunJob,
// the last part of the additional_info link.
func JobInstanceID(resp *Response) (string, error) {
	link, _ := xmltree.Lookup(resp.Data, "additional_info", "link")
	u, err := url.Parse(xmltree.Text(link))
	if err != nil || u.Path == "" {
		return "", fmt.Errorf("no job instance link in response")
	}
	return path.Base(u.Path), nil
}

// WaitForCompletion fetches the job instance until its status is no longer one of
// QUEUED, PENDING, INITIALIZING, RUNNING or FINALIZING, and returns the last response.
// The client's PollInterval passes between fetches.
// If the context is done, or the instance is still in progress after MaxPolls fetches,
// the last response is returned with an ErrJobNotFinished.
func (c *Client) WaitForCompletion(ctx context.Context, jobID, instanceID string) (*Response, error) {
	polls := 0
	for {
		resp, err := c.JobInstance(ctx, jobID, instanceID)
		if err != nil {
			return nil, err
		}
		polls++
		status := JobStatus(resp)
		c.Logger.Debug().
			Str("job", jobID).
			Str("instance", instanceID).
			Str("status", status).
			Int("poll", polls).
			Msg("Checked job instance")
		if !jobInProgress[status] {
			return resp, nil
		}
		if c.MaxPolls > 0 && polls >= c.MaxPolls {
			return resp, fmt.Errorf("%w: job %v instance %v is %v after %v checks", ErrJobNotFinished, jobID, instanceID, status, polls)
		}
		timer := time.NewTimer(c.pollInterval())
		select {
		case <-ctx.Done():
			timer.Stop()
			return resp, fmt.Errorf("%w: job %v instance %v is %v: %w", ErrJobNotFinished, jobID, instanceID, status, ctx.Err())
		case <-timer.C:
		}
	}
}

// ABOUTME: Tests for the scheduled-report tool handlers.
// ABOUTME: Uses a fake scheduler API.

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/admesh/ads-gateway/internal/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScheduler struct {
	jobs      []scheduler.Job
	created   []scheduler.CreateJobRequest
	deleted   []string
	createErr error
	deleteErr error
}

func (f *fakeScheduler) CreateJob(ctx context.Context, req scheduler.CreateJobRequest) (*scheduler.Job, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, req)
	return &scheduler.Job{ID: "job-1", Name: req.Name, CronExpr: req.CronExpr, TargetURL: req.TargetURL, Enabled: true}, nil
}

func (f *fakeScheduler) ListJobs(ctx context.Context) ([]scheduler.Job, error) {
	return f.jobs, nil
}

func (f *fakeScheduler) DeleteJob(ctx context.Context, jobID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, jobID)
	return nil
}

func TestScheduleReport(t *testing.T) {
	fake := &fakeScheduler{}
	h := &reportHandlers{sched: fake}

	out, err := h.ScheduleReport(context.Background(), nil, json.RawMessage(
		`{"name":"weekly spend","cron_expression":"0 9 * * 1","target_url":"https://reports.example.com/hook"}`))
	require.NoError(t, err)

	require.Len(t, fake.created, 1)
	assert.Equal(t, "0 9 * * 1", fake.created[0].CronExpr)

	var job scheduler.Job
	require.NoError(t, json.Unmarshal(out, &job))
	assert.Equal(t, "job-1", job.ID)
	assert.True(t, job.Enabled)
}

func TestListScheduledReports(t *testing.T) {
	fake := &fakeScheduler{jobs: []scheduler.Job{
		{ID: "job-1", Name: "weekly spend"},
		{ID: "job-2", Name: "daily clicks"},
	}}
	h := &reportHandlers{sched: fake}

	out, err := h.ListScheduledReports(context.Background(), nil, nil)
	require.NoError(t, err)

	var result struct {
		Jobs []scheduler.Job `json:"jobs"`
	}
	require.NoError(t, json.Unmarshal(out, &result))
	require.Len(t, result.Jobs, 2)
	assert.Equal(t, "job-2", result.Jobs[1].ID)
}

func TestDeleteScheduledReport(t *testing.T) {
	fake := &fakeScheduler{}
	h := &reportHandlers{sched: fake}

	out, err := h.DeleteScheduledReport(context.Background(), nil, json.RawMessage(`{"job_id":"job-1"}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"job-1"}, fake.deleted)
	assert.Contains(t, string(out), "deleted")
}

func TestDeleteScheduledReport_NotFound(t *testing.T) {
	fake := &fakeScheduler{deleteErr: scheduler.ErrJobNotFound}
	h := &reportHandlers{sched: fake}

	_, err := h.DeleteScheduledReport(context.Background(), nil, json.RawMessage(`{"job_id":"nope"}`))
	assert.True(t, errors.Is(err, scheduler.ErrJobNotFound))
}

// ABOUTME: Tool handlers for scheduled report management.
// ABOUTME: Delegates to the cron scheduling service client.

package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/admesh/ads-gateway/internal/scheduler"
	"github.com/admesh/ads-gateway/internal/session"
)

// SchedulerAPI is the slice of the scheduler client the report tools use.
type SchedulerAPI interface {
	CreateJob(ctx context.Context, req scheduler.CreateJobRequest) (*scheduler.Job, error)
	ListJobs(ctx context.Context) ([]scheduler.Job, error)
	DeleteJob(ctx context.Context, jobID string) error
}

type reportHandlers struct {
	sched SchedulerAPI
}

type scheduleReportInput struct {
	Name      string `json:"name"`
	CronExpr  string `json:"cron_expression"`
	TargetURL string `json:"target_url"`
}

func (h *reportHandlers) ScheduleReport(ctx context.Context, _ *session.Session, args json.RawMessage) (json.RawMessage, error) {
	var in scheduleReportInput
	if err := unmarshalArgs(args, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	job, err := h.sched.CreateJob(ctx, scheduler.CreateJobRequest{
		Name:      in.Name,
		CronExpr:  in.CronExpr,
		TargetURL: in.TargetURL,
	})
	if err != nil {
		return nil, err
	}
	return json.Marshal(job)
}

func (h *reportHandlers) ListScheduledReports(ctx context.Context, _ *session.Session, _ json.RawMessage) (json.RawMessage, error) {
	jobs, err := h.sched.ListJobs(ctx)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]any{"jobs": jobs})
}

type deleteReportInput struct {
	JobID string `json:"job_id"`
}

func (h *reportHandlers) DeleteScheduledReport(ctx context.Context, _ *session.Session, args json.RawMessage) (json.RawMessage, error) {
	var in deleteReportInput
	if err := unmarshalArgs(args, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	if err := h.sched.DeleteJob(ctx, in.JobID); err != nil {
		return nil, err
	}
	return json.Marshal(map[string]string{"job_id": in.JobID, "status": "deleted"})
}

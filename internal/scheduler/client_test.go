// ABOUTME: Tests for the cron scheduling service client.
// ABOUTME: Verifies auth headers, payload shape, and not-found mapping.

package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCreateJob(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/jobs" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key-1" {
			t.Errorf("unexpected auth header %q", got)
		}

		var req CreateJobRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.CronExpr != "0 9 * * 1" {
			t.Errorf("unexpected cron expression %q", req.CronExpr)
		}

		json.NewEncoder(w).Encode(Job{
			ID:        "job-1",
			Name:      req.Name,
			CronExpr:  req.CronExpr,
			TargetURL: req.TargetURL,
			Enabled:   true,
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key-1", time.Second)
	job, err := client.CreateJob(context.Background(), CreateJobRequest{
		Name:      "weekly-report",
		CronExpr:  "0 9 * * 1",
		TargetURL: "https://example.com/report",
	})
	if err != nil {
		t.Fatalf("CreateJob() error = %v", err)
	}
	if job.ID != "job-1" || !job.Enabled {
		t.Errorf("unexpected job %+v", job)
	}
}

func TestListJobs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"jobs": []Job{
				{ID: "job-1", Name: "a"},
				{ID: "job-2", Name: "b"},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key-1", time.Second)
	jobs, err := client.ListJobs(context.Background())
	if err != nil {
		t.Fatalf("ListJobs() error = %v", err)
	}
	if len(jobs) != 2 || jobs[1].ID != "job-2" {
		t.Errorf("unexpected jobs %+v", jobs)
	}
}

func TestDeleteJob_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key-1", time.Second)
	err := client.DeleteJob(context.Background(), "nope")
	if !errors.Is(err, ErrJobNotFound) {
		t.Errorf("expected ErrJobNotFound, got %v", err)
	}
}

func TestDeleteJob(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key-1", time.Second)
	if err := client.DeleteJob(context.Background(), "job-9"); err != nil {
		t.Fatalf("DeleteJob() error = %v", err)
	}
	if gotPath != "/jobs/job-9" {
		t.Errorf("unexpected path %q", gotPath)
	}
}

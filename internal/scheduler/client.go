// ABOUTME: HTTP client for the cron scheduling service used by report tools.
// ABOUTME: One shared client per process, authenticated with a service API key.

package scheduler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrJobNotFound indicates the referenced job does not exist.
var ErrJobNotFound = errors.New("scheduled job not found")

// Job is a scheduled report job.
type Job struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CronExpr  string `json:"cron_expression"`
	TargetURL string `json:"target_url"`
	Enabled   bool   `json:"enabled"`
	CreatedAt string `json:"created_at,omitempty"`
}

// CreateJobRequest describes a job to create.
type CreateJobRequest struct {
	Name      string `json:"name"`
	CronExpr  string `json:"cron_expression"`
	TargetURL string `json:"target_url"`
}

// Client talks to the cron scheduling service.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

// NewClient creates a scheduler client. A zero timeout falls back to 30 seconds.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: timeout},
	}
}

// CreateJob registers a new cron job and returns it with its assigned id.
func (c *Client) CreateJob(ctx context.Context, req CreateJobRequest) (*Job, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding job: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/jobs", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var job Job
	if err := c.do(httpReq, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// ListJobs returns all jobs owned by the configured API key.
func (c *Client) ListJobs(ctx context.Context) ([]Job, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/jobs", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	var out struct {
		Jobs []Job `json:"jobs"`
	}
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out.Jobs, nil
}

// DeleteJob removes a job by id. Returns ErrJobNotFound for unknown ids.
func (c *Client) DeleteJob(ctx context.Context, jobID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/jobs/"+url.PathEscape(jobID), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, nil)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("scheduler request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrJobNotFound
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("scheduler API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding scheduler response: %w", err)
	}
	return nil
}

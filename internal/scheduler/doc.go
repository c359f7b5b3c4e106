// Package scheduler provides the HTTP client for the cron scheduling service.
//
// The gateway uses one shared client (single service API key from config) to
// create, list, and delete scheduled report jobs on behalf of tool calls.
package scheduler

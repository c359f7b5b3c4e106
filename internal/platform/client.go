// ABOUTME: HTTP client for the advertising platform Graph-style API.
// ABOUTME: One client per session; carries that session's credentials on every call.

package platform

import (
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

// ErrUnauthorized indicates the platform rejected the credentials.
var ErrUnauthorized = errors.New("platform rejected credentials")

// maxErrorBodySize bounds how much of an error response body is read.
const maxErrorBodySize = 64 << 10

// Credentials holds the platform app identity and a user access token.
// Values are never logged and never echoed back to clients.
type Credentials struct {
	AppID       string `json:"appId"`
	AppSecret   string `json:"appSecret"`
	AccessToken string `json:"accessToken"`
}

// Valid reports whether all credential fields are present.
func (c Credentials) Valid() bool {
	return c.AppID != "" && c.AppSecret != "" && c.AccessToken != ""
}

// User is the identity behind an access token.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AdAccount is an advertising account visible to a set of credentials.
type AdAccount struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Status   int    `json:"account_status"`
	Currency string `json:"currency"`
}

// Campaign is an advertising campaign within an account.
type Campaign struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	Objective string `json:"objective"`
	CreatedAt string `json:"created_time"`
}

// AdSet is a targeting/budget group within a campaign.
type AdSet struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	CampaignID  string `json:"campaign_id"`
	DailyBudget string `json:"daily_budget,omitempty"`
}

// Ad is a single ad within an ad set.
type Ad struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	AdSetID string `json:"adset_id"`
}

// InsightsRow is one row of performance metrics.
type InsightsRow struct {
	DateStart   string `json:"date_start"`
	DateStop    string `json:"date_stop"`
	Impressions string `json:"impressions"`
	Clicks      string `json:"clicks"`
	Spend       string `json:"spend"`
	CPC         string `json:"cpc,omitempty"`
	CTR         string `json:"ctr,omitempty"`
}

// InsightsQuery selects the insights to fetch for an object.
type InsightsQuery struct {
	ObjectID   string // account, campaign, ad set, or ad id
	DatePreset string // e.g. "last_7d", "last_30d"
	Level      string // "account", "campaign", "adset", "ad"
}

// APIError is an error object returned by the platform API.
type APIError struct {
	Status  int    `json:"-"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("platform API error (status %d, code %d): %s", e.Status, e.Code, e.Message)
}

// Is makes auth failures match ErrUnauthorized.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && (e.Status == http.StatusUnauthorized || e.Type == "OAuthException")
}

// Client talks to the advertising platform on behalf of one set of credentials.
type Client struct {
	baseURL string
	creds   Credentials
	httpc   *http.Client
}

// NewClient creates a platform client for the given credentials.
// A zero timeout falls back to 30 seconds.
func NewClient(baseURL string, creds Credentials, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
		httpc:   &http.Client{Timeout: timeout},
	}
}

// Me returns the identity behind the client's access token.
// This is the single round-trip credential check used at session creation.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.get(ctx, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListAdAccounts returns the ad accounts visible to the credentials.
func (c *Client) ListAdAccounts(ctx context.Context) ([]AdAccount, error) {
	var out struct {
		Data []AdAccount `json:"data"`
	}
	params := url.Values{"fields": {"id,name,account_status,currency"}}
	if err := c.get(ctx, "/me/adaccounts", params, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// ListCampaigns returns the campaigns in an ad account.
func (c *Client) ListCampaigns(ctx context.Context, accountID string) ([]Campaign, error) {
	var out struct {
		Data []Campaign `json:"data"`
	}
	params := url.Values{"fields": {"id,name,status,objective,created_time"}}
	if err := c.get(ctx, "/"+url.PathEscape(accountID)+"/campaigns", params, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// GetCampaign returns a single campaign by id.
func (c *Client) GetCampaign(ctx context.Context, campaignID string) (*Campaign, error) {
	var campaign Campaign
	params := url.Values{"fields": {"id,name,status,objective,created_time"}}
	if err := c.get(ctx, "/"+url.PathEscape(campaignID), params, &campaign); err != nil {
		return nil, err
	}
	return &campaign, nil
}

// UpdateCampaignStatus sets a campaign's status (ACTIVE or PAUSED).
func (c *Client) UpdateCampaignStatus(ctx context.Context, campaignID, status string) error {
	body := url.Values{"status": {status}}
	return c.post(ctx, "/"+url.PathEscape(campaignID), body, nil)
}

// ListAdSets returns the ad sets in a campaign.
func (c *Client) ListAdSets(ctx context.Context, campaignID string) ([]AdSet, error) {
	var out struct {
		Data []AdSet `json:"data"`
	}
	params := url.Values{"fields": {"id,name,status,campaign_id,daily_budget"}}
	if err := c.get(ctx, "/"+url.PathEscape(campaignID)+"/adsets", params, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// ListAds returns the ads in an ad set.
func (c *Client) ListAds(ctx context.Context, adSetID string) ([]Ad, error) {
	var out struct {
		Data []Ad `json:"data"`
	}
	params := url.Values{"fields": {"id,name,status,adset_id"}}
	if err := c.get(ctx, "/"+url.PathEscape(adSetID)+"/ads", params, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// GetInsights returns performance metrics for an object.
func (c *Client) GetInsights(ctx context.Context, q InsightsQuery) ([]InsightsRow, error) {
	var out struct {
		Data []InsightsRow `json:"data"`
	}
	params := url.Values{}
	if q.DatePreset != "" {
		params.Set("date_preset", q.DatePreset)
	}
	if q.Level != "" {
		params.Set("level", q.Level)
	}
	if err := c.get(ctx, "/"+url.PathEscape(q.ObjectID)+"/insights", params, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("access_token", c.creds.AccessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body url.Values, out any) error {
	if body == nil {
		body = url.Values{}
	}
	body.Set("access_token", c.creds.AccessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(body.Encode()))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("platform request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return parseAPIError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding platform response: %w", err)
	}
	return nil
}

// parseAPIError decodes the platform's error envelope, falling back to a
// generic APIError when the body is not the expected shape.
func parseAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))

	var envelope struct {
		Error APIError `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		envelope.Error.Status = resp.StatusCode
		return &envelope.Error
	}

	return &APIError{
		Status:  resp.StatusCode,
		Message: http.StatusText(resp.StatusCode),
	}
}

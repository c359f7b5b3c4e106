// ABOUTME: Tool handlers for advertising platform operations.
// ABOUTME: Each handler is a stateless call sequence against a per-session client.

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/admesh/ads-gateway/internal/platform"
	"github.com/admesh/ads-gateway/internal/session"
)

// ErrNoAccountSelected indicates a tool needing an account context was called
// without an account_id argument and without a selected account.
var ErrNoAccountSelected = errors.New("no ad account selected: pass account_id or call select_ad_account first")

// PlatformAPI is the slice of the platform client the tool handlers use.
type PlatformAPI interface {
	ListAdAccounts(ctx context.Context) ([]platform.AdAccount, error)
	ListCampaigns(ctx context.Context, accountID string) ([]platform.Campaign, error)
	GetCampaign(ctx context.Context, campaignID string) (*platform.Campaign, error)
	UpdateCampaignStatus(ctx context.Context, campaignID, status string) error
	ListAdSets(ctx context.Context, campaignID string) ([]platform.AdSet, error)
	ListAds(ctx context.Context, adSetID string) ([]platform.Ad, error)
	GetInsights(ctx context.Context, q platform.InsightsQuery) ([]platform.InsightsRow, error)
}

// PlatformFactory builds a platform API client bound to the given credentials.
type PlatformFactory func(platform.Credentials) PlatformAPI

type platformHandlers struct {
	api      PlatformFactory
	sessions *session.Manager
}

func (h *platformHandlers) ListAdAccounts(ctx context.Context, sess *session.Session, _ json.RawMessage) (json.RawMessage, error) {
	accounts, err := h.api(sess.Credentials()).ListAdAccounts(ctx)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]any{"accounts": accounts})
}

type selectAccountInput struct {
	AccountID string `json:"account_id"`
}

func (h *platformHandlers) SelectAdAccount(ctx context.Context, sess *session.Session, args json.RawMessage) (json.RawMessage, error) {
	var in selectAccountInput
	if err := unmarshalArgs(args, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	if err := h.sessions.SetSelectedAccount(ctx, sess.ID, in.AccountID); err != nil {
		return nil, err
	}
	return json.Marshal(map[string]string{"selected_account_id": in.AccountID, "status": "selected"})
}

type accountScopedInput struct {
	AccountID string `json:"account_id"`
}

func (h *platformHandlers) ListCampaigns(ctx context.Context, sess *session.Session, args json.RawMessage) (json.RawMessage, error) {
	var in accountScopedInput
	if err := unmarshalArgs(args, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	accountID, err := resolveAccount(sess, in.AccountID)
	if err != nil {
		return nil, err
	}

	campaigns, err := h.api(sess.Credentials()).ListCampaigns(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]any{"account_id": accountID, "campaigns": campaigns})
}

type campaignInput struct {
	CampaignID string `json:"campaign_id"`
}

func (h *platformHandlers) GetCampaign(ctx context.Context, sess *session.Session, args json.RawMessage) (json.RawMessage, error) {
	var in campaignInput
	if err := unmarshalArgs(args, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	campaign, err := h.api(sess.Credentials()).GetCampaign(ctx, in.CampaignID)
	if err != nil {
		return nil, err
	}
	return json.Marshal(campaign)
}

type updateCampaignStatusInput struct {
	CampaignID string `json:"campaign_id"`
	Status     string `json:"status"`
}

func (h *platformHandlers) UpdateCampaignStatus(ctx context.Context, sess *session.Session, args json.RawMessage) (json.RawMessage, error) {
	var in updateCampaignStatusInput
	if err := unmarshalArgs(args, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	if err := h.api(sess.Credentials()).UpdateCampaignStatus(ctx, in.CampaignID, in.Status); err != nil {
		return nil, err
	}
	return json.Marshal(map[string]string{"campaign_id": in.CampaignID, "status": in.Status})
}

func (h *platformHandlers) ListAdSets(ctx context.Context, sess *session.Session, args json.RawMessage) (json.RawMessage, error) {
	var in campaignInput
	if err := unmarshalArgs(args, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	adSets, err := h.api(sess.Credentials()).ListAdSets(ctx, in.CampaignID)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]any{"campaign_id": in.CampaignID, "ad_sets": adSets})
}

type adSetInput struct {
	AdSetID string `json:"ad_set_id"`
}

func (h *platformHandlers) ListAds(ctx context.Context, sess *session.Session, args json.RawMessage) (json.RawMessage, error) {
	var in adSetInput
	if err := unmarshalArgs(args, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	ads, err := h.api(sess.Credentials()).ListAds(ctx, in.AdSetID)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]any{"ad_set_id": in.AdSetID, "ads": ads})
}

type insightsInput struct {
	ObjectID   string `json:"object_id"`
	Level      string `json:"level"`
	DatePreset string `json:"date_preset"`
}

func (h *platformHandlers) GetInsights(ctx context.Context, sess *session.Session, args json.RawMessage) (json.RawMessage, error) {
	var in insightsInput
	if err := unmarshalArgs(args, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	objectID, err := resolveAccount(sess, in.ObjectID)
	if err != nil {
		return nil, err
	}
	if in.DatePreset == "" {
		in.DatePreset = "last_7d"
	}

	rows, err := h.api(sess.Credentials()).GetInsights(ctx, platform.InsightsQuery{
		ObjectID:   objectID,
		Level:      in.Level,
		DatePreset: in.DatePreset,
	})
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]any{"object_id": objectID, "date_preset": in.DatePreset, "insights": rows})
}

// unmarshalArgs decodes tool arguments, treating absent or null arguments as
// an empty object.
func unmarshalArgs(args json.RawMessage, v any) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	return json.Unmarshal(args, v)
}

// resolveAccount picks the explicit argument when present, the session's
// selected account otherwise.
func resolveAccount(sess *session.Session, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if selected := sess.SelectedAccount(); selected != "" {
		return selected, nil
	}
	return "", ErrNoAccountSelected
}

// ABOUTME: Builds and seals the default tool catalogue at process startup.
// ABOUTME: Advertising platform tools plus scheduled-report tools.

package tools

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/admesh/ads-gateway/internal/session"
)

// CatalogConfig holds the collaborators the default tool set needs.
type CatalogConfig struct {
	Platform  PlatformFactory
	Scheduler SchedulerAPI
	Sessions  *session.Manager
	Logger    *slog.Logger
}

// NewCatalog builds, seals, and returns the gateway's tool registry.
// Registration order is fixed so tools/list is deterministic.
func NewCatalog(cfg CatalogConfig) (*Registry, error) {
	if cfg.Platform == nil {
		return nil, fmt.Errorf("platform factory is required")
	}
	if cfg.Sessions == nil {
		return nil, fmt.Errorf("session manager is required")
	}

	registry := NewRegistry(cfg.Logger)

	p := &platformHandlers{api: cfg.Platform, sessions: cfg.Sessions}

	catalogue := []*Tool{
		{
			Descriptor: Descriptor{
				Name:        "list_ad_accounts",
				Description: "List the ad accounts visible to the authenticated user",
				InputSchema: json.RawMessage(`{"type":"object","properties":{}}`),
			},
			Handler: HandlerFunc(p.ListAdAccounts),
		},
		{
			Descriptor: Descriptor{
				Name:        "select_ad_account",
				Description: "Select the ad account used by subsequent account-scoped tools",
				InputSchema: json.RawMessage(`{"type":"object","properties":{"account_id":{"type":"string"}},"required":["account_id"]}`),
			},
			Handler: HandlerFunc(p.SelectAdAccount),
		},
		{
			Descriptor: Descriptor{
				Name:        "list_campaigns",
				Description: "List campaigns in an ad account",
				InputSchema: json.RawMessage(`{"type":"object","properties":{"account_id":{"type":"string"}}}`),
			},
			Handler: HandlerFunc(p.ListCampaigns),
		},
		{
			Descriptor: Descriptor{
				Name:        "get_campaign",
				Description: "Get a single campaign by id",
				InputSchema: json.RawMessage(`{"type":"object","properties":{"campaign_id":{"type":"string"}},"required":["campaign_id"]}`),
			},
			Handler: HandlerFunc(p.GetCampaign),
		},
		{
			Descriptor: Descriptor{
				Name:        "update_campaign_status",
				Description: "Pause or resume a campaign",
				InputSchema: json.RawMessage(`{"type":"object","properties":{"campaign_id":{"type":"string"},"status":{"type":"string","enum":["ACTIVE","PAUSED"]}},"required":["campaign_id","status"]}`),
			},
			Handler: HandlerFunc(p.UpdateCampaignStatus),
		},
		{
			Descriptor: Descriptor{
				Name:        "list_ad_sets",
				Description: "List ad sets in a campaign",
				InputSchema: json.RawMessage(`{"type":"object","properties":{"campaign_id":{"type":"string"}},"required":["campaign_id"]}`),
			},
			Handler: HandlerFunc(p.ListAdSets),
		},
		{
			Descriptor: Descriptor{
				Name:        "list_ads",
				Description: "List ads in an ad set",
				InputSchema: json.RawMessage(`{"type":"object","properties":{"ad_set_id":{"type":"string"}},"required":["ad_set_id"]}`),
			},
			Handler: HandlerFunc(p.ListAds),
		},
		{
			Descriptor: Descriptor{
				Name:        "get_insights",
				Description: "Get performance insights for an account, campaign, ad set, or ad",
				InputSchema: json.RawMessage(`{"type":"object","properties":{"object_id":{"type":"string"},"level":{"type":"string","enum":["account","campaign","adset","ad"]},"date_preset":{"type":"string"}}}`),
			},
			Handler: HandlerFunc(p.GetInsights),
		},
	}

	// Report scheduling tools are only offered when a scheduler is configured.
	if cfg.Scheduler != nil {
		r := &reportHandlers{sched: cfg.Scheduler}
		catalogue = append(catalogue,
			&Tool{
				Descriptor: Descriptor{
					Name:        "schedule_report",
					Description: "Create a recurring report job on the scheduling service",
					InputSchema: json.RawMessage(`{"type":"object","properties":{"name":{"type":"string"},"cron_expression":{"type":"string"},"target_url":{"type":"string"}},"required":["name","cron_expression","target_url"]}`),
				},
				Handler: HandlerFunc(r.ScheduleReport),
			},
			&Tool{
				Descriptor: Descriptor{
					Name:        "list_scheduled_reports",
					Description: "List recurring report jobs",
					InputSchema: json.RawMessage(`{"type":"object","properties":{}}`),
				},
				Handler: HandlerFunc(r.ListScheduledReports),
			},
			&Tool{
				Descriptor: Descriptor{
					Name:        "delete_scheduled_report",
					Description: "Delete a recurring report job",
					InputSchema: json.RawMessage(`{"type":"object","properties":{"job_id":{"type":"string"}},"required":["job_id"]}`),
				},
				Handler: HandlerFunc(r.DeleteScheduledReport),
			},
		)
	}

	for _, tool := range catalogue {
		if err := registry.Register(tool); err != nil {
			return nil, fmt.Errorf("registering %s: %w", tool.Name, err)
		}
	}

	registry.Seal()
	return registry, nil
}

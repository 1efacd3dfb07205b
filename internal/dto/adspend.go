package dto

import "github.com/shopspring/decimal"

// AdSpendSeries maps a local calendar day (DD-MM-YYYY) to that day's
// aggregated ad spend.
type AdSpendSeries map[string]DailyAdSpend

// DailyAdSpend is one day's aggregated ads-reporting numbers. CPC/CPM/CTR are
// recomputed from the aggregated spend/clicks/impressions, not averaged from
// the per-breakdown rows.
type DailyAdSpend struct {
	Date        string          `json:"date"`
	Spend       decimal.Decimal `json:"spend"`
	Impressions int64           `json:"impressions"`
	Clicks      int64           `json:"clicks"`
	CPC         decimal.Decimal `json:"cpc"`
	CPM         decimal.Decimal `json:"cpm"`
	CTR         decimal.Decimal `json:"ctr"`
	Campaigns   []AdBreakdown   `json:"campaigns,omitempty"`
}

// AdBreakdown is one per-campaign/adset/ad row for non-account report levels.
type AdBreakdown struct {
	Spend        decimal.Decimal `json:"spend"`
	Impressions  int64           `json:"impressions"`
	Clicks       int64           `json:"clicks"`
	CPC          decimal.Decimal `json:"cpc"`
	CPM          decimal.Decimal `json:"cpm"`
	CTR          decimal.Decimal `json:"ctr"`
	CampaignID   string          `json:"campaignId,omitempty"`
	CampaignName string          `json:"campaignName,omitempty"`
	AdsetID      string          `json:"adsetId,omitempty"`
	AdsetName    string          `json:"adsetName,omitempty"`
	AdID         string          `json:"adId,omitempty"`
	AdName       string          `json:"adName,omitempty"`
}

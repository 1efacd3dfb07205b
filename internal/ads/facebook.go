// Package ads implements a client for the Graph API insights endpoint,
// producing per-day spend series for margin reporting.
package ads

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/peakmargin/margin-manager/internal/dependency"
	"github.com/peakmargin/margin-manager/internal/dto"
	"github.com/peakmargin/margin-manager/internal/gerr"
)

// Report levels accepted by FetchSpend.
const (
	LevelAccount  = "account"
	LevelCampaign = "campaign"
	LevelAdset    = "adset"
	LevelAd       = "ad"
)

var graphBaseURL = "https://graph.facebook.com/v18.0"

type Config struct {
	AccountID   string `mapstructure:"account_id"`
	AccessToken string `mapstructure:"access_token"`
	PageBudget  int    `mapstructure:"page_budget"`
}

type Client struct {
	c   *Config
	cli *resty.Client
}

func New(c *Config) *Client {
	if c.PageBudget <= 0 {
		c.PageBudget = 20
	}

	cli := resty.New()
	cli.SetBaseURL(graphBaseURL)
	cli.SetTimeout(30 * time.Second)

	return &Client{c: c, cli: cli}
}

var _ dependency.AdsReporter = (*Client)(nil)

type insightsRow struct {
	DateStart    string `json:"date_start"`
	Spend        string `json:"spend"`
	Impressions  string `json:"impressions"`
	Clicks       string `json:"clicks"`
	CampaignID   string `json:"campaign_id"`
	CampaignName string `json:"campaign_name"`
	AdsetID      string `json:"adset_id"`
	AdsetName    string `json:"adset_name"`
	AdID         string `json:"ad_id"`
	AdName       string `json:"ad_name"`
}

type insightsResponse struct {
	Data   []insightsRow `json:"data"`
	Paging struct {
		Next string `json:"next"`
	} `json:"paging"`
}

// FetchSpend returns per-day spend between start and end inclusive, keyed by
// calendar day in DD-MM-YYYY form. CPC, CPM and CTR are recomputed from the
// per-day totals rather than averaged across rows.
func (cli *Client) FetchSpend(ctx context.Context, start, end time.Time, level string) (dto.AdSpendSeries, error) {
	if level == "" {
		level = LevelAccount
	}

	fields := "spend,impressions,clicks,date_start"
	switch level {
	case LevelCampaign:
		fields += ",campaign_id,campaign_name"
	case LevelAdset:
		fields += ",adset_id,adset_name,campaign_id,campaign_name"
	case LevelAd:
		fields += ",ad_id,ad_name,adset_id,adset_name,campaign_id,campaign_name"
	}

	series := make(dto.AdSpendSeries)

	next := ""
	for page := 0; page < cli.c.PageBudget; page++ {
		var resp *resty.Response
		var err error
		if next == "" {
			resp, err = cli.cli.R().SetContext(ctx).
				SetQueryParams(map[string]string{
					"access_token":   cli.c.AccessToken,
					"level":          level,
					"fields":         fields,
					"time_range":     fmt.Sprintf(`{"since":"%s","until":"%s"}`, start.Format("2006-01-02"), end.Format("2006-01-02")),
					"time_increment": "1",
					"limit":          "500",
				}).
				Get(fmt.Sprintf("/act_%s/insights", cli.c.AccountID))
		} else {
			// paging.next is a fully qualified URL including the token
			resp, err = cli.cli.R().SetContext(ctx).Get(next)
		}
		if err != nil {
			return nil, &gerr.TransientFetchError{Endpoint: "insights", Err: err}
		}
		if resp.StatusCode() != 200 {
			return nil, &gerr.TransientFetchError{Endpoint: "insights", Status: resp.StatusCode()}
		}

		var body insightsResponse
		if err := json.Unmarshal(resp.Body(), &body); err != nil {
			return nil, fmt.Errorf("could not unmarshal insights response: %w : body: %v", err, resp.String())
		}

		for _, row := range body.Data {
			if err := foldRow(series, row, level); err != nil {
				return nil, err
			}
		}

		next = body.Paging.Next
		if next == "" {
			break
		}
	}

	for key, day := range series {
		day.CPC, day.CPM, day.CTR = deriveRates(day.Spend, day.Impressions, day.Clicks)
		series[key] = day
	}

	return series, nil
}

func foldRow(series dto.AdSpendSeries, row insightsRow, level string) error {
	t, err := time.Parse("2006-01-02", row.DateStart)
	if err != nil {
		return fmt.Errorf("could not parse insights date %q: %w", row.DateStart, err)
	}
	key := t.Format("02-01-2006")

	spend, err := decimal.NewFromString(row.Spend)
	if err != nil {
		spend = decimal.Zero
	}
	impressions := parseCount(row.Impressions)
	clicks := parseCount(row.Clicks)

	day := series[key]
	day.Date = key
	day.Spend = day.Spend.Add(spend)
	day.Impressions += impressions
	day.Clicks += clicks

	if level != LevelAccount {
		cpc, cpm, ctr := deriveRates(spend, impressions, clicks)
		day.Campaigns = append(day.Campaigns, dto.AdBreakdown{
			Spend:        spend,
			Impressions:  impressions,
			Clicks:       clicks,
			CPC:          cpc,
			CPM:          cpm,
			CTR:          ctr,
			CampaignID:   row.CampaignID,
			CampaignName: row.CampaignName,
			AdsetID:      row.AdsetID,
			AdsetName:    row.AdsetName,
			AdID:         row.AdID,
			AdName:       row.AdName,
		})
	}

	series[key] = day
	return nil
}

func deriveRates(spend decimal.Decimal, impressions, clicks int64) (cpc, cpm, ctr decimal.Decimal) {
	if clicks > 0 {
		cpc = spend.DivRound(decimal.NewFromInt(clicks), 4)
	}
	if impressions > 0 {
		imp := decimal.NewFromInt(impressions)
		cpm = spend.Mul(decimal.NewFromInt(1000)).DivRound(imp, 4)
		ctr = decimal.NewFromInt(clicks).Mul(decimal.NewFromInt(100)).DivRound(imp, 4)
	}
	return cpc, cpm, ctr
}

func parseCount(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

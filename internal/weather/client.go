// Package weather fetches daily observed conditions for the insight
// generator. The upstream is an OpenWeatherMap-style REST API; a missing API
// key or a failed day simply leaves that date absent from the snapshot, so
// analytics degrade instead of failing.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"example.com/planner/internal/analytics"
	"example.com/planner/internal/domain"
)

// Config carries upstream settings.
type Config struct {
	BaseURL string
	APIKey  string
}

// Client queries the weather API with sane timeouts.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient constructs a Client.
func NewClient(cfg Config) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Snapshot materializes per-date conditions for [start, end]. Dates the
// upstream cannot answer for are skipped.
func (c *Client) Snapshot(ctx context.Context, location string, start, end time.Time) (analytics.WeatherSnapshot, error) {
	if c.cfg.APIKey == "" || location == "" {
		return nil, nil
	}

	snapshot := make(Snapshot)
	for d := domain.DateOf(start); !d.After(domain.DateOf(end)); d = d.AddDate(0, 0, 1) {
		conditions, err := c.daySummary(ctx, location, d)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		snapshot[d] = conditions
	}
	return snapshot, nil
}

func (c *Client) daySummary(ctx context.Context, location string, date time.Time) (analytics.Conditions, error) {
	query := url.Values{}
	query.Set("q", location)
	query.Set("date", date.Format("2006-01-02"))
	query.Set("units", "metric")
	query.Set("appid", c.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/day_summary?%s", c.cfg.BaseURL, query.Encode()), nil)
	if err != nil {
		return analytics.Conditions{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return analytics.Conditions{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return analytics.Conditions{}, fmt.Errorf("weather api error: %s", body)
	}

	var payload struct {
		Temperature struct {
			Afternoon float64 `json:"afternoon"`
		} `json:"temperature"`
		Precipitation struct {
			Total float64 `json:"total"`
		} `json:"precipitation"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return analytics.Conditions{}, err
	}

	conditions := analytics.Conditions{
		TemperatureC:    payload.Temperature.Afternoon,
		PrecipitationMM: payload.Precipitation.Total,
	}
	if len(payload.Weather) > 0 {
		conditions.Description = payload.Weather[0].Description
	}
	return conditions, nil
}

// Snapshot is the materialized date → conditions view handed to analytics.
type Snapshot map[time.Time]analytics.Conditions

// ConditionsOn implements analytics.WeatherSnapshot.
func (s Snapshot) ConditionsOn(date time.Time, _ string) (analytics.Conditions, bool) {
	conditions, ok := s[domain.DateOf(date)]
	return conditions, ok
}

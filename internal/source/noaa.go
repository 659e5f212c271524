package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidewatch/coastal-monitor/internal/domain"
)

// noaaTimeLayout is the timestamp format of the Tides & Currents API when
// queried with time_zone=gmt.
const noaaTimeLayout = "2006-01-02 15:04"

// NOAAClient pulls water level and meteorological observations from the
// NOAA Tides & Currents data getter API.
type NOAAClient struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewNOAAClient creates a Tides & Currents client with a fixed per-call timeout.
func NewNOAAClient(baseURL string, timeout time.Duration, logger *slog.Logger) *NOAAClient {
	return &NOAAClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		logger:     logger,
	}
}

func (c *NOAAClient) Name() string     { return "NOAA" }
func (c *NOAAClient) Endpoint() string { return c.baseURL }

// Fetch issues two product calls per station: water_level, then
// meteorological. Each meteorological row decomposes into up to three
// observations (wind speed, wind direction, air pressure). A failure on
// either call fails the whole attempt; partial data from the first call is
// discarded so the attempt is all-or-nothing.
func (c *NOAAClient) Fetch(ctx context.Context, stationID string, from, to time.Time) ([]Observation, error) {
	waterLevels, err := c.fetchWaterLevel(ctx, stationID, from, to)
	if err != nil {
		return nil, err
	}

	met, err := c.fetchMeteorological(ctx, stationID, from, to)
	if err != nil {
		return nil, err
	}

	return append(waterLevels, met...), nil
}

func (c *NOAAClient) fetchWaterLevel(ctx context.Context, stationID string, from, to time.Time) ([]Observation, error) {
	params := c.baseParams(stationID, from, to)
	params.Set("product", "water_level")
	params.Set("datum", "MLLW")

	var resp noaaWaterLevelResponse
	if err := c.doRequest(ctx, params, &resp); err != nil {
		return nil, fmt.Errorf("water_level: %w", err)
	}

	obs := make([]Observation, 0, len(resp.Data))
	for _, row := range resp.Data {
		value, ts, err := parseNOAARow(row.Value, row.Time)
		if err != nil {
			continue
		}
		quality := row.Quality
		if quality == "" {
			quality = "good"
		}
		obs = append(obs, Observation{
			Kind:        domain.KindWaterLevel,
			Value:       value,
			Unit:        "meters",
			ObservedAt:  ts,
			QualityFlag: quality,
		})
	}
	return obs, nil
}

func (c *NOAAClient) fetchMeteorological(ctx context.Context, stationID string, from, to time.Time) ([]Observation, error) {
	params := c.baseParams(stationID, from, to)
	params.Set("product", "meteorological")

	var resp noaaMetResponse
	if err := c.doRequest(ctx, params, &resp); err != nil {
		return nil, fmt.Errorf("meteorological: %w", err)
	}

	var obs []Observation
	for _, row := range resp.Data {
		ts, err := time.ParseInLocation(noaaTimeLayout, row.Time, time.UTC)
		if err != nil {
			continue
		}
		for _, field := range []struct {
			raw  string
			kind domain.MeasurementKind
			unit string
		}{
			{row.WindSpeed, domain.KindWindSpeed, "m/s"},
			{row.WindDirection, domain.KindWindDirection, "degrees"},
			{row.AirPressure, domain.KindAirPressure, "mb"},
		} {
			if strings.TrimSpace(field.raw) == "" {
				continue
			}
			value, err := strconv.ParseFloat(field.raw, 64)
			if err != nil {
				continue
			}
			obs = append(obs, Observation{
				Kind:        field.kind,
				Value:       value,
				Unit:        field.unit,
				ObservedAt:  ts,
				QualityFlag: "good",
			})
		}
	}
	return obs, nil
}

func (c *NOAAClient) baseParams(stationID string, from, to time.Time) url.Values {
	return url.Values{
		"begin_date": {from.UTC().Format("20060102 15:04")},
		"end_date":   {to.UTC().Format("20060102 15:04")},
		"station":    {stationID},
		"units":      {"metric"},
		"time_zone":  {"gmt"},
		"format":     {"json"},
	}
}

func (c *NOAAClient) doRequest(ctx context.Context, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("noaa request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("noaa API error: status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseNOAARow(rawValue, rawTime string) (float64, time.Time, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(rawValue), 64)
	if err != nil {
		return 0, time.Time{}, err
	}
	ts, err := time.ParseInLocation(noaaTimeLayout, rawTime, time.UTC)
	if err != nil {
		return 0, time.Time{}, err
	}
	return value, ts, nil
}

// NOAA API response types.

type noaaWaterLevelResponse struct {
	Data []struct {
		Time    string `json:"t"`
		Value   string `json:"v"`
		Quality string `json:"q"`
	} `json:"data"`
}

type noaaMetResponse struct {
	Data []struct {
		Time          string `json:"t"`
		WindSpeed     string `json:"s"`
		WindDirection string `json:"d"`
		AirPressure   string `json:"p"`
	} `json:"data"`
}

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

// usgsNoData is the USGS sentinel for missing values; rows carrying it are
// skipped rather than stored as readings.
const usgsNoData = "-999999"

// USGSClient pulls instantaneous values from the USGS Water Services API.
type USGSClient struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewUSGSClient creates a Water Services client with a fixed per-call timeout.
func NewUSGSClient(baseURL string, timeout time.Duration, logger *slog.Logger) *USGSClient {
	return &USGSClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		logger:     logger,
	}
}

func (c *USGSClient) Name() string     { return "USGS" }
func (c *USGSClient) Endpoint() string { return c.baseURL }

// Fetch requests gauge height (00065) and discharge (00060) for the window.
// Parameter 00065 maps to water_level; 00060 becomes the non-canonical
// "discharge" kind, which is stored but never fed to the classifier.
func (c *USGSClient) Fetch(ctx context.Context, stationID string, from, to time.Time) ([]Observation, error) {
	minutes := int(to.Sub(from).Minutes())
	if minutes < 1 {
		minutes = 1
	}
	params := url.Values{
		"format":      {"json"},
		"sites":       {stationID},
		"period":      {fmt.Sprintf("PT%dM", minutes)},
		"parameterCd": {"00065,00060"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("usgs request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("usgs API error: status %d: %s", resp.StatusCode, body)
	}

	var payload usgsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return flattenUSGS(payload), nil
}

// flattenUSGS walks the nested timeSeries structure into flat observations.
func flattenUSGS(payload usgsResponse) []Observation {
	var obs []Observation
	for _, series := range payload.Value.TimeSeries {
		if len(series.Variable.VariableCode) == 0 {
			continue
		}

		kind := domain.MeasurementKind("discharge")
		if series.Variable.VariableCode[0].Value == "00065" {
			kind = domain.KindWaterLevel
		}
		unit := series.Variable.Unit.UnitCode

		for _, block := range series.Values {
			for _, point := range block.Value {
				if point.Value == usgsNoData || strings.TrimSpace(point.Value) == "" {
					continue
				}
				value, err := strconv.ParseFloat(point.Value, 64)
				if err != nil {
					continue
				}
				ts, err := time.Parse(time.RFC3339, point.DateTime)
				if err != nil {
					continue
				}
				obs = append(obs, Observation{
					Kind:        kind,
					Value:       value,
					Unit:        unit,
					ObservedAt:  ts.UTC(),
					QualityFlag: "good",
				})
			}
		}
	}
	return obs
}

// USGS API response types (the relevant subset of the WaterML-JSON shape).

type usgsResponse struct {
	Value struct {
		TimeSeries []struct {
			Variable struct {
				VariableCode []struct {
					Value string `json:"value"`
				} `json:"variableCode"`
				Unit struct {
					UnitCode string `json:"unitCode"`
				} `json:"unit"`
			} `json:"variable"`
			Values []struct {
				Value []struct {
					Value    string `json:"value"`
					DateTime string `json:"dateTime"`
				} `json:"value"`
			} `json:"values"`
		} `json:"timeSeries"`
	} `json:"value"`
}

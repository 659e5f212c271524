package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidewatch/coastal-monitor/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestNOAAClient_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "8771450", q.Get("station"))
		assert.Equal(t, "metric", q.Get("units"))
		assert.Equal(t, "gmt", q.Get("time_zone"))

		switch q.Get("product") {
		case "water_level":
			assert.Equal(t, "MLLW", q.Get("datum"))
			fmt.Fprint(w, `{"data": [
				{"t": "2025-04-26 12:00", "v": "1.234", "q": "v"},
				{"t": "2025-04-26 12:06", "v": "", "q": "v"},
				{"t": "2025-04-26 12:12", "v": "1.301"}
			]}`)
		case "meteorological":
			fmt.Fprint(w, `{"data": [
				{"t": "2025-04-26 12:00", "s": "7.2", "d": "180.0", "p": "1012.5"},
				{"t": "2025-04-26 12:06", "s": "8.1", "d": "", "p": "not-a-number"},
				{"t": "bad-timestamp", "s": "9.9", "d": "90.0", "p": "1011.0"}
			]}`)
		default:
			t.Errorf("unexpected product %q", q.Get("product"))
		}
	}))
	defer server.Close()

	client := NewNOAAClient(server.URL, 5*time.Second, discardLogger())
	from := time.Date(2025, 4, 26, 11, 0, 0, 0, time.UTC)

	obs, err := client.Fetch(context.Background(), "8771450", from, from.Add(time.Hour))
	require.NoError(t, err)

	// Two parseable water level rows, then three fields from the first met
	// row and one from the second. The unparseable rows are dropped.
	require.Len(t, obs, 6)

	assert.Equal(t, domain.KindWaterLevel, obs[0].Kind)
	assert.Equal(t, 1.234, obs[0].Value)
	assert.Equal(t, "meters", obs[0].Unit)
	assert.Equal(t, "v", obs[0].QualityFlag)
	assert.Equal(t, time.Date(2025, 4, 26, 12, 0, 0, 0, time.UTC), obs[0].ObservedAt)

	assert.Equal(t, "good", obs[1].QualityFlag, "missing quality flag defaults to good")

	assert.Equal(t, domain.KindWindSpeed, obs[2].Kind)
	assert.Equal(t, 7.2, obs[2].Value)
	assert.Equal(t, domain.KindWindDirection, obs[3].Kind)
	assert.Equal(t, domain.KindAirPressure, obs[4].Kind)

	assert.Equal(t, domain.KindWindSpeed, obs[5].Kind)
	assert.Equal(t, 8.1, obs[5].Value)
}

func TestNOAAClient_Fetch_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "station not found", http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewNOAAClient(server.URL, 5*time.Second, discardLogger())

	_, err := client.Fetch(context.Background(), "0000000", time.Now().Add(-time.Hour), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestNOAAClient_Fetch_SecondCallFailureDiscardsFirst(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("product") == "water_level" {
			fmt.Fprint(w, `{"data": [{"t": "2025-04-26 12:00", "v": "1.0", "q": "v"}]}`)
			return
		}
		http.Error(w, "upstream unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewNOAAClient(server.URL, 5*time.Second, discardLogger())

	obs, err := client.Fetch(context.Background(), "8771450", time.Now().Add(-time.Hour), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "meteorological")
	assert.Nil(t, obs)
}

func TestNOAAClient_Fetch_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := NewNOAAClient(server.URL, 20*time.Millisecond, discardLogger())

	_, err := client.Fetch(context.Background(), "8771450", time.Now().Add(-time.Hour), time.Now())
	assert.Error(t, err)
}

func TestNOAAClient_Identity(t *testing.T) {
	client := NewNOAAClient("https://example.test/api", time.Second, discardLogger())
	assert.Equal(t, "NOAA", client.Name())
	assert.Equal(t, "https://example.test/api", client.Endpoint())
}

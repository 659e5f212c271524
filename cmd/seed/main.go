// Command seed inserts a starter set of coastal monitoring stations.
// Intended for operator bootstrap of a fresh database; re-running updates
// coordinates and active flags in place.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/tidewatch/coastal-monitor/internal/domain"
	"github.com/tidewatch/coastal-monitor/internal/storage"
)

// stations are NOAA tide stations on the US Gulf and Atlantic coasts.
var stations = []domain.Location{
	{StationID: "8771450", Name: "Galveston Pier 21", Latitude: 29.3100, Longitude: -94.7933, Active: true},
	{StationID: "8724580", Name: "Key West", Latitude: 24.5510, Longitude: -81.8080, Active: true},
	{StationID: "8658120", Name: "Wilmington", Latitude: 34.2267, Longitude: -77.9533, Active: true},
	{StationID: "8518750", Name: "The Battery", Latitude: 40.7006, Longitude: -74.0142, Active: true},
	{StationID: "8443970", Name: "Boston", Latitude: 42.3539, Longitude: -71.0503, Active: true},
}

func main() {
	_ = godotenv.Load()

	databaseURL := flag.String("database-url", os.Getenv("DATABASE_URL"), "Postgres connection string")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if *databaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	ctx := context.Background()

	store, err := storage.Open(ctx, *databaseURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	for i := range stations {
		loc := stations[i]
		if err := store.InsertLocation(ctx, &loc); err != nil {
			logger.Error("failed to seed location", "station", loc.StationID, "error", err)
			os.Exit(1)
		}
		fmt.Printf("seeded %s (%s) id=%d\n", loc.Name, loc.StationID, loc.ID)
	}
}

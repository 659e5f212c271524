// Package domain models coastal monitoring data: stations, sensor readings,
// risk assessments, and alerts.
//
// # Data Sources
//
// Readings are pulled from two external time-series APIs keyed by station id:
//
//	NOAA Tides & Currents (api.tidesandcurrents.noaa.gov)
//	  - product=water_level → water_level readings in meters (MLLW datum)
//	  - product=meteorological → wind_speed ("s", m/s), wind_direction ("d",
//	    degrees), air_pressure ("p", mb) decomposed from each response row
//	  NOAA timestamps are GMT in "2006-01-02 15:04" format.
//
//	USGS Water Services (waterservices.usgs.gov/nwis/iv)
//	  - parameter 00065 → water_level
//	  - parameter 00060 → discharge (stored but not a classifier input)
//	  - "-999999" is the USGS no-data sentinel and is skipped
//
// # Validation Ranges
//
// Each measurement kind has an inclusive plausibility range; readings
// outside it are filtered before storage (see [ValidateReading]):
//
//	water_level        [-10, 20]   m
//	wave_height        [0, 30]     m
//	wind_speed         [0, 100]    m/s
//	wind_direction     [0, 360]    degrees
//	air_pressure       [900, 1100] mb
//	water_temperature  [-5, 40]    °C
//	salinity           [0, 40]     ppt
//
// Kinds not in the table (e.g. USGS discharge) are accepted unranged.
//
// # Feature Schema
//
// The classifier consumes a fixed-order vector built from the most recent
// reading of each kind within the lookback window, with domain defaults
// substituted for missing kinds (water level defaults to the MLLW datum
// zero; pressure to one standard atmosphere):
//
//	water_level 0.0 | wave_height 1.0 | wind_speed 5.0 | wind_direction 180.0
//	air_pressure 1013.25 | water_temperature 15.0
//
// followed by hour_of_day (0-23) and day_of_year (1-366) taken from the
// processing instant, not from any reading timestamp. Salinity is stored
// and defaulted but is not a model input.
//
// # Risk Levels
//
// Probability maps to a level by half-open bins, inclusive on the lower
// edge: <0.3 low, <0.6 medium, <0.8 high, ≥0.8 critical. See [LevelFor].
//
// # Alert Derivation
//
// Severity baseline follows the level (critical→critical, high→urgent,
// otherwise warning). Feature rules then pick the alert type, first match
// wins: water level above 5 m forces coastal_flooding at critical severity;
// else waves above 8 m → high_waves; else wind above 25 m/s → storm_surge;
// else general. At most one active alert exists per (location, type); the
// trigger suppresses repeats until the existing alert is resolved.
package domain

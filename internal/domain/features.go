package domain

// FeatureColumns is the exact model input schema, in order. Reordering or
// omitting a column breaks the classifier contract: trained artifacts index
// the vector positionally.
var FeatureColumns = []string{
	string(KindWaterLevel),
	string(KindWaveHeight),
	string(KindWindSpeed),
	string(KindWindDirection),
	string(KindAirPressure),
	string(KindWaterTemperature),
	"hour_of_day",
	"day_of_year",
}

// MeasurementDefaults substitutes for kinds with no reading in the lookback
// window. These are climatological baselines, not zeros: wave height 1 m is
// calm seas, 1013.25 mb is one standard atmosphere, water level 0 is the
// MLLW datum itself.
var MeasurementDefaults = map[MeasurementKind]float64{
	KindWaterLevel:       0.0,
	KindWaveHeight:       1.0,
	KindWindSpeed:        5.0,
	KindWindDirection:    180.0,
	KindAirPressure:      1013.25,
	KindWaterTemperature: 15.0,
	KindSalinity:         35.0,
}

// FeatureKinds are the measurement kinds that feed the model, in schema
// order. Salinity is deliberately absent: it is collected and stored but
// was not a training input.
var FeatureKinds = []MeasurementKind{
	KindWaterLevel,
	KindWaveHeight,
	KindWindSpeed,
	KindWindDirection,
	KindAirPressure,
	KindWaterTemperature,
}

// BuildVector flattens a named feature snapshot into the positional vector
// the classifier scores. Temporal features come from the processing instant
// on the package clock, never from reading timestamps, and are written back
// into the snapshot so the stored assessment records the exact model input.
func BuildVector(features map[string]float64) []float64 {
	now := Now()
	features["hour_of_day"] = float64(now.Hour())
	features["day_of_year"] = float64(now.YearDay())

	vector := make([]float64, len(FeatureColumns))
	for i, col := range FeatureColumns {
		vector[i] = features[col]
	}
	return vector
}

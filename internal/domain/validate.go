package domain

// valueRange is an inclusive plausibility bound for one measurement kind.
type valueRange struct {
	min, max float64
}

// validationRanges bounds each canonical measurement kind. Values are the
// operational limits of coastal sensors, not physical extremes; anything
// outside them is treated as sensor noise and dropped.
var validationRanges = map[MeasurementKind]valueRange{
	KindWaterLevel:       {-10, 20},
	KindWaveHeight:       {0, 30},
	KindWindSpeed:        {0, 100},
	KindWindDirection:    {0, 360},
	KindAirPressure:      {900, 1100},
	KindWaterTemperature: {-5, 40},
	KindSalinity:         {0, 40},
}

// ValidateReading reports whether a value is plausible for its kind.
// Unknown kinds always pass; range checks only apply to the canonical
// enumeration. This is a filter, not an error path: callers drop and count
// rejected readings, they never fail on them.
func ValidateReading(kind MeasurementKind, value float64) bool {
	r, ok := validationRanges[kind]
	if !ok {
		return true
	}
	return value >= r.min && value <= r.max
}

package domain

import (
	"fmt"
	"strings"
)

// LevelFor maps a risk probability to its categorical level. Bins are
// half-open, inclusive on the lower edge: exactly 0.3 is medium, exactly
// 0.6 is high, exactly 0.8 is critical.
func LevelFor(probability float64) RiskLevel {
	switch {
	case probability < 0.3:
		return RiskLow
	case probability < 0.6:
		return RiskMedium
	case probability < 0.8:
		return RiskHigh
	default:
		return RiskCritical
	}
}

// DeriveAlertKind picks the alert type and severity for an assessment from
// its risk level and feature snapshot.
//
// Severity starts from the level: critical→critical, high→urgent, otherwise
// warning. Feature rules are then checked in fixed precedence, first match
// wins: water level above 5 m forces coastal_flooding and overrides the
// severity to critical; else wave height above 8 m → high_waves; else wind
// speed above 25 m/s → storm_surge; else general. Only the flooding rule
// touches severity.
func DeriveAlertKind(level RiskLevel, features map[string]float64) (AlertType, Severity) {
	severity := SeverityWarning
	switch level {
	case RiskCritical:
		severity = SeverityCritical
	case RiskHigh:
		severity = SeverityUrgent
	}

	switch {
	case features[string(KindWaterLevel)] > 5:
		return AlertCoastalFlooding, SeverityCritical
	case features[string(KindWaveHeight)] > 8:
		return AlertHighWaves, severity
	case features[string(KindWindSpeed)] > 25:
		return AlertStormSurge, severity
	default:
		return AlertGeneral, severity
	}
}

// AlertTitle renders the human-readable title, e.g.
// "Coastal Flooding Alert - Galveston Pier 21".
func AlertTitle(alertType AlertType, locationName string) string {
	words := strings.Split(string(alertType), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return fmt.Sprintf("%s Alert - %s", strings.Join(words, " "), locationName)
}

// AlertMessage renders the alert body with the score to two decimals and
// the level uppercased.
func AlertMessage(locationName string, probability float64, level RiskLevel) string {
	return fmt.Sprintf(
		"High risk detected at %s. Risk Score: %.2f (%s). "+
			"Please review current conditions and take appropriate action.",
		locationName, probability, strings.ToUpper(string(level)),
	)
}

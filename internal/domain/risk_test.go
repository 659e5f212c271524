package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFor(t *testing.T) {
	tests := []struct {
		name        string
		probability float64
		want        RiskLevel
	}{
		{"zero", 0, RiskLow},
		{"just under medium", 0.29999, RiskLow},
		{"medium lower bound", 0.3, RiskMedium},
		{"mid medium", 0.45, RiskMedium},
		{"high lower bound", 0.6, RiskHigh},
		{"just under critical", 0.79999, RiskHigh},
		{"critical lower bound", 0.8, RiskCritical},
		{"one", 1.0, RiskCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LevelFor(tt.probability))
		})
	}
}

func TestDeriveAlertKind(t *testing.T) {
	base := func(overrides map[string]float64) map[string]float64 {
		features := map[string]float64{
			"water_level": 0.0,
			"wave_height": 1.0,
			"wind_speed":  5.0,
		}
		for k, v := range overrides {
			features[k] = v
		}
		return features
	}

	t.Run("flooding overrides level severity", func(t *testing.T) {
		// Medium level would give warning, but high water forces critical.
		alertType, severity := DeriveAlertKind(RiskMedium, base(map[string]float64{"water_level": 5.5}))
		assert.Equal(t, AlertCoastalFlooding, alertType)
		assert.Equal(t, SeverityCritical, severity)
	})

	t.Run("flooding wins over waves and wind", func(t *testing.T) {
		alertType, severity := DeriveAlertKind(RiskCritical, base(map[string]float64{
			"water_level": 6, "wave_height": 9, "wind_speed": 30,
		}))
		assert.Equal(t, AlertCoastalFlooding, alertType)
		assert.Equal(t, SeverityCritical, severity)
	})

	t.Run("high waves keeps level severity", func(t *testing.T) {
		alertType, severity := DeriveAlertKind(RiskHigh, base(map[string]float64{"wave_height": 8.5}))
		assert.Equal(t, AlertHighWaves, alertType)
		assert.Equal(t, SeverityUrgent, severity)
	})

	t.Run("waves win over wind", func(t *testing.T) {
		alertType, _ := DeriveAlertKind(RiskHigh, base(map[string]float64{
			"wave_height": 9, "wind_speed": 30,
		}))
		assert.Equal(t, AlertHighWaves, alertType)
	})

	t.Run("storm surge from wind", func(t *testing.T) {
		alertType, severity := DeriveAlertKind(RiskCritical, base(map[string]float64{"wind_speed": 26}))
		assert.Equal(t, AlertStormSurge, alertType)
		assert.Equal(t, SeverityCritical, severity)
	})

	t.Run("general fallthrough with warning", func(t *testing.T) {
		alertType, severity := DeriveAlertKind(RiskMedium, base(nil))
		assert.Equal(t, AlertGeneral, alertType)
		assert.Equal(t, SeverityWarning, severity)
	})

	t.Run("boundaries are exclusive", func(t *testing.T) {
		// Exactly 5 / 8 / 25 do not fire the feature rules.
		alertType, _ := DeriveAlertKind(RiskHigh, base(map[string]float64{
			"water_level": 5, "wave_height": 8, "wind_speed": 25,
		}))
		assert.Equal(t, AlertGeneral, alertType)
	})
}

func TestAlertTitle(t *testing.T) {
	assert.Equal(t, "Coastal Flooding Alert - Test Bay", AlertTitle(AlertCoastalFlooding, "Test Bay"))
	assert.Equal(t, "Storm Surge Alert - Key West", AlertTitle(AlertStormSurge, "Key West"))
	assert.Equal(t, "General Alert - Boston", AlertTitle(AlertGeneral, "Boston"))
}

func TestAlertMessage(t *testing.T) {
	msg := AlertMessage("Test Bay", 0.85, RiskCritical)
	assert.Equal(t,
		"High risk detected at Test Bay. Risk Score: 0.85 (CRITICAL). "+
			"Please review current conditions and take appropriate action.",
		msg,
	)
}

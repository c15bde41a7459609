package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDashboardStep(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("score moves by at most half the swing", func(t *testing.T) {
		d := NewDashboard("TST-2024-ABCDEFGHI", now)
		d.Step(1.0, now.Add(5*time.Second))
		assert.InDelta(t, 87.5, d.SafetyScore, 1e-9)
		assert.InDelta(t, 77.9, d.BatteryLevel, 1e-9)
		assert.True(t, d.InSafeZone)
		assert.Equal(t, now.Add(5*time.Second), d.UpdatedAt)

		d.Step(0.5, now)
		assert.InDelta(t, 87.5, d.SafetyScore, 1e-9)
	})

	t.Run("score is clamped", func(t *testing.T) {
		d := NewDashboard("TST-2024-ABCDEFGHI", now)
		for range 100 {
			d.Step(0, now)
		}
		assert.Equal(t, MinSafetyScore, d.SafetyScore)
		assert.False(t, d.InSafeZone)

		for range 100 {
			d.Step(0.999, now)
		}
		assert.InDelta(t, MaxSafetyScore, d.SafetyScore, 1e-9)
		assert.True(t, d.InSafeZone)
	})

	t.Run("battery has a floor", func(t *testing.T) {
		d := NewDashboard("TST-2024-ABCDEFGHI", now)
		for range 1000 {
			d.Step(0.5, now)
		}
		assert.Equal(t, MinBatteryLevel, d.BatteryLevel)
	})

	t.Run("safe zone threshold is inclusive", func(t *testing.T) {
		d := NewDashboard("TST-2024-ABCDEFGHI", now)
		d.SafetyScore = SafeZoneScore
		d.Step(0.5, now)
		assert.True(t, d.InSafeZone)
	})
}

func TestAlertKind(t *testing.T) {
	assert.Equal(t, []string{NotifyEmergencyContacts, NotifyPolice}, AlertSOS.Notifies())
	assert.Equal(t, []string{NotifyEmergencyServices}, AlertEmergency.Notifies())
	assert.Contains(t, AlertSOS.Message(), "SOS signal sent!")
	assert.Contains(t, AlertEmergency.Message(), "Emergency services contacted!")
	assert.Empty(t, AlertKind("flare").Message())
}

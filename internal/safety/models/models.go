// Package models holds the safety dashboard state kept for registered tourists.
package models

import (
	"time"

	id "touristid/pkg/domain"
)

// Dashboard defaults for a newly enrolled tourist.
const (
	InitialSafetyScore  = 85.0
	InitialBatteryLevel = 78.0
	DefaultLocation     = "Shillong, Meghalaya"

	MinSafetyScore  = 70.0
	MaxSafetyScore  = 100.0
	SafeZoneScore   = 75.0
	MinBatteryLevel = 10.0

	// ScoreSwing is the widest move of the score in one simulator step.
	ScoreSwing   = 5.0
	BatteryDrain = 0.1
)

// RestrictedAreaWarning is shown while the tourist is outside a safe zone.
const RestrictedAreaWarning = "You are approaching a restricted area. Please follow the suggested safe route or contact authorities."

// Dashboard is the live safety picture of one tourist.
type Dashboard struct {
	TouristID    id.TouristID
	SafetyScore  float64
	BatteryLevel float64
	InSafeZone   bool
	Location     string
	EnrolledAt   time.Time
	UpdatedAt    time.Time
}

// NewDashboard returns the starting dashboard for touristID.
func NewDashboard(touristID id.TouristID, now time.Time) *Dashboard {
	return &Dashboard{
		TouristID:    touristID,
		SafetyScore:  InitialSafetyScore,
		BatteryLevel: InitialBatteryLevel,
		InSafeZone:   true,
		Location:     DefaultLocation,
		EnrolledAt:   now,
		UpdatedAt:    now,
	}
}

// Step applies one simulator step. r is a uniform sample in [0,1).
func (d *Dashboard) Step(r float64, now time.Time) {
	d.SafetyScore = min(MaxSafetyScore, max(MinSafetyScore, d.SafetyScore+(r-0.5)*ScoreSwing))
	d.BatteryLevel = max(MinBatteryLevel, d.BatteryLevel-BatteryDrain)
	d.InSafeZone = d.SafetyScore >= SafeZoneScore
	d.UpdatedAt = now
}

type AlertKind string

const (
	AlertSOS       AlertKind = "sos"
	AlertEmergency AlertKind = "emergency"
)

// Parties notified by an alert.
const (
	NotifyEmergencyContacts = "emergency_contacts"
	NotifyPolice            = "police"
	NotifyEmergencyServices = "emergency_services"
)

// Message is the confirmation shown after raising an alert of this kind.
func (k AlertKind) Message() string {
	switch k {
	case AlertSOS:
		return "SOS signal sent! Emergency contacts and nearest police station notified."
	case AlertEmergency:
		return "Emergency services contacted! Your location has been shared."
	default:
		return ""
	}
}

// Notifies lists who is told about an alert of this kind.
func (k AlertKind) Notifies() []string {
	switch k {
	case AlertSOS:
		return []string{NotifyEmergencyContacts, NotifyPolice}
	case AlertEmergency:
		return []string{NotifyEmergencyServices}
	default:
		return nil
	}
}

// Alert is a raised SOS or emergency call.
type Alert struct {
	ID        id.AlertID
	TouristID id.TouristID
	Kind      AlertKind
	Location  string
	Message   string
	Notified  []string
	RaisedAt  time.Time
}

// NearbyService is a point of help shown next to the dashboard.
type NearbyService struct {
	Kind       string  `json:"kind"`
	Name       string  `json:"name"`
	DistanceKM float64 `json:"distance_km"`
	Rating     float64 `json:"rating"`
}

// NearbyServices is the fixed list shown around the default location.
var NearbyServices = []NearbyService{
	{Kind: "police", Name: "Police Station", DistanceKM: 0.8, Rating: 4.5},
	{Kind: "hospital", Name: "Hospital", DistanceKM: 1.2, Rating: 4.8},
	{Kind: "info", Name: "Tourist Info Center", DistanceKM: 0.5, Rating: 4.7},
}

// Status is the dashboard with everything rendered next to it.
type Status struct {
	Dashboard Dashboard
	Nearby    []NearbyService
	Warning   string
}

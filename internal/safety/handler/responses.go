package handler

import "touristid/internal/safety/models"

// StatusResponse renders the dashboard the way the tourist app shows it:
// score and battery as whole numbers.
type StatusResponse struct {
	TouristID    string                 `json:"tourist_id"`
	SafetyScore  int                    `json:"safety_score"`
	BatteryLevel int                    `json:"battery_level"`
	InSafeZone   bool                   `json:"in_safe_zone"`
	Location     string                 `json:"location"`
	UpdatedAt    string                 `json:"updated_at"`
	Warning      string                 `json:"warning,omitempty"`
	Nearby       []models.NearbyService `json:"nearby_services"`
}

type AlertResponse struct {
	ID        string   `json:"id"`
	TouristID string   `json:"tourist_id"`
	Kind      string   `json:"kind"`
	Location  string   `json:"location"`
	Message   string   `json:"message"`
	Notified  []string `json:"notified"`
	RaisedAt  string   `json:"raised_at"`
}

type AlertListResponse struct {
	Alerts []AlertResponse `json:"alerts"`
}

package models

import (
	"time"

	id "touristid/pkg/domain"
)

// Registration is the record kept for a submitted wizard. It never holds the
// raw ID number; IDNumberHash is a keyed hash of it.
type Registration struct {
	ID               id.RegistrationID
	TouristID        id.TouristID
	FullName         string
	Nationality      string
	IDType           IDType
	IDNumberHash     string
	IDVerified       bool
	VisitPurpose     string
	Duration         string
	Destinations     string
	Documents        []DocumentSlot
	TrackingConsent  bool
	EmergencyConsent bool
	Device           string
	SubmittedAt      time.Time
}

package handler

import "touristid/internal/registration/models"

// UpdateFieldsRequest carries field values keyed by wire name. String
// fields take strings and consent flags take booleans.
type UpdateFieldsRequest struct {
	Fields map[string]any `json:"fields"`
}

type VerifyOTPRequest struct {
	Code string `json:"code"`
}

type StartResponse struct {
	SessionID string      `json:"session_id"`
	Token     string      `json:"token"`
	ExpiresAt string      `json:"expires_at"`
	View      models.View `json:"view"`
}

type OTPResponse struct {
	Message string      `json:"message"`
	View    models.View `json:"view"`
}

type SubmitResponse struct {
	TouristID      string `json:"tourist_id"`
	RegistrationID string `json:"registration_id"`
	Message        string `json:"message"`
}

package models

import "time"

const notProvided = "Not provided"

// Summary is the human-readable recap rendered on the consent step.
type Summary struct {
	Name               string `json:"name"`
	Nationality        string `json:"nationality"`
	IDVerification     string `json:"idVerification"`
	VisitPurpose       string `json:"visitPurpose"`
	Duration           string `json:"duration"`
	DocumentsUploaded  string `json:"documentsUploaded"`
	DocumentsAttached  int    `json:"documentsAttached"`
	DocumentsAvailable int    `json:"documentsAvailable"`
}

// OrNotProvided substitutes the placeholder for empty values.
func OrNotProvided(s string) string {
	if s == "" {
		return notProvided
	}
	return s
}

// OTPView is the client-facing OTP state.
type OTPView struct {
	Required  bool   `json:"required"`
	Sent      bool   `json:"sent"`
	Verified  bool   `json:"verified"`
	Countdown string `json:"countdown,omitempty"`
	Seconds   int    `json:"seconds"`
	CanResend bool   `json:"canResend"`
}

// View is everything a client needs to render the current wizard step.
type View struct {
	Step                Step                       `json:"step"`
	StepLabel           string                     `json:"stepLabel"`
	TotalSteps          int                        `json:"totalSteps"`
	Progress            int                        `json:"progress"`
	StepValid           bool                       `json:"stepValid"`
	Missing             []string                   `json:"missing,omitempty"`
	Draft               Draft                      `json:"draft"`
	Documents           map[DocumentSlot]*Document `json:"documents"`
	IDNumberPlaceholder string                     `json:"idNumberPlaceholder"`
	AskPassportNumber   bool                       `json:"askPassportNumber"`
	OTP                 OTPView                    `json:"otp"`
	Summary             Summary                    `json:"summary"`
	Submitted           bool                       `json:"submitted"`
}

// Snapshot is the serialisable wizard state kept by session stores.
type Snapshot struct {
	Step      Step        `json:"step"`
	Draft     Draft       `json:"draft"`
	Documents DocumentSet `json:"documents"`
	OTP       OTPSession  `json:"otp"`
	Submitted bool        `json:"submitted"`
	Device    string      `json:"device,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// Confirmation is the display-only artifact of a successful submit.
type Confirmation struct {
	TouristID string `json:"touristId"`
	Message   string `json:"message"`
}

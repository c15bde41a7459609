package models

// Step is the wizard position. Steps move by one in either direction only.
type Step int

const (
	StepPersonal Step = iota + 1
	StepIdentity
	StepTrip
	StepConsent
)

const (
	FirstStep  = StepPersonal
	LastStep   = StepConsent
	TotalSteps = int(LastStep)
)

// Valid reports whether the step is within [1,4].
func (s Step) Valid() bool {
	return s >= FirstStep && s <= LastStep
}

// Label is the progress-bar label of the step.
func (s Step) Label() string {
	switch s {
	case StepPersonal:
		return "Personal Info"
	case StepIdentity:
		return "Identity Verification"
	case StepTrip:
		return "Trip Details"
	case StepConsent:
		return "Consent"
	default:
		return ""
	}
}

// Progress is the completion percentage shown for the step.
func (s Step) Progress() int {
	return int(s) * 100 / TotalSteps
}

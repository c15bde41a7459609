package wizard

import "touristid/internal/registration/models"

// IsStepValid is the guard of Advance out of step. Steps outside [1,4] are
// never valid.
func (w *Wizard) IsStepValid(step models.Step) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return step.Valid() && len(w.missingLocked(step)) == 0
}

// MissingFields names the requirements of step that are not met.
func (w *Wizard) MissingFields(step models.Step) []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.missingLocked(step)
}

type requirement struct {
	name string
	ok   func(w *Wizard) bool
}

func nonEmpty(f models.Field) requirement {
	return requirement{name: string(f), ok: func(w *Wizard) bool {
		return *w.draft.StringField(f) != ""
	}}
}

func checked(f models.Field) requirement {
	return requirement{name: string(f), ok: func(w *Wizard) bool {
		return *w.draft.BoolField(f)
	}}
}

func attached(slot models.DocumentSlot) requirement {
	return requirement{name: string(slot), ok: func(w *Wizard) bool {
		return w.docs.Has(slot)
	}}
}

var otpVerified = requirement{name: "otpVerification", ok: func(w *Wizard) bool {
	return !w.draft.IDType.RequiresOTP() || w.otp.Verified
}}

var stepRequirements = map[models.Step][]requirement{
	models.StepPersonal: {
		nonEmpty(models.FieldFullName),
		nonEmpty(models.FieldEmail),
		nonEmpty(models.FieldPhone),
		nonEmpty(models.FieldDateOfBirth),
		nonEmpty(models.FieldNationality),
	},
	models.StepIdentity: {
		nonEmpty(models.FieldIDType),
		nonEmpty(models.FieldIDNumber),
		attached(models.SlotPhotoID),
		attached(models.SlotIDDocument),
		otpVerified,
	},
	models.StepTrip: {
		nonEmpty(models.FieldVisitPurpose),
		nonEmpty(models.FieldDuration),
		nonEmpty(models.FieldPlannedDestinations),
		nonEmpty(models.FieldEmergencyContact),
		nonEmpty(models.FieldEmergencyPhone),
	},
	models.StepConsent: {
		checked(models.FieldDataConsent),
		checked(models.FieldEmergencyConsent),
	},
}

func (w *Wizard) missingLocked(step models.Step) []string {
	reqs, ok := stepRequirements[step]
	if !ok {
		return []string{"step"}
	}
	var missing []string
	for _, r := range reqs {
		if !r.ok(w) {
			missing = append(missing, r.name)
		}
	}
	return missing
}

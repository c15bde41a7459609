package wizard

import (
	"strconv"

	"touristid/internal/registration/models"
)

// Summary renders the consent-step recap from the current state.
func (w *Wizard) Summary() models.Summary {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.summaryLocked()
}

func (w *Wizard) summaryLocked() models.Summary {
	verification := models.OrNotProvided(string(w.draft.IDType))
	if w.draft.IDType == models.IDTypeAadhaar && w.otp.Verified {
		verification = "Aadhaar Verified"
	}
	count := w.docs.Count()
	return models.Summary{
		Name:               models.OrNotProvided(w.draft.FullName),
		Nationality:        models.OrNotProvided(w.draft.Nationality),
		IDVerification:     verification,
		VisitPurpose:       models.OrNotProvided(w.draft.VisitPurpose),
		Duration:           models.OrNotProvided(w.draft.Duration),
		DocumentsUploaded:  strconv.Itoa(count) + "/" + strconv.Itoa(len(models.Slots)),
		DocumentsAttached:  count,
		DocumentsAvailable: len(models.Slots),
	}
}

// View returns everything a client needs to render the current step.
func (w *Wizard) View() models.View {
	w.mu.Lock()
	defer w.mu.Unlock()

	docs := make(map[models.DocumentSlot]*models.Document, len(models.Slots))
	for _, slot := range models.Slots {
		if d := w.docs[slot]; d != nil {
			c := *d
			docs[slot] = &c
		} else {
			docs[slot] = nil
		}
	}

	otp := models.OTPView{
		Required:  w.draft.IDType.RequiresOTP(),
		Sent:      w.otp.Sent,
		Verified:  w.otp.Verified,
		Seconds:   w.otp.CountdownSeconds,
		CanResend: w.otp.CanResend,
	}
	if w.otp.Counting() {
		otp.Countdown = w.otp.Remaining()
	}

	missing := w.missingLocked(w.step)
	return models.View{
		Step:                w.step,
		StepLabel:           w.step.Label(),
		TotalSteps:          models.TotalSteps,
		Progress:            w.step.Progress(),
		StepValid:           len(missing) == 0,
		Missing:             missing,
		Draft:               w.draft,
		Documents:           docs,
		IDNumberPlaceholder: w.draft.IDType.Placeholder(),
		AskPassportNumber:   w.draft.Nationality != models.NationalityIndian,
		OTP:                 otp,
		Summary:             w.summaryLocked(),
		Submitted:           w.submitted,
	}
}

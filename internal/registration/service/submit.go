package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"touristid/internal/registration/models"
	"touristid/internal/registration/wizard"
	id "touristid/pkg/domain"
	dErrors "touristid/pkg/domain-errors"
	"touristid/pkg/platform/events"
	"touristid/pkg/platform/sentinel"
	"touristid/pkg/requestcontext"
)

// SubmitResult is the confirmation shown after a successful submit.
type SubmitResult struct {
	TouristID      id.TouristID
	RegistrationID id.RegistrationID
	Message        string
}

// Submit issues the Tourist ID, records the registration and closes the
// session. The registration event is fail-closed: when it cannot be
// published the record is removed, the session stays open and the caller
// gets an error.
func (s *Service) Submit(ctx context.Context, sessionID id.SessionID) (*SubmitResult, error) {
	ctx, end := s.span(ctx, "Submit", sessionID)
	var result *SubmitResult
	err := s.tx.RunInTx(ctx, sessionID.String(), func(ctx context.Context) error {
		w, err := s.load(ctx, sessionID)
		if err != nil {
			return err
		}
		defer w.Close()

		conf, err := w.Submit()
		if err != nil {
			return err
		}

		reg := s.buildRegistration(ctx, w, conf)
		if err := s.registry.Save(ctx, reg); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				return dErrors.Wrap(err, dErrors.CodeConflict, "tourist ID already issued, please submit again")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record registration")
		}

		if err := s.emitSubmitted(ctx, sessionID, reg); err != nil {
			// The Tourist ID was never shown; drop the record so a retry
			// issues a fresh one without leaving an orphan behind.
			if derr := s.registry.Delete(ctx, reg.ID); derr != nil && !errors.Is(derr, sentinel.ErrNotFound) {
				s.logger.ErrorContext(ctx, "failed to roll back registration record",
					"registration_id", reg.ID.String(),
					"error", derr,
					"request_id", requestcontext.RequestID(ctx),
				)
			}
			return err
		}

		if s.safety != nil {
			if err := s.safety.Enroll(ctx, reg.TouristID); err != nil {
				s.logger.WarnContext(ctx, "failed to enroll tourist in safety dashboard",
					"tourist_id", reg.TouristID.String(),
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
			}
		}

		if err := s.documents.DeleteAll(ctx, sessionID); err != nil {
			s.logger.WarnContext(ctx, "failed to drop submitted documents", "error", err)
		}
		if err := s.sessions.Delete(ctx, sessionID); err != nil {
			s.logger.WarnContext(ctx, "failed to drop submitted session", "error", err)
		}

		s.metrics.IncRegistrations()
		s.logger.InfoContext(ctx, "registration submitted",
			"session_id", sessionID.String(),
			"tourist_id", reg.TouristID.String(),
			"registration_id", reg.ID.String(),
			"request_id", requestcontext.RequestID(ctx),
		)
		result = &SubmitResult{TouristID: reg.TouristID, RegistrationID: reg.ID, Message: conf.Message}
		return nil
	})
	end(err)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) buildRegistration(ctx context.Context, w *wizard.Wizard, conf models.Confirmation) *models.Registration {
	d := w.Draft()
	snap := w.Snapshot()
	return &models.Registration{
		ID:               id.NewRegistrationID(),
		TouristID:        id.TouristID(conf.TouristID),
		FullName:         d.FullName,
		Nationality:      d.Nationality,
		IDType:           d.IDType,
		IDNumberHash:     s.hasher.Sum(d.IDNumber),
		IDVerified:       w.OTP().Verified,
		VisitPurpose:     d.VisitPurpose,
		Duration:         d.Duration,
		Destinations:     d.PlannedDestinations,
		Documents:        snap.Documents.Attached(),
		TrackingConsent:  d.TrackingConsent,
		EmergencyConsent: d.EmergencyConsent,
		Device:           snap.Device,
		SubmittedAt:      requestcontext.Now(ctx),
	}
}

func (s *Service) emitSubmitted(ctx context.Context, sessionID id.SessionID, reg *models.Registration) error {
	if s.publisher == nil {
		return nil
	}
	slots := make([]string, 0, len(reg.Documents))
	for _, d := range reg.Documents {
		slots = append(slots, string(d))
	}
	event := events.Event{
		Type:      events.TypeRegistrationSubmitted,
		SessionID: sessionID.String(),
		TouristID: reg.TouristID.String(),
		RequestID: requestcontext.RequestID(ctx),
		Timestamp: reg.SubmittedAt,
		Attrs: map[string]string{
			"registration_id":  reg.ID.String(),
			"nationality":      reg.Nationality,
			"id_type":          string(reg.IDType),
			"id_number_hash":   reg.IDNumberHash,
			"id_verified":      strconv.FormatBool(reg.IDVerified),
			"documents":        strings.Join(slots, ","),
			"tracking_consent": strconv.FormatBool(reg.TrackingConsent),
		},
	}
	if err := s.publisher.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "CRITICAL: registration event failed",
			"tourist_id", reg.TouristID.String(),
			"error", err,
			"request_id", event.RequestID,
		)
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record registration")
	}
	return nil
}

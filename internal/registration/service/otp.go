package service

import (
	"context"

	"touristid/internal/registration/models"
	"touristid/internal/registration/wizard"
	id "touristid/pkg/domain"
	"touristid/pkg/platform/events"
)

// OTPResult is the view after an OTP operation plus the user-facing message.
type OTPResult struct {
	View    models.View
	Message string
}

// RequestOTP simulates dispatching a code to the Aadhaar-linked phone.
func (s *Service) RequestOTP(ctx context.Context, sessionID id.SessionID) (*OTPResult, error) {
	view, err := s.mutate(ctx, "RequestOTP", sessionID, func(ctx context.Context, w *wizard.Wizard) error {
		if err := w.RequestOTP(); err != nil {
			return err
		}
		s.metrics.IncOTP("request")
		s.notifySaved(ctx, events.Event{
			Type:      events.TypeOTPRequested,
			SessionID: sessionID.String(),
			Attrs:     map[string]string{"id_number_hash": s.hasher.Sum(w.Draft().IDNumber)},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &OTPResult{View: view, Message: wizard.MsgOTPSent}, nil
}

// ResendOTP re-arms the code once the countdown has run out.
func (s *Service) ResendOTP(ctx context.Context, sessionID id.SessionID) (*OTPResult, error) {
	view, err := s.mutate(ctx, "ResendOTP", sessionID, func(ctx context.Context, w *wizard.Wizard) error {
		if err := w.ResendOTP(); err != nil {
			return err
		}
		s.metrics.IncOTP("resend")
		s.notifySaved(ctx, events.Event{
			Type:      events.TypeOTPRequested,
			SessionID: sessionID.String(),
			Attrs:     map[string]string{"resend": "true"},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &OTPResult{View: view, Message: wizard.MsgOTPResent}, nil
}

// VerifyOTP accepts any well-formed code.
func (s *Service) VerifyOTP(ctx context.Context, sessionID id.SessionID, code string) (*OTPResult, error) {
	view, err := s.mutate(ctx, "VerifyOTP", sessionID, func(ctx context.Context, w *wizard.Wizard) error {
		already := w.OTP().Verified
		if err := w.VerifyOTP(code); err != nil {
			return err
		}
		if !already {
			s.metrics.IncOTP("verify")
			s.notifySaved(ctx, events.Event{Type: events.TypeOTPVerified, SessionID: sessionID.String()})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &OTPResult{View: view, Message: wizard.MsgOTPVerified}, nil
}

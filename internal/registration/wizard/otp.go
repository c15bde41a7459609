package wizard

import (
	"time"

	"touristid/internal/registration/models"
)

func isDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// RequestOTP simulates dispatching a code for an Aadhaar number. The number
// must be exactly 12 ASCII digits.
func (w *Wizard) RequestOTP() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.checkOpenLocked(); err != nil {
		return err
	}
	if !w.draft.IDType.RequiresOTP() || !isDigits(w.draft.IDNumber, models.AadhaarNumberLength) {
		return otpFormatError("Please enter a valid 12-digit Aadhaar number")
	}
	if w.otp.Verified {
		return stateError("ID number is already verified")
	}
	if w.otp.Sent {
		return stateError("OTP already sent; resend once the countdown ends")
	}
	w.armOTPLocked()
	return nil
}

// VerifyOTP accepts any well-formed 6 digit code. There is no server-side
// check behind it.
func (w *Wizard) VerifyOTP(code string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.checkOpenLocked(); err != nil {
		return err
	}
	if !w.otp.Sent {
		return stateError("request an OTP first")
	}
	if w.otp.Verified {
		return nil
	}
	if !isDigits(code, models.OTPCodeLength) {
		return otpFormatError("Please enter a valid 6-digit OTP")
	}
	w.otp.EnteredCode = code
	w.otp.Verified = true
	w.stopCountdownLocked()
	return nil
}

// ResendOTP re-arms the session once the countdown has run out. The ID
// number is not re-checked.
func (w *Wizard) ResendOTP() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.checkOpenLocked(); err != nil {
		return err
	}
	if !w.otp.CanResend {
		return stateError("resend is not available yet")
	}
	w.armOTPLocked()
	return nil
}

// Tick advances the countdown by one second.
func (w *Wizard) Tick() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.tickLocked() {
		w.stopCountdownLocked()
	}
}

// CatchUp applies every whole second elapsed since the last tick. Restored
// wizards call it before handling a request.
func (w *Wizard) CatchUp(now time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.otp.Sent || w.otp.Verified || w.otp.LastTickAt.IsZero() {
		return
	}
	elapsed := int(now.Sub(w.otp.LastTickAt) / time.Second)
	for i := 0; i < elapsed; i++ {
		if !w.tickLocked() {
			w.stopCountdownLocked()
			return
		}
	}
}

func (w *Wizard) armOTPLocked() {
	w.otp = models.OTPSession{
		Sent:             true,
		CountdownSeconds: models.OTPCountdownSeconds,
		LastTickAt:       w.now(),
	}
	w.startCountdownLocked()
}

func (w *Wizard) resetOTPLocked() {
	w.stopCountdownLocked()
	w.otp = models.OTPSession{}
}

// tickLocked reports whether the countdown should keep running.
func (w *Wizard) tickLocked() bool {
	if !w.otp.Sent || w.otp.Verified {
		return false
	}
	if w.otp.CountdownSeconds > 0 {
		w.otp.CountdownSeconds--
		w.otp.LastTickAt = w.otp.LastTickAt.Add(time.Second)
	}
	if w.otp.CountdownSeconds == 0 {
		w.otp.CanResend = true
		return false
	}
	return true
}

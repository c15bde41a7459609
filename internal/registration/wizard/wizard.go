// Package wizard implements the four step registration flow as an explicit
// state machine: Personal -> Identity -> Trip -> Consent, with Advance guarded
// by the current step's validity predicate and Retreat always allowed.
//
// A Wizard is safe for concurrent use; its optional countdown goroutine and
// callers share one mutex.
package wizard

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"touristid/internal/registration/models"
	id "touristid/pkg/domain"
)

// User-facing confirmations.
const (
	MsgOTPSent     = "OTP has been sent to your registered mobile number"
	MsgOTPResent   = "New OTP has been sent to your registered mobile number"
	MsgOTPVerified = "Aadhaar verified successfully!"
	MsgRegistered  = "Digital ID successfully registered on blockchain! Your Tourist ID: "
)

type Wizard struct {
	mu        sync.Mutex
	step      models.Step
	draft     models.Draft
	docs      models.DocumentSet
	otp       models.OTPSession
	submitted bool
	closed    bool

	createdAt time.Time
	device    string

	newTicker TickerFunc
	countdown *countdown
	now       func() time.Time
	random    io.Reader
}

type Option func(*Wizard)

// WithTicker runs the OTP countdown on tickers from fn.
func WithTicker(fn TickerFunc) Option {
	return func(w *Wizard) {
		w.newTicker = fn
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(w *Wizard) {
		w.now = now
	}
}

// WithRandom overrides the entropy used for Tourist IDs.
func WithRandom(r io.Reader) Option {
	return func(w *Wizard) {
		w.random = r
	}
}

// WithDevice records the device the session was opened from.
func WithDevice(device string) Option {
	return func(w *Wizard) {
		w.device = device
	}
}

// New returns a wizard at the first step with an empty draft.
func New(opts ...Option) *Wizard {
	w := &Wizard{
		step:   models.FirstStep,
		docs:   models.DocumentSet{},
		now:    time.Now,
		random: rand.Reader,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.createdAt = w.now()
	return w
}

// Restore rebuilds a wizard from a stored snapshot. An out of range step is
// reset to the first step. A countdown still running in the snapshot is
// resumed when a ticker is configured.
func Restore(snap models.Snapshot, opts ...Option) *Wizard {
	w := New(opts...)
	w.mu.Lock()
	defer w.mu.Unlock()

	w.step = snap.Step
	if !w.step.Valid() {
		w.step = models.FirstStep
	}
	w.draft = snap.Draft
	w.docs = models.DocumentSet{}
	for slot, doc := range snap.Documents {
		if doc != nil {
			d := *doc
			w.docs[slot] = &d
		}
	}
	w.otp = snap.OTP
	w.submitted = snap.Submitted
	if !snap.CreatedAt.IsZero() {
		w.createdAt = snap.CreatedAt
	}
	if snap.Device != "" {
		w.device = snap.Device
	}
	if w.otp.Counting() {
		w.startCountdownLocked()
	}
	return w
}

// Snapshot returns a deep copy of the state for storage.
func (w *Wizard) Snapshot() models.Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	docs := models.DocumentSet{}
	for slot, doc := range w.docs {
		if doc != nil {
			d := *doc
			docs[slot] = &d
		}
	}
	return models.Snapshot{
		Step:      w.step,
		Draft:     w.draft,
		Documents: docs,
		OTP:       w.otp,
		Submitted: w.submitted,
		Device:    w.device,
		CreatedAt: w.createdAt,
		UpdatedAt: w.now(),
	}
}

// Close tears the wizard down and waits for a running countdown to exit.
// Further operations fail with ErrInvalidState.
func (w *Wizard) Close() {
	w.mu.Lock()
	w.closed = true
	cd := w.stopCountdownLocked()
	w.mu.Unlock()
	if cd != nil {
		<-cd.done
	}
}

// Step returns the current position.
func (w *Wizard) Step() models.Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Draft returns a copy of the draft.
func (w *Wizard) Draft() models.Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft
}

// OTP returns a copy of the OTP session.
func (w *Wizard) OTP() models.OTPSession {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.otp
}

// Document returns the document attached to slot, if any.
func (w *Wizard) Document(slot models.DocumentSlot) (models.Document, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	doc := w.docs[slot]
	if doc == nil {
		return models.Document{}, false
	}
	return *doc, true
}

// Submitted reports whether Submit has succeeded.
func (w *Wizard) Submitted() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.submitted
}

func (w *Wizard) checkOpenLocked() error {
	if w.closed {
		return stateError("registration session is closed")
	}
	if w.submitted {
		return stateError("registration already submitted")
	}
	return nil
}

// Advance moves to the next step when the current step is valid. At the
// last step it is a no-op.
func (w *Wizard) Advance() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.checkOpenLocked(); err != nil {
		return err
	}
	if missing := w.missingLocked(w.step); len(missing) > 0 {
		return missingFieldsError(missing)
	}
	if w.step < models.LastStep {
		w.step++
	}
	return nil
}

// Retreat moves to the previous step; at the first step it is a no-op.
func (w *Wizard) Retreat() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.checkOpenLocked(); err != nil {
		return err
	}
	if w.step > models.FirstStep {
		w.step--
	}
	return nil
}

// Submit issues the Tourist ID. Every step must be valid and the wizard must
// be on the consent step. The ID is display-only and not derived from any
// stored record.
func (w *Wizard) Submit() (models.Confirmation, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.checkOpenLocked(); err != nil {
		return models.Confirmation{}, err
	}
	if w.step != models.LastStep {
		return models.Confirmation{}, stateError("complete all steps before submitting")
	}
	for step := models.FirstStep; step <= models.LastStep; step++ {
		if missing := w.missingLocked(step); len(missing) > 0 {
			return models.Confirmation{}, missingFieldsError(missing)
		}
	}

	touristID, err := newTouristID(w.random)
	if err != nil {
		return models.Confirmation{}, err
	}
	w.submitted = true
	w.stopCountdownLocked()

	return models.Confirmation{
		TouristID: touristID.String(),
		Message:   MsgRegistered + touristID.String(),
	}, nil
}

const base36 = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// maxUnbiased is the largest multiple of 36 that fits in a byte; bytes at or
// above it are redrawn so every character is equally likely.
const maxUnbiased = 256 - 256%len(base36)

func newTouristID(r io.Reader) (id.TouristID, error) {
	suffix := make([]byte, 0, id.TouristIDSuffixLen)
	buf := make([]byte, id.TouristIDSuffixLen)
	for len(suffix) < id.TouristIDSuffixLen {
		if _, err := io.ReadFull(r, buf[:id.TouristIDSuffixLen-len(suffix)]); err != nil {
			return "", err
		}
		for _, b := range buf[:id.TouristIDSuffixLen-len(suffix)] {
			if int(b) < maxUnbiased {
				suffix = append(suffix, base36[int(b)%len(base36)])
			}
		}
	}
	return id.TouristID(id.TouristIDPrefix + string(suffix)), nil
}

package wizard

import (
	"fmt"

	"touristid/internal/registration/models"
)

// UpdateField sets one draft field. String fields take a string, consent
// flags take a bool, and select fields only take one of their options.
// Changing the ID number while a code is out resets the OTP session.
func (w *Wizard) UpdateField(field models.Field, value any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.checkOpenLocked(); err != nil {
		return err
	}

	if flag := w.draft.BoolField(field); flag != nil {
		b, ok := value.(bool)
		if !ok {
			return fieldError(fmt.Sprintf("%s must be true or false", field))
		}
		*flag = b
		return nil
	}

	target := w.draft.StringField(field)
	if target == nil {
		return fieldError(fmt.Sprintf("unknown field %q", field))
	}
	s, ok := value.(string)
	if !ok {
		return fieldError(fmt.Sprintf("%s must be a string", field))
	}
	if !models.IsOption(field, s) {
		return fieldError(fmt.Sprintf("%q is not a valid %s", s, field))
	}

	*target = s
	if field == models.FieldIDNumber && w.otp.Sent {
		w.resetOTPLocked()
	}
	return nil
}

// AttachDocument stores a file descriptor in slot when its declared MIME
// type is on the slot's allowlist. Images also get a preview reference.
// A rejected file leaves the slot untouched.
func (w *Wizard) AttachDocument(slot models.DocumentSlot, doc models.Document) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.checkOpenLocked(); err != nil {
		return err
	}
	if _, ok := models.ParseDocumentSlot(string(slot)); !ok {
		return fieldError(fmt.Sprintf("unknown document slot %q", slot))
	}
	if !slot.Accepts(doc.ContentType) {
		return fileTypeError(slot.RejectionMessage())
	}

	doc.Preview = ""
	if doc.IsImage() {
		doc.Preview = models.PreviewPath(slot)
	}
	w.docs[slot] = &doc
	return nil
}

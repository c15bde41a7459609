package models

import "strings"

// DocumentSlot is a named upload target with its own MIME-type policy.
type DocumentSlot string

const (
	SlotPhotoID    DocumentSlot = "photoId"
	SlotIDDocument DocumentSlot = "idDocument"
	SlotPassport   DocumentSlot = "passport"
)

// Slots lists every slot in display order.
var Slots = []DocumentSlot{SlotPhotoID, SlotIDDocument, SlotPassport}

const MIMEPDF = "application/pdf"

var slotAllowlist = map[DocumentSlot][]string{
	SlotPhotoID:    {"image/jpeg", "image/png"},
	SlotIDDocument: {MIMEPDF},
	SlotPassport:   {MIMEPDF},
}

// ParseDocumentSlot returns the slot and whether it is known.
func ParseDocumentSlot(s string) (DocumentSlot, bool) {
	slot := DocumentSlot(s)
	_, ok := slotAllowlist[slot]
	return slot, ok
}

// Accepts reports whether the slot takes the declared content type.
func (s DocumentSlot) Accepts(contentType string) bool {
	for _, allowed := range slotAllowlist[s] {
		if allowed == contentType {
			return true
		}
	}
	return false
}

// RejectionMessage is the user-facing text for a refused upload.
func (s DocumentSlot) RejectionMessage() string {
	if s == SlotPhotoID {
		return "Only JPG and PNG files are allowed for profile photo."
	}
	return "Only PDF files are allowed for ID documents."
}

// Document describes an attached file. Content is kept out of the wizard
// state; Preview is only set for images.
type Document struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
	Preview     string `json:"preview,omitempty"`
}

// IsImage reports whether the document can be rendered as a preview.
func (d Document) IsImage() bool {
	return strings.HasPrefix(d.ContentType, "image/")
}

// PreviewPath is the renderable reference stored for image uploads.
func PreviewPath(slot DocumentSlot) string {
	return "/registration/documents/" + string(slot) + "/preview"
}

// DocumentSet maps each slot to its optional attached document.
type DocumentSet map[DocumentSlot]*Document

// Has reports whether a document is attached to the slot.
func (s DocumentSet) Has(slot DocumentSlot) bool {
	return s[slot] != nil
}

// Count returns the number of attached documents.
func (s DocumentSet) Count() int {
	n := 0
	for _, slot := range Slots {
		if s.Has(slot) {
			n++
		}
	}
	return n
}

// Attached returns the attached slots in display order.
func (s DocumentSet) Attached() []DocumentSlot {
	var out []DocumentSlot
	for _, slot := range Slots {
		if s.Has(slot) {
			out = append(out, slot)
		}
	}
	return out
}

package service

import (
	"context"
	"errors"
	"fmt"

	"touristid/internal/registration/models"
	"touristid/internal/registration/store/document"
	"touristid/internal/registration/wizard"
	id "touristid/pkg/domain"
	dErrors "touristid/pkg/domain-errors"
	"touristid/pkg/platform/events"
	"touristid/pkg/platform/sentinel"
)

// Upload is one file received for a document slot. ContentType is the type
// the client declared; it is not sniffed.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// AttachDocument stores the upload and attaches its descriptor to slot.
// Files over the size cap or outside the slot's allowlist are refused and
// leave the slot as it was.
func (s *Service) AttachDocument(ctx context.Context, sessionID id.SessionID, slot models.DocumentSlot, up Upload) (models.View, error) {
	if int64(len(up.Data)) > s.cfg.MaxUploadBytes {
		s.metrics.IncUploadRejected(string(slot))
		return models.View{}, dErrors.New(dErrors.CodePayloadTooLarge,
			fmt.Sprintf("file exceeds the %d MiB upload limit", s.cfg.MaxUploadBytes>>20))
	}

	return s.mutate(ctx, "AttachDocument", sessionID, func(ctx context.Context, w *wizard.Wizard) error {
		doc := models.Document{
			Filename:    up.Filename,
			ContentType: up.ContentType,
			Size:        int64(len(up.Data)),
		}
		if err := w.AttachDocument(slot, doc); err != nil {
			if errors.Is(err, wizard.ErrFileType) {
				s.metrics.IncUploadRejected(string(slot))
				s.notify(ctx, events.Event{
					Type:      events.TypeDocumentRejected,
					SessionID: sessionID.String(),
					Attrs:     map[string]string{"slot": string(slot), "content_type": up.ContentType},
				})
			}
			return err
		}
		blob := document.Blob{ContentType: up.ContentType, Data: up.Data}
		if err := s.documents.Put(ctx, sessionID, slot, blob); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store document")
		}
		return nil
	})
}

// DocumentPreview returns the bytes of an attached image. PDFs and empty
// slots have no preview.
func (s *Service) DocumentPreview(ctx context.Context, sessionID id.SessionID, slot models.DocumentSlot) (document.Blob, error) {
	ctx, end := s.span(ctx, "DocumentPreview", sessionID)
	blob, err := s.preview(ctx, sessionID, slot)
	end(err)
	return blob, err
}

func (s *Service) preview(ctx context.Context, sessionID id.SessionID, slot models.DocumentSlot) (document.Blob, error) {
	w, err := s.load(ctx, sessionID)
	if err != nil {
		return document.Blob{}, err
	}
	defer w.Close()

	doc, ok := w.Document(slot)
	if !ok || doc.Preview == "" {
		return document.Blob{}, dErrors.New(dErrors.CodeNotFound, "no preview for "+string(slot))
	}
	blob, err := s.documents.Get(ctx, sessionID, slot)
	if errors.Is(err, sentinel.ErrNotFound) {
		return document.Blob{}, dErrors.Wrap(err, dErrors.CodeNotFound, "document content expired")
	}
	if err != nil {
		return document.Blob{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read document")
	}
	return blob, nil
}

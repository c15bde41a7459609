// Package handler exposes the registration wizard over HTTP. Every route
// except POST /registration is bound to a session through its bearer token.
package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"touristid/internal/registration/models"
	"touristid/internal/registration/service"
	"touristid/internal/registration/store/document"
	id "touristid/pkg/domain"
	dErrors "touristid/pkg/domain-errors"
	"touristid/pkg/platform/httputil"
	"touristid/pkg/platform/middleware/auth"
	request "touristid/pkg/platform/middleware/request"
)

// Service is the registration service as the handler uses it.
type Service interface {
	Start(ctx context.Context) (*service.StartResult, error)
	Get(ctx context.Context, sessionID id.SessionID) (models.View, error)
	UpdateFields(ctx context.Context, sessionID id.SessionID, fields map[string]any) (models.View, error)
	AttachDocument(ctx context.Context, sessionID id.SessionID, slot models.DocumentSlot, up service.Upload) (models.View, error)
	DocumentPreview(ctx context.Context, sessionID id.SessionID, slot models.DocumentSlot) (document.Blob, error)
	RequestOTP(ctx context.Context, sessionID id.SessionID) (*service.OTPResult, error)
	VerifyOTP(ctx context.Context, sessionID id.SessionID, code string) (*service.OTPResult, error)
	ResendOTP(ctx context.Context, sessionID id.SessionID) (*service.OTPResult, error)
	Advance(ctx context.Context, sessionID id.SessionID) (models.View, error)
	Retreat(ctx context.Context, sessionID id.SessionID) (models.View, error)
	Submit(ctx context.Context, sessionID id.SessionID) (*service.SubmitResult, error)
	Discard(ctx context.Context, sessionID id.SessionID) error
}

type Handler struct {
	service        Service
	validator      auth.SessionTokenValidator
	logger         *slog.Logger
	maxUploadBytes int64
}

// multipartOverhead is the slack allowed above the file cap for multipart
// boundaries and part headers.
const multipartOverhead = 64 << 10

func New(svc Service, validator auth.SessionTokenValidator, logger *slog.Logger, maxUploadBytes int64) *Handler {
	return &Handler{
		service:        svc,
		validator:      validator,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}

// Register mounts the registration routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Post("/registration", h.handleStart)
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSession(h.validator, h.logger))
		r.Get("/registration", h.handleGet)
		r.Delete("/registration", h.handleDiscard)
		r.Patch("/registration/fields", h.handleUpdateFields)
		r.Put("/registration/documents/{slot}", h.handleUpload)
		r.Get("/registration/documents/{slot}/preview", h.handlePreview)
		r.Post("/registration/otp", h.handleRequestOTP)
		r.Post("/registration/otp/verify", h.handleVerifyOTP)
		r.Post("/registration/otp/resend", h.handleResendOTP)
		r.Post("/registration/advance", h.handleAdvance)
		r.Post("/registration/retreat", h.handleRetreat)
		r.Post("/registration/submit", h.handleSubmit)
	})
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res, err := h.service.Start(ctx)
	if err != nil {
		h.fail(ctx, w, err, "failed to start registration")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, &StartResponse{
		SessionID: res.SessionID.String(),
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt.UTC().Format(time.RFC3339),
		View:      res.View,
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	h.respondView(w, r, "failed to load registration", h.service.Get)
}

func (h *Handler) handleAdvance(w http.ResponseWriter, r *http.Request) {
	h.respondView(w, r, "cannot advance", h.service.Advance)
}

func (h *Handler) handleRetreat(w http.ResponseWriter, r *http.Request) {
	h.respondView(w, r, "cannot go back", h.service.Retreat)
}

func (h *Handler) handleDiscard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.service.Discard(ctx, auth.GetSessionID(ctx)); err != nil {
		h.fail(ctx, w, err, "failed to discard registration")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleUpdateFields(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req UpdateFieldsRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.fail(ctx, w, err, "invalid update fields request")
		return
	}
	view, err := h.service.UpdateFields(ctx, auth.GetSessionID(ctx), req.Fields)
	if err != nil {
		h.fail(ctx, w, err, "failed to update fields")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slot, ok := models.ParseDocumentSlot(chi.URLParam(r, "slot"))
	if !ok {
		h.fail(ctx, w, dErrors.New(dErrors.CodeNotFound, "unknown document slot"), "invalid upload")
		return
	}

	up, err := h.readUpload(w, r)
	if err != nil {
		h.fail(ctx, w, err, "invalid upload")
		return
	}
	view, err := h.service.AttachDocument(ctx, auth.GetSessionID(ctx), slot, up)
	if err != nil {
		h.fail(ctx, w, err, "failed to attach document")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

// readUpload reads the "file" part. The part's declared Content-Type is the
// type checked against the slot; content is not sniffed.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) (service.Upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return service.Upload{}, dErrors.Wrap(err, dErrors.CodePayloadTooLarge, "file exceeds the upload limit")
		}
		return service.Upload{}, dErrors.Wrap(err, dErrors.CodeBadRequest, "expected a multipart form")
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		return service.Upload{}, dErrors.Wrap(err, dErrors.CodeBadRequest, "missing file part")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		return service.Upload{}, dErrors.Wrap(err, dErrors.CodeBadRequest, "failed to read file")
	}
	return service.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slot, ok := models.ParseDocumentSlot(chi.URLParam(r, "slot"))
	if !ok {
		h.fail(ctx, w, dErrors.New(dErrors.CodeNotFound, "unknown document slot"), "invalid preview request")
		return
	}
	blob, err := h.service.DocumentPreview(ctx, auth.GetSessionID(ctx), slot)
	if err != nil {
		h.fail(ctx, w, err, "failed to load preview")
		return
	}
	w.Header().Set("Content-Type", blob.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(blob.Data)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(blob.Data)
}

func (h *Handler) handleRequestOTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res, err := h.service.RequestOTP(ctx, auth.GetSessionID(ctx))
	h.respondOTP(ctx, w, res, err)
}

func (h *Handler) handleResendOTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res, err := h.service.ResendOTP(ctx, auth.GetSessionID(ctx))
	h.respondOTP(ctx, w, res, err)
}

func (h *Handler) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req VerifyOTPRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.fail(ctx, w, err, "invalid verify request")
		return
	}
	res, err := h.service.VerifyOTP(ctx, auth.GetSessionID(ctx), req.Code)
	h.respondOTP(ctx, w, res, err)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res, err := h.service.Submit(ctx, auth.GetSessionID(ctx))
	if err != nil {
		h.fail(ctx, w, err, "failed to submit registration")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, &SubmitResponse{
		TouristID:      res.TouristID.String(),
		RegistrationID: res.RegistrationID.String(),
		Message:        res.Message,
	})
}

func (h *Handler) respondView(w http.ResponseWriter, r *http.Request, msg string, op func(context.Context, id.SessionID) (models.View, error)) {
	ctx := r.Context()
	view, err := op(ctx, auth.GetSessionID(ctx))
	if err != nil {
		h.fail(ctx, w, err, msg)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) respondOTP(ctx context.Context, w http.ResponseWriter, res *service.OTPResult, err error) {
	if err != nil {
		h.fail(ctx, w, err, "otp operation failed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &OTPResponse{Message: res.Message, View: res.View})
}

// fail logs at warn for client errors and error for server faults, then
// writes the mapped error response.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, err error, msg string) {
	if httputil.StatusFor(dErrors.CodeOf(err)) >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg,
			"error", err,
			"request_id", request.GetRequestID(ctx),
		)
	} else {
		h.logger.WarnContext(ctx, msg,
			"error", err,
			"request_id", request.GetRequestID(ctx),
		)
	}
	httputil.WriteError(w, err)
}

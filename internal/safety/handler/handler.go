package handler

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"touristid/internal/safety/models"
	id "touristid/pkg/domain"
	dErrors "touristid/pkg/domain-errors"
	"touristid/pkg/platform/httputil"
	request "touristid/pkg/platform/middleware/request"
)

type Service interface {
	Status(ctx context.Context, touristID id.TouristID) (*models.Status, error)
	Alerts(ctx context.Context, touristID id.TouristID) ([]*models.Alert, error)
	SOS(ctx context.Context, touristID id.TouristID) (*models.Alert, error)
	EmergencyCall(ctx context.Context, touristID id.TouristID) (*models.Alert, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/safety/{touristID}", h.handleStatus)
	r.Get("/safety/{touristID}/alerts", h.handleListAlerts)
	r.Post("/safety/{touristID}/sos", h.handleSOS)
	r.Post("/safety/{touristID}/emergency", h.handleEmergency)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	touristID, ok := h.touristID(w, r)
	if !ok {
		return
	}
	status, err := h.service.Status(ctx, touristID)
	if err != nil {
		h.fail(ctx, w, err, "failed to load safety dashboard")
		return
	}
	d := status.Dashboard
	httputil.WriteJSON(w, http.StatusOK, &StatusResponse{
		TouristID:    d.TouristID.String(),
		SafetyScore:  int(math.Round(d.SafetyScore)),
		BatteryLevel: int(math.Round(d.BatteryLevel)),
		InSafeZone:   d.InSafeZone,
		Location:     d.Location,
		UpdatedAt:    d.UpdatedAt.UTC().Format(time.RFC3339),
		Warning:      status.Warning,
		Nearby:       status.Nearby,
	})
}

func (h *Handler) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	touristID, ok := h.touristID(w, r)
	if !ok {
		return
	}
	alerts, err := h.service.Alerts(ctx, touristID)
	if err != nil {
		h.fail(ctx, w, err, "failed to list alerts")
		return
	}
	resp := &AlertListResponse{Alerts: make([]AlertResponse, 0, len(alerts))}
	for _, a := range alerts {
		resp.Alerts = append(resp.Alerts, toAlertResponse(a))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleSOS(w http.ResponseWriter, r *http.Request) {
	h.raise(w, r, h.service.SOS)
}

func (h *Handler) handleEmergency(w http.ResponseWriter, r *http.Request) {
	h.raise(w, r, h.service.EmergencyCall)
}

func (h *Handler) raise(w http.ResponseWriter, r *http.Request, op func(context.Context, id.TouristID) (*models.Alert, error)) {
	ctx := r.Context()
	touristID, ok := h.touristID(w, r)
	if !ok {
		return
	}
	a, err := op(ctx, touristID)
	if err != nil {
		h.fail(ctx, w, err, "failed to raise alert")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toAlertResponse(a))
}

func (h *Handler) touristID(w http.ResponseWriter, r *http.Request) (id.TouristID, bool) {
	touristID, err := id.ParseTouristID(chi.URLParam(r, "touristID"))
	if err != nil {
		h.fail(r.Context(), w, err, "invalid tourist ID")
		return "", false
	}
	return touristID, true
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, err error, msg string) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, "error", err, "request_id", request.GetRequestID(ctx))
	} else {
		h.logger.WarnContext(ctx, msg, "error", err, "request_id", request.GetRequestID(ctx))
	}
	httputil.WriteError(w, err)
}

func toAlertResponse(a *models.Alert) AlertResponse {
	return AlertResponse{
		ID:        a.ID.String(),
		TouristID: a.TouristID.String(),
		Kind:      string(a.Kind),
		Location:  a.Location,
		Message:   a.Message,
		Notified:  a.Notified,
		RaisedAt:  a.RaisedAt.UTC().Format(time.RFC3339),
	}
}

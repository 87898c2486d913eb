package license

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-pos/meridian-pos/internal/platform/httpx"
)

// Handler wires HTTP endpoints for license management.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers license routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/license", h.status)
	r.Post("/license/activate", h.activate)
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	eval, err := h.service.Evaluate(r.Context())
	if err != nil {
		if errors.Is(err, ErrNoLicense) {
			httpx.JSON(w, http.StatusOK, map[string]any{"state": "missing"})
			return
		}
		h.logger.Error("license status", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, eval)
}

type activateRequest struct {
	Key        string `json:"key,omitempty" validate:"omitempty,uuid4"`
	Kind       string `json:"kind,omitempty" validate:"omitempty,oneof=trial full"`
	IssuedAt   string `json:"issued_at,omitempty" validate:"omitempty,datetime=2006-01-02"`
	WindowDays int    `json:"window_days" validate:"gte=0,lte=3650"`
	Unlimited  bool   `json:"unlimited"`
}

func (h *Handler) activate(w http.ResponseWriter, r *http.Request) {
	var req activateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	input := ActivateInput{
		Key:        req.Key,
		Kind:       Kind(req.Kind),
		WindowDays: req.WindowDays,
		Unlimited:  req.Unlimited,
	}
	if req.IssuedAt != "" {
		issued, err := time.Parse("2006-01-02", req.IssuedAt)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid issued_at")
			return
		}
		input.IssuedAt = issued
	}

	lic, err := h.service.Activate(r.Context(), input)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Activation Failed", err.Error())
		return
	}
	h.logger.Info("license activated", slog.String("kind", string(lic.Kind)), slog.Bool("unlimited", lic.Unlimited))
	httpx.JSON(w, http.StatusCreated, lic)
}

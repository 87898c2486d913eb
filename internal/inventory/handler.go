package inventory

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-pos/meridian-pos/internal/platform/httpx"
	"github.com/meridian-pos/meridian-pos/internal/users"
)

// Handler wires HTTP endpoints for stock queries and corrections.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
	roles     users.Middleware
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, roles users.Middleware) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
		roles:     roles,
	}
}

// MountRoutes registers inventory routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/inventory/{productID}", h.availability)

	r.Group(func(r chi.Router) {
		r.Use(h.roles.RequireRole(users.RoleAdmin, users.RoleRoot))
		r.Put("/inventory/{productID}/stock", h.setStock)
	})
}

func (h *Handler) availability(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid product id")
		return
	}
	availability, err := h.service.Availability(r.Context(), productID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, availability)
}

type setStockRequest struct {
	Stock int `json:"stock" validate:"gte=0"`
}

func (h *Handler) setStock(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid product id")
		return
	}
	var req setStockRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.service.SetStock(r.Context(), productID, req.Stock); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var notFound *NotFoundError
	switch {
	case errors.As(err, &notFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrNegativeStock), errors.Is(err, ErrInvalidQuantity):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("inventory request", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

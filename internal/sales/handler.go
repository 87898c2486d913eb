package sales

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-pos/meridian-pos/internal/inventory"
	"github.com/meridian-pos/meridian-pos/internal/platform/httpx"
	"github.com/meridian-pos/meridian-pos/internal/shared"
)

// Handler wires HTTP endpoints for sale processing and history.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers sale routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/sales", h.process)
	r.Get("/sales", h.list)
	r.Get("/sales/{id}", h.show)
}

type processSaleRequest struct {
	Lines         []CartLine `json:"lines" validate:"required,min=1,dive"`
	PaymentMethod string     `json:"payment_method" validate:"required,oneof=cash card credit other"`
	CustomerID    *int64     `json:"customer_id,omitempty" validate:"omitempty,gt=0"`
	CashReceived  *float64   `json:"cash_received,omitempty" validate:"omitempty,gte=0"`
}

func (h *Handler) process(w http.ResponseWriter, r *http.Request) {
	actor := shared.ActorFromContext(r.Context())
	if actor == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing operator")
		return
	}

	var req processSaleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	receipt, err := h.service.ProcessSale(r.Context(), ProcessSaleInput{
		Lines:         req.Lines,
		PaymentMethod: PaymentMethod(req.PaymentMethod),
		CustomerID:    req.CustomerID,
		CashReceived:  req.CashReceived,
		CashierID:     actor.UserID,
	})
	if err != nil {
		h.respondProcessError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, receipt)
}

func (h *Handler) respondProcessError(w http.ResponseWriter, err error) {
	var notFound *ProductNotFoundError
	var outOfStock *inventory.InsufficientStockError
	switch {
	case errors.Is(err, ErrEmptyCart),
		errors.Is(err, ErrInvalidQuantity),
		errors.Is(err, ErrInvalidPaymentMethod),
		errors.Is(err, inventory.ErrInvalidQuantity):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.As(err, &notFound):
		httpx.Problem(w, http.StatusNotFound, "Product Not Found", err.Error())
	case errors.As(err, &outOfStock):
		httpx.Problem(w, http.StatusConflict, "Insufficient Stock", err.Error())
	case errors.Is(err, ErrInsufficientPayment):
		httpx.Problem(w, http.StatusPaymentRequired, "Insufficient Payment", err.Error())
	default:
		h.logger.Error("process sale", slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Transient Failure", "sale was not committed, safe to retry")
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	req := ListSalesRequest{Limit: 50}
	q := r.URL.Query()
	if v := q.Get("from"); v != "" {
		if parsed, err := time.Parse(time.RFC3339, v); err == nil {
			req.From = &parsed
		}
	}
	if v := q.Get("to"); v != "" {
		if parsed, err := time.Parse(time.RFC3339, v); err == nil {
			req.To = &parsed
		}
	}
	if v := q.Get("customer_id"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			req.CustomerID = &parsed
		}
	}
	if v := q.Get("cashier_id"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			req.CashierID = &parsed
		}
	}
	// Same bounds the service enforces, so the pagination metadata below
	// always reflects the limit actually applied.
	if v := q.Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 500 {
			req.Limit = parsed
		}
	}
	if v := q.Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			req.Offset = parsed
		}
	}

	result, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list sales", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"sales":      result,
		"total":      total,
		"pagination": shared.NewPagination(req.Offset/req.Limit+1, req.Limit, total),
	})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid sale id")
		return
	}
	sale, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
			return
		}
		h.logger.Error("get sale", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}

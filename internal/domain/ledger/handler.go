package ledger

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/recicla/recicla-api/internal/middleware"
	"github.com/recicla/recicla-api/internal/pkg/response"
)

// Handler serves the read-only points endpoints. Mutations have no direct
// HTTP surface; they happen inside the disposal and reward flows.
type Handler struct {
	svc *Service
}

// NewHandler creates ledger handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Balance handles GET /points/balance
func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	balance, err := h.svc.GetBalance(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			response.NotFound(w, "point account not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]interface{}{"balance": balance})
}

// Statement handles GET /points/statement?limit=&offset=
func (h *Handler) Statement(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	entries, total, err := h.svc.Statement(r.Context(), userID, limit, offset)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			response.NotFound(w, "point account not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.WithMeta(w, entries, response.Meta{
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// Routes returns points router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Get("/balance", h.Balance)
	r.Get("/statement", h.Statement)
	return r
}

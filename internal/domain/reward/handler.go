package reward

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/recicla/recicla-api/internal/domain/ledger"
	"github.com/recicla/recicla-api/internal/middleware"
	"github.com/recicla/recicla-api/internal/pkg/response"
	"github.com/recicla/recicla-api/internal/pkg/validator"
)

// Handler handles reward HTTP requests
type Handler struct {
	svc *Service
}

// NewHandler creates reward handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// ListActive handles GET /rewards
func (h *Handler) ListActive(w http.ResponseWriter, r *http.Request) {
	rewards, err := h.svc.ListActive(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list rewards")
		response.InternalError(w)
		return
	}
	response.OK(w, rewards)
}

// Redeem handles POST /rewards/{id}/redeem
func (h *Handler) Redeem(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	rewardID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid reward ID")
		return
	}

	red, balance, err := h.svc.Redeem(r.Context(), userID, rewardID)
	if err != nil {
		switch {
		case errors.Is(err, ErrRewardNotFound):
			response.NotFound(w, "Reward not found")
		case errors.Is(err, ErrRewardInactive):
			response.Conflict(w, "Reward is no longer available")
		case errors.Is(err, ledger.ErrInsufficientBalance):
			response.Conflict(w, "Not enough capivaras to redeem this reward")
		case errors.Is(err, ledger.ErrConcurrencyConflict):
			response.Conflict(w, "Please retry your redemption")
		default:
			log.Error().Err(err).Str("reward_id", rewardID.String()).Msg("failed to redeem reward")
			response.InternalError(w)
		}
		return
	}

	response.Created(w, map[string]interface{}{
		"redemption": red,
		"balance":    balance,
	})
}

// ListRedemptions handles GET /redemptions
func (h *Handler) ListRedemptions(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	redemptions, err := h.svc.ListRedemptions(r.Context(), userID, limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, redemptions)
}

// Create handles POST /admin/rewards
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	rw, err := h.svc.Create(r.Context(), &req)
	if err != nil {
		log.Error().Err(err).Msg("failed to create reward")
		response.InternalError(w)
		return
	}

	response.Created(w, rw)
}

// Update handles PUT /admin/rewards/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid reward ID")
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	rw, err := h.svc.Update(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, ErrRewardNotFound) {
			response.NotFound(w, "Reward not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, rw)
}

// Deactivate handles DELETE /admin/rewards/{id}
func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid reward ID")
		return
	}

	if err := h.svc.Deactivate(r.Context(), id); err != nil {
		if errors.Is(err, ErrRewardNotFound) {
			response.NotFound(w, "Reward not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.NoContent(w)
}

// ListAll handles GET /admin/rewards
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	rewards, err := h.svc.List(r.Context(), limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, rewards)
}

// Routes returns the user-facing reward router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Get("/", h.ListActive)
	r.Post("/{id}/redeem", h.Redeem)
	return r
}

// RedemptionRoutes returns the user redemption history router
func (h *Handler) RedemptionRoutes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Get("/", h.ListRedemptions)
	return r
}

// AdminRoutes returns the admin reward router
func (h *Handler) AdminRoutes(authMiddleware, adminMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Use(adminMiddleware)
	r.Get("/", h.ListAll)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Deactivate)
	return r
}

package penalty

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/recicla/recicla-api/internal/domain/user"
	"github.com/recicla/recicla-api/internal/middleware"
	"github.com/recicla/recicla-api/internal/pkg/response"
	"github.com/recicla/recicla-api/internal/pkg/validator"
)

// Handler handles penalty HTTP requests (admin only)
type Handler struct {
	svc *Service
}

// NewHandler creates penalty handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Apply handles POST /admin/penalties
func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	adminID := middleware.GetUserID(r.Context())
	if adminID == uuid.Nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req ApplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	p, err := h.svc.Apply(r.Context(), adminID, &req)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrUserNotFound):
			response.NotFound(w, "User not found")
		case errors.Is(err, ErrInvalidSeverity):
			response.BadRequest(w, "Invalid severity")
		default:
			log.Error().Err(err).Msg("failed to apply penalty")
			response.InternalError(w)
		}
		return
	}

	response.Created(w, p)
}

// ListByUser handles GET /admin/penalties/user/{userID}
func (h *Handler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	penalties, err := h.svc.ListByUser(r.Context(), userID)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, penalties)
}

// Revoke handles DELETE /admin/penalties/{id}
func (h *Handler) Revoke(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid penalty ID")
		return
	}

	if err := h.svc.Revoke(r.Context(), id); err != nil {
		if errors.Is(err, ErrPenaltyNotFound) {
			response.NotFound(w, "Penalty not found")
			return
		}
		log.Error().Err(err).Msg("failed to revoke penalty")
		response.InternalError(w)
		return
	}

	response.NoContent(w)
}

// AdminRoutes returns the admin penalty router
func (h *Handler) AdminRoutes(authMiddleware, adminMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Use(adminMiddleware)
	r.Post("/", h.Apply)
	r.Get("/user/{userID}", h.ListByUser)
	r.Delete("/{id}", h.Revoke)
	return r
}

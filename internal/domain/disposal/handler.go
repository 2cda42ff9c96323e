package disposal

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/recicla/recicla-api/internal/domain/bin"
	"github.com/recicla/recicla-api/internal/middleware"
	"github.com/recicla/recicla-api/internal/pkg/response"
	"github.com/recicla/recicla-api/internal/pkg/validator"
)

// Handler handles disposal HTTP requests
type Handler struct {
	svc *Service
}

// NewHandler creates disposal handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Create handles POST /disposals
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	d, err := h.svc.Submit(r.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, bin.ErrBinNotFound):
			response.NotFound(w, "Bin not found")
		case errors.Is(err, bin.ErrBinInactive):
			response.Conflict(w, "This collection point is no longer active")
		case errors.Is(err, ErrWasteNotAccepted):
			response.BadRequest(w, "This bin does not accept the selected waste type")
		case errors.Is(err, ErrEvidenceNotFound), errors.Is(err, ErrEvidenceNotOwned):
			response.BadRequest(w, "Evidence upload not found")
		case errors.Is(err, ErrCooldownActive):
			response.TooManyRequests(w, "You already registered a disposal at this bin in the last 24 hours")
		default:
			log.Error().Err(err).Str("user_id", userID.String()).Msg("failed to submit disposal")
			response.InternalError(w)
		}
		return
	}

	response.Created(w, d)
}

// ListMine handles GET /disposals
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	disposals, err := h.svc.ListMine(r.Context(), userID, limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, disposals)
}

// Get handles GET /disposals/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid disposal ID")
		return
	}

	d, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrDisposalNotFound) {
			response.NotFound(w, "Disposal not found")
			return
		}
		response.InternalError(w)
		return
	}

	if d.UserID != userID && middleware.GetRole(r.Context()) != "admin" {
		response.NotFound(w, "Disposal not found")
		return
	}

	response.OK(w, d)
}

// ListForReview handles GET /admin/disposals?status=
func (h *Handler) ListForReview(w http.ResponseWriter, r *http.Request) {
	status := Status(r.URL.Query().Get("status"))
	if status == "" {
		status = StatusPending
	}
	if status != StatusPending && status != StatusApproved && status != StatusRejected {
		response.BadRequest(w, "Invalid status filter")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	disposals, total, err := h.svc.ListByStatus(r.Context(), status, limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.WithMeta(w, disposals, response.Meta{Total: total, Limit: limit, Offset: offset})
}

// Approve handles POST /admin/disposals/{id}/approve
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	reviewerID := middleware.GetUserID(r.Context())
	if reviewerID == uuid.Nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid disposal ID")
		return
	}

	var req ApproveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	d, err := h.svc.Approve(r.Context(), id, reviewerID, req.Points, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, ErrDisposalNotFound):
			response.NotFound(w, "Disposal not found")
		case errors.Is(err, ErrNotPending):
			response.Conflict(w, "Disposal has already been reviewed")
		case errors.Is(err, ErrInvalidAwardValue):
			response.BadRequest(w, "Points must be positive")
		default:
			log.Error().Err(err).Str("disposal_id", id.String()).Msg("failed to approve disposal")
			response.InternalError(w)
		}
		return
	}

	response.OK(w, d)
}

// Reject handles POST /admin/disposals/{id}/reject
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	reviewerID := middleware.GetUserID(r.Context())
	if reviewerID == uuid.Nil {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid disposal ID")
		return
	}

	var req RejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}

	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	d, err := h.svc.Reject(r.Context(), id, reviewerID, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, ErrDisposalNotFound):
			response.NotFound(w, "Disposal not found")
		case errors.Is(err, ErrNotPending):
			response.Conflict(w, "Disposal has already been reviewed")
		default:
			log.Error().Err(err).Str("disposal_id", id.String()).Msg("failed to reject disposal")
			response.InternalError(w)
		}
		return
	}

	response.OK(w, d)
}

// Routes returns the user-facing disposal router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Post("/", h.Create)
	r.Get("/", h.ListMine)
	r.Get("/{id}", h.Get)
	return r
}

// AdminRoutes returns the admin review router
func (h *Handler) AdminRoutes(authMiddleware, adminMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Use(adminMiddleware)
	r.Get("/", h.ListForReview)
	r.Post("/{id}/approve", h.Approve)
	r.Post("/{id}/reject", h.Reject)
	return r
}

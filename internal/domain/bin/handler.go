package bin

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/recicla/recicla-api/internal/pkg/response"
	"github.com/recicla/recicla-api/internal/pkg/validator"
)

// Handler handles bin HTTP requests
type Handler struct {
	svc *Service
}

// NewHandler creates bin handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// ListActive handles GET /bins
func (h *Handler) ListActive(w http.ResponseWriter, r *http.Request) {
	bins, err := h.svc.ListActive(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list active bins")
		response.InternalError(w)
		return
	}
	response.OK(w, bins)
}

// Scan handles GET /bins/scan/{code} — resolves a scanned QR token
func (h *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		response.BadRequest(w, "QR code is required")
		return
	}

	b, err := h.svc.Resolve(r.Context(), code)
	if err != nil {
		switch {
		case errors.Is(err, ErrBinNotFound):
			response.NotFound(w, "Unknown QR code")
		case errors.Is(err, ErrBinInactive):
			response.Conflict(w, "This collection point is no longer active")
		default:
			response.InternalError(w)
		}
		return
	}

	response.OK(w, b)
}

// Get handles GET /bins/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid bin ID")
		return
	}

	b, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrBinNotFound) {
			response.NotFound(w, "Bin not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, b)
}

// Create handles POST /admin/bins
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

	b, err := h.svc.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrDuplicateQRCode) {
			response.Conflict(w, "QR code already registered")
			return
		}
		log.Error().Err(err).Msg("failed to create bin")
		response.InternalError(w)
		return
	}

	response.Created(w, b)
}

// Update handles PUT /admin/bins/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid bin ID")
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

	b, err := h.svc.Update(r.Context(), id, &req)
	if err != nil {
		if errors.Is(err, ErrBinNotFound) {
			response.NotFound(w, "Bin not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, b)
}

// Deactivate handles DELETE /admin/bins/{id}
func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid bin ID")
		return
	}

	if err := h.svc.Deactivate(r.Context(), id); err != nil {
		if errors.Is(err, ErrBinNotFound) {
			response.NotFound(w, "Bin not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.NoContent(w)
}

// ListAll handles GET /admin/bins
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	bins, err := h.svc.List(r.Context(), limit, offset)
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, bins)
}

// Routes returns the user-facing bin router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Get("/", h.ListActive)
	r.Get("/scan/{code}", h.Scan)
	r.Get("/{id}", h.Get)
	return r
}

// AdminRoutes returns the admin bin router
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

package evidence

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/recicla/recicla-api/internal/middleware"
	"github.com/recicla/recicla-api/internal/pkg/response"
)

// Handler handles evidence HTTP requests
type Handler struct {
	svc *Service
}

// NewHandler creates evidence handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Upload handles POST /evidence (multipart form, field "photo")
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		response.BadRequest(w, "Invalid multipart body")
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		response.BadRequest(w, "Field 'photo' is required")
		return
	}
	defer file.Close()

	u, err := h.svc.Store(r.Context(), userID, file)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidMimeType):
			response.BadRequest(w, "Only JPEG, PNG and WebP images are accepted")
		case errors.Is(err, ErrFileTooLarge):
			response.BadRequest(w, "File exceeds the 10MB limit")
		case errors.Is(err, ErrEmptyFile):
			response.BadRequest(w, "Uploaded file is empty")
		default:
			log.Error().Err(err).Str("user_id", userID.String()).Msg("failed to store evidence photo")
			response.InternalError(w)
		}
		return
	}

	response.Created(w, map[string]interface{}{
		"id":  u.ID,
		"key": u.Key,
	})
}

// Get handles GET /evidence/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid upload ID")
		return
	}

	u, url, thumbURL, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrUploadNotFound) {
			response.NotFound(w, "Upload not found")
			return
		}
		response.InternalError(w)
		return
	}

	response.OK(w, map[string]interface{}{
		"id":        u.ID,
		"key":       u.Key,
		"status":    u.Status,
		"url":       url,
		"thumb_url": thumbURL,
	})
}

// Routes returns evidence router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Post("/", h.Upload)
	r.Get("/{id}", h.Get)
	return r
}

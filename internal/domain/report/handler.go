package report

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"

	"github.com/recicla/recicla-api/internal/pkg/response"
)

// Handler handles admin report HTTP requests
type Handler struct {
	repo *Repository
}

// NewHandler creates new report handler
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// GetOverview returns platform-wide aggregates
// GET /admin/reports/overview
func (h *Handler) GetOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.repo.GetOverview(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}

	response.OK(w, overview)
}

// Routes returns report routes
func Routes(h *Handler, authMiddleware, adminMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)
	r.Use(adminMiddleware)

	r.Get("/overview", h.GetOverview)

	return r
}

// Overview represents platform-wide aggregated stats
type Overview struct {
	TotalUsers        int   `json:"total_users"`
	BannedUsers       int   `json:"banned_users"`
	ActiveBins        int   `json:"active_bins"`
	PendingDisposals  int   `json:"pending_disposals"`
	ApprovedDisposals int   `json:"approved_disposals"`
	RejectedDisposals int   `json:"rejected_disposals"`
	PointsIssued      int64 `json:"points_issued"`
	PointsRedeemed    int64 `json:"points_redeemed"`
	RedemptionsCount  int   `json:"redemptions_count"`
}

// Repository handles report data aggregation. Read-only: reports never
// write to the ledger or any domain table.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates new report repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// GetOverview aggregates counts across users, bins, disposals and the ledger
func (r *Repository) GetOverview(ctx context.Context) (*Overview, error) {
	overview := &Overview{}

	_ = r.db.GetContext(ctx, &overview.TotalUsers, `
		SELECT COUNT(*) FROM users
	`)

	_ = r.db.GetContext(ctx, &overview.BannedUsers, `
		SELECT COUNT(*) FROM users WHERE is_banned = true
	`)

	_ = r.db.GetContext(ctx, &overview.ActiveBins, `
		SELECT COUNT(*) FROM bins WHERE active = true
	`)

	_ = r.db.GetContext(ctx, &overview.PendingDisposals, `
		SELECT COUNT(*) FROM disposals WHERE status = 'pending'
	`)

	_ = r.db.GetContext(ctx, &overview.ApprovedDisposals, `
		SELECT COUNT(*) FROM disposals WHERE status = 'approved'
	`)

	_ = r.db.GetContext(ctx, &overview.RejectedDisposals, `
		SELECT COUNT(*) FROM disposals WHERE status = 'rejected'
	`)

	// Credits are positive amounts, debits negative; report both as positives
	_ = r.db.GetContext(ctx, &overview.PointsIssued, `
		SELECT COALESCE(SUM(amount), 0) FROM point_entries
		WHERE kind IN ('credit_disposal', 'credit_audit')
	`)

	_ = r.db.GetContext(ctx, &overview.PointsRedeemed, `
		SELECT COALESCE(-SUM(amount), 0) FROM point_entries
		WHERE kind = 'debit_redeem'
	`)

	_ = r.db.GetContext(ctx, &overview.RedemptionsCount, `
		SELECT COUNT(*) FROM redemptions
	`)

	return overview, nil
}

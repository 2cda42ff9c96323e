package ledger_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/recicla/recicla-api/internal/domain/ledger"
	"github.com/recicla/recicla-api/internal/middleware"
	"github.com/recicla/recicla-api/internal/pkg/jwt"
)

type balanceResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Balance int64 `json:"balance"`
	} `json:"data"`
}

type statementResponse struct {
	Success bool `json:"success"`
	Data    []struct {
		Kind        string `json:"kind"`
		Amount      int64  `json:"amount"`
		Description string `json:"description"`
	} `json:"data"`
	Meta *struct {
		Total  int `json:"total"`
		Limit  int `json:"limit"`
		Offset int `json:"offset"`
	} `json:"meta"`
}

func TestPointsEndpointsIntegration(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(db)

	userID := createTestAccount(t, db)

	repo := ledger.NewRepository(db)
	svc := ledger.NewService(repo)
	h := ledger.NewHandler(svc)

	jwtSvc := jwt.NewService("points-integration-secret", time.Hour, 24*time.Hour)
	token, err := jwtSvc.GenerateAccessToken(userID, "user", false)
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}

	r := chi.NewRouter()
	r.Mount("/api/v1/points", h.Routes(middleware.Auth(jwtSvc)))

	t.Run("GET /balance initial", func(t *testing.T) {
		rec := performPointsRequest(t, r, token, "/api/v1/points/balance")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var body balanceResponse
		decodeJSONBody(t, rec, &body)
		if !body.Success || body.Data.Balance != 0 {
			t.Fatalf("expected success=true balance=0, got success=%v balance=%d", body.Success, body.Data.Balance)
		}
	})

	t.Run("GET /balance after activity", func(t *testing.T) {
		if _, err := svc.CreditAudit(context.Background(), userID, 300, "Descarte de metal", "disposal:int-1"); err != nil {
			t.Fatalf("credit failed: %v", err)
		}
		if _, err := svc.DebitRedeem(context.Background(), userID, 120, "Resgate: Caneca", "redemption:int-1"); err != nil {
			t.Fatalf("debit failed: %v", err)
		}

		rec := performPointsRequest(t, r, token, "/api/v1/points/balance")
		var body balanceResponse
		decodeJSONBody(t, rec, &body)
		if body.Data.Balance != 180 {
			t.Fatalf("expected balance 180, got %d", body.Data.Balance)
		}
	})

	t.Run("GET /statement newest first", func(t *testing.T) {
		rec := performPointsRequest(t, r, token, "/api/v1/points/statement?limit=10")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var body statementResponse
		decodeJSONBody(t, rec, &body)
		if body.Meta == nil || body.Meta.Total != 2 {
			t.Fatalf("expected meta total 2, got %+v", body.Meta)
		}
		if len(body.Data) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(body.Data))
		}
		if body.Data[0].Kind != "debit_redeem" || body.Data[0].Amount != -120 {
			t.Fatalf("expected newest entry debit_redeem -120, got %+v", body.Data[0])
		}
		if body.Data[1].Kind != "credit_audit" || body.Data[1].Amount != 300 {
			t.Fatalf("expected older entry credit_audit 300, got %+v", body.Data[1])
		}
	})

	t.Run("unknown account 404", func(t *testing.T) {
		strangerToken, _ := jwtSvc.GenerateAccessToken(uuid.New(), "user", false)
		rec := performPointsRequest(t, r, strangerToken, "/api/v1/points/balance")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404 for unknown account, got %d", rec.Code)
		}
	})

	t.Run("JWT required", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/points/balance", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req.WithContext(context.Background()))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 without jwt, got %d", rec.Code)
		}
	})
}

func performPointsRequest(t *testing.T, handler http.Handler, token, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeJSONBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
		t.Fatalf("decode response failed: %v; body=%s", err, rec.Body.String())
	}
}

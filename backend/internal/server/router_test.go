/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-20 18:40:22
 * @FilePath: \shiftcash-bot\backend\internal\server\router_test.go
 * @LastEditTime: 2025-10-20 18:40:27
 */
package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shiftcash-bot/backend/internal/domain/identity"
	shiftdomain "shiftcash-bot/backend/internal/domain/shift"
	"shiftcash-bot/backend/internal/handler"
	"shiftcash-bot/backend/internal/middleware"
	"shiftcash-bot/backend/internal/repository"
	"shiftcash-bot/backend/internal/server"
	shiftsvc "shiftcash-bot/backend/internal/service/shift"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testJWTSecret = "test-secret"

func setupRouter(t *testing.T) (http.Handler, *shiftsvc.Service) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:routertest?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&shiftdomain.DailyMetrics{}, &shiftdomain.ReportSubmission{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	classifier := identity.NewClassifier([]int64{1}, []int64{2})
	metricsRepo := repository.NewShiftMetricsRepository(db)
	submissionRepo := repository.NewReportSubmissionRepository(db)
	svc := shiftsvc.NewService(classifier, metricsRepo, nil, submissionRepo, time.UTC, zap.NewNop().Sugar())

	router := server.NewRouter(server.RouterOptions{
		ReportHandler: handler.NewReportHandler(svc, submissionRepo),
		AuthMW:        middleware.NewAuthMiddleware(testJWTSecret),
	})
	return router, svc
}

func signToken(t *testing.T, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "ops",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestRouter_Healthz(t *testing.T) {
	router, _ := setupRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}
}

func TestRouter_ReportRequiresToken(t *testing.T) {
	router, _ := setupRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports/today", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("without token status = %d, want 401", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/reports/today", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "wrong-secret"))
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong secret status = %d, want 401", rec.Code)
	}
}

func TestRouter_ReportToday(t *testing.T) {
	router, svc := setupRouter(t)

	if _, err := svc.Handle(context.Background(), shiftsvc.Request{CallerID: 2, Command: "cash", Arg: "150.5"}); err != nil {
		t.Fatalf("seed cash: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/reports/today", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testJWTSecret))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var payload struct {
		Success bool `json:"success"`
		Data    struct {
			Cash    decimal.Decimal `json:"cash"`
			Revenue decimal.Decimal `json:"revenue"`
			Total   decimal.Decimal `json:"total"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !payload.Success {
		t.Fatalf("success = false")
	}
	if !payload.Data.Cash.Equal(decimal.NewFromFloat(150.5)) {
		t.Fatalf("cash = %s", payload.Data.Cash)
	}
	if !payload.Data.Total.Equal(decimal.NewFromFloat(150.5)) {
		t.Fatalf("total = %s", payload.Data.Total)
	}
}

func TestRouter_SubmissionsLimitValidation(t *testing.T) {
	router, _ := setupRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/reports/submissions?limit=0", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testJWTSecret))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("limit=0 status = %d, want 400", rec.Code)
	}
}

package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/itqanlabs/itqan-backend/errors"
)

func newTestContext(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHandleSuccess(t *testing.T) {
	c, rec := newTestContext(t)

	if err := HandleSuccess(zap.NewNop(), c, map[string]string{"hello": "world"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rec.Code)
	}

	var body struct {
		Code    int               `json:"code"`
		Message string            `json:"message"`
		Data    map[string]string `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Message != "success" || body.Data["hello"] != "world" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestHandleAcceptedStatus(t *testing.T) {
	c, rec := newTestContext(t)

	if err := HandleAccepted(zap.NewNop(), c, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status %d, want 202", rec.Code)
	}
}

func TestHandleErrorAppError(t *testing.T) {
	c, rec := newTestContext(t)

	err := apperrors.ErrAnalysisQuotaExceeded(20)
	if handleErr := HandleError(zap.NewNop(), c, err); handleErr != nil {
		t.Fatalf("unexpected error: %v", handleErr)
	}
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status %d, want 429", rec.Code)
	}

	var body struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != int(apperrors.ErrorCode_ANALYSIS_QUOTA_EXCEEDED) {
		t.Fatalf("code %d, want %d", body.Code, apperrors.ErrorCode_ANALYSIS_QUOTA_EXCEEDED)
	}
}

func TestHandleErrorUnknownErrorIs500(t *testing.T) {
	c, rec := newTestContext(t)

	if err := HandleError(zap.NewNop(), c, http.ErrBodyNotAllowed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status %d, want 500", rec.Code)
	}
}

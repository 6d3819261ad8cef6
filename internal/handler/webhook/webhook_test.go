package webhook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/motoyard/motoyard-api/internal/model"
)

type noopService struct {
	processed int
}

func (n *noopService) ProcessEvent(ctx context.Context, payload *model.WebhookPayload) {
	n.processed++
}

func setup(t *testing.T) (*gin.Engine, *noopService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := &noopService{}
	h := NewHandler(svc, "verify-me")

	engine := gin.New()
	h.RegisterRoutes(engine.Group("/api/v1"))
	return engine, svc
}

func TestVerifyEchoesChallenge(t *testing.T) {
	engine, _ := setup(t)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/webhooks/whatsapp?hub.mode=subscribe&hub.verify_token=verify-me&hub.challenge=12345", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "12345", w.Body.String())
}

func TestVerifyRejectsBadToken(t *testing.T) {
	engine, _ := setup(t)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/webhooks/whatsapp?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestReceiveAlwaysReturns200(t *testing.T) {
	engine, svc := setup(t)

	// Well-formed payload.
	body := `{"object":"whatsapp_business_account","entry":[]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/whatsapp", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, svc.processed)

	// Garbage payload still gets a 200, and never reaches the service.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/whatsapp", strings.NewReader("not json"))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, svc.processed)
}

package webhook

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/motoyard/motoyard-api/internal/model"
	webhookService "github.com/motoyard/motoyard-api/internal/service/webhook"
)

type Handler struct {
	service     webhookService.Servicer
	verifyToken string
}

func NewHandler(service webhookService.Servicer, verifyToken string) *Handler {
	return &Handler{service: service, verifyToken: verifyToken}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/webhooks/whatsapp", h.Verify)
	r.POST("/webhooks/whatsapp", h.Receive)
}

// Verify answers Meta's subscription handshake by echoing the challenge.
func (h *Handler) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode != "subscribe" || token != h.verifyToken {
		c.String(http.StatusForbidden, "verification failed")
		return
	}

	c.String(http.StatusOK, challenge)
}

// Receive always returns 200. A non-200 makes Meta retry and eventually
// disable the subscription, so malformed events are logged and dropped
// instead of rejected.
func (h *Handler) Receive(c *gin.Context) {
	var payload model.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		log.Warn().Err(err).Msg("undecodable webhook payload dropped")
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	h.service.ProcessEvent(c.Request.Context(), &payload)
	c.JSON(http.StatusOK, gin.H{"status": "received"})
}

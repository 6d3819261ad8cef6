package dispatch

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	dispatchService "github.com/motoyard/motoyard-api/internal/service/dispatch"
	"github.com/motoyard/motoyard-api/pkg/httputil"
)

// Handler exposes a manual dispatch trigger for external cron services. The
// scheduled worker binary is the normal entry point; both run the same
// dispatch pass, and the claim step keeps concurrent runs from double-posting.
type Handler struct {
	service    dispatchService.Servicer
	cronSecret string
}

func NewHandler(service dispatchService.Servicer, cronSecret string) *Handler {
	return &Handler{service: service, cronSecret: cronSecret}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/internal/dispatch", h.Trigger)
}

func (h *Handler) Trigger(c *gin.Context) {
	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	if h.cronSecret == "" || subtle.ConstantTimeCompare([]byte(token), []byte(h.cronSecret)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid cron secret"})
		return
	}

	report, err := h.service.Run(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, report)
}

package dealer

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	dealerService "github.com/motoyard/motoyard-api/internal/service/dealer"
	apperrors "github.com/motoyard/motoyard-api/pkg/errors"
	"github.com/motoyard/motoyard-api/pkg/httputil"
)

type Handler struct {
	service dealerService.Servicer
}

func NewHandler(service dealerService.Servicer) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts under /dealers/:dealerID; tenant checks happen in
// middleware before these run.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", h.Get)
	r.PUT("", h.UpdateProfile)
	r.PUT("/credentials", h.UpdateCredentials)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("dealerID"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid dealer ID", err))
		return
	}

	dealer, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, dealer)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	id, err := uuid.Parse(c.Param("dealerID"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid dealer ID", err))
		return
	}

	var req dealerService.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	dealer, err := h.service.UpdateProfile(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, dealer)
}

func (h *Handler) UpdateCredentials(c *gin.Context) {
	id, err := uuid.Parse(c.Param("dealerID"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid dealer ID", err))
		return
	}

	var req dealerService.CredentialsUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	dealer, err := h.service.UpdateCredentials(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, dealer)
}

package broadcast

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	broadcastService "github.com/motoyard/motoyard-api/internal/service/broadcast"
	apperrors "github.com/motoyard/motoyard-api/pkg/errors"
	"github.com/motoyard/motoyard-api/pkg/httputil"
)

type Handler struct {
	service broadcastService.Servicer
}

func NewHandler(service broadcastService.Servicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/broadcasts", h.Send)
}

type sendRequest struct {
	TemplateID uuid.UUID   `json:"template_id" binding:"required"`
	ContactIDs []uuid.UUID `json:"contact_ids" binding:"required,min=1"`
}

// Send runs the whole broadcast before responding; per-recipient failures
// come back in the result body rather than failing the request.
func (h *Handler) Send(c *gin.Context) {
	dealerID, err := uuid.Parse(c.Param("dealerID"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid dealer ID", err))
		return
	}

	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	result, err := h.service.Send(c.Request.Context(), dealerID, req.TemplateID, req.ContactIDs)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, result)
}

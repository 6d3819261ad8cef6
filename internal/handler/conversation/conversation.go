package conversation

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	conversationService "github.com/motoyard/motoyard-api/internal/service/conversation"
	dealerService "github.com/motoyard/motoyard-api/internal/service/dealer"
	apperrors "github.com/motoyard/motoyard-api/pkg/errors"
	"github.com/motoyard/motoyard-api/pkg/httputil"
)

type Handler struct {
	service conversationService.Servicer
	dealers dealerService.Servicer
}

func NewHandler(service conversationService.Servicer, dealers dealerService.Servicer) *Handler {
	return &Handler{service: service, dealers: dealers}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	conversations := r.Group("/conversations")
	{
		conversations.GET("", h.List)
		conversations.GET("/:phone", h.Get)
		conversations.POST("/:phone/messages", h.SendText)
		conversations.DELETE("/:phone", h.Delete)
	}
}

func (h *Handler) List(c *gin.Context) {
	dealerID, err := uuid.Parse(c.Param("dealerID"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid dealer ID", err))
		return
	}

	previews, err := h.service.ListConversations(c.Request.Context(), dealerID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, previews)
}

// Get returns messages oldest-first and marks the inbound ones read. The
// optional before parameter (unix milliseconds) pages backwards in time.
func (h *Handler) Get(c *gin.Context) {
	dealerID, err := uuid.Parse(c.Param("dealerID"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid dealer ID", err))
		return
	}
	phone := c.Param("phone")

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid limit", err))
			return
		}
	}

	var before time.Time
	if raw := c.Query("before"); raw != "" {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid before timestamp", err))
			return
		}
		before = time.UnixMilli(ms)
	}

	messages, err := h.service.GetConversation(c.Request.Context(), dealerID, phone, limit, before)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, messages)
}

type sendTextRequest struct {
	Body string `json:"body" binding:"required"`
}

func (h *Handler) SendText(c *gin.Context) {
	dealerID, err := uuid.Parse(c.Param("dealerID"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid dealer ID", err))
		return
	}

	var req sendTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	dealer, err := h.dealers.Get(c.Request.Context(), dealerID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	msg, err := h.service.SendText(c.Request.Context(), dealer, c.Param("phone"), req.Body)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, msg)
}

func (h *Handler) Delete(c *gin.Context) {
	dealerID, err := uuid.Parse(c.Param("dealerID"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid dealer ID", err))
		return
	}

	if err := h.service.DeleteConversation(c.Request.Context(), dealerID, c.Param("phone")); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"deleted": true})
}

package content

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/motoyard/motoyard-api/internal/model"
	contentService "github.com/motoyard/motoyard-api/internal/service/content"
	apperrors "github.com/motoyard/motoyard-api/pkg/errors"
	"github.com/motoyard/motoyard-api/pkg/httputil"
)

type Handler struct {
	service contentService.Servicer
}

func NewHandler(service contentService.Servicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	content := r.Group("/content")
	{
		content.POST("", h.Create)
		content.GET("", h.List)
		content.GET("/:id", h.Get)
		content.PUT("/:id", h.Update)
		content.POST("/:id/approve", h.Approve)
		content.POST("/:id/schedule", h.Schedule)
		content.DELETE("/:id", h.Delete)
	}
}

type contentRequest struct {
	Platform string `json:"platform" binding:"required"`
	Body     string `json:"body" binding:"required"`
	ImageURL string `json:"image_url"`
}

func (h *Handler) Create(c *gin.Context) {
	dealerID, err := uuid.Parse(c.Param("dealerID"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid dealer ID", err))
		return
	}

	var req contentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	item := &model.ContentItem{
		DealerID: dealerID,
		Platform: req.Platform,
		Body:     req.Body,
		ImageURL: req.ImageURL,
	}

	if err := h.service.Create(c.Request.Context(), item); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, item)
}

func (h *Handler) List(c *gin.Context) {
	dealerID, err := uuid.Parse(c.Param("dealerID"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid dealer ID", err))
		return
	}

	items, err := h.service.List(c.Request.Context(), dealerID, c.Query("status"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, items)
}

func (h *Handler) Get(c *gin.Context) {
	dealerID, id, err := pathIDs(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	item, err := h.service.Get(c.Request.Context(), dealerID, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, item)
}

func (h *Handler) Update(c *gin.Context) {
	dealerID, id, err := pathIDs(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req contentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	item := &model.ContentItem{
		DealerID: dealerID,
		Platform: req.Platform,
		Body:     req.Body,
		ImageURL: req.ImageURL,
	}
	item.ID = id

	if err := h.service.Update(c.Request.Context(), item); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, item)
}

func (h *Handler) Approve(c *gin.Context) {
	dealerID, id, err := pathIDs(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	item, err := h.service.Approve(c.Request.Context(), dealerID, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, item)
}

type scheduleRequest struct {
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
}

func (h *Handler) Schedule(c *gin.Context) {
	dealerID, id, err := pathIDs(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	item, err := h.service.Schedule(c.Request.Context(), dealerID, id, req.ScheduledAt)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, item)
}

func (h *Handler) Delete(c *gin.Context) {
	dealerID, id, err := pathIDs(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), dealerID, id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"deleted": true})
}

func pathIDs(c *gin.Context) (dealerID, id uuid.UUID, err error) {
	dealerID, err = uuid.Parse(c.Param("dealerID"))
	if err != nil {
		return uuid.Nil, uuid.Nil, apperrors.BadRequest("invalid dealer ID", err)
	}
	id, err = uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, apperrors.BadRequest("invalid content ID", err)
	}
	return dealerID, id, nil
}

package template

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/motoyard/motoyard-api/internal/model"
	templateService "github.com/motoyard/motoyard-api/internal/service/template"
	apperrors "github.com/motoyard/motoyard-api/pkg/errors"
	"github.com/motoyard/motoyard-api/pkg/httputil"
)

type Handler struct {
	service templateService.Servicer
}

func NewHandler(service templateService.Servicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	templates := r.Group("/templates")
	{
		templates.POST("", h.Create)
		templates.GET("", h.List)
		templates.GET("/:id", h.Get)
		templates.PUT("/:id", h.Update)
		templates.PUT("/:id/status", h.SetStatus)
		templates.DELETE("/:id", h.Delete)
	}
}

type templateRequest struct {
	Name     string `json:"name" binding:"required"`
	Language string `json:"language"`
	Body     string `json:"body" binding:"required"`
}

func (h *Handler) Create(c *gin.Context) {
	dealerID, err := uuid.Parse(c.Param("dealerID"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid dealer ID", err))
		return
	}

	var req templateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	tmpl := &model.Template{
		DealerID: dealerID,
		Name:     req.Name,
		Language: req.Language,
		Body:     req.Body,
	}

	if err := h.service.Create(c.Request.Context(), tmpl); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, tmpl)
}

func (h *Handler) List(c *gin.Context) {
	dealerID, err := uuid.Parse(c.Param("dealerID"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid dealer ID", err))
		return
	}

	templates, err := h.service.List(c.Request.Context(), dealerID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, templates)
}

func (h *Handler) Get(c *gin.Context) {
	dealerID, id, err := pathIDs(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	tmpl, err := h.service.Get(c.Request.Context(), dealerID, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, tmpl)
}

func (h *Handler) Update(c *gin.Context) {
	dealerID, id, err := pathIDs(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req templateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	tmpl := &model.Template{
		DealerID: dealerID,
		Name:     req.Name,
		Language: req.Language,
		Body:     req.Body,
	}
	tmpl.ID = id

	if err := h.service.Update(c.Request.Context(), tmpl); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, tmpl)
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) SetStatus(c *gin.Context) {
	dealerID, id, err := pathIDs(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	tmpl, err := h.service.SetStatus(c.Request.Context(), dealerID, id, req.Status)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, tmpl)
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
		return uuid.Nil, uuid.Nil, apperrors.BadRequest("invalid template ID", err)
	}
	return dealerID, id, nil
}

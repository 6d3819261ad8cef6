package contact

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/motoyard/motoyard-api/internal/model"
	contactService "github.com/motoyard/motoyard-api/internal/service/contact"
	apperrors "github.com/motoyard/motoyard-api/pkg/errors"
	"github.com/motoyard/motoyard-api/pkg/httputil"
)

type Handler struct {
	service contactService.Servicer
}

func NewHandler(service contactService.Servicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	contacts := r.Group("/contacts")
	{
		contacts.POST("", h.Create)
		contacts.GET("", h.List)
		contacts.GET("/:id", h.Get)
		contacts.PUT("/:id", h.Update)
		contacts.DELETE("/:id", h.Delete)
	}
}

type contactRequest struct {
	Phone   string   `json:"phone" binding:"required"`
	Name    string   `json:"name"`
	OptedIn bool     `json:"opted_in"`
	Tags    []string `json:"tags"`
}

func (h *Handler) Create(c *gin.Context) {
	dealerID, err := uuid.Parse(c.Param("dealerID"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid dealer ID", err))
		return
	}

	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	contact := &model.Contact{
		DealerID: dealerID,
		Phone:    req.Phone,
		Name:     req.Name,
		OptedIn:  req.OptedIn,
		Tags:     req.Tags,
		Source:   "manual",
	}

	if err := h.service.Create(c.Request.Context(), contact); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, contact)
}

func (h *Handler) List(c *gin.Context) {
	dealerID, err := uuid.Parse(c.Param("dealerID"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid dealer ID", err))
		return
	}

	contacts, err := h.service.List(c.Request.Context(), dealerID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, contacts)
}

func (h *Handler) Get(c *gin.Context) {
	dealerID, id, err := pathIDs(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	contact, err := h.service.Get(c.Request.Context(), dealerID, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, contact)
}

func (h *Handler) Update(c *gin.Context) {
	dealerID, id, err := pathIDs(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	contact := &model.Contact{
		DealerID: dealerID,
		Name:     req.Name,
		OptedIn:  req.OptedIn,
		Tags:     req.Tags,
	}
	contact.ID = id

	if err := h.service.Update(c.Request.Context(), contact); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, contact)
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
		return uuid.Nil, uuid.Nil, apperrors.BadRequest("invalid contact ID", err)
	}
	return dealerID, id, nil
}

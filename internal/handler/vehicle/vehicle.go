package vehicle

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/motoyard/motoyard-api/internal/model"
	vehicleService "github.com/motoyard/motoyard-api/internal/service/vehicle"
	apperrors "github.com/motoyard/motoyard-api/pkg/errors"
	"github.com/motoyard/motoyard-api/pkg/httputil"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("model_year", validModelYear)
	}
}

// validModelYear accepts years from the dawn of the automobile up to next
// year's models.
func validModelYear(fl validator.FieldLevel) bool {
	year := int(fl.Field().Int())
	return year >= 1900 && year <= time.Now().Year()+1
}

type Handler struct {
	service vehicleService.Servicer
}

func NewHandler(service vehicleService.Servicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	vehicles := r.Group("/vehicles")
	{
		vehicles.POST("", h.Create)
		vehicles.GET("", h.List)
		vehicles.GET("/:id", h.Get)
		vehicles.PUT("/:id", h.Update)
		vehicles.DELETE("/:id", h.Delete)
	}
}

type vehicleRequest struct {
	Make        string   `json:"make" binding:"required"`
	Model       string   `json:"model" binding:"required"`
	Year        int      `json:"year" binding:"required,model_year"`
	Price       int64    `json:"price" binding:"required"`
	Mileage     int      `json:"mileage"`
	Status      string   `json:"status"`
	Description string   `json:"description"`
	ImageURLs   []string `json:"image_urls"`
}

func (h *Handler) Create(c *gin.Context) {
	dealerID, err := uuid.Parse(c.Param("dealerID"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid dealer ID", err))
		return
	}

	var req vehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	vehicle := vehicleFromRequest(dealerID, &req)
	if err := h.service.Create(c.Request.Context(), vehicle); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, vehicle)
}

func (h *Handler) List(c *gin.Context) {
	dealerID, err := uuid.Parse(c.Param("dealerID"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid dealer ID", err))
		return
	}

	vehicles, err := h.service.List(c.Request.Context(), dealerID, c.Query("status"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, vehicles)
}

func (h *Handler) Get(c *gin.Context) {
	dealerID, id, err := pathIDs(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	vehicle, err := h.service.Get(c.Request.Context(), dealerID, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, vehicle)
}

func (h *Handler) Update(c *gin.Context) {
	dealerID, id, err := pathIDs(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req vehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	vehicle := vehicleFromRequest(dealerID, &req)
	vehicle.ID = id

	if err := h.service.Update(c.Request.Context(), vehicle); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, vehicle)
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

func vehicleFromRequest(dealerID uuid.UUID, req *vehicleRequest) *model.Vehicle {
	return &model.Vehicle{
		DealerID:    dealerID,
		Make:        req.Make,
		Model:       req.Model,
		Year:        req.Year,
		Price:       req.Price,
		Mileage:     req.Mileage,
		Status:      req.Status,
		Description: req.Description,
		ImageURLs:   req.ImageURLs,
	}
}

func pathIDs(c *gin.Context) (dealerID, id uuid.UUID, err error) {
	dealerID, err = uuid.Parse(c.Param("dealerID"))
	if err != nil {
		return uuid.Nil, uuid.Nil, apperrors.BadRequest("invalid dealer ID", err)
	}
	id, err = uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, apperrors.BadRequest("invalid vehicle ID", err)
	}
	return dealerID, id, nil
}

package clinic

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-dashboard/internal/middleware"
	"github.com/jwalitptl/clinic-dashboard/internal/model"
	"github.com/jwalitptl/clinic-dashboard/internal/service/clinic"
	apperrors "github.com/jwalitptl/clinic-dashboard/pkg/errors"
	"github.com/jwalitptl/clinic-dashboard/pkg/httputil"
)

type Handler struct {
	service *clinic.Service
}

func NewHandler(service *clinic.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	clinics := r.Group("/clinic")
	{
		clinics.GET("/:id", h.GetClinic)
		clinics.PUT("/:id/address", h.UpdateAddress)
		clinics.PATCH("/:id/settings", h.UpdateSettings)
	}
}

// clinicID parses :id and only admits the caller's own clinic.
func clinicID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid clinic ID", err))
		return 0, false
	}
	if id != middleware.ClinicID(c) {
		httputil.RespondWithError(c, apperrors.Forbidden("not your clinic"))
		return 0, false
	}
	return id, true
}

func (h *Handler) GetClinic(c *gin.Context) {
	id, ok := clinicID(c)
	if !ok {
		return
	}

	clinic, err := h.service.MyClinic(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, clinic)
}

func (h *Handler) UpdateAddress(c *gin.Context) {
	id, ok := clinicID(c)
	if !ok {
		return
	}

	var req model.UpdateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondBindError(c, err)
		return
	}

	clinic, err := h.service.UpdateAddress(c.Request.Context(), id, req.Address)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, clinic)
}

func (h *Handler) UpdateSettings(c *gin.Context) {
	id, ok := clinicID(c)
	if !ok {
		return
	}

	var patch model.ClinicPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		httputil.RespondBindError(c, err)
		return
	}

	clinic, err := h.service.UpdateSettings(c.Request.Context(), id, patch)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, clinic)
}

package service

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-dashboard/internal/middleware"
	"github.com/jwalitptl/clinic-dashboard/internal/model"
	"github.com/jwalitptl/clinic-dashboard/internal/service/catalog"
	"github.com/jwalitptl/clinic-dashboard/internal/workspace"
	apperrors "github.com/jwalitptl/clinic-dashboard/pkg/errors"
	"github.com/jwalitptl/clinic-dashboard/pkg/httputil"
)

// Handler serves the dentist's service catalog. Edits stay in the
// workspace until saved.
type Handler struct {
	service    *catalog.Service
	workspaces *workspace.Registry
}

func NewHandler(service *catalog.Service, workspaces *workspace.Registry) *Handler {
	return &Handler{service: service, workspaces: workspaces}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	services := r.Group("/services")
	{
		services.GET("/available", h.ListAvailable)
		services.GET("", h.ListServices)
		services.POST("/refresh", h.Refresh)
		services.POST("", h.AddServices)
		services.DELETE("/:name", h.RemoveService)
		services.PUT("/:name/duration", h.UpdateDuration)
		services.POST("/save", h.Save)
	}
}

func (h *Handler) workspace(c *gin.Context) (*workspace.Workspace, bool) {
	ws, err := h.workspaces.Get(middleware.UserID(c))
	if err != nil {
		httputil.RespondWithError(c, apperrors.Internal(err))
		return nil, false
	}
	return ws, true
}

// loadedWorkspace is workspace with the saved catalog fetched on first use.
func (h *Handler) loadedWorkspace(c *gin.Context) (*workspace.Workspace, bool) {
	ws, ok := h.workspace(c)
	if !ok {
		return nil, false
	}
	if err := h.service.EnsureLoaded(c.Request.Context(), ws.Catalog, ws.UserID); err != nil {
		httputil.RespondWithError(c, err)
		return nil, false
	}
	return ws, true
}

func (h *Handler) ListAvailable(c *gin.Context) {
	available, err := h.service.Available(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, available)
}

func (h *Handler) ListServices(c *gin.Context) {
	ws, ok := h.loadedWorkspace(c)
	if !ok {
		return
	}
	httputil.RespondWithSuccess(c, ws.Catalog.Snapshot())
}

// Refresh replaces the workspace catalog with the saved one, dropping
// unsaved edits.
func (h *Handler) Refresh(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	if err := h.service.Refresh(c.Request.Context(), ws.Catalog, ws.UserID); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, ws.Catalog.Snapshot())
}

func (h *Handler) AddServices(c *gin.Context) {
	var req model.AddServicesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondBindError(c, err)
		return
	}
	ws, ok := h.loadedWorkspace(c)
	if !ok {
		return
	}
	if _, err := h.service.AddFromCatalog(c.Request.Context(), ws.Catalog, req.Names, req.Duration); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, ws.Catalog.Snapshot())
}

func (h *Handler) RemoveService(c *gin.Context) {
	ws, ok := h.loadedWorkspace(c)
	if !ok {
		return
	}
	ws.Catalog.Remove(c.Param("name"))
	httputil.RespondWithSuccess(c, ws.Catalog.Snapshot())
}

func (h *Handler) UpdateDuration(c *gin.Context) {
	var req model.UpdateDurationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondBindError(c, err)
		return
	}
	ws, ok := h.loadedWorkspace(c)
	if !ok {
		return
	}
	ws.Catalog.UpdateDuration(c.Param("name"), req.Duration)
	httputil.RespondWithSuccess(c, ws.Catalog.Snapshot())
}

// Save submits the catalog. On failure the edits and the unsaved flag stay.
func (h *Handler) Save(c *gin.Context) {
	ws, ok := h.loadedWorkspace(c)
	if !ok {
		return
	}
	if err := h.service.Save(c.Request.Context(), ws.Catalog, ws.UserID); err != nil {
		httputil.RespondWithErrorData(c, err, ws.Catalog.Snapshot())
		return
	}
	httputil.RespondWithSuccess(c, ws.Catalog.Snapshot())
}

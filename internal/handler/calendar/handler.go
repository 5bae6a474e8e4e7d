package calendar

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-dashboard/internal/calendar"
	"github.com/jwalitptl/clinic-dashboard/internal/middleware"
	"github.com/jwalitptl/clinic-dashboard/internal/model"
	"github.com/jwalitptl/clinic-dashboard/internal/workspace"
	apperrors "github.com/jwalitptl/clinic-dashboard/pkg/errors"
	"github.com/jwalitptl/clinic-dashboard/pkg/httputil"
)

type Handler struct {
	workspaces *workspace.Registry
}

func NewHandler(workspaces *workspace.Registry) *Handler {
	return &Handler{workspaces: workspaces}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	cal := r.Group("/calendar")
	{
		cal.GET("", h.GetConfig)
		cal.GET("/state", h.GetState)
		cal.GET("/doctors", h.ListDoctors)
		cal.PUT("/doctor", h.SelectDoctor)
		cal.PUT("/granularity", h.ChangeGranularity)

		callbacks := cal.Group("/callbacks")
		callbacks.POST("/event-click", h.EventClick)
		callbacks.POST("/date-click", h.DateClick)
		callbacks.POST("/event-drop", h.EventDrop)
		callbacks.POST("/range-change", h.RangeChange)

		cal.PUT("/draft", h.SetDraft)
		cal.POST("/draft/confirm", h.ConfirmDraft)
		cal.DELETE("/draft", h.CancelDraft)
		cal.DELETE("/detail", h.CloseDetail)

		cal.PATCH("/events/:id", h.UpdateEvent)
		cal.DELETE("/events/:id", h.DeleteEvent)
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

func (h *Handler) GetConfig(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	httputil.RespondWithSuccess(c, ws.Calendar.Config())
}

func (h *Handler) GetState(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	httputil.RespondWithSuccess(c, ws.Calendar.Snapshot())
}

func (h *Handler) ListDoctors(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	httputil.RespondWithSuccess(c, gin.H{
		"doctors":          ws.Calendar.Doctors(),
		"selectedDoctorId": ws.Doctors.Selected(),
	})
}

func (h *Handler) SelectDoctor(c *gin.Context) {
	var req model.SelectDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondBindError(c, err)
		return
	}
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	if err := ws.Calendar.SelectDoctor(req.DoctorID); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, ws.Calendar.Config())
}

func (h *Handler) ChangeGranularity(c *gin.Context) {
	var req model.ChangeGranularityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondBindError(c, err)
		return
	}
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	if err := ws.Calendar.ChangeGranularity(req.Granularity); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, ws.Calendar.Config())
}

func (h *Handler) EventClick(c *gin.Context) {
	var info calendar.EventClickInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		httputil.RespondBindError(c, err)
		return
	}
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	httputil.RespondWithSuccess(c, ws.Calendar.OnEventClick(info))
}

func (h *Handler) DateClick(c *gin.Context) {
	var info calendar.DateClickInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		httputil.RespondBindError(c, err)
		return
	}
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	ws.Calendar.OnDateClick(info)
	httputil.RespondWithSuccess(c, ws.Calendar.Snapshot())
}

// EventDrop answers 501: the drop is echoed back as a reschedule command
// and the stored event keeps its original times.
func (h *Handler) EventDrop(c *gin.Context) {
	var info calendar.EventDropInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		httputil.RespondBindError(c, err)
		return
	}
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	cmd, err := ws.Calendar.OnEventDrop(info)
	if err != nil {
		httputil.RespondWithErrorData(c, err, cmd)
		return
	}
	httputil.RespondWithSuccess(c, cmd)
}

func (h *Handler) RangeChange(c *gin.Context) {
	var info calendar.RangeInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		httputil.RespondBindError(c, err)
		return
	}
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	ws.Calendar.OnVisibleRangeChange(info)
	httputil.RespondWithSuccess(c, ws.Calendar.Config())
}

func (h *Handler) SetDraft(c *gin.Context) {
	var req model.DraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondBindError(c, err)
		return
	}
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	ws.Calendar.SetDraftPatientName(req.PatientName)
	httputil.RespondWithSuccess(c, ws.Calendar.Snapshot().Draft)
}

func (h *Handler) ConfirmDraft(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	created, ok := ws.Calendar.OnCreateConfirm()
	if !ok {
		httputil.RespondWithError(c, apperrors.Validation("a slot and a patient name are required"))
		return
	}
	httputil.RespondCreated(c, created.Widget())
}

func (h *Handler) CancelDraft(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	ws.Calendar.CancelCreate()
	httputil.RespondWithSuccess(c, ws.Calendar.Snapshot())
}

func (h *Handler) CloseDetail(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	ws.Calendar.CloseDetail()
	httputil.RespondWithSuccess(c, ws.Calendar.Snapshot())
}

// UpdateEvent merges the patch into the stored event. An unknown id is
// not an error; the response reports whether anything changed.
func (h *Handler) UpdateEvent(c *gin.Context) {
	var patch model.EventPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		httputil.RespondBindError(c, err)
		return
	}
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	updated, err := ws.Events.Update(c.Param("id"), patch)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	resp := gin.H{"updated": updated}
	if e, found := ws.Events.Get(c.Param("id")); found {
		resp["event"] = e.Widget()
	}
	httputil.RespondWithSuccess(c, resp)
}

func (h *Handler) DeleteEvent(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deleted": ws.Events.Delete(c.Param("id"))})
}

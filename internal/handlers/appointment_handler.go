package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	domain "github.com/clinicavet/vet-scheduler/internal/domain/appointment"
	"github.com/clinicavet/vet-scheduler/internal/httperr"
	"github.com/clinicavet/vet-scheduler/internal/httpresp"
	"github.com/clinicavet/vet-scheduler/internal/middleware"
	ucAppointment "github.com/clinicavet/vet-scheduler/internal/usecase/appointment"
)

type AppointmentHandler struct {
	bookUC   *ucAppointment.BookAppointment
	assignUC *ucAppointment.AssignVet
	statusUC *ucAppointment.UpdateStatus
	listUC   *ucAppointment.ListAppointments
	statsUC  *ucAppointment.GetStats
}

func NewAppointmentHandler(
	bookUC *ucAppointment.BookAppointment,
	assignUC *ucAppointment.AssignVet,
	statusUC *ucAppointment.UpdateStatus,
	listUC *ucAppointment.ListAppointments,
	statsUC *ucAppointment.GetStats,
) *AppointmentHandler {
	return &AppointmentHandler{
		bookUC:   bookUC,
		assignUC: assignUC,
		statusUC: statusUC,
		listUC:   listUC,
		statsUC:  statsUC,
	}
}

// --------- Requests ---------

type CreateAppointmentRequest struct {
	PetID       uint      `json:"pet_id" binding:"required"`
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
	Reason      string    `json:"reason" binding:"required"`
	Notes       string    `json:"notes"`
}

type AssignVetRequest struct {
	VetID uint `json:"vet_id" binding:"required"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

// --------- Handlers ---------

func (h *AppointmentHandler) Create(c *gin.Context) {
	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.WriteError(c, httperr.Validation("pet, scheduled time and reason are required"))
		return
	}

	user, _ := middleware.UserFromContext(c)
	ap, err := h.bookUC.Execute(c.Request.Context(), user.ID, ucAppointment.BookInput{
		PetID:       req.PetID,
		ScheduledAt: req.ScheduledAt,
		Reason:      req.Reason,
		Notes:       req.Notes,
	})
	if err != nil {
		httperr.WriteError(c, err)
		return
	}

	httpresp.Created(c, gin.H{"appointment": ap})
}

func (h *AppointmentHandler) List(c *gin.Context) {
	user, _ := middleware.UserFromContext(c)

	aps, err := h.listUC.ForUser(c.Request.Context(), user)
	if err != nil {
		httperr.WriteError(c, err)
		return
	}

	httpresp.OK(c, gin.H{"appointments": aps, "total": len(aps)})
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	user, _ := middleware.UserFromContext(c)
	ap, err := h.listUC.Get(c.Request.Context(), user, id)
	if err != nil {
		httperr.WriteError(c, err)
		return
	}

	httpresp.OK(c, gin.H{"appointment": ap})
}

func (h *AppointmentHandler) AssignVet(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req AssignVetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.WriteError(c, httperr.Validation("vet_id is required"))
		return
	}

	user, _ := middleware.UserFromContext(c)
	ap, err := h.assignUC.Execute(c.Request.Context(), user.ID, id, req.VetID)
	if err != nil {
		httperr.WriteError(c, err)
		return
	}

	httpresp.OK(c, gin.H{
		"appointment": ap,
		"message":     "veterinarian assigned",
	})
}

func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.WriteError(c, httperr.Validation("status is required"))
		return
	}

	user, _ := middleware.UserFromContext(c)
	ap, err := h.statusUC.Execute(c.Request.Context(), user, id, domain.Status(req.Status), req.Notes)
	if err != nil {
		httperr.WriteError(c, err)
		return
	}

	httpresp.OK(c, gin.H{"appointment": ap})
}

func (h *AppointmentHandler) Stats(c *gin.Context) {
	stats, err := h.statsUC.Execute(c.Request.Context())
	if err != nil {
		httperr.WriteError(c, err)
		return
	}
	httpresp.OK(c, gin.H{"stats": stats})
}

func (h *AppointmentHandler) Today(c *gin.Context) {
	aps, err := h.statsUC.TodaySchedule(c.Request.Context())
	if err != nil {
		httperr.WriteError(c, err)
		return
	}
	httpresp.OK(c, gin.H{"appointments": aps, "total": len(aps)})
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.WriteError(c, httperr.Validation("invalid appointment id"))
		return 0, false
	}
	return uint(id), true
}

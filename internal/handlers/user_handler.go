package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/clinicavet/vet-scheduler/internal/auth"
	"github.com/clinicavet/vet-scheduler/internal/httperr"
	"github.com/clinicavet/vet-scheduler/internal/httpresp"
)

type UserHandler struct {
	svc *auth.Service
}

func NewUserHandler(svc *auth.Service) *UserHandler {
	return &UserHandler{svc: svc}
}

func (h *UserHandler) ListVets(c *gin.Context) {
	vets, err := h.svc.ListVets(c.Request.Context())
	if err != nil {
		httperr.WriteError(c, err)
		return
	}
	httpresp.OK(c, gin.H{"vets": vets})
}

func (h *UserHandler) ListClients(c *gin.Context) {
	clients, err := h.svc.ListClients(c.Request.Context())
	if err != nil {
		httperr.WriteError(c, err)
		return
	}
	httpresp.OK(c, gin.H{"clients": clients})
}

func (h *UserHandler) Deactivate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.WriteError(c, httperr.Validation("invalid user id"))
		return
	}

	if err := h.svc.Deactivate(c.Request.Context(), uint(id)); err != nil {
		httperr.WriteError(c, err)
		return
	}
	httpresp.Message(c, "user deactivated")
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/devlabsgt/backend/internal/domain/registry"
	"github.com/devlabsgt/backend/internal/http/response"
	"github.com/devlabsgt/backend/internal/services"
)

// RegistryHandler serves the reference catalogs: donors, global
// objectives and strategic lines.
type RegistryHandler struct {
	registryService services.RegistryService
}

func NewRegistryHandler(registryService services.RegistryService) *RegistryHandler {
	return &RegistryHandler{registryService: registryService}
}

func (rh *RegistryHandler) CreateDonor(c *gin.Context) {
	var row registry.Donor
	if err := c.ShouldBindJSON(&row); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	created, err := rh.registryService.CreateDonor(c.Request.Context(), &row)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, created)
}

func (rh *RegistryHandler) ListDonors(c *gin.Context) {
	activeOnly, _ := strconv.ParseBool(c.DefaultQuery("active", "false"))
	donors, err := rh.registryService.ListDonors(c.Request.Context(), activeOnly)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, donors)
}

func (rh *RegistryHandler) GetDonor(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	donor, err := rh.registryService.GetDonor(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	if donor == nil {
		response.RespondError(c, http.StatusNotFound, "not_found", nil)
		return
	}
	response.RespondOK(c, donor)
}

func (rh *RegistryHandler) UpdateDonor(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var row registry.Donor
	if err := c.ShouldBindJSON(&row); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	row.ID = id
	updated, err := rh.registryService.UpdateDonor(c.Request.Context(), &row)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, updated)
}

func (rh *RegistryHandler) DeleteDonor(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	if err := rh.registryService.DeleteDonor(c.Request.Context(), id); err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func (rh *RegistryHandler) CreateObjective(c *gin.Context) {
	var row registry.GlobalObjective
	if err := c.ShouldBindJSON(&row); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	created, err := rh.registryService.CreateObjective(c.Request.Context(), &row)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, created)
}

func (rh *RegistryHandler) ListObjectives(c *gin.Context) {
	objectives, err := rh.registryService.ListObjectives(c.Request.Context())
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, objectives)
}

func (rh *RegistryHandler) UpdateObjective(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var row registry.GlobalObjective
	if err := c.ShouldBindJSON(&row); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	row.ID = id
	updated, err := rh.registryService.UpdateObjective(c.Request.Context(), &row)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, updated)
}

func (rh *RegistryHandler) CreateLine(c *gin.Context) {
	var row registry.StrategicLine
	if err := c.ShouldBindJSON(&row); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	created, err := rh.registryService.CreateLine(c.Request.Context(), &row)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, created)
}

func (rh *RegistryHandler) ListLines(c *gin.Context) {
	lines, err := rh.registryService.ListLines(c.Request.Context())
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, lines)
}

func (rh *RegistryHandler) UpdateLine(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var row registry.StrategicLine
	if err := c.ShouldBindJSON(&row); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	row.ID = id
	updated, err := rh.registryService.UpdateLine(c.Request.Context(), &row)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, updated)
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	dataagg "github.com/devlabsgt/backend/internal/data/aggregates"
	"github.com/devlabsgt/backend/internal/http/response"
)

func (ph *ProjectHandler) AddActivity(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req struct {
		Name            string         `json:"name"`
		Description     string         `json:"description"`
		AllocatedBudget float64        `json:"allocated_budget"`
		StartDate       *string        `json:"start_date"`
		EndDate         *string        `json:"end_date"`
		ExpectedResults string         `json:"expected_results"`
		Milestones      datatypes.JSON `json:"milestones"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	in := dataagg.ActivityInput{
		Name:            req.Name,
		Description:     req.Description,
		AllocatedBudget: req.AllocatedBudget,
		ExpectedResults: req.ExpectedResults,
		Milestones:      req.Milestones,
	}
	if in.StartDate, err = parseDatePtr(req.StartDate); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if in.EndDate, err = parseDatePtr(req.EndDate); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	updated, err := ph.projectService.AddActivity(c.Request.Context(), projectID, in)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, updated)
}

func (ph *ProjectHandler) UpdateActivityProgress(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	activityID, err := uuid.Parse(c.Param("activityId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req struct {
		Progress int    `json:"progress"`
		Status   string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	updated, err := ph.projectService.UpdateActivityProgress(c.Request.Context(), projectID, activityID, req.Progress, req.Status)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, updated)
}

func (ph *ProjectHandler) AssociateBeneficiaries(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	activityID, err := uuid.Parse(c.Param("activityId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req struct {
		BeneficiaryIDs []string `json:"beneficiary_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	ids, err := parseUUIDs(req.BeneficiaryIDs)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	updated, err := ph.projectService.AssociateBeneficiaries(c.Request.Context(), projectID, activityID, ids)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, updated)
}

func (ph *ProjectHandler) UpdateAssociationStatus(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	activityID, err := uuid.Parse(c.Param("activityId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	beneficiaryID, err := uuid.Parse(c.Param("beneficiaryId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req struct {
		Status string  `json:"status"`
		Notes  *string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	updated, err := ph.projectService.UpdateAssociationStatus(c.Request.Context(), projectID, activityID, beneficiaryID, req.Status, req.Notes)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, updated)
}

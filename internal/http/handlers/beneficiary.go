package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/devlabsgt/backend/internal/domain/beneficiary"
	"github.com/devlabsgt/backend/internal/http/response"
	"github.com/devlabsgt/backend/internal/services"
)

type BeneficiaryHandler struct {
	beneficiaryService services.BeneficiaryService
}

func NewBeneficiaryHandler(beneficiaryService services.BeneficiaryService) *BeneficiaryHandler {
	return &BeneficiaryHandler{beneficiaryService: beneficiaryService}
}

func (bh *BeneficiaryHandler) Create(c *gin.Context) {
	var row beneficiary.Beneficiary
	if err := c.ShouldBindJSON(&row); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	created, err := bh.beneficiaryService.Create(c.Request.Context(), &row)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, created)
}

func (bh *BeneficiaryHandler) List(c *gin.Context) {
	rows, err := bh.beneficiaryService.List(c.Request.Context())
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, rows)
}

func (bh *BeneficiaryHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	row, err := bh.beneficiaryService.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	if row == nil {
		response.RespondError(c, http.StatusNotFound, "not_found", nil)
		return
	}
	response.RespondOK(c, row)
}

func (bh *BeneficiaryHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var row beneficiary.Beneficiary
	if err := c.ShouldBindJSON(&row); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	row.ID = id
	updated, err := bh.beneficiaryService.Update(c.Request.Context(), &row)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, updated)
}

func (bh *BeneficiaryHandler) SetStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := bh.beneficiaryService.SetStatus(c.Request.Context(), id, req.Status); err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

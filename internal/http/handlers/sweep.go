package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/devlabsgt/backend/internal/http/response"
	"github.com/devlabsgt/backend/internal/services"
)

type SweepHandler struct {
	sweepService *services.SweepService
}

func NewSweepHandler(sweepService *services.SweepService) *SweepHandler {
	return &SweepHandler{sweepService: sweepService}
}

// Trigger runs one sweep pass outside the daily schedule.
func (sh *SweepHandler) Trigger(c *gin.Context) {
	finished, failed, err := sh.sweepService.Run(c.Request.Context())
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"finished": finished, "failed": failed})
}

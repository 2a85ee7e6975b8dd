package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devlabsgt/backend/internal/domain/registry"
	"github.com/devlabsgt/backend/internal/http/response"
	"github.com/devlabsgt/backend/internal/services"
)

type MailConfigHandler struct {
	mailerService services.MailerService
}

func NewMailConfigHandler(mailerService services.MailerService) *MailConfigHandler {
	return &MailConfigHandler{mailerService: mailerService}
}

func (mh *MailConfigHandler) Get(c *gin.Context) {
	cfg, err := mh.mailerService.Config(c.Request.Context())
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, cfg)
}

func (mh *MailConfigHandler) Update(c *gin.Context) {
	var cfg registry.MailConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	updated, err := mh.mailerService.UpdateConfig(c.Request.Context(), &cfg)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, updated)
}

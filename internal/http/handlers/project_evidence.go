package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/devlabsgt/backend/internal/http/response"
	"github.com/devlabsgt/backend/internal/services"
)

// UploadEvidences receives a multipart form with one or more "files"
// parts plus optional per-file "descriptions".
func (ph *ProjectHandler) UploadEvidences(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errNoFiles)
		return
	}
	descriptions := form.Value["descriptions"]

	files := make([]services.EvidenceFile, 0, len(fileHeaders))
	for i, fh := range fileHeaders {
		desc := ""
		if i < len(descriptions) {
			desc = descriptions[i]
		}
		files = append(files, services.EvidenceFile{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Description: desc,
			Open:        openMultipart(fh),
		})
	}

	updated, err := ph.projectService.UploadEvidences(c.Request.Context(), projectID, files)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, updated)
}

func (ph *ProjectHandler) RemoveEvidence(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	evidenceID, err := uuid.Parse(c.Param("evidenceId"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	if err := ph.projectService.RemoveEvidence(c.Request.Context(), projectID, evidenceID); err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

var errNoFiles = errors.New("no files provided")

func openMultipart(fh *multipart.FileHeader) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) {
		return fh.Open()
	}
}

package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	dataagg "github.com/devlabsgt/backend/internal/data/aggregates"
	"github.com/devlabsgt/backend/internal/http/response"
	"github.com/devlabsgt/backend/internal/services"
)

type ProjectHandler struct {
	projectService services.ProjectService
}

func NewProjectHandler(projectService services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

type donorLineDTO struct {
	DonorID        string  `json:"donor_id"`
	Amount         float64 `json:"amount"`
	CommitmentDate *string `json:"commitment_date"`
}

type locationDTO struct {
	Description string `json:"description"`
	Rank        int    `json:"rank"`
}

type createProjectDTO struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	BudgetTotal float64 `json:"budget_total"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	EncargadoID *string `json:"encargado_id"`

	Department   string `json:"department"`
	Municipality string `json:"municipality"`
	Locality     string `json:"locality"`

	FollowUpFrequency     string  `json:"follow_up_frequency"`
	FollowUpVisitRequired bool    `json:"follow_up_visit_required"`
	FollowUpNextDate      *string `json:"follow_up_next_date"`

	Donors           []donorLineDTO `json:"donors"`
	Locations        []locationDTO  `json:"locations"`
	ObjectiveIDs     []string       `json:"objective_ids"`
	StrategicLineIDs []string       `json:"strategic_line_ids"`
}

// parseDate accepts plain dates and full RFC 3339 timestamps.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return t, nil
}

func parseDatePtr(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := parseDate(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseUUIDPtr(s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func parseUUIDs(ss []string) ([]uuid.UUID, error) {
	if ss == nil {
		return nil, nil
	}
	out := make([]uuid.UUID, 0, len(ss))
	for _, s := range ss {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", s)
		}
		out = append(out, id)
	}
	return out, nil
}

func donorLines(dtos []donorLineDTO) ([]dataagg.DonorLine, error) {
	if dtos == nil {
		return nil, nil
	}
	out := make([]dataagg.DonorLine, 0, len(dtos))
	for _, d := range dtos {
		id, err := uuid.Parse(d.DonorID)
		if err != nil {
			return nil, fmt.Errorf("invalid donor_id %q", d.DonorID)
		}
		date, err := parseDatePtr(d.CommitmentDate)
		if err != nil {
			return nil, err
		}
		out = append(out, dataagg.DonorLine{DonorID: id, Amount: d.Amount, CommitmentDate: date})
	}
	return out, nil
}

func locationInputs(dtos []locationDTO) []dataagg.LocationInput {
	if dtos == nil {
		return nil
	}
	out := make([]dataagg.LocationInput, 0, len(dtos))
	for _, l := range dtos {
		out = append(out, dataagg.LocationInput{Description: l.Description, Rank: l.Rank})
	}
	return out
}

func (ph *ProjectHandler) Create(c *gin.Context) {
	var req createProjectDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	in := dataagg.CreateProjectInput{
		Name:                  req.Name,
		Description:           req.Description,
		BudgetTotal:           req.BudgetTotal,
		Department:            req.Department,
		Municipality:          req.Municipality,
		Locality:              req.Locality,
		FollowUpFrequency:     req.FollowUpFrequency,
		FollowUpVisitRequired: req.FollowUpVisitRequired,
		Locations:             locationInputs(req.Locations),
	}
	var err error
	if in.StartDate, err = parseDate(req.StartDate); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if in.EndDate, err = parseDate(req.EndDate); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if in.EncargadoID, err = parseUUIDPtr(req.EncargadoID); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if in.FollowUpNextDate, err = parseDatePtr(req.FollowUpNextDate); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if in.Donors, err = donorLines(req.Donors); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if in.ObjectiveIDs, err = parseUUIDs(req.ObjectiveIDs); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if in.StrategicLineIDs, err = parseUUIDs(req.StrategicLineIDs); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	created, err := ph.projectService.Create(c.Request.Context(), in)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, created)
}

func (ph *ProjectHandler) List(c *gin.Context) {
	projects, err := ph.projectService.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, projects)
}

func (ph *ProjectHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	project, err := ph.projectService.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, project)
}

type updateProjectDTO struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	BudgetTotal *float64 `json:"budget_total"`
	StartDate   *string  `json:"start_date"`
	EndDate     *string  `json:"end_date"`
	EncargadoID *string  `json:"encargado_id"`

	Department   *string `json:"department"`
	Municipality *string `json:"municipality"`
	Locality     *string `json:"locality"`

	FollowUpFrequency     *string `json:"follow_up_frequency"`
	FollowUpVisitRequired *bool   `json:"follow_up_visit_required"`
	FollowUpNextDate      *string `json:"follow_up_next_date"`

	Donors           []donorLineDTO `json:"donors"`
	Locations        []locationDTO  `json:"locations"`
	ObjectiveIDs     []string       `json:"objective_ids"`
	StrategicLineIDs []string       `json:"strategic_line_ids"`
}

func (ph *ProjectHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req updateProjectDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	in := dataagg.UpdateProjectInput{
		Name:                  req.Name,
		Description:           req.Description,
		BudgetTotal:           req.BudgetTotal,
		Department:            req.Department,
		Municipality:          req.Municipality,
		Locality:              req.Locality,
		FollowUpFrequency:     req.FollowUpFrequency,
		FollowUpVisitRequired: req.FollowUpVisitRequired,
	}
	if in.StartDate, err = parseDatePtr(req.StartDate); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if in.EndDate, err = parseDatePtr(req.EndDate); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if in.EncargadoID, err = parseUUIDPtr(req.EncargadoID); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if in.FollowUpNextDate, err = parseDatePtr(req.FollowUpNextDate); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if in.Donors, err = donorLines(req.Donors); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if req.Locations != nil {
		in.Locations = locationInputs(req.Locations)
	}
	if in.ObjectiveIDs, err = parseUUIDs(req.ObjectiveIDs); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if in.StrategicLineIDs, err = parseUUIDs(req.StrategicLineIDs); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	updated, err := ph.projectService.Update(c.Request.Context(), id, in)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, updated)
}

func (ph *ProjectHandler) SetStatus(c *gin.Context) {
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
	updated, err := ph.projectService.SetStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondOK(c, updated)
}

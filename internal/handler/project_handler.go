package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taskboard/internal/model"
	"taskboard/internal/repository"
	"taskboard/internal/service"
)

type ProjectHandler struct {
	projects *service.ProjectService
}

func NewProjectHandler(projects *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// ProjectRequest is the body for creating or replacing a project
type ProjectRequest struct {
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description"`
	Progress    int        `json:"progress"`
	Deadline    *time.Time `json:"deadline"`
	Team        []string   `json:"team"`
}

func (r ProjectRequest) input() service.ProjectInput {
	return service.ProjectInput{
		Name:        r.Name,
		Description: r.Description,
		Progress:    r.Progress,
		Deadline:    r.Deadline,
		Team:        r.Team,
	}
}

type ProjectResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Progress    int      `json:"progress"`
	Deadline    *string  `json:"deadline,omitempty"`
	Team        []string `json:"team"`
	OwnerID     string   `json:"owner_id"`
	CreatedAt   string   `json:"created_at"`
}

func newProjectResponse(p *model.Project) ProjectResponse {
	resp := ProjectResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Progress:    p.Progress,
		Team:        p.Team,
		OwnerID:     p.OwnerID.String(),
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
	if resp.Team == nil {
		resp.Team = []string{}
	}
	if p.Deadline != nil {
		deadline := p.Deadline.Format("2006-01-02")
		resp.Deadline = &deadline
	}
	return resp
}

// Create godoc
// @Summary      Create a project and open its board
// @Tags         Projects
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request body ProjectRequest true "Project"
// @Success      201 {object} ProjectResponse
// @Router       /projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	project, err := h.projects.Create(c.Request.Context(), ownerID, req.input())
	if err != nil {
		writeProjectError(c, err, "Failed to create project")
		return
	}

	c.JSON(http.StatusCreated, newProjectResponse(project))
}

// GetAll godoc
// @Summary      List projects
// @Tags         Projects
// @Security     BearerAuth
// @Produce      json
// @Success      200 {array} ProjectResponse
// @Router       /projects [get]
func (h *ProjectHandler) GetAll(c *gin.Context) {
	projects, err := h.projects.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve projects"})
		return
	}

	response := make([]ProjectResponse, len(projects))
	for i := range projects {
		response[i] = newProjectResponse(&projects[i])
	}
	c.JSON(http.StatusOK, response)
}

func (h *ProjectHandler) GetByID(c *gin.Context) {
	projectID, ok := projectIDParam(c)
	if !ok {
		return
	}

	project, err := h.projects.Get(c.Request.Context(), projectID)
	if err != nil {
		writeProjectError(c, err, "Failed to retrieve project")
		return
	}
	c.JSON(http.StatusOK, newProjectResponse(project))
}

func (h *ProjectHandler) Update(c *gin.Context) {
	projectID, ok := projectIDParam(c)
	if !ok {
		return
	}

	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	project, err := h.projects.Update(c.Request.Context(), projectID, req.input())
	if err != nil {
		writeProjectError(c, err, "Failed to update project")
		return
	}
	c.JSON(http.StatusOK, newProjectResponse(project))
}

// Delete godoc
// @Summary      Delete a project and close its board
// @Tags         Projects
// @Security     BearerAuth
// @Param        id path string true "Project ID"
// @Success      204
// @Failure      404 {object} map[string]string
// @Router       /projects/{id} [delete]
func (h *ProjectHandler) Delete(c *gin.Context) {
	projectID, ok := projectIDParam(c)
	if !ok {
		return
	}

	if err := h.projects.Delete(c.Request.Context(), projectID); err != nil {
		writeProjectError(c, err, "Failed to delete project")
		return
	}
	c.Status(http.StatusNoContent)
}

func writeProjectError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrInvalidProject):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

package ingest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ecobuild/internal/domain/element"
	"ecobuild/internal/domain/project"
	"ecobuild/internal/pkg/response"
)

type Handler struct {
	service  *Service
	projects *project.Service
}

func NewHandler(service *Service, projects *project.Service) *Handler {
	return &Handler{service: service, projects: projects}
}

type ingestRequest struct {
	Filename string                  `json:"filename" binding:"required"`
	Elements []element.ParsedElement `json:"elements" binding:"required"`
}

// Ingest handles POST /projects/:id/ingest. The model file itself is
// parsed upstream; this endpoint receives the parsed element list.
func (h *Handler) Ingest(c *gin.Context) {
	projectID, ok := response.ParamID(c, "id")
	if !ok {
		return
	}

	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}

	if _, err := h.projects.Get(c.Request.Context(), projectID); err != nil {
		response.FromError(c, err)
		return
	}

	u, err := h.service.Ingest(c.Request.Context(), projectID, req.Filename, req.Elements)
	if err != nil {
		// The upload record (marked Failed) still identifies the attempt.
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, u)
}

type matchRequest struct {
	MaterialIDs []int64 `json:"material_ids" binding:"required"`
}

// ApplyAutomaticMatches handles POST /projects/:id/matches/auto
func (h *Handler) ApplyAutomaticMatches(c *gin.Context) {
	projectID, ok := response.ParamID(c, "id")
	if !ok {
		return
	}

	var req matchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}

	matched, err := h.service.ApplyAutomaticMatches(c.Request.Context(), projectID, req.MaterialIDs)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"matched_count": matched})
}

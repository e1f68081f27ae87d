package material

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ecobuild/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /projects/:id/materials
func (h *Handler) List(c *gin.Context) {
	projectID, ok := response.ParamID(c, "id")
	if !ok {
		return
	}
	materials, err := h.service.List(c.Request.Context(), projectID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, materials)
}

// Get handles GET /projects/:id/materials/:materialId
func (h *Handler) Get(c *gin.Context) {
	projectID, ok := response.ParamID(c, "id")
	if !ok {
		return
	}
	materialID, ok := response.ParamID(c, "materialId")
	if !ok {
		return
	}
	m, err := h.service.Get(c.Request.Context(), projectID, materialID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, m)
}

// Delete handles DELETE /projects/:id/materials/:materialId
func (h *Handler) Delete(c *gin.Context) {
	projectID, ok := response.ParamID(c, "id")
	if !ok {
		return
	}
	materialID, ok := response.ParamID(c, "materialId")
	if !ok {
		return
	}
	deletedBy := c.GetInt64("user_id")
	if err := h.service.Delete(c.Request.Context(), projectID, materialID, deletedBy); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": materialID})
}

// ApplyManualMatch handles POST /projects/:id/materials/:materialId/match
func (h *Handler) ApplyManualMatch(c *gin.Context) {
	projectID, ok := response.ParamID(c, "id")
	if !ok {
		return
	}
	materialID, ok := response.ParamID(c, "materialId")
	if !ok {
		return
	}

	var req ManualMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}

	m, err := h.service.ApplyManualMatch(c.Request.Context(), projectID, materialID, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, m)
}

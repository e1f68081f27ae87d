package upload

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

// ListByProject handles GET /projects/:id/uploads
func (h *Handler) ListByProject(c *gin.Context) {
	projectID, ok := response.ParamID(c, "id")
	if !ok {
		return
	}
	uploads, err := h.service.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, uploads)
}

// Get handles GET /uploads/:uploadId
func (h *Handler) Get(c *gin.Context) {
	u, err := h.service.Get(c.Request.Context(), c.Param("uploadId"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, u)
}

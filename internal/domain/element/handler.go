package element

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ecobuild/internal/pkg/apperrors"
	"ecobuild/internal/pkg/response"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// List handles GET /projects/:id/elements
func (h *Handler) List(c *gin.Context) {
	projectID, ok := response.ParamID(c, "id")
	if !ok {
		return
	}
	elements, err := h.repo.ListByProject(c.Request.Context(), nil, projectID)
	if err != nil {
		response.FromError(c, apperrors.Database("element.List", "element", err))
		return
	}
	response.Success(c, http.StatusOK, elements)
}

// Get handles GET /projects/:id/elements/:elementId
func (h *Handler) Get(c *gin.Context) {
	projectID, ok := response.ParamID(c, "id")
	if !ok {
		return
	}
	elementID, ok := response.ParamID(c, "elementId")
	if !ok {
		return
	}
	e, err := h.repo.GetByID(c.Request.Context(), projectID, elementID)
	if err == ErrElementNotFound {
		response.FromError(c, apperrors.NotFound("element.Get", "element", err))
		return
	}
	if err != nil {
		response.FromError(c, apperrors.Database("element.Get", "element", err))
		return
	}
	response.Success(c, http.StatusOK, e)
}

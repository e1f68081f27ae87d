package impact

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ecobuild/internal/pkg/response"
)

type Handler struct {
	aggregator *Aggregator
}

func NewHandler(aggregator *Aggregator) *Handler {
	return &Handler{aggregator: aggregator}
}

// ProjectIndicators handles GET /projects/:id/indicators
func (h *Handler) ProjectIndicators(c *gin.Context) {
	projectID, ok := response.ParamID(c, "id")
	if !ok {
		return
	}
	totals, err := h.aggregator.ProjectIndicators(c.Request.Context(), projectID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, totals)
}

// ElementIndicators handles GET /projects/:id/elements/:elementId/indicators
func (h *Handler) ElementIndicators(c *gin.Context) {
	projectID, ok := response.ParamID(c, "id")
	if !ok {
		return
	}
	elementID, ok := response.ParamID(c, "elementId")
	if !ok {
		return
	}
	totals, err := h.aggregator.ElementIndicators(c.Request.Context(), projectID, elementID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, totals)
}

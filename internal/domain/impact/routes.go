package impact

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	r.GET("/projects/:id/indicators", handler.ProjectIndicators)
	r.GET("/projects/:id/elements/:elementId/indicators", handler.ElementIndicators)
}

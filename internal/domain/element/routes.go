package element

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	r.GET("/projects/:id/elements", handler.List)
	r.GET("/projects/:id/elements/:elementId", handler.Get)
}

package project

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	projects := r.Group("/projects")
	{
		projects.POST("", handler.Create)
		projects.GET("", handler.List)
		projects.GET("/:id", handler.Get)
		projects.DELETE("/:id", handler.Delete)
	}
}

package material

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	materials := r.Group("/projects/:id/materials")
	{
		materials.GET("", handler.List)
		materials.GET("/:materialId", handler.Get)
		materials.DELETE("/:materialId", handler.Delete)
		materials.POST("/:materialId/match", handler.ApplyManualMatch)
	}
}

package upload

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	r.GET("/projects/:id/uploads", handler.ListByProject)
	r.GET("/uploads/:uploadId", handler.Get)
}

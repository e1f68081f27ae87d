package ingest

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	r.POST("/projects/:id/ingest", handler.Ingest)
	r.POST("/projects/:id/matches/auto", handler.ApplyAutomaticMatches)
}

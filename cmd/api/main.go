package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"ecobuild/internal/catalog"
	"ecobuild/internal/config"
	"ecobuild/internal/database"
	"ecobuild/internal/domain/element"
	"ecobuild/internal/domain/impact"
	"ecobuild/internal/domain/ingest"
	"ecobuild/internal/domain/match"
	"ecobuild/internal/domain/material"
	"ecobuild/internal/domain/project"
	"ecobuild/internal/domain/upload"
	"ecobuild/internal/middleware"
	jwtsvc "ecobuild/internal/pkg/jwt"
	"ecobuild/internal/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zlog, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatal(err)
	}
	defer zlog.Sync()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		zlog.Fatal("database connection failed", "error", err)
	}
	if err := db.AutoMigrate(
		&project.Project{},
		&material.Material{},
		&material.Match{},
		&material.DeletionLog{},
		&element.Element{},
		&upload.Upload{},
	); err != nil {
		zlog.Fatal("migration failed", "error", err)
	}

	projectRepo := project.NewRepository(db)
	materialRepo := material.NewRepository(db)
	elementRepo := element.NewRepository(db)
	uploadRepo := upload.NewRepository(db)

	catalogClient := catalog.NewClient(cfg.CatalogBaseURL, cfg.CatalogAPIKey, cfg.CatalogTimeout, cfg.CatalogCacheTTL)

	projectService := project.NewService(projectRepo, zlog)
	materialService := material.NewService(materialRepo, zlog)
	uploadService := upload.NewService(uploadRepo, zlog)
	writer := element.NewWriter(elementRepo, zlog)
	matcher := match.NewEngine(materialRepo, catalogClient, zlog)
	aggregator := impact.NewAggregator(elementRepo, materialRepo)
	ingestService := ingest.NewService(db, materialService, writer, matcher, aggregator, uploadService, zlog)

	j := jwtsvc.New(cfg.JWTSecret, 24*time.Hour)

	if cfg.AppEnv == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.CORS())
	r.Use(middleware.RequestLogger(zlog))

	v1 := r.Group("/api/v1")
	v1.Use(middleware.Auth(j))
	{
		project.RegisterRoutes(v1, project.NewHandler(projectService))
		material.RegisterRoutes(v1, material.NewHandler(materialService))
		element.RegisterRoutes(v1, element.NewHandler(elementRepo))
		upload.RegisterRoutes(v1, upload.NewHandler(uploadService))
		ingest.RegisterRoutes(v1, ingest.NewHandler(ingestService, projectService))
		impact.RegisterRoutes(v1, impact.NewHandler(aggregator))
	}

	zlog.Info("starting api", "addr", cfg.HTTPAddr, "env", cfg.AppEnv)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		zlog.Fatal("server stopped", "error", err)
	}
}

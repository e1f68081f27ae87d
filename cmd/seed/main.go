package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/gorm/clause"

	"ecobuild/internal/database"
	"ecobuild/internal/domain/element"
	"ecobuild/internal/domain/material"
	"ecobuild/internal/domain/project"
	"ecobuild/internal/domain/upload"
	"ecobuild/internal/pkg/logger"
)

// Seeds a demo project with a small element/material set through the
// same upsert paths the ingestion pipeline uses, so re-running the seed
// converges instead of duplicating.
func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "ecobuild_dev.db"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal(err)
	}
	if err := db.AutoMigrate(
		&project.Project{},
		&material.Material{},
		&material.Match{},
		&material.DeletionLog{},
		&element.Element{},
		&upload.Upload{},
	); err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	now := time.Now()

	demo := &project.Project{
		ID:          1,
		Name:        "Demo Office Building",
		Description: "Seeded demo project",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "description", "updated_at"}),
	}).Create(demo).Error; err != nil {
		log.Fatal(err)
	}

	zlog := logger.NewNop()
	materials := material.NewService(material.NewRepository(db), zlog)
	writer := element.NewWriter(element.NewRepository(db), zlog)

	parsed := []element.ParsedElement{
		{
			ExternalID: "WALL-001",
			Name:       "Exterior wall north",
			Type:       "Wall",
			Volume:     12.5,
			Properties: element.ParsedProperties{LoadBearing: true, IsExternal: true},
			Materials: []element.ParsedMaterialRef{
				{Name: "Concrete C30/37", Volume: 10.0},
				{Name: "Mineral wool", Volume: 2.5},
			},
		},
		{
			ExternalID: "SLAB-001",
			Name:       "Ground floor slab",
			Type:       "Slab",
			Volume:     40.0,
			Properties: element.ParsedProperties{LoadBearing: true},
			LayerSets: []element.ParsedLayerGroup{
				{Layers: []element.ParsedLayer{
					{MaterialName: "Concrete C30/37"},
					{MaterialName: "XPS insulation"},
				}},
			},
		},
	}

	names := map[string]struct{}{}
	for i := range parsed {
		for _, n := range parsed[i].MaterialNames() {
			names[n] = struct{}{}
		}
	}

	byName, err := materials.ReconcileNames(ctx, nil, demo.ID, "seed", names)
	if err != nil {
		log.Fatal(err)
	}
	count, err := writer.WriteElements(ctx, nil, demo.ID, "seed", parsed, byName)
	if err != nil {
		log.Fatal(err)
	}

	log.Printf("seeded project %d with %d elements and %d materials", demo.ID, count, len(byName))
}

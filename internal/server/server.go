// Package server is the drafterd backend: a Fiber service exposing the
// session registry, the versioned geometry store and drawing uploads.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/Nukpro/DeedRecreator/internal/store"
)

// App bundles the HTTP app with the resources it owns.
type App struct {
	Fiber *fiber.App
	cfg   *Config
	db    *sql.DB
}

// New assembles the service from configuration: sqlite registry,
// versioned geometry store, handlers and routes.
func New(cfg *Config) (*App, error) {
	db, err := OpenSQLite(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	sessions := NewSessionRepository(db)
	if err := sessions.Init(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	st, err := store.New(cfg.DataDir)
	if err != nil {
		db.Close()
		return nil, err
	}

	geometry := NewGeometryHandler(NewGeometryService(st))
	session := NewSessionHandler(sessions)
	uploads := NewUploadHandler(cfg.DataDir, sessions)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "drafterd",
	})

	app.Use(recover.New())
	app.Use(requestLogger())

	app.Get("/health/live", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "alive"})
	})

	app.Post("/api/sessions", session.Create)
	app.Get("/api/sessions", session.List)
	app.Get("/api/sessions/:sessionId", session.Get)
	app.Put("/api/sessions/:sessionId", session.Update)
	app.Post("/api/sessions/:sessionId/activate", session.Activate)

	app.Get("/api/geometry/:sessionId", geometry.GetGeometry)
	app.Post("/api/geometry/:sessionId/save", geometry.SaveGeometry)
	app.Post("/api/geometry/:sessionId/point", geometry.AddPoint)
	app.Put("/api/geometry/:sessionId/point/:pointId", geometry.UpdatePoint)
	app.Post("/api/geometry/:sessionId/segment", geometry.AddSegment)
	app.Put("/api/geometry/:sessionId/segment/:segmentId", geometry.UpdateSegment)
	app.Put("/api/geometry/:sessionId/segment/:segmentId/recalculate", geometry.RecalculateSegment)
	app.Post("/api/geometry/:sessionId/undo", geometry.Undo)
	app.Delete("/api/geometry/:sessionId/:objectType/:objectId", geometry.DeleteObject)
	app.Get("/api/geometry/:sessionId/export.geojson", geometry.ExportGeoJSON)

	app.Post("/api/upload-document", uploads.Upload)
	app.Get("/uploads/:sessionId/:filename", uploads.Serve)

	return &App{Fiber: app, cfg: cfg, db: db}, nil
}

// Listen starts serving on the configured port.
func (a *App) Listen() error {
	addr := ":" + a.cfg.Port
	log.Printf("starting drafterd on %s (env: %s)", addr, a.cfg.Environment)
	return a.Fiber.Listen(addr)
}

// Close releases the database handle.
func (a *App) Close() error {
	return a.db.Close()
}

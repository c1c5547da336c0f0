package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"

	"docrepo/internal/service"
)

// Dependencies are the collaborators the routes are built from.
type Dependencies struct {
	DB        *sql.DB
	Metrics   prometheus.Gatherer
	Auth      fiber.Handler
	Documents service.DocumentService
	Registry  service.RegistryService
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Everything except client registration and the ops endpoints requires client credentials.
func RegisterRoutes(app *fiber.App, d Dependencies) {
	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())
	app.Get("/metrics", Metrics(d.Metrics))

	app.Post("/clients", AddClient(d.Registry))

	authed := d.Auth
	app.Patch("/clients", authed, ModifyClient(d.Registry))
	app.Post("/apps", authed, AddApp(d.Registry))
	app.Patch("/apps/:app_id", authed, ModifyApp(d.Registry))

	app.Post("/documents", authed, UploadDocument(d.Documents))
	app.Get("/documents/:doc_id/versions", authed, ListDocumentVersions(d.Documents))
	app.Get("/documents/:doc_id", authed, GetDocument(d.Documents))
	app.Delete("/documents/:doc_id", authed, DeleteDocument(d.Documents))
}

package handlers

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes mounts every endpoint. exportLimit guards export creation.
func RegisterRoutes(e *echo.Echo, app *App, exportLimit echo.MiddlewareFunc) {
	e.Use(InjectApp(app))

	e.GET("/healthz", HealthHandler)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Printable views
	e.GET("/papers/:id/preview", PaperPreviewPageHandler)
	e.GET("/papers/:id/document", PaperDocumentHandler)

	api := e.Group("/api")
	api.GET("/catalog", GetCatalogHandler)

	// Templates
	api.GET("/templates", GetTemplatesHandler)
	api.GET("/templates/:id", GetTemplateHandler)
	api.DELETE("/templates/:id", DeleteTemplateHandler)
	api.GET("/templates/:id/draft", EditTemplateDraftHandler)
	api.POST("/template-drafts", NewTemplateDraftHandler)
	api.POST("/template-drafts/apply", ApplyTemplateActionHandler)
	api.POST("/template-drafts/save", SaveTemplateHandler)

	// Papers
	api.GET("/papers", GetPapersHandler)
	api.GET("/papers/:id", GetPaperHandler)
	api.DELETE("/papers/:id", DeletePaperHandler)
	api.GET("/papers/:id/draft", EditPaperDraftHandler)
	api.POST("/paper-drafts", NewPaperDraftHandler)
	api.POST("/paper-drafts/apply", ApplyPaperActionHandler)
	api.POST("/paper-drafts/submit", SubmitPaperHandler)

	// Exports
	if exportLimit != nil {
		api.POST("/papers/:id/exports", StartPaperExportHandler, exportLimit)
	} else {
		api.POST("/papers/:id/exports", StartPaperExportHandler)
	}
	api.GET("/papers/:id/exports", GetPaperExportsHandler)
	api.GET("/papers/:id/workbook", DownloadPaperWorkbookHandler)
	api.GET("/exports/:id", GetExportJobHandler)
}

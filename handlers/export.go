package handlers

import (
	"fmt"
	"net/http"

	"examination_app_go/services"
	"examination_app_go/services/i18n"
	"examination_app_go/templates/partials"

	"github.com/labstack/echo/v4"
)

// PaperPreviewPageHandler renders the printable preview of a paper with its exports
func PaperPreviewPageHandler(c echo.Context) error {
	app := getApp(c)
	paper, err := app.Papers.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}

	exports := app.Exports.JobsForPaper(paper.ID)
	return render(c, http.StatusOK, partials.PaperPreviewPage(services.BuildPaperPreview(paper), exports))
}

// PaperDocumentHandler renders the standalone document used for printing
func PaperDocumentHandler(c echo.Context) error {
	paper, err := getApp(c).Papers.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return render(c, http.StatusOK, partials.PaperDocument(services.BuildPaperPreview(paper)))
}

// StartPaperExportHandler queues a PDF export of a paper and answers 202 with the job
func StartPaperExportHandler(c echo.Context) error {
	app := getApp(c)
	paper, err := app.Papers.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}

	job := app.Exports.StartPDFExport(c.Request().Context(), paper)
	return c.JSON(http.StatusAccepted, map[string]interface{}{
		"job":     job,
		"message": i18n.T(c.Request().Context(), "messages.export_started"),
	})
}

// GetPaperExportsHandler lists the export jobs of a paper, newest first
func GetPaperExportsHandler(c echo.Context) error {
	app := getApp(c)
	paper, err := app.Papers.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"data": app.Exports.JobsForPaper(paper.ID),
	})
}

// GetExportJobHandler returns the state of one export job
func GetExportJobHandler(c echo.Context) error {
	job, ok := getApp(c).Exports.Job(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": i18n.T(c.Request().Context(), "errors.export_not_found"),
		})
	}
	return c.JSON(http.StatusOK, job)
}

// DownloadPaperWorkbookHandler streams the paper as an xlsx attachment
func DownloadPaperWorkbookHandler(c echo.Context) error {
	ctx := c.Request().Context()
	paper, err := getApp(c).Papers.Get(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}

	buf, err := services.BuildPaperWorkbook(ctx, paper)
	if err != nil {
		return respondError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", services.WorkbookFileName(paper)))
	return c.Blob(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

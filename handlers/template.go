package handlers

import (
	"net/http"
	"time"

	"examination_app_go/models"
	"examination_app_go/services"
	"examination_app_go/services/i18n"

	"github.com/labstack/echo/v4"
)

type templateApplyRequest struct {
	Draft  models.Template         `json:"draft"`
	Action services.TemplateAction `json:"action"`
}

type templateSaveRequest struct {
	Draft models.Template `json:"draft"`
}

// GetTemplatesHandler lists stored templates, optionally filtered by ?search=
func GetTemplatesHandler(c echo.Context) error {
	app := getApp(c)
	templates, err := app.Templates.Search(c.Request().Context(), c.QueryParam("search"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":  templates,
		"total": len(templates),
	})
}

// GetTemplateHandler returns a single template
func GetTemplateHandler(c echo.Context) error {
	template, err := getApp(c).Templates.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, template)
}

// DeleteTemplateHandler removes a template. Papers created from it are snapshots and stay.
func DeleteTemplateHandler(c echo.Context) error {
	id := c.Param("id")
	if err := getApp(c).Templates.Remove(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"id":      id,
		"message": i18n.T(c.Request().Context(), "messages.template_deleted"),
	})
}

// NewTemplateDraftHandler returns the initial builder draft
func NewTemplateDraftHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"draft": services.InitTemplateDraft(),
	})
}

// EditTemplateDraftHandler returns a draft loaded from a stored template
func EditTemplateDraftHandler(c echo.Context) error {
	template, err := getApp(c).Templates.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"draft": services.TemplateDraftFromTemplate(template),
	})
}

// ApplyTemplateActionHandler runs one builder action against the posted draft
func ApplyTemplateActionHandler(c echo.Context) error {
	var req templateApplyRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	draft, err := services.ApplyTemplateAction(req.Draft, getApp(c).Catalog, req.Action)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"draft": draft,
	})
}

// SaveTemplateHandler validates and persists the posted draft.
// New templates answer 201, edits 200.
func SaveTemplateHandler(c echo.Context) error {
	var req templateSaveRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	isNew := req.Draft.IsNew()
	saved, err := services.SaveTemplate(c.Request().Context(), getApp(c).Templates, getApp(c).Catalog, req.Draft, time.Now())
	if err != nil {
		return respondError(c, err)
	}

	status := http.StatusOK
	if isNew {
		status = http.StatusCreated
	}
	return c.JSON(status, map[string]interface{}{
		"template": saved,
		"message":  i18n.T(c.Request().Context(), "messages.template_saved"),
	})
}

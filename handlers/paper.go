package handlers

import (
	"net/http"
	"time"

	"examination_app_go/services"
	"examination_app_go/services/i18n"

	"github.com/labstack/echo/v4"
)

type paperDraftRequest struct {
	TemplateID string `json:"template_id" validate:"required"`
}

type paperApplyRequest struct {
	Draft  services.PaperDraft  `json:"draft"`
	Action services.PaperAction `json:"action"`
}

type paperSubmitRequest struct {
	Draft services.PaperDraft `json:"draft"`
}

// paperDraftResponse carries the draft with the controls a client renders from it
type paperDraftResponse struct {
	Draft     services.PaperDraft        `json:"draft"`
	Controls  []services.FormControl     `json:"controls"`
	Questions []services.QuestionControl `json:"questions"`
}

func newPaperDraftResponse(app *App, d services.PaperDraft) paperDraftResponse {
	return paperDraftResponse{
		Draft:     d,
		Controls:  services.FormControls(d, app.Catalog),
		Questions: services.QuestionControls(d),
	}
}

// GetPapersHandler lists stored papers, optionally filtered by ?search=
func GetPapersHandler(c echo.Context) error {
	papers, err := getApp(c).Papers.Search(c.Request().Context(), c.QueryParam("search"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":  papers,
		"total": len(papers),
	})
}

// GetPaperHandler returns a single paper
func GetPaperHandler(c echo.Context) error {
	paper, err := getApp(c).Papers.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, paper)
}

// DeletePaperHandler removes a paper
func DeletePaperHandler(c echo.Context) error {
	id := c.Param("id")
	if err := getApp(c).Papers.Remove(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"id":      id,
		"message": i18n.T(c.Request().Context(), "messages.paper_deleted"),
	})
}

// NewPaperDraftHandler starts a paper from the chosen template
func NewPaperDraftHandler(c echo.Context) error {
	var req paperDraftRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	app := getApp(c)
	template, err := app.Templates.Get(c.Request().Context(), req.TemplateID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newPaperDraftResponse(app, services.SelectTemplate(template)))
}

// EditPaperDraftHandler loads a stored paper into an edit draft
func EditPaperDraftHandler(c echo.Context) error {
	app := getApp(c)
	paper, err := app.Papers.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newPaperDraftResponse(app, services.DraftFromPaper(paper)))
}

// bindDraftSchema restores the header schema of a posted draft from its
// stored template so a client cannot rewrite which fields are checked
func bindDraftSchema(c echo.Context, app *App, d services.PaperDraft) (services.PaperDraft, error) {
	if d.TemplateID == "" {
		return d, nil
	}
	template, err := app.Templates.Get(c.Request().Context(), d.TemplateID)
	if err != nil {
		return d, err
	}
	return services.BindTemplateSchema(d, template), nil
}

// ApplyPaperActionHandler sets one value on the posted draft
func ApplyPaperActionHandler(c echo.Context) error {
	var req paperApplyRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	app := getApp(c)
	draft, err := bindDraftSchema(c, app, req.Draft)
	if err != nil {
		return respondError(c, err)
	}
	draft, err = services.ApplyPaperAction(draft, app.Catalog, req.Action)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, newPaperDraftResponse(app, draft))
}

// SubmitPaperHandler validates and persists the posted draft. On success the
// response carries the saved paper and a fresh empty draft.
func SubmitPaperHandler(c echo.Context) error {
	var req paperSubmitRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	app := getApp(c)
	draft, err := bindDraftSchema(c, app, req.Draft)
	if err != nil {
		return respondError(c, err)
	}
	isEdit := draft.IsEdit()
	paper, next, err := services.SubmitPaper(c.Request().Context(), app.Papers, draft, time.Now())
	if err != nil {
		return respondError(c, err)
	}

	status := http.StatusCreated
	if isEdit {
		status = http.StatusOK
	}
	return c.JSON(status, map[string]interface{}{
		"paper":   paper,
		"draft":   next,
		"message": i18n.T(c.Request().Context(), "messages.paper_saved"),
	})
}

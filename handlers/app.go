package handlers

import (
	"net/http"

	"examination_app_go/config"
	"examination_app_go/models"
	"examination_app_go/services"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// App holds the stores and services every handler works with
type App struct {
	Config    *config.Config
	Templates *services.TemplateStore
	Papers    *services.PaperStore
	Catalog   models.Catalog
	Exports   *services.ExportService
}

// InjectApp makes the app and its config available to handlers
func InjectApp(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("app", app)
			c.Set("config", app.Config)
			return next(c)
		}
	}
}

func getApp(c echo.Context) *App {
	app, ok := c.Get("app").(*App)
	if !ok {
		panic("handlers: app missing from context, is InjectApp registered?")
	}
	return app
}

// bindAndValidate decodes the JSON body into req and checks its struct tags.
// The returned error is a 400 HTTPError ready to be returned by the handler.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return badRequest(c, nil)
	}
	if err := Validate(req); err != nil {
		return badRequest(c, FormatValidationErrors(err))
	}
	return nil
}

func render(c echo.Context, status int, component templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(status)
	return component.Render(c.Request().Context(), c.Response().Writer)
}

// HealthHandler reports liveness and the active backends
func HealthHandler(c echo.Context) error {
	app := getApp(c)
	body := map[string]interface{}{
		"status":    "ok",
		"templates": app.Templates.Key(),
		"papers":    app.Papers.Key(),
	}
	if app.Exports != nil {
		body["artifacts"] = app.Exports.Artifacts().Name()
	}
	return c.JSON(http.StatusOK, body)
}

// GetCatalogHandler returns the option sets and the predefined header fields
func GetCatalogHandler(c echo.Context) error {
	app := getApp(c)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"options":          app.Catalog,
		"mandatory_fields": models.MandatoryFields(),
		"optional_fields":  models.OptionalFields(),
		"field_types": []string{
			models.FieldTypeString,
			models.FieldTypeNumber,
			models.FieldTypeSelect,
			models.FieldTypeMultiselect,
		},
	})
}

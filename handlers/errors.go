package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"examination_app_go/services"
	"examination_app_go/services/i18n"

	"github.com/labstack/echo/v4"
)

// Builder rejections caused by the current draft state
var conflictErrors = []error{
	services.ErrDuplicateFieldKey,
	services.ErrTooManySections,
	services.ErrSectionPermanent,
	services.ErrSectionNotLatest,
	services.ErrSectionFrozen,
	services.ErrLastQuestionInSection,
	services.ErrSeedQuestion,
	services.ErrDuplicateID,
}

// Rejections caused by the request itself
var badRequestErrors = []error{
	services.ErrFieldLabelRequired,
	services.ErrOptionsTypeRequired,
	services.ErrUnknownOptionsType,
	services.ErrInvalidFieldType,
	services.ErrUnknownField,
	services.ErrUnknownSection,
	services.ErrUnknownQuestion,
	services.ErrUnknownAction,
	services.ErrAnswerSlotMismatch,
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// respondError translates a service error into a localized JSON response
func respondError(c echo.Context, err error) error {
	ctx := c.Request().Context()

	var formErrs services.FormErrors
	var validationErr *services.ValidationError
	var unknownField *services.UnknownFieldError
	var invalidValue *services.InvalidValueError

	switch {
	case errors.As(err, &formErrs):
		return c.JSON(http.StatusUnprocessableEntity, map[string]interface{}{
			"error":  i18n.T(ctx, "errors.paper_invalid", map[string]interface{}{"count": len(formErrs)}),
			"errors": localizeFormErrors(c, formErrs),
		})
	case errors.As(err, &validationErr):
		return c.JSON(http.StatusUnprocessableEntity, map[string]interface{}{
			"error":    i18n.T(ctx, "errors.template_invalid", map[string]interface{}{"problems": strings.Join(validationErr.Problems, "; ")}),
			"problems": validationErr.Problems,
		})
	case errors.Is(err, services.ErrTemplateNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": i18n.T(ctx, "errors.template_not_found")})
	case errors.Is(err, services.ErrPaperNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": i18n.T(ctx, "errors.paper_not_found")})
	case errors.As(err, &unknownField):
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": i18n.T(ctx, "errors.rejected", map[string]interface{}{"reason": unknownField.Error()}),
			"field": unknownField.Key,
		})
	case errors.As(err, &invalidValue):
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":  i18n.T(ctx, "errors.rejected", map[string]interface{}{"reason": invalidValue.Reason}),
			"field":  invalidValue.Key,
			"errors": map[string]string{invalidValue.Key: invalidValue.Reason},
		})
	case isAny(err, conflictErrors):
		return c.JSON(http.StatusConflict, map[string]string{
			"error": i18n.T(ctx, "errors.rejected", map[string]interface{}{"reason": err.Error()}),
		})
	case isAny(err, badRequestErrors):
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": i18n.T(ctx, "errors.rejected", map[string]interface{}{"reason": err.Error()}),
		})
	}

	log.Printf("[ERROR] %s %s: %v", c.Request().Method, c.Path(), err)
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": i18n.T(ctx, "errors.storage")})
}

// badRequest reports an unreadable or structurally invalid payload
func badRequest(c echo.Context, fields map[string]string) *echo.HTTPError {
	body := map[string]interface{}{"error": i18n.T(c.Request().Context(), "errors.invalid_request")}
	if len(fields) > 0 {
		body["errors"] = fields
	}
	return echo.NewHTTPError(http.StatusBadRequest, body)
}

// localizeFormErrors maps each offending control to a message in the request language
func localizeFormErrors(c echo.Context, errs services.FormErrors) map[string]string {
	ctx := c.Request().Context()
	out := make(map[string]string, len(errs))
	for _, v := range errs {
		switch e := v.(type) {
		case *services.MissingFieldError:
			label := e.Label
			if e.Key == services.PaperNameKey {
				label = i18n.T(ctx, "form.paper_name")
			}
			out[e.ControlKey()] = i18n.T(ctx, "form.field_required", map[string]interface{}{"label": label})
		case *services.MissingAnswerError:
			args := map[string]interface{}{"section": e.Section, "number": e.QuestionNumber, "alternative": e.Alternative}
			if e.Alternative != "" {
				out[e.ControlKey()] = i18n.T(ctx, "form.alternative_required", args)
			} else {
				out[e.ControlKey()] = i18n.T(ctx, "form.answer_required", args)
			}
		default:
			out[v.ControlKey()] = v.Error()
		}
	}
	return out
}

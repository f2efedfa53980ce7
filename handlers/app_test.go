package handlers

import (
	"net/http"
	"strings"
	"testing"

	"examination_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler(t *testing.T) {
	e := setupServer(setupApp(t))

	rec := doJSON(t, e, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[map[string]string](t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "examination_app_templates", body["templates"])
	assert.Equal(t, "examination_app_question_papers", body["papers"])
	assert.True(t, strings.HasPrefix(body["artifacts"], "local:"))
}

func TestMetricsEndpoint(t *testing.T) {
	e := setupServer(setupApp(t))

	rec := doJSON(t, e, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

type catalogBody struct {
	Options         models.Catalog               `json:"options"`
	MandatoryFields []models.TopSectionFormField `json:"mandatory_fields"`
	OptionalFields  []models.TopSectionFormField `json:"optional_fields"`
	FieldTypes      []string                     `json:"field_types"`
}

func TestGetCatalogHandler(t *testing.T) {
	e := setupServer(setupApp(t))

	rec := doJSON(t, e, http.MethodGet, "/api/catalog", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[catalogBody](t, rec)

	assert.Len(t, body.MandatoryFields, 6)
	assert.Len(t, body.OptionalFields, 3)
	assert.ElementsMatch(t, []string{"string", "number", "select", "multiselect"}, body.FieldTypes)
	assert.True(t, body.Options.HasOption(models.OptionsTypeBranch, "Civil"))
}

func TestFormatValidationErrors(t *testing.T) {
	err := Validate(&paperDraftRequest{})
	require.Error(t, err)

	fields := FormatValidationErrors(err)
	assert.Equal(t, map[string]string{"template_id": "template_id is required"}, fields)
	assert.Empty(t, FormatValidationErrors(nil))
}

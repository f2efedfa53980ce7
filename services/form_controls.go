package services

import (
	"fmt"
	"strings"

	"examination_app_go/models"
)

// Input types of header controls
const (
	InputTypeText        = "text"
	InputTypeNumber      = "number"
	InputTypeSelect      = "select"
	InputTypeMultiselect = "multiselect"
)

// FormControl describes one header input of the paper form
type FormControl struct {
	Key       string          `json:"key"`
	Label     string          `json:"label"`
	InputType string          `json:"input_type"`
	Required  bool            `json:"required"`
	Mandatory bool            `json:"mandatory"`
	Options   []models.Option `json:"options,omitempty"`
	Value     string          `json:"value"`
	Values    []string        `json:"values,omitempty"`
}

// QuestionControl describes the answer inputs of one question
type QuestionControl struct {
	Key                string `json:"key"`
	Section            string `json:"section"`
	QuestionNumber     int    `json:"questionNumber"`
	HasOrFunctionality bool   `json:"hasOrFunctionality"`
	Text               string `json:"questionText"`
	TextA              string `json:"questionTextA"`
	TextB              string `json:"questionTextB"`
}

// FormControls returns the header controls in schema order
func FormControls(d PaperDraft, catalog models.Catalog) []FormControl {
	fields := d.RenderedFields()
	controls := make([]FormControl, 0, len(fields))
	for _, f := range fields {
		c := FormControl{
			Key:       f.Key,
			Label:     f.Label,
			InputType: InputTypeText,
			Required:  f.IsRequired(),
			Mandatory: f.Mandatory,
			Value:     d.TopSection[f.Key],
		}
		switch f.Type {
		case models.FieldTypeNumber:
			c.InputType = InputTypeNumber
		case models.FieldTypeSelect:
			c.InputType = InputTypeSelect
			c.Options = catalog.Options(f.OptionsType)
		case models.FieldTypeMultiselect:
			c.InputType = InputTypeMultiselect
			c.Options = catalog.Options(f.OptionsType)
			c.Values = splitMultiValue(c.Value)
		}
		controls = append(controls, c)
	}
	return controls
}

// QuestionControls returns one control per question in draft order
func QuestionControls(d PaperDraft) []QuestionControl {
	controls := make([]QuestionControl, 0, len(d.Questions))
	for _, q := range d.Questions {
		controls = append(controls, QuestionControl{
			Key:                fmt.Sprintf("question_%s_%d", q.Section, q.QuestionNumber),
			Section:            q.Section,
			QuestionNumber:     q.QuestionNumber,
			HasOrFunctionality: q.HasOrFunctionality,
			Text:               q.QuestionText,
			TextA:              q.QuestionTextA,
			TextB:              q.QuestionTextB,
		})
	}
	return controls
}

func splitMultiValue(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Paper action types accepted by ApplyPaperAction
const (
	PaperActionSetName   = "set_name"
	PaperActionSetField  = "set_field"
	PaperActionSetAnswer = "set_answer"
)

// PaperAction is one form event as sent by clients
type PaperAction struct {
	Type           string `json:"type" validate:"required"`
	Key            string `json:"key,omitempty"`
	Value          string `json:"value"`
	Section        string `json:"section,omitempty"`
	QuestionNumber int    `json:"question_number,omitempty"`
	Slot           string `json:"slot,omitempty"`
}

// ApplyPaperAction dispatches one action to the matching draft mutation
func ApplyPaperAction(d PaperDraft, catalog models.Catalog, a PaperAction) (PaperDraft, error) {
	switch a.Type {
	case PaperActionSetName:
		return SetPaperName(d, a.Value), nil
	case PaperActionSetField:
		return SetTopField(d, catalog, a.Key, a.Value)
	case PaperActionSetAnswer:
		return SetQuestionAnswer(d, a.Section, a.QuestionNumber, a.Slot, a.Value)
	default:
		return d, fmt.Errorf("%q: %w", a.Type, ErrUnknownAction)
	}
}

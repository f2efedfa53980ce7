package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"examination_app_go/models"
	"examination_app_go/services"
)

var ErrNoTemplates = errors.New("no templates available")

// ChooseTemplate asks the user to pick one template
func ChooseTemplate(ctx context.Context, d Driver, templates []models.Template) (models.Template, error) {
	if len(templates) == 0 {
		return models.Template{}, ErrNoTemplates
	}
	options := make([]string, 0, len(templates))
	for _, t := range templates {
		options = append(options, fmt.Sprintf("%s (%d sections, %d questions)", t.TemplateName, len(t.QuestionSections.Sections), len(t.QuestionSections.Questions)))
	}
	idx, err := d.Select(ctx, SelectConfig{Message: "Template", Options: options})
	if err != nil {
		return models.Template{}, err
	}
	if idx < 0 || idx >= len(templates) {
		return models.Template{}, fmt.Errorf("invalid template selection %d", idx)
	}
	return templates[idx], nil
}

func requiredValidator(label string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", label)
		}
		return nil
	}
}

// FillPaper prompts for the paper name, every rendered header control and
// every question text, then validates the result
func FillPaper(ctx context.Context, d Driver, draft services.PaperDraft, catalog models.Catalog) (services.PaperDraft, error) {
	name, err := d.Input(ctx, InputConfig{
		Message:   "Paper Name",
		Default:   draft.PaperName,
		Validator: requiredValidator("Paper Name"),
	})
	if err != nil {
		return draft, err
	}
	draft = services.SetPaperName(draft, name)

	for _, control := range services.FormControls(draft, catalog) {
		draft, err = promptControl(ctx, d, draft, catalog, control)
		if err != nil {
			return draft, err
		}
	}

	for _, q := range services.QuestionControls(draft) {
		if q.HasOrFunctionality {
			if draft, err = promptAnswer(ctx, d, draft, q, models.AnswerSlotTextA, q.TextA); err != nil {
				return draft, err
			}
			if draft, err = promptAnswer(ctx, d, draft, q, models.AnswerSlotTextB, q.TextB); err != nil {
				return draft, err
			}
			continue
		}
		if draft, err = promptAnswer(ctx, d, draft, q, models.AnswerSlotText, q.Text); err != nil {
			return draft, err
		}
	}

	if errs := services.ValidatePaperDraft(draft); len(errs) > 0 {
		for _, v := range errs {
			_ = d.Info(ctx, "  - "+v.Error())
		}
		return draft, errs
	}
	return draft, nil
}

func promptControl(ctx context.Context, d Driver, draft services.PaperDraft, catalog models.Catalog, c services.FormControl) (services.PaperDraft, error) {
	message := c.Label
	if c.Required {
		message += " *"
	}

	for {
		var value string
		switch c.InputType {
		case services.InputTypeSelect:
			options, offset := optionLabels(c)
			idx, err := d.Select(ctx, SelectConfig{Message: message, Options: options, DefaultIndex: selectedIndex(c, offset)})
			if err != nil {
				return draft, err
			}
			if idx >= offset && idx-offset < len(c.Options) {
				value = c.Options[idx-offset].Code
			}
		case services.InputTypeMultiselect:
			labels := make([]string, 0, len(c.Options))
			for _, o := range c.Options {
				labels = append(labels, o.Label)
			}
			indices, err := d.MultiSelect(ctx, SelectConfig{Message: message, Options: labels, Defaults: selectedIndices(c)})
			if err != nil {
				return draft, err
			}
			codes := make([]string, 0, len(indices))
			for _, idx := range indices {
				if idx >= 0 && idx < len(c.Options) {
					codes = append(codes, c.Options[idx].Code)
				}
			}
			value = strings.Join(codes, ", ")
		default:
			cfg := InputConfig{Message: message, Default: c.Value}
			if c.Required {
				cfg.Validator = requiredValidator(c.Label)
			}
			input, err := d.Input(ctx, cfg)
			if err != nil {
				return draft, err
			}
			value = input
		}

		if c.Required && strings.TrimSpace(value) == "" {
			_ = d.Info(ctx, fmt.Sprintf("%s is required", c.Label))
			continue
		}
		next, err := services.SetTopField(draft, catalog, c.Key, value)
		if err != nil {
			var invalid *services.InvalidValueError
			if errors.As(err, &invalid) {
				_ = d.Info(ctx, fmt.Sprintf("Invalid %s: %s", c.Label, invalid.Reason))
				continue
			}
			return draft, err
		}
		return next, nil
	}
}

// optionLabels lists the option labels; optional selects start with a blank choice
func optionLabels(c services.FormControl) ([]string, int) {
	var labels []string
	offset := 0
	if !c.Required {
		labels = append(labels, "(none)")
		offset = 1
	}
	for _, o := range c.Options {
		labels = append(labels, o.Label)
	}
	return labels, offset
}

func selectedIndex(c services.FormControl, offset int) int {
	for i, o := range c.Options {
		if o.Code == c.Value {
			return i + offset
		}
	}
	return 0
}

func selectedIndices(c services.FormControl) []int {
	var out []int
	for i, o := range c.Options {
		for _, v := range c.Values {
			if o.Code == v {
				out = append(out, i)
			}
		}
	}
	return out
}

func promptAnswer(ctx context.Context, d Driver, draft services.PaperDraft, q services.QuestionControl, slot, current string) (services.PaperDraft, error) {
	message := fmt.Sprintf("Section %s question %d", q.Section, q.QuestionNumber)
	switch slot {
	case models.AnswerSlotTextA:
		message += " (option A)"
	case models.AnswerSlotTextB:
		message += " (option B)"
	}

	for {
		text, err := d.TextArea(ctx, TextAreaConfig{Message: message, Default: current})
		if err != nil {
			return draft, err
		}
		if strings.TrimSpace(text) == "" {
			_ = d.Info(ctx, message+" is required")
			continue
		}
		return services.SetQuestionAnswer(draft, q.Section, q.QuestionNumber, slot, text)
	}
}

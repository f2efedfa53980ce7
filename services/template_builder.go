package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"examination_app_go/models"
)

var (
	ErrFieldLabelRequired    = errors.New("field label is required")
	ErrOptionsTypeRequired   = errors.New("options type is required for select fields")
	ErrUnknownOptionsType    = errors.New("options type is not in the catalog")
	ErrDuplicateFieldKey     = errors.New("a field with this key already exists")
	ErrInvalidFieldType      = errors.New("invalid field type")
	ErrUnknownField          = errors.New("field not found")
	ErrTooManySections       = errors.New("no more section letters available")
	ErrSectionPermanent      = errors.New("section A cannot be removed")
	ErrUnknownSection        = errors.New("section not found")
	ErrSectionNotLatest      = errors.New("only the most recently added section can be removed")
	ErrSectionFrozen         = errors.New("questions can only be added to the most recently added section")
	ErrLastQuestionInSection = errors.New("a section must keep at least one question")
	ErrSeedQuestion          = errors.New("question 1 of section A cannot be removed")
	ErrUnknownQuestion       = errors.New("question not found")
	ErrUnknownAction         = errors.New("unknown action")
)

const maxSections = 26

var whitespaceRunRegex = regexp.MustCompile(`\s+`)

// FieldKeyFromLabel lower-cases label and turns whitespace runs into "_"
func FieldKeyFromLabel(label string) string {
	return whitespaceRunRegex.ReplaceAllString(strings.ToLower(strings.TrimSpace(label)), "_")
}

// InitTemplateDraft returns the only valid starting template: every catalog
// field, mandatory ones selected, section A with question 1
func InitTemplateDraft() models.Template {
	fields := append(models.MandatoryFields(), models.OptionalFields()...)
	return models.Template{
		TopSection: models.TopSection{
			Fields:         fields,
			SelectedFields: models.MandatoryFieldKeys(),
		},
		InstructionSection: models.InstructionSection{
			HasGeneralInstructions:  true,
			HasSpecificInstructions: true,
		},
		QuestionSections: models.QuestionSections{
			Sections:  []string{models.DefaultSection},
			Questions: []models.QuestionConfig{{QuestionNumber: 1, Section: models.DefaultSection}},
		},
	}
}

// TemplateDraftFromTemplate prepares a stored template for editing. Catalog
// fields dropped at save time come back unselected so they can be re-added.
func TemplateDraftFromTemplate(t models.Template) models.Template {
	d := t.Clone()
	for _, f := range append(models.MandatoryFields(), models.OptionalFields()...) {
		if _, ok := d.Field(f.Key); !ok {
			d.TopSection.Fields = append(d.TopSection.Fields, f)
		}
	}
	return d
}

// CustomField is the input of AddCustomField
type CustomField struct {
	Label       string
	Type        string
	Required    bool
	OptionsType string
}

// AddCustomField appends a non-mandatory field derived from the input.
// The field is not selected until toggled in.
func AddCustomField(d models.Template, catalog models.Catalog, in CustomField) (models.Template, error) {
	label := strings.TrimSpace(in.Label)
	if label == "" {
		return d, ErrFieldLabelRequired
	}
	if !models.IsValidFieldType(in.Type) {
		return d, fmt.Errorf("%q: %w", in.Type, ErrInvalidFieldType)
	}

	optionsType := ""
	if models.IsChoiceFieldType(in.Type) {
		optionsType = strings.TrimSpace(in.OptionsType)
		if optionsType == "" {
			return d, ErrOptionsTypeRequired
		}
		if !catalog.Has(optionsType) {
			return d, fmt.Errorf("%q: %w", optionsType, ErrUnknownOptionsType)
		}
	}

	key := FieldKeyFromLabel(label)
	if _, exists := d.Field(key); exists || key == PaperNameKey {
		return d, fmt.Errorf("%q: %w", key, ErrDuplicateFieldKey)
	}

	next := d.Clone()
	next.TopSection.Fields = append(next.TopSection.Fields, models.TopSectionFormField{
		Key:         key,
		Label:       label,
		Type:        in.Type,
		Required:    in.Required,
		OptionsType: optionsType,
	})
	return next, nil
}

// ToggleFieldInclusion adds or removes key from selectedFields.
// Mandatory fields stay selected.
func ToggleFieldInclusion(d models.Template, key string, included bool) (models.Template, error) {
	field, ok := d.Field(key)
	if !ok {
		return d, fmt.Errorf("%q: %w", key, ErrUnknownField)
	}
	if _, mandatory := models.MandatoryField(key); mandatory || field.Mandatory {
		return d, nil
	}

	next := d.Clone()
	selected := next.TopSection.SelectedFields[:0]
	for _, k := range next.TopSection.SelectedFields {
		if k != key {
			selected = append(selected, k)
		}
	}
	if included {
		selected = append(selected, key)
	}
	next.TopSection.SelectedFields = selected
	return next, nil
}

// SetFieldRequired changes the required flag of a non-mandatory field
func SetFieldRequired(d models.Template, key string, required bool) (models.Template, error) {
	field, ok := d.Field(key)
	if !ok {
		return d, fmt.Errorf("%q: %w", key, ErrUnknownField)
	}
	if _, mandatory := models.MandatoryField(key); mandatory || field.Mandatory {
		return d, nil
	}

	next := d.Clone()
	for i := range next.TopSection.Fields {
		if next.TopSection.Fields[i].Key == key {
			next.TopSection.Fields[i].Required = required
		}
	}
	return next, nil
}

// SetTemplateName sets the display name of the template
func SetTemplateName(d models.Template, name string) models.Template {
	next := d.Clone()
	next.TemplateName = name
	return next
}

// SetInstructionFlags sets which instruction blocks papers carry
func SetInstructionFlags(d models.Template, general, specific bool) models.Template {
	next := d.Clone()
	next.InstructionSection = models.InstructionSection{
		HasGeneralInstructions:  general,
		HasSpecificInstructions: specific,
	}
	return next
}

// nextQuestionNumber numbers a new question count+1. Numbers are global across
// sections; when count+1 is already taken after removals it moves past the
// current maximum so numbers stay unique.
func nextQuestionNumber(questions []models.QuestionConfig) int {
	candidate := len(questions) + 1
	highest := 0
	taken := false
	for _, q := range questions {
		if q.QuestionNumber == candidate {
			taken = true
		}
		if q.QuestionNumber > highest {
			highest = q.QuestionNumber
		}
	}
	if taken {
		return highest + 1
	}
	return candidate
}

// AddSection appends the next section letter with one starter question
func AddSection(d models.Template) (models.Template, error) {
	count := len(d.QuestionSections.Sections)
	if count >= maxSections {
		return d, ErrTooManySections
	}
	label := string(rune('A' + count))

	next := d.Clone()
	next.QuestionSections.Sections = append(next.QuestionSections.Sections, label)
	next.QuestionSections.Questions = append(next.QuestionSections.Questions, models.QuestionConfig{
		QuestionNumber: nextQuestionNumber(d.QuestionSections.Questions),
		Section:        label,
	})
	return next, nil
}

// RemoveSection drops the most recently added section and its questions
func RemoveSection(d models.Template, label string) (models.Template, error) {
	if label == models.DefaultSection {
		return d, ErrSectionPermanent
	}
	if !d.HasSection(label) {
		return d, fmt.Errorf("%q: %w", label, ErrUnknownSection)
	}
	if label != d.LatestSection() {
		return d, fmt.Errorf("%q: %w", label, ErrSectionNotLatest)
	}

	next := d.Clone()
	sections := next.QuestionSections.Sections[:0]
	for _, s := range next.QuestionSections.Sections {
		if s != label {
			sections = append(sections, s)
		}
	}
	questions := next.QuestionSections.Questions[:0]
	for _, q := range next.QuestionSections.Questions {
		if q.Section != label {
			questions = append(questions, q)
		}
	}
	next.QuestionSections.Sections = sections
	next.QuestionSections.Questions = questions
	return next, nil
}

// AddQuestion appends a question to the latest section; older sections are frozen
func AddQuestion(d models.Template, section string) (models.Template, error) {
	if !d.HasSection(section) {
		return d, fmt.Errorf("%q: %w", section, ErrUnknownSection)
	}
	if section != d.LatestSection() {
		return d, fmt.Errorf("%q: %w", section, ErrSectionFrozen)
	}

	next := d.Clone()
	next.QuestionSections.Questions = append(next.QuestionSections.Questions, models.QuestionConfig{
		QuestionNumber: nextQuestionNumber(d.QuestionSections.Questions),
		Section:        section,
	})
	return next, nil
}

func findQuestion(d models.Template, section string, number int) int {
	for i, q := range d.QuestionSections.Questions {
		if q.Section == section && q.QuestionNumber == number {
			return i
		}
	}
	return -1
}

// RemoveQuestion drops one question without renumbering the others
func RemoveQuestion(d models.Template, section string, number int) (models.Template, error) {
	idx := findQuestion(d, section, number)
	if idx < 0 {
		return d, fmt.Errorf("%s/%d: %w", section, number, ErrUnknownQuestion)
	}
	if section == models.DefaultSection && number == 1 {
		return d, ErrSeedQuestion
	}
	if len(d.QuestionsInSection(section)) <= 1 {
		return d, fmt.Errorf("%s: %w", section, ErrLastQuestionInSection)
	}

	next := d.Clone()
	next.QuestionSections.Questions = append(next.QuestionSections.Questions[:idx], next.QuestionSections.Questions[idx+1:]...)
	return next, nil
}

// ToggleOr sets whether the question is answered as an A / OR / B pair
func ToggleOr(d models.Template, section string, number int, value bool) (models.Template, error) {
	idx := findQuestion(d, section, number)
	if idx < 0 {
		return d, fmt.Errorf("%s/%d: %w", section, number, ErrUnknownQuestion)
	}
	next := d.Clone()
	next.QuestionSections.Questions[idx].HasOrFunctionality = value
	return next, nil
}

// ValidateTemplateForSave collects every problem that blocks saving. Field
// definitions are checked again since drafts travel through clients.
func ValidateTemplateForSave(d models.Template, catalog models.Catalog) error {
	var problems []string

	if strings.TrimSpace(d.TemplateName) == "" {
		problems = append(problems, "template name is required")
	}

	for _, key := range models.MandatoryFieldKeys() {
		if !d.IsSelected(key) {
			problems = append(problems, fmt.Sprintf("mandatory field %s must be included", key))
		}
	}
	defined := make(map[string]bool, len(d.TopSection.Fields))
	for _, f := range d.TopSection.Fields {
		problems = append(problems, fieldDefinitionProblems(f, catalog, defined[f.Key])...)
		defined[f.Key] = true
		if f.Mandatory {
			continue
		}
		if f.Required && !d.IsSelected(f.Key) {
			problems = append(problems, fmt.Sprintf("required field %s must be included", f.Key))
		}
	}
	for _, key := range d.TopSection.SelectedFields {
		if !defined[key] {
			problems = append(problems, fmt.Sprintf("selected field %s is not defined", key))
		}
	}

	sections := d.QuestionSections.Sections
	if len(sections) == 0 || sections[0] != models.DefaultSection {
		problems = append(problems, "section A must be the first section")
	}
	seen := make(map[int]bool, len(d.QuestionSections.Questions))
	for _, q := range d.QuestionSections.Questions {
		if !d.HasSection(q.Section) {
			problems = append(problems, fmt.Sprintf("question %d references unknown section %s", q.QuestionNumber, q.Section))
		}
		if q.QuestionNumber <= 0 || seen[q.QuestionNumber] {
			problems = append(problems, fmt.Sprintf("question number %d is invalid or repeated", q.QuestionNumber))
		}
		seen[q.QuestionNumber] = true
	}
	for _, s := range sections {
		if len(d.QuestionsInSection(s)) == 0 {
			problems = append(problems, fmt.Sprintf("section %s has no questions", s))
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func fieldDefinitionProblems(f models.TopSectionFormField, catalog models.Catalog, repeated bool) []string {
	if repeated {
		return []string{fmt.Sprintf("field %s is defined more than once", f.Key)}
	}
	if mandatory, ok := models.MandatoryField(f.Key); ok {
		if f != mandatory {
			return []string{fmt.Sprintf("mandatory field %s must keep its catalog definition", f.Key)}
		}
		return nil
	}

	var problems []string
	switch {
	case f.Key == "" || f.Key != FieldKeyFromLabel(f.Key):
		problems = append(problems, fmt.Sprintf("field key %q is invalid", f.Key))
	case f.Key == PaperNameKey:
		problems = append(problems, fmt.Sprintf("field key %s is reserved", f.Key))
	}
	if f.Mandatory {
		problems = append(problems, fmt.Sprintf("field %s cannot be mandatory", f.Key))
	}
	if !models.IsValidFieldType(f.Type) {
		problems = append(problems, fmt.Sprintf("field %s has invalid type %q", f.Key, f.Type))
	}
	if models.IsChoiceFieldType(f.Type) && !catalog.Has(f.OptionsType) {
		problems = append(problems, fmt.Sprintf("field %s needs an options type from the catalog", f.Key))
	}
	return problems
}

// SaveTemplate validates the draft, drops fields that are neither mandatory
// nor selected and stores it. New drafts get an id and created_at; edits keep
// the stored created_at and get updated_at.
func SaveTemplate(ctx context.Context, store Repository[models.Template], catalog models.Catalog, d models.Template, now time.Time) (models.Template, error) {
	if err := ValidateTemplateForSave(d, catalog); err != nil {
		return d, err
	}

	saved := d.Clone()
	saved.TemplateName = strings.TrimSpace(saved.TemplateName)
	fields := make([]models.TopSectionFormField, 0, len(saved.TopSection.Fields))
	for _, f := range saved.TopSection.Fields {
		if f.Mandatory || saved.IsSelected(f.Key) {
			fields = append(fields, f)
		}
	}
	saved.TopSection.Fields = fields

	now = now.UTC()
	if saved.IsNew() {
		saved.ID = NewEntityID(EntityTemplate, now)
		saved.CreatedAt = now
		saved.UpdatedAt = nil
		if err := store.Insert(ctx, saved); err != nil {
			return d, err
		}
		templatesSaved.WithLabelValues("insert").Inc()
		return saved, nil
	}

	existing, err := store.Get(ctx, saved.ID)
	if err != nil {
		return d, err
	}
	saved.CreatedAt = existing.CreatedAt
	saved.UpdatedAt = &now
	if err := store.Replace(ctx, saved); err != nil {
		return d, err
	}
	templatesSaved.WithLabelValues("replace").Inc()
	return saved, nil
}

// Template action types accepted by ApplyTemplateAction
const (
	TemplateActionSetName          = "set_name"
	TemplateActionSetInstructions  = "set_instructions"
	TemplateActionAddCustomField   = "add_custom_field"
	TemplateActionToggleField      = "toggle_field"
	TemplateActionSetFieldRequired = "set_field_required"
	TemplateActionAddSection       = "add_section"
	TemplateActionRemoveSection    = "remove_section"
	TemplateActionAddQuestion      = "add_question"
	TemplateActionRemoveQuestion   = "remove_question"
	TemplateActionToggleOr         = "toggle_or"
)

// TemplateAction is one builder event as sent by clients
type TemplateAction struct {
	Type           string `json:"type" validate:"required"`
	Name           string `json:"name,omitempty"`
	Key            string `json:"key,omitempty"`
	Label          string `json:"label,omitempty"`
	FieldType      string `json:"field_type,omitempty"`
	OptionsType    string `json:"options_type,omitempty"`
	Required       bool   `json:"required,omitempty"`
	Included       bool   `json:"included,omitempty"`
	Section        string `json:"section,omitempty"`
	QuestionNumber int    `json:"question_number,omitempty"`
	Value          bool   `json:"value,omitempty"`
	General        bool   `json:"general,omitempty"`
	Specific       bool   `json:"specific,omitempty"`
}

// ApplyTemplateAction dispatches one action to the matching transition
func ApplyTemplateAction(d models.Template, catalog models.Catalog, a TemplateAction) (models.Template, error) {
	switch a.Type {
	case TemplateActionSetName:
		return SetTemplateName(d, a.Name), nil
	case TemplateActionSetInstructions:
		return SetInstructionFlags(d, a.General, a.Specific), nil
	case TemplateActionAddCustomField:
		return AddCustomField(d, catalog, CustomField{
			Label:       a.Label,
			Type:        a.FieldType,
			Required:    a.Required,
			OptionsType: a.OptionsType,
		})
	case TemplateActionToggleField:
		return ToggleFieldInclusion(d, a.Key, a.Included)
	case TemplateActionSetFieldRequired:
		return SetFieldRequired(d, a.Key, a.Required)
	case TemplateActionAddSection:
		return AddSection(d)
	case TemplateActionRemoveSection:
		return RemoveSection(d, a.Section)
	case TemplateActionAddQuestion:
		return AddQuestion(d, a.Section)
	case TemplateActionRemoveQuestion:
		return RemoveQuestion(d, a.Section, a.QuestionNumber)
	case TemplateActionToggleOr:
		return ToggleOr(d, a.Section, a.QuestionNumber, a.Value)
	default:
		return d, fmt.Errorf("%q: %w", a.Type, ErrUnknownAction)
	}
}

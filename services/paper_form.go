package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"examination_app_go/models"
)

var ErrAnswerSlotMismatch = errors.New("answer slot does not match the question type")

// PaperNameKey is the control key of the paper name input
const PaperNameKey = "paper_name"

// PaperDraft is the in-progress paper. Fields and SelectedFields are the header
// schema copied from the template and are used only to render and validate.
// TemplateID names the template the schema came from; drafts built from a
// stored paper have none.
type PaperDraft struct {
	EditID         string                       `json:"edit_id,omitempty"`
	TemplateID     string                       `json:"template_id,omitempty"`
	CreatedAt      *time.Time                   `json:"created_at,omitempty"`
	TemplateName   string                       `json:"template_name,omitempty"`
	Fields         []models.TopSectionFormField `json:"fields"`
	SelectedFields []string                     `json:"selectedFields"`
	PaperName      string                       `json:"paper_name"`
	TopSection     map[string]string            `json:"top_section"`
	Sections       []string                     `json:"sections"`
	Questions      []models.PaperQuestion       `json:"questions"`
}

// EmptyPaperDraft is the draft state after a successful submit
func EmptyPaperDraft() PaperDraft {
	return PaperDraft{
		Fields:         []models.TopSectionFormField{},
		SelectedFields: []string{},
		TopSection:     map[string]string{},
		Sections:       []string{},
		Questions:      []models.PaperQuestion{},
	}
}

// IsEdit reports whether submitting replaces an existing paper
func (d PaperDraft) IsEdit() bool {
	return d.EditID != ""
}

// Clone returns a deep copy of the draft
func (d PaperDraft) Clone() PaperDraft {
	out := d
	if d.CreatedAt != nil {
		created := *d.CreatedAt
		out.CreatedAt = &created
	}
	out.Fields = slices.Clone(d.Fields)
	out.SelectedFields = slices.Clone(d.SelectedFields)
	out.TopSection = make(map[string]string, len(d.TopSection))
	for k, v := range d.TopSection {
		out.TopSection[k] = v
	}
	out.Sections = slices.Clone(d.Sections)
	out.Questions = slices.Clone(d.Questions)
	return out
}

// RenderedFields returns the header fields shown on the form: every mandatory
// catalog field, others only when selected. Mandatory keys always take their
// catalog definition, whatever the draft carries; ones missing from the draft
// come first.
func (d PaperDraft) RenderedFields() []models.TopSectionFormField {
	out := make([]models.TopSectionFormField, 0, len(d.Fields)+len(models.MandatoryFieldKeys()))
	seen := make(map[string]bool, len(d.Fields))
	for _, f := range d.Fields {
		if seen[f.Key] || f.Key == PaperNameKey {
			continue
		}
		if mandatory, ok := models.MandatoryField(f.Key); ok {
			out = append(out, mandatory)
			seen[f.Key] = true
			continue
		}
		if !slices.Contains(d.SelectedFields, f.Key) || !models.IsValidFieldType(f.Type) {
			continue
		}
		f.Mandatory = false
		out = append(out, f)
		seen[f.Key] = true
	}

	var missing []models.TopSectionFormField
	for _, f := range models.MandatoryFields() {
		if !seen[f.Key] {
			missing = append(missing, f)
		}
	}
	return append(missing, out...)
}

func (d PaperDraft) renderedField(key string) (models.TopSectionFormField, bool) {
	for _, f := range d.RenderedFields() {
		if f.Key == key {
			return f, true
		}
	}
	return models.TopSectionFormField{}, false
}

// SelectTemplate snapshots a template into an empty paper draft
func SelectTemplate(t models.Template) PaperDraft {
	questions := make([]models.PaperQuestion, 0, len(t.QuestionSections.Questions))
	for _, q := range t.QuestionSections.Questions {
		questions = append(questions, models.PaperQuestion{
			QuestionNumber:     q.QuestionNumber,
			HasOrFunctionality: q.HasOrFunctionality,
			Section:            q.Section,
		})
	}
	sections := slices.Clone(t.QuestionSections.Sections)
	if sections == nil {
		sections = []string{}
	}
	fields := slices.Clone(t.TopSection.Fields)
	if fields == nil {
		fields = []models.TopSectionFormField{}
	}
	selected := slices.Clone(t.TopSection.SelectedFields)
	if selected == nil {
		selected = []string{}
	}

	return PaperDraft{
		TemplateID:     t.ID,
		TemplateName:   t.TemplateName,
		Fields:         fields,
		SelectedFields: selected,
		TopSection:     map[string]string{},
		Sections:       sections,
		Questions:      questions,
	}
}

// BindTemplateSchema replaces the header schema of d with the one of t, the
// template the draft was started from
func BindTemplateSchema(d PaperDraft, t models.Template) PaperDraft {
	fresh := SelectTemplate(t)
	next := d.Clone()
	next.TemplateID = t.ID
	next.TemplateName = t.TemplateName
	next.Fields = fresh.Fields
	next.SelectedFields = fresh.SelectedFields
	return next
}

// DraftFromPaper prepares a stored paper for editing. Papers do not reference
// their template, so the header schema is rebuilt from the catalog fields plus
// one plain text field per extra key found on the paper.
func DraftFromPaper(p models.Paper) PaperDraft {
	fields := models.MandatoryFields()
	known := make(map[string]models.TopSectionFormField)
	for _, f := range models.OptionalFields() {
		known[f.Key] = f
	}

	selected := models.MandatoryFieldKeys()
	extra := make([]string, 0, len(p.TopSection))
	for key := range p.TopSection {
		if !slices.Contains(selected, key) {
			extra = append(extra, key)
		}
	}
	slices.Sort(extra)
	for _, key := range extra {
		f, ok := known[key]
		if !ok {
			f = models.TopSectionFormField{Key: key, Label: labelFromKey(key), Type: models.FieldTypeString}
		}
		fields = append(fields, f)
		selected = append(selected, key)
	}

	created := p.CreatedAt
	clone := p.Clone()
	questions := clone.Questions
	if questions == nil {
		questions = []models.PaperQuestion{}
	}
	sections := clone.Sections
	if sections == nil {
		sections = []string{}
	}
	return PaperDraft{
		EditID:         p.ID,
		CreatedAt:      &created,
		Fields:         fields,
		SelectedFields: selected,
		PaperName:      p.PaperName,
		TopSection:     clone.TopSection,
		Sections:       sections,
		Questions:      questions,
	}
}

func labelFromKey(key string) string {
	words := strings.Split(key, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// SetPaperName sets the paper name
func SetPaperName(d PaperDraft, name string) PaperDraft {
	next := d.Clone()
	next.PaperName = name
	return next
}

// SetTopField stores one header value after checking it against the field
// type. Empty values are accepted; missing values are reported by validation.
func SetTopField(d PaperDraft, catalog models.Catalog, key, value string) (PaperDraft, error) {
	field, ok := d.renderedField(key)
	if !ok {
		return d, &UnknownFieldError{Key: key}
	}

	normalized, err := normalizeFieldValue(field, catalog, value)
	if err != nil {
		return d, err
	}

	next := d.Clone()
	next.TopSection[key] = normalized
	return next, nil
}

var decimalRegex = regexp.MustCompile(`^[+-]?\d+(\.\d+)?$`)

func normalizeFieldValue(field models.TopSectionFormField, catalog models.Catalog, value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", nil
	}

	switch field.Type {
	case models.FieldTypeNumber:
		if !decimalRegex.MatchString(trimmed) {
			return "", &InvalidValueError{Key: field.Key, Value: value, Reason: "must be a number"}
		}
		if n, err := strconv.ParseFloat(trimmed, 64); err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
			return "", &InvalidValueError{Key: field.Key, Value: value, Reason: "must be a number"}
		}
		return trimmed, nil
	case models.FieldTypeSelect:
		if !catalog.HasOption(field.OptionsType, trimmed) {
			return "", &InvalidValueError{Key: field.Key, Value: value, Reason: "not an option of " + field.OptionsType}
		}
		return trimmed, nil
	case models.FieldTypeMultiselect:
		var codes []string
		for _, part := range strings.Split(trimmed, ",") {
			code := strings.TrimSpace(part)
			if code == "" || slices.Contains(codes, code) {
				continue
			}
			if !catalog.HasOption(field.OptionsType, code) {
				return "", &InvalidValueError{Key: field.Key, Value: value, Reason: "not an option of " + field.OptionsType}
			}
			codes = append(codes, code)
		}
		return strings.Join(codes, ", "), nil
	default:
		return value, nil
	}
}

// SetQuestionAnswer stores a question text. The slot must be "text" for plain
// questions and "textA" or "textB" for questions with OR functionality.
func SetQuestionAnswer(d PaperDraft, section string, number int, slot, value string) (PaperDraft, error) {
	idx := -1
	for i, q := range d.Questions {
		if q.Section == section && q.QuestionNumber == number {
			idx = i
			break
		}
	}
	if idx < 0 {
		return d, fmt.Errorf("%s/%d: %w", section, number, ErrUnknownQuestion)
	}

	next := d.Clone()
	q := &next.Questions[idx]
	switch {
	case slot == models.AnswerSlotText && !q.HasOrFunctionality:
		q.QuestionText = value
	case slot == models.AnswerSlotTextA && q.HasOrFunctionality:
		q.QuestionTextA = value
	case slot == models.AnswerSlotTextB && q.HasOrFunctionality:
		q.QuestionTextB = value
	default:
		return d, fmt.Errorf("%s/%d slot %q: %w", section, number, slot, ErrAnswerSlotMismatch)
	}
	return next, nil
}

// ValidatePaperDraft returns every missing value on the draft, or nil
func ValidatePaperDraft(d PaperDraft) FormErrors {
	var errs FormErrors

	if strings.TrimSpace(d.PaperName) == "" {
		errs = append(errs, &MissingFieldError{Key: PaperNameKey, Label: "Paper Name"})
	}

	for _, f := range d.RenderedFields() {
		if !f.IsRequired() {
			continue
		}
		if strings.TrimSpace(d.TopSection[f.Key]) == "" {
			errs = append(errs, &MissingFieldError{Key: f.Key, Label: f.Label})
		}
	}

	for _, q := range d.Questions {
		if q.HasOrFunctionality {
			if strings.TrimSpace(q.QuestionTextA) == "" {
				errs = append(errs, &MissingAnswerError{Section: q.Section, QuestionNumber: q.QuestionNumber, Alternative: "A"})
			}
			if strings.TrimSpace(q.QuestionTextB) == "" {
				errs = append(errs, &MissingAnswerError{Section: q.Section, QuestionNumber: q.QuestionNumber, Alternative: "B"})
			}
			continue
		}
		if strings.TrimSpace(q.QuestionText) == "" {
			errs = append(errs, &MissingAnswerError{Section: q.Section, QuestionNumber: q.QuestionNumber})
		}
	}
	return errs
}

// paperFromDraft builds the persisted record; only rendered header keys are kept
func paperFromDraft(d PaperDraft) models.Paper {
	top := make(map[string]string)
	for _, f := range d.RenderedFields() {
		if v, ok := d.TopSection[f.Key]; ok {
			top[f.Key] = SanitizeText(v)
		}
	}

	questions := make([]models.PaperQuestion, 0, len(d.Questions))
	for _, q := range d.Questions {
		q.QuestionText = SanitizeText(q.QuestionText)
		q.QuestionTextA = SanitizeText(q.QuestionTextA)
		q.QuestionTextB = SanitizeText(q.QuestionTextB)
		if q.HasOrFunctionality {
			q.QuestionText = ""
		} else {
			q.QuestionTextA = ""
			q.QuestionTextB = ""
		}
		questions = append(questions, q)
	}

	sections := slices.Clone(d.Sections)
	if sections == nil {
		sections = []string{}
	}
	return models.Paper{
		PaperName:  SanitizeText(d.PaperName),
		TopSection: top,
		Sections:   sections,
		Questions:  questions,
	}
}

// SubmitPaper validates and persists the draft. New papers are appended with a
// fresh id; edits replace the stored record and keep its created_at. On
// success the returned draft is empty; on any failure it is the input draft.
func SubmitPaper(ctx context.Context, store Repository[models.Paper], d PaperDraft, now time.Time) (paper models.Paper, next PaperDraft, err error) {
	if errs := ValidatePaperDraft(d); len(errs) > 0 {
		paperValidationFailures.Inc()
		return models.Paper{}, d, errs
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ERROR] Unexpected failure while saving paper %q: %v", d.PaperName, r)
			storageFailures.WithLabelValues("submit").Inc()
			paper, next = models.Paper{}, d
			err = &StorageError{Op: "submit", Key: PapersKey, Err: fmt.Errorf("unexpected failure: %v", r)}
		}
	}()

	paper = paperFromDraft(d)
	now = now.UTC()
	op := "insert"
	if d.IsEdit() {
		op = "replace"
		paper.ID = d.EditID
		paper.CreatedAt = now
		if d.CreatedAt != nil {
			paper.CreatedAt = d.CreatedAt.UTC()
		}
		paper.UpdatedAt = &now
		err = store.Replace(ctx, paper)
	} else {
		paper.ID = NewEntityID(EntityPaper, now)
		paper.CreatedAt = now
		err = store.Insert(ctx, paper)
	}
	if err != nil {
		log.Printf("[ERROR] Failed to save paper %q: %v", d.PaperName, err)
		storageFailures.WithLabelValues(op).Inc()
		var se *StorageError
		if !errors.As(err, &se) && !errors.Is(err, ErrPaperNotFound) {
			err = &StorageError{Op: op, Key: PapersKey, Err: err}
		}
		return models.Paper{}, d, err
	}

	papersSubmitted.WithLabelValues(op).Inc()
	return paper, EmptyPaperDraft(), nil
}

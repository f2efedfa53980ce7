package models

import (
	"slices"
	"time"
)

// Default section label; every template starts with it and it can never be removed
const DefaultSection = "A"

// TopSectionFormField describes one header field of a question paper
type TopSectionFormField struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Mandatory   bool   `json:"mandatory"`
	OptionsType string `json:"options_type,omitempty"`
}

// IsRequired reports whether a value must be supplied for this field
func (f TopSectionFormField) IsRequired() bool {
	return f.Mandatory || f.Required
}

// TopSection holds the header field schema of a template
type TopSection struct {
	Fields         []TopSectionFormField `json:"fields"`
	SelectedFields []string              `json:"selectedFields"`
}

// InstructionSection flags which instruction blocks a paper carries
type InstructionSection struct {
	HasGeneralInstructions  bool `json:"has_general_instructions"`
	HasSpecificInstructions bool `json:"has_specific_instructions"`
}

// QuestionConfig is one question slot of a template
type QuestionConfig struct {
	QuestionNumber     int    `json:"questionNumber"`
	HasOrFunctionality bool   `json:"hasOrFunctionality"`
	Section            string `json:"section"`
}

// QuestionSections holds the lettered sections and their question slots
type QuestionSections struct {
	Sections  []string         `json:"sections"`
	Questions []QuestionConfig `json:"questions"`
}

// Template represents a reusable question paper layout
type Template struct {
	ID                 string             `json:"id,omitempty"`
	TemplateName       string             `json:"template_name"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          *time.Time         `json:"updated_at,omitempty"`
	TopSection         TopSection         `json:"top_section"`
	InstructionSection InstructionSection `json:"instruction_section"`
	QuestionSections   QuestionSections   `json:"question_sections"`
}

// IsNew reports whether the template has never been persisted
func (t Template) IsNew() bool {
	return t.ID == ""
}

// Clone returns a deep copy of the template
func (t Template) Clone() Template {
	out := t
	if t.UpdatedAt != nil {
		updated := *t.UpdatedAt
		out.UpdatedAt = &updated
	}
	out.TopSection.Fields = slices.Clone(t.TopSection.Fields)
	out.TopSection.SelectedFields = slices.Clone(t.TopSection.SelectedFields)
	out.QuestionSections.Sections = slices.Clone(t.QuestionSections.Sections)
	out.QuestionSections.Questions = slices.Clone(t.QuestionSections.Questions)
	return out
}

// Field returns the field with the given key
func (t Template) Field(key string) (TopSectionFormField, bool) {
	for _, f := range t.TopSection.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return TopSectionFormField{}, false
}

// IsSelected reports whether the field key is included in the template
func (t Template) IsSelected(key string) bool {
	for _, k := range t.TopSection.SelectedFields {
		if k == key {
			return true
		}
	}
	return false
}

// LatestSection returns the most recently added section label
func (t Template) LatestSection() string {
	sections := t.QuestionSections.Sections
	if len(sections) == 0 {
		return ""
	}
	return sections[len(sections)-1]
}

// HasSection reports whether the label is one of the template sections
func (t Template) HasSection(label string) bool {
	for _, s := range t.QuestionSections.Sections {
		if s == label {
			return true
		}
	}
	return false
}

// QuestionsInSection returns the question slots of one section in stored order
func (t Template) QuestionsInSection(section string) []QuestionConfig {
	var out []QuestionConfig
	for _, q := range t.QuestionSections.Questions {
		if q.Section == section {
			out = append(out, q)
		}
	}
	return out
}

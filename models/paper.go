package models

import (
	"slices"
	"time"
)

// Answer slot names for a paper question
const (
	AnswerSlotText  = "text"
	AnswerSlotTextA = "textA"
	AnswerSlotTextB = "textB"
)

// PaperQuestion is a question slot copied from a template plus its texts.
// All three text fields are always serialized, the unused ones as "".
type PaperQuestion struct {
	QuestionNumber     int    `json:"questionNumber"`
	HasOrFunctionality bool   `json:"hasOrFunctionality"`
	Section            string `json:"section"`
	QuestionText       string `json:"questionText"`
	QuestionTextA      string `json:"questionTextA"`
	QuestionTextB      string `json:"questionTextB"`
}

// Paper represents a filled-in examination paper. It is a snapshot and does
// not reference the template it was created from.
type Paper struct {
	ID         string            `json:"id"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  *time.Time        `json:"updated_at,omitempty"`
	PaperName  string            `json:"paper_name"`
	TopSection map[string]string `json:"top_section"`
	Sections   []string          `json:"sections"`
	Questions  []PaperQuestion   `json:"questions"`
}

// Clone returns a deep copy of the paper
func (p Paper) Clone() Paper {
	out := p
	if p.UpdatedAt != nil {
		updated := *p.UpdatedAt
		out.UpdatedAt = &updated
	}
	out.TopSection = make(map[string]string, len(p.TopSection))
	for k, v := range p.TopSection {
		out.TopSection[k] = v
	}
	out.Sections = slices.Clone(p.Sections)
	out.Questions = slices.Clone(p.Questions)
	return out
}

package services

import (
	"regexp"
	"slices"
	"sort"
	"strings"

	"examination_app_go/models"
)

// PreviewDateLayout formats the paper date line
const PreviewDateLayout = "02 Jan 2006"

// PreviewHeader is an extra header line shown under the fixed ones
type PreviewHeader struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// PreviewQuestion is one question as printed
type PreviewQuestion struct {
	Number int    `json:"number"`
	HasOr  bool   `json:"has_or"`
	Text   string `json:"text,omitempty"`
	TextA  string `json:"text_a,omitempty"`
	TextB  string `json:"text_b,omitempty"`
}

// PreviewSection groups the printed questions of one section
type PreviewSection struct {
	Label     string            `json:"label"`
	Questions []PreviewQuestion `json:"questions"`
}

// PaperPreview is the read projection of a paper used by every rendition
type PaperPreview struct {
	PaperID         string           `json:"paper_id"`
	PaperName       string           `json:"paper_name"`
	ExaminationName string           `json:"examination_name"`
	SubjectName     string           `json:"subject_name"`
	SubjectCode     string           `json:"subject_code"`
	Branch          string           `json:"branch"`
	Semester        string           `json:"semester"`
	PaperCode       string           `json:"paper_code"`
	Date            string           `json:"date"`
	Extra           []PreviewHeader  `json:"extra,omitempty"`
	Sections        []PreviewSection `json:"sections"`
}

// BuildPaperPreview groups questions by section in paper order and sorts them
// by number inside each section. Questions of unlisted sections are skipped.
func BuildPaperPreview(p models.Paper) PaperPreview {
	preview := PaperPreview{
		PaperID:         p.ID,
		PaperName:       p.PaperName,
		ExaminationName: p.TopSection[models.FieldKeyExaminationName],
		SubjectName:     p.TopSection[models.FieldKeySubjectName],
		SubjectCode:     p.TopSection[models.FieldKeySubjectCode],
		Branch:          p.TopSection[models.FieldKeyBranch],
		Semester:        p.TopSection[models.FieldKeySemester],
		PaperCode:       p.TopSection[models.FieldKeyQuestionPaperCode],
	}
	if !p.CreatedAt.IsZero() {
		preview.Date = p.CreatedAt.Format(PreviewDateLayout)
	}

	labels := make(map[string]string)
	for _, f := range models.OptionalFields() {
		labels[f.Key] = f.Label
	}
	mandatory := models.MandatoryFieldKeys()
	extraKeys := make([]string, 0, len(p.TopSection))
	for key, value := range p.TopSection {
		if slices.Contains(mandatory, key) || strings.TrimSpace(value) == "" {
			continue
		}
		extraKeys = append(extraKeys, key)
	}
	sort.Strings(extraKeys)
	for _, key := range extraKeys {
		label, ok := labels[key]
		if !ok {
			label = labelFromKey(key)
		}
		preview.Extra = append(preview.Extra, PreviewHeader{Key: key, Label: label, Value: p.TopSection[key]})
	}

	preview.Sections = make([]PreviewSection, 0, len(p.Sections))
	for _, label := range p.Sections {
		section := PreviewSection{Label: label, Questions: []PreviewQuestion{}}
		for _, q := range p.Questions {
			if q.Section != label {
				continue
			}
			item := PreviewQuestion{Number: q.QuestionNumber, HasOr: q.HasOrFunctionality}
			if q.HasOrFunctionality {
				item.TextA = q.QuestionTextA
				item.TextB = q.QuestionTextB
			} else {
				item.Text = q.QuestionText
			}
			section.Questions = append(section.Questions, item)
		}
		sort.SliceStable(section.Questions, func(i, j int) bool {
			return section.Questions[i].Number < section.Questions[j].Number
		})
		preview.Sections = append(preview.Sections, section)
	}
	return preview
}

// SubjectLine returns "name (code)" or whichever part is present
func (p PaperPreview) SubjectLine() string {
	switch {
	case p.SubjectName != "" && p.SubjectCode != "":
		return p.SubjectName + " (" + p.SubjectCode + ")"
	case p.SubjectName != "":
		return p.SubjectName
	default:
		return p.SubjectCode
	}
}

var exportNameRegex = regexp.MustCompile(`\s+`)

// ExportBaseName lower-cases the paper name and replaces whitespace with "-"
func ExportBaseName(paperName string) string {
	name := exportNameRegex.ReplaceAllString(strings.ToLower(strings.TrimSpace(paperName)), "-")
	if name == "" {
		return "question-paper"
	}
	return name
}

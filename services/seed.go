package services

import (
	"context"
	"log"
	"time"

	"examination_app_go/models"
)

// ExampleTemplate returns the template shipped with a fresh installation
func ExampleTemplate() models.Template {
	updated := time.Date(2024, 11, 4, 21, 10, 43, 450*int(time.Millisecond), time.UTC)
	return models.Template{
		ID:           "template_1730750111828_39kl6tid0",
		TemplateName: "new question paper",
		CreatedAt:    time.Date(2024, 11, 4, 19, 55, 11, 828*int(time.Millisecond), time.UTC),
		UpdatedAt:    &updated,
		TopSection: models.TopSection{
			Fields:         models.MandatoryFields(),
			SelectedFields: models.MandatoryFieldKeys(),
		},
		InstructionSection: models.InstructionSection{
			HasGeneralInstructions:  true,
			HasSpecificInstructions: true,
		},
		QuestionSections: models.QuestionSections{
			Sections: []string{"A", "B"},
			Questions: []models.QuestionConfig{
				{QuestionNumber: 1, HasOrFunctionality: false, Section: "A"},
				{QuestionNumber: 2, HasOrFunctionality: false, Section: "A"},
				{QuestionNumber: 3, HasOrFunctionality: true, Section: "B"},
			},
		},
	}
}

// ExamplePaper returns the question paper shipped with a fresh installation
func ExamplePaper() models.Paper {
	return models.Paper{
		ID:        "paper_1730755164362_899qoqwyn",
		CreatedAt: time.Date(2024, 11, 4, 21, 19, 24, 362*int(time.Millisecond), time.UTC),
		PaperName: "Compute sample new paper",
		TopSection: map[string]string{
			models.FieldKeyQuestionPaperCode: "007",
			models.FieldKeyExaminationName:   "Mid Semester 2024",
			models.FieldKeySemester:          "First",
			models.FieldKeyBranch:            "Information Technology",
			models.FieldKeySubjectCode:       "CS101",
			models.FieldKeySubjectName:       "Automata",
		},
		Sections: []string{"A", "B"},
		Questions: []models.PaperQuestion{
			{QuestionNumber: 1, Section: "A", QuestionText: "What is the basics of programming?"},
			{QuestionNumber: 2, Section: "A", QuestionText: "What is Cpu"},
			{QuestionNumber: 3, HasOrFunctionality: true, Section: "B", QuestionTextA: "What is mice", QuestionTextB: "What is keyboard"},
		},
	}
}

// SeedExamples fills empty collections with the example template and paper
func SeedExamples(ctx context.Context, templates *TemplateStore, papers *PaperStore) error {
	seeded, err := templates.Seed(ctx)
	if err != nil {
		return err
	}
	if seeded {
		log.Println("[SEED] Stored example template")
	} else {
		log.Println("[SEED] Templates already present, skipping seed")
	}

	seeded, err = papers.Seed(ctx)
	if err != nil {
		return err
	}
	if seeded {
		log.Println("[SEED] Stored example question paper")
	} else {
		log.Println("[SEED] Question papers already present, skipping seed")
	}
	return nil
}

package services

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"examination_app_go/models"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// panicRepo panics on every write
type panicRepo struct {
	*PaperStore
}

func (panicRepo) Insert(ctx context.Context, p models.Paper) error  { panic("disk on fire") }
func (panicRepo) Replace(ctx context.Context, p models.Paper) error { panic("disk on fire") }

func twoSectionTemplate() models.Template {
	return models.Template{
		ID:           "template_1_abcdefghi",
		TemplateName: "Two sections",
		TopSection: models.TopSection{
			Fields:         models.MandatoryFields(),
			SelectedFields: models.MandatoryFieldKeys(),
		},
		QuestionSections: models.QuestionSections{
			Sections: []string{"A", "B"},
			Questions: []models.QuestionConfig{
				{QuestionNumber: 1, HasOrFunctionality: false, Section: "A"},
				{QuestionNumber: 3, HasOrFunctionality: true, Section: "B"},
			},
		},
	}
}

func fillHeader(t *testing.T, d PaperDraft) PaperDraft {
	t.Helper()
	catalog := models.PredefinedOptions()
	values := map[string]string{
		models.FieldKeyQuestionPaperCode: "CS-07",
		models.FieldKeyExaminationName:   "Mid Semester 2024",
		models.FieldKeySemester:          "Semester 1",
		models.FieldKeyBranch:            "Computer Science",
		models.FieldKeySubjectCode:       "CS101",
		models.FieldKeySubjectName:       "Programming",
	}
	d = SetPaperName(d, "Midterm")
	for _, key := range models.MandatoryFieldKeys() {
		var err error
		d, err = SetTopField(d, catalog, key, values[key])
		require.NoError(t, err, key)
	}
	return d
}

func TestSelectTemplate(t *testing.T) {
	tmpl := twoSectionTemplate()
	d := SelectTemplate(tmpl)

	assert.Empty(t, d.PaperName)
	assert.Empty(t, d.TopSection)
	assert.False(t, d.IsEdit())
	assert.Equal(t, []string{"A", "B"}, d.Sections)
	want := []models.PaperQuestion{
		{QuestionNumber: 1, HasOrFunctionality: false, Section: "A"},
		{QuestionNumber: 3, HasOrFunctionality: true, Section: "B"},
	}
	if diff := cmp.Diff(want, d.Questions); diff != "" {
		t.Errorf("questions mismatch (-want +got):\n%s", diff)
	}

	tmpl.QuestionSections.Sections[1] = "Z"
	tmpl.TopSection.Fields[0].Label = "changed"
	assert.Equal(t, "B", d.Sections[1], "draft is a snapshot")
	assert.Equal(t, "Question Paper Code", d.Fields[0].Label)
}

func TestSelectTemplateIsIdempotent(t *testing.T) {
	tmpl := ExampleTemplate()
	if diff := cmp.Diff(SelectTemplate(tmpl), SelectTemplate(tmpl)); diff != "" {
		t.Errorf("drafts differ (-first +second):\n%s", diff)
	}
}

func TestValidateOrScenario(t *testing.T) {
	d := fillHeader(t, SelectTemplate(twoSectionTemplate()))

	errs := ValidatePaperDraft(d)
	assert.Equal(t, []string{"question_A_1", "question_B_3_a", "question_B_3_b"}, errs.Keys())

	d, err := SetQuestionAnswer(d, "B", 3, models.AnswerSlotTextA, "Define a compiler")
	require.NoError(t, err)
	errs = ValidatePaperDraft(d)
	assert.Equal(t, []string{"question_A_1", "question_B_3_b"}, errs.Keys())

	d, err = SetQuestionAnswer(d, "B", 3, models.AnswerSlotTextB, "Define an interpreter")
	require.NoError(t, err)
	errs = ValidatePaperDraft(d)
	require.Len(t, errs, 1)
	missing := errs.MissingAnswers()
	require.Len(t, missing, 1)
	assert.Equal(t, &MissingAnswerError{Section: "A", QuestionNumber: 1}, missing[0])

	d, err = SetQuestionAnswer(d, "A", 1, models.AnswerSlotText, "   ")
	require.NoError(t, err)
	assert.Len(t, ValidatePaperDraft(d), 1, "whitespace is empty")
}

func TestValidateCollectsEveryViolation(t *testing.T) {
	d := SelectTemplate(ExampleTemplate())

	errs := ValidatePaperDraft(d)
	// paper name, six mandatory fields, two plain questions, two OR alternatives
	assert.Len(t, errs, 11)
	assert.Equal(t, "11 required values are missing", errs.Error())
	assert.Equal(t, "Paper Name is required", errs.Fields()[PaperNameKey])
	assert.Equal(t, "Subject Name is required", errs.Fields()[models.FieldKeySubjectName])
	assert.Equal(t, "section B question 3A is required", errs.Fields()["question_B_3_a"])
	assert.True(t, IsValidationFailure(errs))
}

func TestValidateRequiredOptionalField(t *testing.T) {
	tmpl := SetTemplateName(InitTemplateDraft(), "With time")
	tmpl, _ = SetFieldRequired(tmpl, models.FieldKeyTime, true)
	tmpl, _ = ToggleFieldInclusion(tmpl, models.FieldKeyTime, true)
	tmpl, _ = ToggleFieldInclusion(tmpl, models.FieldKeyDate, true)

	d := fillHeader(t, SelectTemplate(tmpl))
	d, _ = SetQuestionAnswer(d, "A", 1, models.AnswerSlotText, "Explain recursion")

	errs := ValidatePaperDraft(d)
	assert.Equal(t, []string{models.FieldKeyTime}, errs.Keys(), "unrequired date may stay empty")
}

func TestValidateIgnoresTamperedSchema(t *testing.T) {
	answered := func(d PaperDraft) PaperDraft {
		d = SetPaperName(d, "Midterm")
		d, _ = SetQuestionAnswer(d, "A", 1, models.AnswerSlotText, "Explain loops")
		d, _ = SetQuestionAnswer(d, "B", 3, models.AnswerSlotTextA, "A")
		d, _ = SetQuestionAnswer(d, "B", 3, models.AnswerSlotTextB, "B")
		return d
	}

	t.Run("fields stripped", func(t *testing.T) {
		d := answered(SelectTemplate(twoSectionTemplate()))
		d.Fields = []models.TopSectionFormField{}
		d.SelectedFields = []string{}

		want := models.MandatoryFieldKeys()
		slices.Sort(want)
		assert.Equal(t, want, ValidatePaperDraft(d).Keys())
	})

	t.Run("mandatory demoted", func(t *testing.T) {
		d := answered(SelectTemplate(twoSectionTemplate()))
		for i := range d.Fields {
			if d.Fields[i].Key == models.FieldKeySemester {
				d.Fields[i] = models.TopSectionFormField{Key: models.FieldKeySemester, Label: "Semester", Type: models.FieldTypeString}
			}
		}
		d.SelectedFields = []string{}

		assert.Len(t, ValidatePaperDraft(d), len(models.MandatoryFieldKeys()))
		_, err := SetTopField(d, models.PredefinedOptions(), models.FieldKeySemester, "anything")
		var invalid *InvalidValueError
		assert.ErrorAs(t, err, &invalid, "catalog definition wins")
	})

	t.Run("injected fields", func(t *testing.T) {
		d := SelectTemplate(twoSectionTemplate())
		d.Fields = append(d.Fields,
			models.TopSectionFormField{Key: "room", Label: "Room", Type: models.FieldTypeString, Required: true, Mandatory: true},
			models.TopSectionFormField{Key: PaperNameKey, Label: "Paper Name", Type: models.FieldTypeString, Required: true},
		)
		d.SelectedFields = append(d.SelectedFields, PaperNameKey)

		var unknown *UnknownFieldError
		_, err := SetTopField(d, models.PredefinedOptions(), "room", "12")
		assert.ErrorAs(t, err, &unknown, "unselected even when flagged mandatory")
		_, err = SetTopField(d, models.PredefinedOptions(), PaperNameKey, "x")
		assert.ErrorAs(t, err, &unknown)
		assert.Len(t, d.RenderedFields(), len(models.MandatoryFields()))
	})

	t.Run("submit keeps mandatory header", func(t *testing.T) {
		d := answered(fillHeader(t, SelectTemplate(twoSectionTemplate())))
		d.Fields = []models.TopSectionFormField{}

		store := NewPaperStore(NewMemoryKV())
		paper, _, err := SubmitPaper(context.Background(), store, d, time.Now())
		require.NoError(t, err)
		for _, key := range models.MandatoryFieldKeys() {
			assert.NotEmpty(t, paper.TopSection[key], key)
		}
	})
}

func TestBindTemplateSchema(t *testing.T) {
	tmpl := twoSectionTemplate()
	d := fillHeader(t, SelectTemplate(tmpl))
	d.Fields = []models.TopSectionFormField{{Key: "room", Type: models.FieldTypeString}}
	d.SelectedFields = []string{"room"}

	bound := BindTemplateSchema(d, tmpl)
	assert.Equal(t, tmpl.ID, bound.TemplateID)
	if diff := cmp.Diff(tmpl.TopSection.Fields, bound.Fields); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, d.TopSection, bound.TopSection, "values kept")
	assert.Equal(t, []string{"room"}, d.SelectedFields, "input draft untouched")
}

func TestSetTopField(t *testing.T) {
	catalog := models.PredefinedOptions()
	tmpl := InitTemplateDraft()
	tmpl, _ = ToggleFieldInclusion(tmpl, models.FieldKeyMaxMarks, true)
	d := SelectTemplate(tmpl)

	tests := []struct {
		name  string
		key   string
		value string
		want  string
	}{
		{"number", models.FieldKeyMaxMarks, " 100 ", "100"},
		{"decimal", models.FieldKeyMaxMarks, "72.5", "72.5"},
		{"empty clears", models.FieldKeyMaxMarks, "  ", ""},
		{"select", models.FieldKeyBranch, "Civil", "Civil"},
		{"select by code", models.FieldKeySubjectCode, "CS102", "CS102"},
		{"multiselect", models.FieldKeySemester, "Semester 3,Semester 1, Semester 3", "Semester 3, Semester 1"},
		{"text kept verbatim", models.FieldKeySubjectName, " Data  Structures ", " Data  Structures "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := SetTopField(d, catalog, tt.key, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, next.TopSection[tt.key])
			assert.NotContains(t, d.TopSection, tt.key, "input draft untouched")
		})
	}
}

func TestSetTopFieldRejections(t *testing.T) {
	catalog := models.PredefinedOptions()
	tmpl := InitTemplateDraft()
	tmpl, _ = ToggleFieldInclusion(tmpl, models.FieldKeyMaxMarks, true)
	d := SelectTemplate(tmpl)

	_, err := SetTopField(d, catalog, models.FieldKeyTime, "3 hours")
	var unknown *UnknownFieldError
	require.ErrorAs(t, err, &unknown, "unselected fields are not rendered")
	assert.Equal(t, models.FieldKeyTime, unknown.Key)

	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"not a number", models.FieldKeyMaxMarks, "lots"},
		{"nan", models.FieldKeyMaxMarks, "NaN"},
		{"infinity", models.FieldKeyMaxMarks, "Inf"},
		{"hex float", models.FieldKeyMaxMarks, "0x1p4"},
		{"digit separators", models.FieldKeyMaxMarks, "1_000"},
		{"exponent", models.FieldKeyMaxMarks, "1e3"},
		{"out of range", models.FieldKeyMaxMarks, "1" + strings.Repeat("0", 400)},
		{"unknown option", models.FieldKeyBranch, "Underwater"},
		{"label instead of code", models.FieldKeySubjectCode, "CS101 - Introduction to Programming"},
		{"one bad multiselect code", models.FieldKeySemester, "Semester 1, Semester 9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SetTopField(d, catalog, tt.key, tt.value)
			var invalid *InvalidValueError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.key, invalid.Key)
		})
	}
}

func TestSetQuestionAnswerSlots(t *testing.T) {
	d := SelectTemplate(twoSectionTemplate())

	_, err := SetQuestionAnswer(d, "A", 1, models.AnswerSlotTextA, "x")
	assert.ErrorIs(t, err, ErrAnswerSlotMismatch)
	_, err = SetQuestionAnswer(d, "B", 3, models.AnswerSlotText, "x")
	assert.ErrorIs(t, err, ErrAnswerSlotMismatch)
	_, err = SetQuestionAnswer(d, "B", 1, models.AnswerSlotText, "x")
	assert.ErrorIs(t, err, ErrUnknownQuestion)

	next, err := SetQuestionAnswer(d, "A", 1, models.AnswerSlotText, "Explain loops")
	require.NoError(t, err)
	assert.Equal(t, "Explain loops", next.Questions[0].QuestionText)
	assert.Empty(t, d.Questions[0].QuestionText, "input draft untouched")
}

func TestSubmitPaperCreate(t *testing.T) {
	ctx := context.Background()
	store := NewPaperStore(NewMemoryKV())
	now := time.Date(2024, 11, 5, 9, 0, 0, 0, time.UTC)

	d := fillHeader(t, SelectTemplate(twoSectionTemplate()))
	d, _ = SetQuestionAnswer(d, "A", 1, models.AnswerSlotText, "Explain <b>loops</b>")
	d, _ = SetQuestionAnswer(d, "B", 3, models.AnswerSlotTextA, "Define a compiler")
	d, _ = SetQuestionAnswer(d, "B", 3, models.AnswerSlotTextB, "Define an interpreter")

	paper, next, err := SubmitPaper(ctx, store, d, now)
	require.NoError(t, err)
	assert.True(t, IsEntityID(paper.ID))
	assert.Equal(t, now, paper.CreatedAt)
	assert.Nil(t, paper.UpdatedAt)
	assert.Equal(t, "Explain loops", paper.Questions[0].QuestionText, "markup stripped")
	if diff := cmp.Diff(EmptyPaperDraft(), next); diff != "" {
		t.Errorf("draft not reset (-want +got):\n%s", diff)
	}

	stored, err := store.Get(ctx, paper.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(paper, stored); diff != "" {
		t.Errorf("stored paper mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Semester 1", stored.TopSection[models.FieldKeySemester])
}

func TestSubmitPaperInvalidDoesNotPersist(t *testing.T) {
	ctx := context.Background()
	store := NewPaperStore(NewMemoryKV())

	d := fillHeader(t, SelectTemplate(twoSectionTemplate()))
	_, next, err := SubmitPaper(ctx, store, d, time.Now())

	var errs FormErrors
	require.ErrorAs(t, err, &errs)
	assert.Len(t, errs, 3)
	if diff := cmp.Diff(d, next); diff != "" {
		t.Errorf("draft changed (-want +got):\n%s", diff)
	}

	papers, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, papers)
}

func TestSubmitPaperEdit(t *testing.T) {
	ctx := context.Background()
	store := NewPaperStore(NewMemoryKV())
	_, err := store.Seed(ctx)
	require.NoError(t, err)
	other := models.Paper{ID: "paper_2_bbbbbbbbb", PaperName: "Other", TopSection: map[string]string{}, Sections: []string{}, Questions: []models.PaperQuestion{}}
	require.NoError(t, store.Insert(ctx, other))

	example := ExamplePaper()
	d := DraftFromPaper(example)
	assert.True(t, d.IsEdit())
	d = SetPaperName(d, "Renamed paper")

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	paper, _, err := SubmitPaper(ctx, store, d, now)
	require.NoError(t, err)
	assert.Equal(t, example.ID, paper.ID)
	assert.Equal(t, example.CreatedAt, paper.CreatedAt)
	require.NotNil(t, paper.UpdatedAt)
	assert.Equal(t, now, *paper.UpdatedAt)

	papers, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, papers, 2)
	assert.Equal(t, "Renamed paper", papers[0].PaperName, "edit replaces in place")
	assert.Equal(t, example.TopSection, papers[0].TopSection)
	assert.Equal(t, "Other", papers[1].PaperName)
}

func TestSubmitPaperEditOfDeletedPaper(t *testing.T) {
	ctx := context.Background()
	store := NewPaperStore(NewMemoryKV())

	d := DraftFromPaper(ExamplePaper())
	_, next, err := SubmitPaper(ctx, store, d, time.Now())
	assert.ErrorIs(t, err, ErrPaperNotFound)
	assert.Equal(t, d.EditID, next.EditID)
}

func TestSubmitPaperStorageFailures(t *testing.T) {
	ctx := context.Background()
	d := fillHeader(t, SelectTemplate(twoSectionTemplate()))
	d, _ = SetQuestionAnswer(d, "A", 1, models.AnswerSlotText, "Explain loops")
	d, _ = SetQuestionAnswer(d, "B", 3, models.AnswerSlotTextA, "A")
	d, _ = SetQuestionAnswer(d, "B", 3, models.AnswerSlotTextB, "B")

	t.Run("backend error", func(t *testing.T) {
		store := NewPaperStore(failingKV{err: errors.New("connection refused")})
		_, next, err := SubmitPaper(ctx, store, d, time.Now())
		var se *StorageError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, "Midterm", next.PaperName, "draft kept for retry")
	})

	t.Run("panic", func(t *testing.T) {
		repo := panicRepo{NewPaperStore(NewMemoryKV())}
		var (
			next PaperDraft
			err  error
		)
		require.NotPanics(t, func() {
			_, next, err = SubmitPaper(ctx, repo, d, time.Now())
		})
		var se *StorageError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, "submit", se.Op)
		assert.Contains(t, se.Error(), "disk on fire")
		if diff := cmp.Diff(d, next); diff != "" {
			t.Errorf("draft changed (-want +got):\n%s", diff)
		}
	})
}

func TestDraftFromPaper(t *testing.T) {
	p := ExamplePaper()
	p.TopSection[models.FieldKeyMaxMarks] = "100"
	p.TopSection["room_number"] = "B-12"

	d := DraftFromPaper(p)
	assert.Equal(t, p.ID, d.EditID)
	require.NotNil(t, d.CreatedAt)
	assert.Equal(t, p.CreatedAt, *d.CreatedAt)
	assert.Equal(t, p.PaperName, d.PaperName)

	keys := make([]string, 0, len(d.RenderedFields()))
	for _, f := range d.RenderedFields() {
		keys = append(keys, f.Key)
	}
	assert.Equal(t, append(models.MandatoryFieldKeys(), models.FieldKeyMaxMarks, "room_number"), keys)

	room := d.Fields[len(d.Fields)-1]
	assert.Equal(t, models.TopSectionFormField{Key: "room_number", Label: "Room Number", Type: models.FieldTypeString}, room)
	marks := d.Fields[len(d.Fields)-2]
	assert.Equal(t, models.FieldTypeNumber, marks.Type)

	d.TopSection["room_number"] = "changed"
	assert.Equal(t, "B-12", p.TopSection["room_number"], "draft does not alias the paper")
	assert.Empty(t, ValidatePaperDraft(d))
}

func TestApplyPaperAction(t *testing.T) {
	catalog := models.PredefinedOptions()
	d := SelectTemplate(twoSectionTemplate())

	d, err := ApplyPaperAction(d, catalog, PaperAction{Type: PaperActionSetName, Value: "Quiz"})
	require.NoError(t, err)
	d, err = ApplyPaperAction(d, catalog, PaperAction{Type: PaperActionSetField, Key: models.FieldKeyBranch, Value: "Civil"})
	require.NoError(t, err)
	d, err = ApplyPaperAction(d, catalog, PaperAction{Type: PaperActionSetAnswer, Section: "B", QuestionNumber: 3, Slot: models.AnswerSlotTextB, Value: "Why?"})
	require.NoError(t, err)

	assert.Equal(t, "Quiz", d.PaperName)
	assert.Equal(t, "Civil", d.TopSection[models.FieldKeyBranch])
	assert.Equal(t, "Why?", d.Questions[1].QuestionTextB)

	_, err = ApplyPaperAction(d, catalog, PaperAction{Type: "set_everything"})
	assert.ErrorIs(t, err, ErrUnknownAction)
}

package services

import (
	"context"
	"testing"
	"time"

	"examination_app_go/models"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTemplateDraft(t *testing.T) {
	d := InitTemplateDraft()

	assert.True(t, d.IsNew())
	assert.Len(t, d.TopSection.Fields, len(models.MandatoryFields())+len(models.OptionalFields()))
	assert.Equal(t, models.MandatoryFieldKeys(), d.TopSection.SelectedFields)
	assert.Equal(t, []string{"A"}, d.QuestionSections.Sections)

	want := []models.QuestionConfig{{QuestionNumber: 1, Section: "A"}}
	if diff := cmp.Diff(want, d.QuestionSections.Questions); diff != "" {
		t.Errorf("questions mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldKeyFromLabel(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"Room", "room"},
		{"Room Number", "room_number"},
		{"  Invigilator   Name ", "invigilator_name"},
		{"Max\tMarks\nTotal", "max_marks_total"},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, FieldKeyFromLabel(tt.label))
		})
	}
}

func TestAddCustomField(t *testing.T) {
	catalog := models.PredefinedOptions()
	d := InitTemplateDraft()

	next, err := AddCustomField(d, catalog, CustomField{Label: "Room Number", Type: models.FieldTypeString, Required: true})
	require.NoError(t, err)

	field, ok := next.Field("room_number")
	require.True(t, ok)
	assert.Equal(t, models.TopSectionFormField{Key: "room_number", Label: "Room Number", Type: models.FieldTypeString, Required: true}, field)
	assert.False(t, next.IsSelected("room_number"), "new fields start unselected")
	assert.Len(t, d.TopSection.Fields, len(next.TopSection.Fields)-1, "input draft untouched")

	withSelect, err := AddCustomField(next, catalog, CustomField{Label: "Stream", Type: models.FieldTypeSelect, OptionsType: models.OptionsTypeBranch})
	require.NoError(t, err)
	stream, _ := withSelect.Field("stream")
	assert.Equal(t, models.OptionsTypeBranch, stream.OptionsType)

	plain, err := AddCustomField(d, catalog, CustomField{Label: "Notes", Type: models.FieldTypeString, OptionsType: models.OptionsTypeBranch})
	require.NoError(t, err)
	notes, _ := plain.Field("notes")
	assert.Empty(t, notes.OptionsType, "options type only kept for choice fields")
}

func TestAddCustomFieldRejections(t *testing.T) {
	catalog := models.PredefinedOptions()
	d := InitTemplateDraft()

	tests := []struct {
		name string
		in   CustomField
		want error
	}{
		{"empty label", CustomField{Label: "   ", Type: models.FieldTypeString}, ErrFieldLabelRequired},
		{"bad type", CustomField{Label: "Room", Type: "date"}, ErrInvalidFieldType},
		{"select without options", CustomField{Label: "Room", Type: models.FieldTypeSelect}, ErrOptionsTypeRequired},
		{"multiselect without options", CustomField{Label: "Room", Type: models.FieldTypeMultiselect}, ErrOptionsTypeRequired},
		{"unknown options", CustomField{Label: "Room", Type: models.FieldTypeSelect, OptionsType: "Rooms"}, ErrUnknownOptionsType},
		{"duplicate key", CustomField{Label: "Subject Name", Type: models.FieldTypeString}, ErrDuplicateFieldKey},
		{"paper name key", CustomField{Label: "Paper  Name", Type: models.FieldTypeString}, ErrDuplicateFieldKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := AddCustomField(d, catalog, tt.in)
			assert.ErrorIs(t, err, tt.want)
			if diff := cmp.Diff(d, next); diff != "" {
				t.Errorf("draft changed on rejection (-want +got):\n%s", diff)
			}
		})
	}
}

func TestToggleFieldInclusion(t *testing.T) {
	d := InitTemplateDraft()

	d, err := ToggleFieldInclusion(d, models.FieldKeyMaxMarks, true)
	require.NoError(t, err)
	assert.True(t, d.IsSelected(models.FieldKeyMaxMarks))

	d, err = ToggleFieldInclusion(d, models.FieldKeyMaxMarks, true)
	require.NoError(t, err)
	assert.Len(t, d.TopSection.SelectedFields, len(models.MandatoryFieldKeys())+1, "no duplicate keys")

	d, err = ToggleFieldInclusion(d, models.FieldKeyMaxMarks, false)
	require.NoError(t, err)
	assert.False(t, d.IsSelected(models.FieldKeyMaxMarks))

	_, err = ToggleFieldInclusion(d, "room", true)
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestMandatoryFieldsStaySelected(t *testing.T) {
	d := InitTemplateDraft()
	keys := append(models.MandatoryFieldKeys(), models.FieldKeyTime, models.FieldKeyDate)

	for round := 0; round < 3; round++ {
		for i, key := range keys {
			var err error
			d, err = ToggleFieldInclusion(d, key, (i+round)%2 == 0)
			require.NoError(t, err)
		}
		for _, key := range models.MandatoryFieldKeys() {
			assert.True(t, d.IsSelected(key), "round %d: %s", round, key)
		}
	}
}

func TestSetFieldRequired(t *testing.T) {
	d := InitTemplateDraft()

	d, err := SetFieldRequired(d, models.FieldKeyTime, true)
	require.NoError(t, err)
	f, _ := d.Field(models.FieldKeyTime)
	assert.True(t, f.Required)

	d, err = SetFieldRequired(d, models.FieldKeySubjectName, false)
	require.NoError(t, err)
	f, _ = d.Field(models.FieldKeySubjectName)
	assert.True(t, f.Required, "mandatory fields stay required")

	_, err = SetFieldRequired(d, "room", true)
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestAddSection(t *testing.T) {
	d := InitTemplateDraft()

	d, err := AddSection(d)
	require.NoError(t, err)
	d, err = AddSection(d)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C"}, d.QuestionSections.Sections)
	want := []models.QuestionConfig{
		{QuestionNumber: 1, Section: "A"},
		{QuestionNumber: 2, Section: "B"},
		{QuestionNumber: 3, Section: "C"},
	}
	if diff := cmp.Diff(want, d.QuestionSections.Questions); diff != "" {
		t.Errorf("questions mismatch (-want +got):\n%s", diff)
	}
}

func TestAddSectionStopsAtZ(t *testing.T) {
	d := InitTemplateDraft()
	for i := 1; i < 26; i++ {
		var err error
		d, err = AddSection(d)
		require.NoError(t, err)
	}
	assert.Equal(t, "Z", d.LatestSection())

	_, err := AddSection(d)
	assert.ErrorIs(t, err, ErrTooManySections)
}

func TestRemoveSection(t *testing.T) {
	d := InitTemplateDraft()
	d, _ = AddSection(d)
	d, _ = AddSection(d)

	t.Run("section A is permanent", func(t *testing.T) {
		next, err := RemoveSection(d, "A")
		assert.ErrorIs(t, err, ErrSectionPermanent)
		assert.Equal(t, d.QuestionSections.Sections, next.QuestionSections.Sections)
	})

	t.Run("unknown section", func(t *testing.T) {
		_, err := RemoveSection(d, "Q")
		assert.ErrorIs(t, err, ErrUnknownSection)
	})

	t.Run("only the latest section", func(t *testing.T) {
		next, err := RemoveSection(d, "B")
		assert.ErrorIs(t, err, ErrSectionNotLatest)
		if diff := cmp.Diff(d, next); diff != "" {
			t.Errorf("draft changed on rejection (-want +got):\n%s", diff)
		}
	})

	t.Run("latest section and its questions", func(t *testing.T) {
		d2, err := AddQuestion(d, "C")
		require.NoError(t, err)

		next, err := RemoveSection(d2, "C")
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B"}, next.QuestionSections.Sections)
		assert.Empty(t, next.QuestionsInSection("C"))
		assert.Len(t, next.QuestionSections.Questions, 2)
		assert.Len(t, d2.QuestionSections.Questions, 4, "input draft untouched")
	})
}

func TestAddQuestion(t *testing.T) {
	d := InitTemplateDraft()

	d, err := AddQuestion(d, "A")
	require.NoError(t, err)
	d, _ = AddSection(d)

	next, err := AddQuestion(d, "A")
	assert.ErrorIs(t, err, ErrSectionFrozen)
	assert.Len(t, next.QuestionSections.Questions, 3)

	_, err = AddQuestion(d, "Q")
	assert.ErrorIs(t, err, ErrUnknownSection)

	d, err = AddQuestion(d, "B")
	require.NoError(t, err)
	want := []models.QuestionConfig{
		{QuestionNumber: 1, Section: "A"},
		{QuestionNumber: 2, Section: "A"},
		{QuestionNumber: 3, Section: "B"},
		{QuestionNumber: 4, Section: "B"},
	}
	if diff := cmp.Diff(want, d.QuestionSections.Questions); diff != "" {
		t.Errorf("questions mismatch (-want +got):\n%s", diff)
	}
}

func TestRemoveQuestion(t *testing.T) {
	d := InitTemplateDraft()
	d, _ = AddQuestion(d, "A")
	d, _ = AddQuestion(d, "A")
	d, _ = AddSection(d)

	_, err := RemoveQuestion(d, "A", 1)
	assert.ErrorIs(t, err, ErrSeedQuestion)

	_, err = RemoveQuestion(d, "B", 4)
	assert.ErrorIs(t, err, ErrLastQuestionInSection)

	_, err = RemoveQuestion(d, "A", 9)
	assert.ErrorIs(t, err, ErrUnknownQuestion)

	next, err := RemoveQuestion(d, "A", 2)
	require.NoError(t, err)
	want := []models.QuestionConfig{
		{QuestionNumber: 1, Section: "A"},
		{QuestionNumber: 3, Section: "A"},
		{QuestionNumber: 4, Section: "B"},
	}
	if diff := cmp.Diff(want, next.QuestionSections.Questions); diff != "" {
		t.Errorf("survivors are not renumbered (-want +got):\n%s", diff)
	}
	assert.Len(t, d.QuestionSections.Questions, 4, "input draft untouched")
}

func TestQuestionNumbersStayUniqueAfterRemoval(t *testing.T) {
	d := InitTemplateDraft()
	d, _ = AddQuestion(d, "A") // 2
	d, _ = AddQuestion(d, "A") // 3
	d, err := RemoveQuestion(d, "A", 2)
	require.NoError(t, err)

	// count+1 is 3, which is still taken
	d, err = AddQuestion(d, "A")
	require.NoError(t, err)

	numbers := make([]int, 0, len(d.QuestionSections.Questions))
	for _, q := range d.QuestionSections.Questions {
		numbers = append(numbers, q.QuestionNumber)
	}
	assert.Equal(t, []int{1, 3, 4}, numbers)
	assert.NoError(t, ValidateTemplateForSave(SetTemplateName(d, "Numbers"), models.PredefinedOptions()))
}

func TestToggleOr(t *testing.T) {
	d := InitTemplateDraft()

	d, err := ToggleOr(d, "A", 1, true)
	require.NoError(t, err)
	assert.True(t, d.QuestionSections.Questions[0].HasOrFunctionality)

	d, err = ToggleOr(d, "A", 1, false)
	require.NoError(t, err)
	assert.False(t, d.QuestionSections.Questions[0].HasOrFunctionality)

	_, err = ToggleOr(d, "B", 1, true)
	assert.ErrorIs(t, err, ErrUnknownQuestion)
}

func TestValidateTemplateForSave(t *testing.T) {
	valid := SetTemplateName(InitTemplateDraft(), "Midterm")
	require.NoError(t, ValidateTemplateForSave(valid, models.PredefinedOptions()))

	requiredTime, err := SetFieldRequired(valid, models.FieldKeyTime, true)
	require.NoError(t, err)

	missingMandatory := valid.Clone()
	missingMandatory.TopSection.SelectedFields = missingMandatory.TopSection.SelectedFields[1:]

	badSection := valid.Clone()
	badSection.QuestionSections.Sections = []string{"B"}
	badSection.QuestionSections.Questions = []models.QuestionConfig{{QuestionNumber: 1, Section: "B"}}

	repeated := valid.Clone()
	repeated.QuestionSections.Questions = append(repeated.QuestionSections.Questions, models.QuestionConfig{QuestionNumber: 1, Section: "A"})

	tests := []struct {
		name  string
		draft models.Template
		want  []string
	}{
		{"no name", InitTemplateDraft(), []string{"template name is required"}},
		{"mandatory field excluded", missingMandatory, []string{"mandatory field question_paper_code must be included"}},
		{"required field excluded", requiredTime, []string{"required field time must be included"}},
		{"first section not A", badSection, []string{"section A must be the first section"}},
		{"repeated number", repeated, []string{"question number 1 is invalid or repeated"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTemplateForSave(tt.draft, models.PredefinedOptions())
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.want, ve.Problems)
			assert.True(t, IsValidationFailure(err))
		})
	}
}

func TestValidateTemplateForSaveFieldDefinitions(t *testing.T) {
	catalog := models.PredefinedOptions()
	valid := SetTemplateName(InitTemplateDraft(), "Midterm")

	withField := func(f models.TopSectionFormField) models.Template {
		d := valid.Clone()
		d.TopSection.Fields = append(d.TopSection.Fields, f)
		d.TopSection.SelectedFields = append(d.TopSection.SelectedFields, f.Key)
		return d
	}

	demoted := valid.Clone()
	for i := range demoted.TopSection.Fields {
		if demoted.TopSection.Fields[i].Key == models.FieldKeySemester {
			demoted.TopSection.Fields[i].Mandatory = false
			demoted.TopSection.Fields[i].Required = false
			demoted.TopSection.Fields[i].OptionsType = ""
		}
	}

	tests := []struct {
		name  string
		draft models.Template
		want  []string
	}{
		{"mandatory demoted", demoted, []string{"mandatory field semester must keep its catalog definition"}},
		{"select without options", withField(models.TopSectionFormField{Key: "dept", Label: "Dept", Type: models.FieldTypeSelect}),
			[]string{"field dept needs an options type from the catalog"}},
		{"unknown options", withField(models.TopSectionFormField{Key: "dept", Label: "Dept", Type: models.FieldTypeMultiselect, OptionsType: "Rooms"}),
			[]string{"field dept needs an options type from the catalog"}},
		{"bad type", withField(models.TopSectionFormField{Key: "room", Label: "Room", Type: "date"}),
			[]string{`field room has invalid type "date"`}},
		{"claims mandatory", withField(models.TopSectionFormField{Key: "room", Label: "Room", Type: models.FieldTypeString, Mandatory: true}),
			[]string{"field room cannot be mandatory"}},
		{"reserved key", withField(models.TopSectionFormField{Key: PaperNameKey, Label: "Paper Name", Type: models.FieldTypeString}),
			[]string{"field key paper_name is reserved"}},
		{"invalid key", withField(models.TopSectionFormField{Key: "Room No", Label: "Room", Type: models.FieldTypeString}),
			[]string{`field key "Room No" is invalid`}},
		{"duplicate key", withField(models.TopSectionFormField{Key: models.FieldKeyTime, Label: "Time", Type: models.FieldTypeString}),
			[]string{"field time is defined more than once"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTemplateForSave(tt.draft, catalog)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.want, ve.Problems)
		})
	}
}

func TestSaveTemplateRejectsTamperedFields(t *testing.T) {
	ctx := context.Background()
	store := NewTemplateStore(NewMemoryKV())

	d := SetTemplateName(InitTemplateDraft(), "Midterm")
	d.TopSection.Fields[2] = models.TopSectionFormField{Key: models.FieldKeySemester, Label: "Semester", Type: models.FieldTypeString}
	d.TopSection.Fields = append(d.TopSection.Fields, models.TopSectionFormField{Key: "dept", Label: "Dept", Type: models.FieldTypeSelect})
	d.TopSection.SelectedFields = append(d.TopSection.SelectedFields, "dept")

	_, err := SaveTemplate(ctx, store, models.PredefinedOptions(), d, time.Now())
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Problems, 2)

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSaveTemplateRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewTemplateStore(NewMemoryKV())
	now := time.Date(2024, 11, 4, 20, 0, 0, 0, time.UTC)

	d := SetTemplateName(InitTemplateDraft(), "  Midterm  ")
	d, _ = ToggleFieldInclusion(d, models.FieldKeyMaxMarks, true)
	d, _ = AddSection(d)
	d, _ = ToggleOr(d, "B", 2, true)

	saved, err := SaveTemplate(ctx, store, models.PredefinedOptions(), d, now)
	require.NoError(t, err)
	assert.True(t, IsEntityID(saved.ID))
	assert.Equal(t, now, saved.CreatedAt)
	assert.Nil(t, saved.UpdatedAt)
	assert.Equal(t, "Midterm", saved.TemplateName)

	loaded, err := store.Get(ctx, saved.ID)
	require.NoError(t, err)

	want := d.Clone()
	want.ID = saved.ID
	want.TemplateName = "Midterm"
	want.CreatedAt = now
	want.TopSection.Fields = append(models.MandatoryFields(), models.TopSectionFormField{Key: models.FieldKeyMaxMarks, Label: "Maximum Marks", Type: models.FieldTypeNumber})
	if diff := cmp.Diff(want, loaded); diff != "" {
		t.Errorf("loaded template mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveTemplateEdit(t *testing.T) {
	ctx := context.Background()
	store := NewTemplateStore(NewMemoryKV())
	created := time.Date(2024, 11, 4, 20, 0, 0, 0, time.UTC)
	edited := created.Add(48 * time.Hour)

	saved, err := SaveTemplate(ctx, store, models.PredefinedOptions(), SetTemplateName(InitTemplateDraft(), "Midterm"), created)
	require.NoError(t, err)

	d := TemplateDraftFromTemplate(saved)
	assert.Len(t, d.TopSection.Fields, len(models.MandatoryFields())+len(models.OptionalFields()), "dropped fields come back")
	d = SetTemplateName(d, "Final")
	d.CreatedAt = edited

	updated, err := SaveTemplate(ctx, store, models.PredefinedOptions(), d, edited)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, updated.ID)
	assert.Equal(t, created, updated.CreatedAt, "created_at is kept")
	require.NotNil(t, updated.UpdatedAt)
	assert.Equal(t, edited, *updated.UpdatedAt)

	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Final", all[0].TemplateName)

	gone := d.Clone()
	gone.ID = "template_1_missingid"
	_, err = SaveTemplate(ctx, store, models.PredefinedOptions(), gone, edited)
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestSaveTemplateInvalidDoesNotPersist(t *testing.T) {
	ctx := context.Background()
	store := NewTemplateStore(NewMemoryKV())

	d := InitTemplateDraft()
	out, err := SaveTemplate(ctx, store, models.PredefinedOptions(), d, time.Now())
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.True(t, out.IsNew())

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestApplyTemplateAction(t *testing.T) {
	catalog := models.PredefinedOptions()
	d := InitTemplateDraft()

	steps := []TemplateAction{
		{Type: TemplateActionSetName, Name: "Endterm"},
		{Type: TemplateActionSetInstructions, General: true},
		{Type: TemplateActionAddCustomField, Label: "Room", FieldType: models.FieldTypeString, Required: true},
		{Type: TemplateActionToggleField, Key: "room", Included: true},
		{Type: TemplateActionSetFieldRequired, Key: models.FieldKeyDate, Required: true},
		{Type: TemplateActionToggleField, Key: models.FieldKeyDate, Included: true},
		{Type: TemplateActionAddSection},
		{Type: TemplateActionAddQuestion, Section: "B"},
		{Type: TemplateActionToggleOr, Section: "B", QuestionNumber: 3, Value: true},
		{Type: TemplateActionRemoveQuestion, Section: "B", QuestionNumber: 2},
	}
	for _, a := range steps {
		var err error
		d, err = ApplyTemplateAction(d, catalog, a)
		require.NoError(t, err, a.Type)
	}

	assert.Equal(t, "Endterm", d.TemplateName)
	assert.Equal(t, models.InstructionSection{HasGeneralInstructions: true}, d.InstructionSection)
	assert.True(t, d.IsSelected("room"))
	assert.True(t, d.IsSelected(models.FieldKeyDate))
	want := []models.QuestionConfig{
		{QuestionNumber: 1, Section: "A"},
		{QuestionNumber: 3, HasOrFunctionality: true, Section: "B"},
	}
	if diff := cmp.Diff(want, d.QuestionSections.Questions); diff != "" {
		t.Errorf("questions mismatch (-want +got):\n%s", diff)
	}
	require.NoError(t, ValidateTemplateForSave(d, models.PredefinedOptions()))

	d, err := ApplyTemplateAction(d, catalog, TemplateAction{Type: TemplateActionRemoveSection, Section: "B"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, d.QuestionSections.Sections)

	_, err = ApplyTemplateAction(d, catalog, TemplateAction{Type: "rename_everything"})
	assert.ErrorIs(t, err, ErrUnknownAction)
}

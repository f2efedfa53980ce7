package models

// Field type constants
const (
	FieldTypeString      = "string"
	FieldTypeNumber      = "number"
	FieldTypeSelect      = "select"
	FieldTypeMultiselect = "multiselect"
)

// Options type constants (keys into the field catalog)
const (
	OptionsTypeBranch   = "Branch Options"
	OptionsTypeSemester = "Semester Options"
	OptionsTypeSubject  = "Subject Options"
)

// Mandatory field keys
const (
	FieldKeyQuestionPaperCode = "question_paper_code"
	FieldKeyExaminationName   = "examination_name"
	FieldKeySemester          = "semester"
	FieldKeyBranch            = "branch"
	FieldKeySubjectCode       = "subject_code"
	FieldKeySubjectName       = "subject_name"
)

// Optional field keys
const (
	FieldKeyTime     = "time"
	FieldKeyMaxMarks = "max_marks"
	FieldKeyDate     = "date"
)

// Option is a single selectable entry of an options set.
// For plain options Code and Label are the same string.
type Option struct {
	Code  string `json:"code" yaml:"code"`
	Label string `json:"label" yaml:"label"`
}

// Catalog maps an options type to its ordered list of options
type Catalog map[string][]Option

// IsValidFieldType checks if the field type is one of the supported types
func IsValidFieldType(fieldType string) bool {
	switch fieldType {
	case FieldTypeString, FieldTypeNumber, FieldTypeSelect, FieldTypeMultiselect:
		return true
	default:
		return false
	}
}

// IsChoiceFieldType reports whether values of this type come from the catalog
func IsChoiceFieldType(fieldType string) bool {
	return fieldType == FieldTypeSelect || fieldType == FieldTypeMultiselect
}

// Has reports whether the catalog declares the given options type
func (c Catalog) Has(optionsType string) bool {
	_, ok := c[optionsType]
	return ok
}

// Options returns the options for a type, or nil when unknown
func (c Catalog) Options(optionsType string) []Option {
	return c[optionsType]
}

// HasOption checks whether code is a valid option of the given type
func (c Catalog) HasOption(optionsType, code string) bool {
	for _, opt := range c[optionsType] {
		if opt.Code == code {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the catalog
func (c Catalog) Clone() Catalog {
	out := make(Catalog, len(c))
	for k, v := range c {
		out[k] = append([]Option(nil), v...)
	}
	return out
}

func plainOptions(values ...string) []Option {
	out := make([]Option, 0, len(values))
	for _, v := range values {
		out = append(out, Option{Code: v, Label: v})
	}
	return out
}

// PredefinedOptions returns the built-in options catalog
func PredefinedOptions() Catalog {
	return Catalog{
		OptionsTypeBranch: plainOptions(
			"Computer Science",
			"Information Technology",
			"Electronics",
			"Mechanical",
			"Civil",
			"Electrical",
		),
		OptionsTypeSemester: plainOptions(
			"Semester 1",
			"Semester 2",
			"Semester 3",
			"Semester 4",
			"Semester 5",
			"Semester 6",
			"Semester 7",
			"Semester 8",
		),
		OptionsTypeSubject: {
			{Code: "CS101", Label: "CS101 - Introduction to Programming"},
			{Code: "CS102", Label: "CS102 - Data Structures"},
			{Code: "CS103", Label: "CS103 - Database Management"},
		},
	}
}

// MandatoryFields returns the header fields every template carries
func MandatoryFields() []TopSectionFormField {
	return []TopSectionFormField{
		{Key: FieldKeyQuestionPaperCode, Label: "Question Paper Code", Type: FieldTypeString, Required: true, Mandatory: true},
		{Key: FieldKeyExaminationName, Label: "Examination Name and Year", Type: FieldTypeString, Required: true, Mandatory: true},
		{Key: FieldKeySemester, Label: "Semester", Type: FieldTypeMultiselect, Required: true, Mandatory: true, OptionsType: OptionsTypeSemester},
		{Key: FieldKeyBranch, Label: "Domain Branch Name", Type: FieldTypeSelect, Required: true, Mandatory: true, OptionsType: OptionsTypeBranch},
		{Key: FieldKeySubjectCode, Label: "Subject Code", Type: FieldTypeSelect, Required: true, Mandatory: true, OptionsType: OptionsTypeSubject},
		{Key: FieldKeySubjectName, Label: "Subject Name", Type: FieldTypeString, Required: true, Mandatory: true},
	}
}

// OptionalFields returns the predefined header fields a template may include
func OptionalFields() []TopSectionFormField {
	return []TopSectionFormField{
		{Key: FieldKeyTime, Label: "Time Duration", Type: FieldTypeString},
		{Key: FieldKeyMaxMarks, Label: "Maximum Marks", Type: FieldTypeNumber},
		{Key: FieldKeyDate, Label: "Examination Date", Type: FieldTypeString},
	}
}

// MandatoryFieldKeys returns the keys of MandatoryFields in order
func MandatoryFieldKeys() []string {
	fields := MandatoryFields()
	keys := make([]string, 0, len(fields))
	for _, f := range fields {
		keys = append(keys, f.Key)
	}
	return keys
}

// MandatoryField returns the catalog definition of a mandatory key
func MandatoryField(key string) (TopSectionFormField, bool) {
	for _, f := range MandatoryFields() {
		if f.Key == key {
			return f, true
		}
	}
	return TopSectionFormField{}, false
}

package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrPaperNotFound    = errors.New("question paper not found")
	ErrDuplicateID      = errors.New("record with this id already exists")
)

// ValidationError reports template save-time structural problems as one summary
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return "template is invalid"
	}
	return "template is invalid: " + strings.Join(e.Problems, "; ")
}

// MissingFieldError reports an empty mandatory or required header value
type MissingFieldError struct {
	Key   string
	Label string
}

func (e *MissingFieldError) Error() string {
	name := e.Label
	if name == "" {
		name = e.Key
	}
	return fmt.Sprintf("%s is required", name)
}

// ControlKey returns the form control the violation belongs to
func (e *MissingFieldError) ControlKey() string {
	return e.Key
}

// MissingAnswerError reports an empty question text. Alternative is "A" or
// "B" for questions with OR functionality and empty otherwise.
type MissingAnswerError struct {
	Section        string
	QuestionNumber int
	Alternative    string
}

func (e *MissingAnswerError) Error() string {
	if e.Alternative != "" {
		return fmt.Sprintf("section %s question %d%s is required", e.Section, e.QuestionNumber, e.Alternative)
	}
	return fmt.Sprintf("section %s question %d text is required", e.Section, e.QuestionNumber)
}

// ControlKey returns the form control the violation belongs to
func (e *MissingAnswerError) ControlKey() string {
	key := fmt.Sprintf("question_%s_%d", e.Section, e.QuestionNumber)
	if e.Alternative != "" {
		key += "_" + strings.ToLower(e.Alternative)
	}
	return key
}

// FieldViolation is implemented by every per-control paper violation
type FieldViolation interface {
	error
	ControlKey() string
}

// FormErrors is the complete set of violations found on a paper draft
type FormErrors []FieldViolation

func (e FormErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	return fmt.Sprintf("%d required values are missing", len(e))
}

// Fields maps each offending control key to its message for inline display
func (e FormErrors) Fields() map[string]string {
	out := make(map[string]string, len(e))
	for _, v := range e {
		out[v.ControlKey()] = v.Error()
	}
	return out
}

// Keys returns the offending control keys in sorted order
func (e FormErrors) Keys() []string {
	keys := make([]string, 0, len(e))
	for _, v := range e {
		keys = append(keys, v.ControlKey())
	}
	sort.Strings(keys)
	return keys
}

// MissingAnswers returns only the question violations
func (e FormErrors) MissingAnswers() []*MissingAnswerError {
	var out []*MissingAnswerError
	for _, v := range e {
		if a, ok := v.(*MissingAnswerError); ok {
			out = append(out, a)
		}
	}
	return out
}

// UnknownFieldError is returned when a header value targets a key outside the schema
type UnknownFieldError struct {
	Key string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field %q", e.Key)
}

// InvalidValueError is returned when a header value does not fit the field type
type InvalidValueError struct {
	Key    string
	Value  string
	Reason string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value %q for field %q: %s", e.Value, e.Key, e.Reason)
}

// StorageError wraps serialization or key-value backend failures
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("storage %s %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ExportError reports a failed render of a paper to a document
type ExportError struct {
	PaperID string
	Err     error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export of paper %s failed: %v", e.PaperID, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// IsValidationFailure reports whether err is a user-correctable validation problem
func IsValidationFailure(err error) bool {
	var ve *ValidationError
	var fe FormErrors
	return errors.As(err, &ve) || errors.As(err, &fe)
}

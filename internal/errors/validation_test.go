package errors

import (
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestValidationError(t *testing.T) {
	// Test NewValidationError
	err := NewValidationError("test_field", "test message", "test_value")

	if err.Field != "test_field" {
		t.Errorf("Expected field to be 'test_field', got '%s'", err.Field)
	}

	if err.Message != "test message" {
		t.Errorf("Expected message to be 'test message', got '%s'", err.Message)
	}

	if err.Value != "test_value" {
		t.Errorf("Expected value to be 'test_value', got '%v'", err.Value)
	}

	// Test Error method
	expected := "validation error on field 'test_field': test message"
	if err.Error() != expected {
		t.Errorf("Expected error message to be '%s', got '%s'", expected, err.Error())
	}
}

func TestValidationErrors(t *testing.T) {
	// Test empty ValidationErrors
	var errs ValidationErrors
	if errs.Error() != "validation failed" {
		t.Errorf("Expected 'validation failed' for empty errors, got '%s'", errs.Error())
	}

	// Test single ValidationError
	errs = append(errs, *NewValidationError("field1", "message1", nil))
	expected := "validation failed: field1 message1"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for single error, got '%s'", expected, errs.Error())
	}

	// Test multiple ValidationErrors
	errs = append(errs, *NewValidationError("field2", "message2", nil))
	expected = "validation failed: 2 field errors"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for multiple errors, got '%s'", expected, errs.Error())
	}
}

func TestNewValidationErrorWithRule(t *testing.T) {
	err := NewValidationErrorWithRule("test_field", "test message", "required", "test_value")

	if err.Rule != "required" {
		t.Errorf("Expected rule to be 'required', got '%s'", err.Rule)
	}

	if err.Field != "test_field" {
		t.Errorf("Expected field to be 'test_field', got '%s'", err.Field)
	}
}

// fieldErrorForTag produces a validator.FieldError carrying the given tag by
// registering a validation under that name which always fails.
func fieldErrorForTag(t *testing.T, tag string, value interface{}) validator.FieldError {
	t.Helper()

	v := validator.New()
	if err := v.RegisterValidation(tag, func(validator.FieldLevel) bool { return false }); err != nil {
		t.Fatalf("failed to register validation '%s': %v", tag, err)
	}

	err := v.Var(value, tag)
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok || len(fieldErrs) != 1 {
		t.Fatalf("expected one field error for tag '%s', got %v", tag, err)
	}
	return fieldErrs[0]
}

func TestGetErrorMessageCustomTags(t *testing.T) {
	tests := []struct {
		tag     string
		value   interface{}
		message string
	}{
		{"question_type", "hotspot", "must be a valid question type (mcq-single, mcq-multi, true-false, choice-matrix, cloze-drag, cloze-select, cloze-text, match-list, essay-rich, essay-plain)"},
		{"difficulty_level", "extreme", "must be easy, moderate, or hard"},
		{"knowledge_level", "expert", "must be basic, intermediate, or advanced"},
		{"exam_stage", 4, "must be stage 1, 2, or 3"},
		{"user_role", "superuser", "must be a valid user role (student, teacher, admin)"},
		{"sample_limit", 0, "must be between 1 and 100 questions"},
	}

	for _, tt := range tests {
		fieldErr := fieldErrorForTag(t, tt.tag, tt.value)
		if got := getErrorMessage(fieldErr); got != tt.message {
			t.Errorf("Expected message for tag '%s' to be '%s', got '%s'", tt.tag, tt.message, got)
		}
	}
}

func TestToValidationErrorsKeepsCustomRule(t *testing.T) {
	v := validator.New()
	if err := v.RegisterValidation("question_type", func(validator.FieldLevel) bool { return false }); err != nil {
		t.Fatalf("failed to register validation: %v", err)
	}

	errs := ToValidationErrors(v.Var("hotspot", "question_type"))
	if len(errs) != 1 {
		t.Fatalf("Expected one validation error, got %d", len(errs))
	}

	if errs[0].Rule != "question_type" {
		t.Errorf("Expected rule to be 'question_type', got '%s'", errs[0].Rule)
	}
	if !strings.Contains(errs[0].Message, "must be a valid question type") {
		t.Errorf("Expected question type message, got '%s'", errs[0].Message)
	}
	if errs[0].Value != "hotspot" {
		t.Errorf("Expected value to be 'hotspot', got '%v'", errs[0].Value)
	}
}

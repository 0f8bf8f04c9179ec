package validator

import (
	"reflect"
	"strings"

	apperrors "github.com/edupulse/exam-service/internal/errors"
	"github.com/edupulse/exam-service/internal/models"
	"github.com/go-playground/validator/v10"
)

type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// Validator combines struct-tag validation with the per-type question
// content validation.
type Validator struct {
	structValidator   *validator.Validate
	questionValidator *QuestionValidator
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator:   structValidator,
		questionValidator: NewQuestionValidator(),
	}
}

// Validate validates struct tags and translates field errors into the
// shared ValidationErrors type.
func (v *Validator) Validate(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		if ve := apperrors.ToValidationErrors(err); len(ve) > 0 {
			return ve
		}
		return err
	}
	return nil
}

// Question returns the question content validator
func (v *Validator) Question() *QuestionValidator {
	return v.questionValidator
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", validateQuestionType)
	validate.RegisterValidation("difficulty_level", validateDifficultyLevel)
	validate.RegisterValidation("knowledge_level", validateKnowledgeLevel)
	validate.RegisterValidation("exam_stage", validateExamStage)
	validate.RegisterValidation("user_role", validateUserRole)
	validate.RegisterValidation("sample_limit", validateSampleLimit)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Custom validation functions

func validateQuestionType(fl validator.FieldLevel) bool {
	return models.QuestionType(fl.Field().String()).Valid()
}

func validateDifficultyLevel(fl validator.FieldLevel) bool {
	switch models.DifficultyLevel(fl.Field().String()) {
	case models.DifficultyEasy, models.DifficultyModerate, models.DifficultyHard:
		return true
	}
	return false
}

func validateKnowledgeLevel(fl validator.FieldLevel) bool {
	switch models.KnowledgeLevel(fl.Field().String()) {
	case models.LevelBasic, models.LevelIntermediate, models.LevelAdvanced:
		return true
	}
	return false
}

func validateExamStage(fl validator.FieldLevel) bool {
	stage := fl.Field().Int()
	return stage >= 1 && stage <= 3
}

func validateUserRole(fl validator.FieldLevel) bool {
	switch models.UserRole(fl.Field().String()) {
	case models.RoleStudent, models.RoleTeacher, models.RoleAdmin:
		return true
	}
	return false
}

func validateSampleLimit(fl validator.FieldLevel) bool {
	limit := fl.Field().Int()
	return limit >= 1 && limit <= 100
}

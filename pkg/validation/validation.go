// Package validation registers the service's custom validator tags and turns
// validator errors into readable messages.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// New returns a validator with the custom tags registered.
func New() *validator.Validate {
	v := validator.New()
	RegisterValidators(v)
	return v
}

func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("no_emoji", NoEmoji)
	_ = v.RegisterValidation("skill", ValidSkill)
}

// NoEmoji rejects strings holding emoji or other pictographic symbols.
func NoEmoji(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		if r > 0x1F000 || unicode.In(r, unicode.So, unicode.Sk) {
			return false
		}
	}
	return true
}

// ValidSkill accepts a non-blank skill of at most 100 runes.
func ValidSkill(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	return s != "" && len([]rune(s)) <= 100
}

var FieldLabels = map[string]string{
	"Title":              "Title",
	"Description":        "Description",
	"Requirements":       "Requirements",
	"SkillsRequired":     "Required skills",
	"ExperienceRequired": "Required experience",
	"EducationRequired":  "Required education",
	"Role":               "Role",
}

// FormatValidationErrors converts validator.ValidationErrors to one message
// per failed field. Other errors come back as their own message.
func FormatValidationErrors(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, formatSingleError(e))
	}
	return messages
}

func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.Field())
	param := e.Param()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label)
	case "max":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at most %s characters", label, param)
		}
		return fmt.Sprintf("%s must be at most %s", label, param)
	case "min":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", label, param)
		}
		return fmt.Sprintf("%s must be at least %s", label, param)
	case "gte":
		return fmt.Sprintf("%s must be %s or more", label, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.Join(strings.Fields(param), ", "))
	case "no_emoji":
		return fmt.Sprintf("%s must not contain emoji or special symbols", label)
	case "skill":
		return fmt.Sprintf("%s entries must be non-empty and at most 100 characters", label)
	default:
		return fmt.Sprintf("%s failed validation (%s)", label, e.Tag())
	}
}

func getFieldLabel(fieldName string) string {
	// dive errors name the element, e.g. SkillsRequired[2]
	if i := strings.IndexByte(fieldName, '['); i > 0 {
		fieldName = fieldName[:i]
	}
	if label, ok := FieldLabels[fieldName]; ok {
		return label
	}
	return formatCamelCase(fieldName)
}

func formatCamelCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			result.WriteRune(' ')
		}
		result.WriteRune(r)
	}
	return result.String()
}

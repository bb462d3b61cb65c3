package domain

import (
	"context"
	"fmt"
)

type EducationEntry struct {
	Degree    string `json:"degree" mapstructure:"degree"`
	Field     string `json:"field,omitempty" mapstructure:"field"`
	Institute string `json:"institute,omitempty" mapstructure:"institute"`
}

// CandidateProfile is the structured result of entity extraction. It is never
// stored as-is; it is split into a Candidate and a Resume.
type CandidateProfile struct {
	Name            string           `json:"name" mapstructure:"name"`
	Email           string           `json:"email" mapstructure:"email"`
	Phone           *string          `json:"phone,omitempty" mapstructure:"phone"`
	Location        *string          `json:"location,omitempty" mapstructure:"location"`
	Skills          []string         `json:"skills" mapstructure:"skills"`
	ExperienceYears float64          `json:"experience_years" mapstructure:"experience_years"`
	Education       []EducationEntry `json:"education" mapstructure:"education"`
}

// ExtractionError carries the diagnostics of a failed extraction. Kind is one
// of ErrEmptyContent, ErrExtractionFailure, ErrOracleParseFailure or
// ErrMissingRequiredFields.
type ExtractionError struct {
	Kind         error             `json:"-"`
	Message      string            `json:"message"`
	RawResponse  string            `json:"raw_response,omitempty"`
	RepairedJSON string            `json:"repaired_json,omitempty"`
	Partial      *CandidateProfile `json:"partial,omitempty"`
}

func (e *ExtractionError) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Kind
}

type EntityExtractor interface {
	Extract(ctx context.Context, text string) (*CandidateProfile, error)
}

// SkillExtractor pulls a normalized skill list out of free text such as a job
// description.
type SkillExtractor interface {
	ExtractSkills(ctx context.Context, text string) ([]string, error)
}

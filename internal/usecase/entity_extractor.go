package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"go-resume-screener/internal/domain"
	"go-resume-screener/pkg/jsonrepair"
	"go-resume-screener/pkg/logger"

	"github.com/mitchellh/mapstructure"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const extractionPrompt = `Return VALID JSON with these rules:
- Use double quotes for all strings
- Escape internal double quotes with \
- No trailing commas
- experience_years must be a number
Structure:
{
  "name": "Full Name",
  "email": "email",
  "phone": "phone",
  "location": "city, country",
  "skills": ["skill1", "skill2"],
  "experience_years": 2,
  "education": [{"degree": "...", "field": "...", "institute": "..."}]
}

Resume content: %s`

const (
	DefaultExtractionMaxChars = 4000
	DefaultOracleTimeout      = 300 * time.Second
)

type EntityExtractorConfig struct {
	MaxChars int
	Timeout  time.Duration
}

type entityExtractor struct {
	oracle   domain.Oracle
	maxChars int
	timeout  time.Duration
	log      *logger.Logger
}

func NewEntityExtractor(oracle domain.Oracle, cfg EntityExtractorConfig, log *logger.Logger) domain.EntityExtractor {
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = DefaultExtractionMaxChars
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultOracleTimeout
	}
	return &entityExtractor{
		oracle:   oracle,
		maxChars: cfg.MaxChars,
		timeout:  cfg.Timeout,
		log:      log.With("component", "entity_extractor"),
	}
}

func (e *entityExtractor) Extract(ctx context.Context, text string) (*domain.CandidateProfile, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &domain.ExtractionError{Kind: domain.ErrEmptyContent}
	}

	prompt := fmt.Sprintf(extractionPrompt, sanitizeResumeText(truncateRunes(text, e.maxChars)))

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	raw, err := e.oracle.Complete(callCtx, prompt)
	cancel()
	if err != nil {
		msg := err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			msg = fmt.Sprintf("oracle timed out after %s", e.timeout)
		}
		return nil, &domain.ExtractionError{Kind: domain.ErrExtractionFailure, Message: msg}
	}

	obj, repaired, err := jsonrepair.ExtractObject(raw)
	if err != nil {
		e.log.Warn("oracle response not parseable", "error", err, "raw_len", len(raw))
		msg := "JSON parsing failed: " + err.Error()
		if errors.Is(err, jsonrepair.ErrNotFound) {
			msg = "no JSON found in response"
		}
		return nil, &domain.ExtractionError{
			Kind:         domain.ErrOracleParseFailure,
			Message:      msg,
			RawResponse:  raw,
			RepairedJSON: repaired,
		}
	}

	profile, err := decodeProfile(obj)
	if err != nil {
		return nil, &domain.ExtractionError{
			Kind:         domain.ErrOracleParseFailure,
			Message:      err.Error(),
			RawResponse:  raw,
			RepairedJSON: repaired,
		}
	}

	if profile.Name == "" || profile.Email == "" {
		return nil, &domain.ExtractionError{
			Kind:         domain.ErrMissingRequiredFields,
			Message:      "name and email are required",
			RawResponse:  raw,
			RepairedJSON: repaired,
			Partial:      profile,
		}
	}
	return profile, nil
}

var smartQuotes = strings.NewReplacer(
	"“", `"`, "”", `"`, "„", `"`,
	"‘", "'", "’", "'",
	"\t", " ",
	`\`, "",
)

// dropControl removes control characters but keeps line breaks.
var dropControl = runes.Remove(runes.Predicate(func(r rune) bool {
	return unicode.IsControl(r) && r != '\n'
}))

func sanitizeResumeText(s string) string {
	s = norm.NFKC.String(s)
	s = smartQuotes.Replace(s)
	out, _, err := transform.String(dropControl, s)
	if err != nil {
		return s
	}
	return out
}

// decodeProfile coerces the loosely typed oracle object into a profile.
func decodeProfile(obj map[string]interface{}) (*domain.CandidateProfile, error) {
	obj["experience_years"] = coerceExperience(obj["experience_years"])
	obj["education"] = coerceEducation(obj["education"])
	if s, ok := obj["skills"].(string); ok {
		obj["skills"] = strings.Split(s, ",")
	}

	var profile domain.CandidateProfile
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &profile,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(obj); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}

	profile.Name = strings.TrimSpace(profile.Name)
	profile.Email = strings.TrimSpace(profile.Email)
	profile.Phone = trimOptional(profile.Phone)
	profile.Location = trimOptional(profile.Location)
	profile.Skills = normalizeSkills(profile.Skills)
	if profile.Education == nil {
		profile.Education = []domain.EducationEntry{}
	}
	return &profile, nil
}

// coerceExperience: list -> its length, number -> clamped at zero,
// numeric string -> parsed then clamped, anything else -> 0.
func coerceExperience(v interface{}) float64 {
	var n float64
	switch x := v.(type) {
	case []interface{}:
		return float64(len(x))
	case float64:
		n = x
	case int:
		n = float64(x)
	case int64:
		n = float64(x)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0
		}
		n = f
	default:
		return 0
	}
	if math.IsNaN(n) || math.IsInf(n, 0) || n < 0 {
		return 0
	}
	return n
}

func coerceEducation(v interface{}) []interface{} {
	switch x := v.(type) {
	case nil:
		return []interface{}{}
	case []interface{}:
		out := make([]interface{}, 0, len(x))
		for _, entry := range x {
			switch e := entry.(type) {
			case nil:
			case map[string]interface{}:
				out = append(out, e)
			default:
				out = append(out, map[string]interface{}{"degree": fmt.Sprint(e)})
			}
		}
		return out
	case map[string]interface{}:
		return []interface{}{x}
	default:
		return []interface{}{map[string]interface{}{"degree": fmt.Sprint(x)}}
	}
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

package usecase

import (
	"context"
	"fmt"
	"time"

	"go-resume-screener/internal/domain"
	"go-resume-screener/pkg/jsonrepair"
)

const skillPrompt = `Extract technical skills as a JSON array from this text:
%s
Return ONLY the array without additional formatting.`

const skillTextLimit = 3000

type skillExtractor struct {
	oracle  domain.Oracle
	timeout time.Duration
}

func NewSkillExtractor(oracle domain.Oracle, timeout time.Duration) domain.SkillExtractor {
	if timeout <= 0 {
		timeout = DefaultOracleTimeout
	}
	return &skillExtractor{oracle: oracle, timeout: timeout}
}

func (s *skillExtractor) ExtractSkills(ctx context.Context, text string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.oracle.Complete(ctx, fmt.Sprintf(skillPrompt, truncateRunes(text, skillTextLimit)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExtractionFailure, err)
	}

	arr, _, err := jsonrepair.ExtractArray(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrOracleParseFailure, err)
	}

	skills := make([]string, 0, len(arr))
	for _, v := range arr {
		switch x := v.(type) {
		case string:
			skills = append(skills, x)
		case float64, bool:
			skills = append(skills, fmt.Sprint(x))
		}
	}
	return normalizeSkills(skills), nil
}

package usecase

import (
	"context"
	"sort"
	"strings"

	"go-resume-screener/internal/domain"
	"go-resume-screener/pkg/logger"
	"go-resume-screener/pkg/security"
	"go-resume-screener/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultRankLimit = 10
	MaxRankLimit     = 100

	skillsWeight     = 0.5
	experienceWeight = 0.3
	educationWeight  = 0.2

	fuzzySkillThreshold = 0.1
	fuzzySkillCap       = 50
	snippetLength       = 300
)

type rankingUsecase struct {
	jobs       domain.JobRepository
	resumes    domain.ResumeRepository
	candidates domain.CandidateRepository
	index      domain.SemanticIndex
	log        *logger.Logger
	audit      *security.AuditLogger
}

func NewRankingUsecase(
	jobs domain.JobRepository,
	resumes domain.ResumeRepository,
	candidates domain.CandidateRepository,
	index domain.SemanticIndex,
	log *logger.Logger,
) domain.RankingUsecase {
	return &rankingUsecase{
		jobs:       jobs,
		resumes:    resumes,
		candidates: candidates,
		index:      index,
		log:        log.With("component", "ranking"),
		audit:      security.NewAuditLogger(log),
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultRankLimit
	}
	if limit > MaxRankLimit {
		return MaxRankLimit
	}
	return limit
}

// JobQuery is the text a job is ranked by: description, requirements and
// required skills, space joined.
func JobQuery(job *domain.Job) string {
	parts := []string{job.Description}
	if job.Requirements != nil {
		parts = append(parts, *job.Requirements)
	}
	parts = append(parts, strings.Join(job.SkillsRequired, " "))
	return strings.TrimSpace(strings.Join(parts, " "))
}

func (u *rankingUsecase) Rank(ctx context.Context, jobID int64, limit int) ([]domain.RankedCandidate, error) {
	ctx, span := tracing.Tracer().Start(ctx, "ranking.rank")
	defer span.End()
	span.SetAttributes(attribute.Int64("job.id", jobID))

	job, err := u.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	query := JobQuery(job)
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}

	limit = clampLimit(limit)
	ranked, err := u.semanticRank(ctx, query, 2*limit)
	if err != nil {
		return nil, err
	}
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// semanticRank queries k neighbors and resolves them against the relational
// store with one batched lookup per table. Neighbors whose resume is gone or
// inactive, or whose candidate is gone, are dropped.
func (u *rankingUsecase) semanticRank(ctx context.Context, query string, k int) ([]domain.RankedCandidate, error) {
	neighbors, err := u.index.Query(ctx, query, k)
	if err != nil {
		return nil, err
	}
	if len(neighbors) == 0 {
		return []domain.RankedCandidate{}, nil
	}

	resumeIDs := make([]int64, 0, len(neighbors))
	candidateIDs := make([]int64, 0, len(neighbors))
	for _, n := range neighbors {
		resumeIDs = append(resumeIDs, n.ResumeID)
		candidateIDs = append(candidateIDs, n.CandidateID)
	}

	resumes, err := u.resumes.GetByIDs(ctx, resumeIDs, true)
	if err != nil {
		return nil, err
	}
	candidates, err := u.candidates.GetByIDs(ctx, candidateIDs)
	if err != nil {
		return nil, err
	}

	ranked := make([]domain.RankedCandidate, 0, len(neighbors))
	for _, n := range neighbors {
		res, ok := resumes[n.ResumeID]
		if !ok {
			continue
		}
		cand, ok := candidates[n.CandidateID]
		if !ok {
			continue
		}
		ranked = append(ranked, domain.RankedCandidate{
			Score:     1 - n.Distance,
			Candidate: *cand,
			Resume:    *res,
		})
	}
	if dropped := len(neighbors) - len(ranked); dropped > 0 {
		u.log.Debug("dropped unresolvable neighbors", "count", dropped)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked, nil
}

// ScoreResume blends skill overlap (0.5), experience sufficiency (0.3) and
// education relevance (0.2) into [0,1]. A job that states no requirement for
// a component scores 0 on it.
func ScoreResume(resume *domain.Resume, job *domain.Job) float64 {
	return skillsWeight*skillsScore(resume.Skills, job.SkillsRequired) +
		experienceWeight*experienceScore(resume.ExperienceYears, job.ExperienceRequired) +
		educationWeight*educationScore(resume.Education, job.EducationRequired)
}

func skillsScore(have, required []string) float64 {
	if len(required) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(have))
	for _, s := range have {
		set[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	matched := 0
	for _, s := range required {
		if _, ok := set[strings.ToLower(strings.TrimSpace(s))]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(required))
}

func experienceScore(years float64, required *float64) float64 {
	if required == nil || *required <= 0 {
		return 0
	}
	if years >= *required {
		return 1
	}
	return years / *required
}

func educationScore(have []domain.EducationEntry, required []string) float64 {
	if len(required) == 0 {
		return 0
	}
	fields := make([]string, 0, len(have)*3)
	for _, e := range have {
		for _, f := range []string{e.Degree, e.Field, e.Institute} {
			if f != "" {
				fields = append(fields, strings.ToLower(f))
			}
		}
	}
	matched := 0
	for _, req := range required {
		req = strings.ToLower(strings.TrimSpace(req))
		if req == "" {
			continue
		}
		for _, f := range fields {
			if strings.Contains(f, req) {
				matched++
				break
			}
		}
	}
	score := float64(matched) / float64(len(required))
	if score > 1 {
		return 1
	}
	return score
}

func (u *rankingUsecase) MatchScores(ctx context.Context, jobID int64, limit int) ([]domain.RankedCandidate, error) {
	job, err := u.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	resumes, err := u.resumes.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(resumes))
	for _, r := range resumes {
		ids = append(ids, r.CandidateID)
	}
	candidates, err := u.candidates.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	scored := make([]domain.RankedCandidate, 0, len(resumes))
	for i := range resumes {
		cand, ok := candidates[resumes[i].CandidateID]
		if !ok {
			continue
		}
		scored = append(scored, domain.RankedCandidate{
			Score:     ScoreResume(&resumes[i], job),
			Candidate: *cand,
			Resume:    resumes[i],
		})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	limit = clampLimit(limit)
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

// SearchBySkills runs the exact overlap pass and falls back to the fuzzy
// pass only when the exact pass finds nothing.
func (u *rankingUsecase) SearchBySkills(ctx context.Context, terms []string) ([]domain.SkillMatch, error) {
	terms = normalizeSkills(terms)
	if len(terms) == 0 {
		return nil, domain.ErrEmptyQuery
	}

	exact, err := u.resumes.SearchSkillsExact(ctx, terms, fuzzySkillCap)
	if err != nil {
		return nil, err
	}
	if len(exact) > 0 {
		return exact, nil
	}
	return u.resumes.SearchSkillsFuzzy(ctx, terms, fuzzySkillThreshold, fuzzySkillCap)
}

func (u *rankingUsecase) SearchText(ctx context.Context, query string, limit int) ([]domain.SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}
	limit = clampLimit(limit)

	ranked, err := u.semanticRank(ctx, query, 2*limit)
	if err != nil {
		return nil, err
	}
	hits := semanticHits(ranked)
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// HybridSearch lists semantic hits first, then resumes whose text contains the
// query, skipping resumes already returned.
func (u *rankingUsecase) HybridSearch(ctx context.Context, query string, limit int) ([]domain.SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}
	limit = clampLimit(limit)

	ranked, err := u.semanticRank(ctx, query, 2*limit)
	if err != nil {
		return nil, err
	}
	keyword, err := u.resumes.SearchText(ctx, query, 2*limit)
	if err != nil {
		return nil, err
	}

	hits := semanticHits(ranked)
	seen := make(map[int64]bool, len(hits)+len(keyword))
	for _, h := range hits {
		seen[h.ResumeID] = true
	}
	for _, r := range keyword {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		hits = append(hits, domain.SearchHit{
			ResumeID:    r.ID,
			CandidateID: r.CandidateID,
			Content:     truncateRunes(r.RawText, snippetLength),
			Source:      domain.SourceKeyword,
		})
	}
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func semanticHits(ranked []domain.RankedCandidate) []domain.SearchHit {
	hits := make([]domain.SearchHit, 0, len(ranked))
	for _, r := range ranked {
		hits = append(hits, domain.SearchHit{
			ResumeID:    r.Resume.ID,
			CandidateID: r.Candidate.ID,
			Score:       r.Score,
			Content:     truncateRunes(r.Resume.RawText, snippetLength),
			Source:      domain.SourceSemantic,
		})
	}
	return hits
}

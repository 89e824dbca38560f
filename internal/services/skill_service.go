package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strings"

	"skillexchange-service/internal/config"
	"skillexchange-service/internal/models"
	"skillexchange-service/internal/repository"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	popularSearchKey   = "popular:searches"
	suggestionCacheKey = "suggestions:"
	MinSuggestionQuery = 2
)

type SkillService struct {
	skillRepo   *repository.SkillRepository
	profileRepo *repository.ProfileRepository
	cache       *redis.Client
	cfg         config.SearchConfig
}

func NewSkillService(skillRepo *repository.SkillRepository, profileRepo *repository.ProfileRepository, cache *redis.Client, cfg config.SearchConfig) *SkillService {
	return &SkillService{
		skillRepo:   skillRepo,
		profileRepo: profileRepo,
		cache:       cache,
		cfg:         cfg,
	}
}

// validateSkill checks a catalog entry before it reaches the store.
func validateSkill(skill *models.Skill) error {
	verr := &models.ValidationError{}

	if strings.TrimSpace(skill.Name) == "" {
		verr.Add("name", "is required")
	}
	if !skill.Category.IsValid() {
		verr.Add("category", fmt.Sprintf("unknown category %q", skill.Category))
	}
	for _, level := range skill.AvailableLevels {
		if !level.IsValid() {
			verr.Add("availableLevels", fmt.Sprintf("unknown level %q", level))
		}
	}
	if skill.Stats.AvgRating < 0 || skill.Stats.AvgRating > 5 {
		verr.Add("stats.avgRating", "must be between 0 and 5")
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

func (s *SkillService) CreateSkill(ctx context.Context, skill *models.Skill) (*models.Skill, error) {
	if err := validateSkill(skill); err != nil {
		return nil, err
	}

	exists, err := s.skillRepo.ExistsByName(ctx, skill.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing skill: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("skill %q already exists", skill.Name)
	}

	return s.skillRepo.Create(ctx, skill)
}

func (s *SkillService) GetSkillByID(ctx context.Context, id bson.ObjectID) (*models.Skill, error) {
	return s.skillRepo.GetByID(ctx, id)
}

func (s *SkillService) UpdateSkill(ctx context.Context, id bson.ObjectID, skill *models.Skill) (*models.Skill, error) {
	if err := validateSkill(skill); err != nil {
		return nil, err
	}

	existing, err := s.skillRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if existing.Name != skill.Name {
		taken, err := s.skillRepo.ExistsByName(ctx, skill.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to check existing skill: %w", err)
		}
		if taken {
			return nil, fmt.Errorf("skill %q already exists", skill.Name)
		}
	}

	skill.CreatedAt = existing.CreatedAt
	return s.skillRepo.Update(ctx, id, skill)
}

func (s *SkillService) DeleteSkill(ctx context.Context, id bson.ObjectID) error {
	return s.skillRepo.Delete(ctx, id)
}

func (s *SkillService) ReloadDataFromFiles(ctx context.Context, dataDir string) error {
	return s.skillRepo.InitializeData(ctx, dataDir)
}

func (s *SkillService) GetTrendingSkills(ctx context.Context, limit int) ([]*models.Skill, error) {
	if limit < 1 || limit > MaxSearchLimit {
		limit = 10
	}
	return s.skillRepo.GetTrending(ctx, limit)
}

// GetCategories reports every category of the closed set, with zero counts
// for categories no active skill uses yet.
func (s *SkillService) GetCategories(ctx context.Context) ([]*models.CategoryCount, error) {
	counts, err := s.skillRepo.GetCategoryCounts(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]*models.CategoryCount, 0, len(models.AllCategories))
	for _, category := range models.AllCategories {
		if row, ok := counts[category]; ok {
			rows = append(rows, row)
		} else {
			rows = append(rows, &models.CategoryCount{Category: category})
		}
	}
	return rows, nil
}

// BuildSuggestions flattens popularity-ordered candidates into a
// deduplicated suggestion list. Candidates arrive already sorted by
// popularity, so the first occurrence of a duplicate wins.
func BuildSuggestions(candidates []*models.Skill, query string, limit int) []string {
	normalized := strings.ToLower(strings.TrimSpace(query))
	seen := make(map[string]bool)
	suggestions := make([]string, 0, limit)

	add := func(value string) {
		if len(suggestions) >= limit {
			return
		}
		key := strings.ToLower(value)
		if !strings.Contains(key, normalized) || seen[key] {
			return
		}
		seen[key] = true
		suggestions = append(suggestions, value)
	}

	for _, skill := range candidates {
		add(skill.Name)
		for _, keyword := range skill.SearchKeywords {
			add(keyword)
		}
	}

	return suggestions
}

// GetSuggestions returns up to the configured number of catalog names and
// search keywords containing the query substring, popularity-ordered.
// Queries shorter than two characters are rejected.
func (s *SkillService) GetSuggestions(ctx context.Context, query string) ([]string, error) {
	query = strings.TrimSpace(query)
	if len(query) < MinSuggestionQuery {
		verr := &models.ValidationError{}
		verr.Add("q", fmt.Sprintf("must be at least %d characters", MinSuggestionQuery))
		return nil, verr
	}

	cacheKey := suggestionCacheKey + strings.ToLower(query)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var suggestions []string
			if err := json.Unmarshal([]byte(cached), &suggestions); err == nil {
				return suggestions, nil
			}
		}
	}

	// Over-fetch so deduplication still fills the limit
	candidates, err := s.skillRepo.FindSuggestionCandidates(ctx, query, s.cfg.SuggestionLimit*3)
	if err != nil {
		return nil, err
	}

	suggestions := BuildSuggestions(candidates, query, s.cfg.SuggestionLimit)

	if s.cache != nil {
		if payload, err := json.Marshal(suggestions); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cfg.SuggestionCacheTTL).Err(); err != nil {
				log.Printf("Failed to cache suggestions for %q: %v", query, err)
			}
		}
	}

	return suggestions, nil
}

// RecordSearch bumps the popular-search counter for a query. Called from the
// event consumer, never from the request path.
func (s *SkillService) RecordSearch(ctx context.Context, query string) error {
	if s.cache == nil || strings.TrimSpace(query) == "" {
		return nil
	}
	return s.cache.ZIncrBy(ctx, popularSearchKey, 1, strings.ToLower(query)).Err()
}

// GetPopularSearches returns the top-N previously issued queries.
func (s *SkillService) GetPopularSearches(ctx context.Context, limit int) ([]*models.PopularSearch, error) {
	if limit < 1 || limit > MaxSearchLimit {
		limit = s.cfg.PopularSearchLimit
	}
	if s.cache == nil {
		return []*models.PopularSearch{}, nil
	}

	rows, err := s.cache.ZRevRangeWithScores(ctx, popularSearchKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read popular searches: %w", err)
	}

	searches := make([]*models.PopularSearch, 0, len(rows))
	for _, row := range rows {
		query, ok := row.Member.(string)
		if !ok {
			continue
		}
		searches = append(searches, &models.PopularSearch{
			Query: query,
			Count: int64(row.Score),
		})
	}
	return searches, nil
}

// AggregateDeclarations folds declaration rows into a stats block. Pure and
// deterministic: the same rows always produce the same stats, which is what
// makes the recomputation pass idempotent.
func AggregateDeclarations(declarations []models.SkillDeclaration) models.SkillStats {
	stats := models.SkillStats{}
	users := make(map[string]bool)
	var ratingSum float64
	var ratingCount int

	for _, decl := range declarations {
		if users[decl.UserID] {
			continue
		}
		users[decl.UserID] = true
		stats.TotalUsers++
		// Only positive declared ratings feed the average
		if decl.UserRating > 0 {
			ratingSum += decl.UserRating
			ratingCount++
		}
		if decl.IsTeaching {
			stats.TeachingUsers++
		}
		if decl.IsLearning {
			stats.LearningUsers++
		}
	}

	if ratingCount > 0 {
		stats.AvgRating = math.Round(ratingSum/float64(ratingCount)*100) / 100
	}

	return stats
}

// RecomputeSkillStats rebuilds the aggregate stats for one skill from a full
// profile scan and persists them. Expensive; run it in the background with a
// deadline, never inside a request cycle.
func (s *SkillService) RecomputeSkillStats(ctx context.Context, skillName string) (*models.SkillStats, error) {
	existing, err := s.skillRepo.GetByName(ctx, skillName)
	if err != nil {
		return nil, err
	}

	declarations, err := s.profileRepo.CollectSkillDeclarations(ctx, skillName)
	if err != nil {
		return nil, err
	}

	stats := AggregateDeclarations(declarations)
	// Session and review totals come from the sessions subsystem, not from
	// profile declarations; the scan leaves them untouched.
	stats.TotalSessions = existing.Stats.TotalSessions
	stats.TotalReviews = existing.Stats.TotalReviews

	if err := s.skillRepo.UpdateStats(ctx, skillName, stats); err != nil {
		return nil, err
	}

	log.Printf("Recomputed stats for skill %q: %d users (%d teaching, %d learning), avg rating %.2f",
		skillName, stats.TotalUsers, stats.TeachingUsers, stats.LearningUsers, stats.AvgRating)
	return &stats, nil
}

// RecomputeSkillStatsAsync schedules a bounded background recomputation.
func (s *SkillService) RecomputeSkillStatsAsync(skillName string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RecomputeTimeout)
		defer cancel()

		if _, err := s.RecomputeSkillStats(ctx, skillName); err != nil {
			log.Printf("Background stats recompute for %q failed: %v", skillName, err)
		}
	}()
}

// RecomputeAllStats rebuilds the stats of every active catalog skill. One
// skill's failure does not stop the pass; the first error is reported after
// all skills were attempted.
func (s *SkillService) RecomputeAllStats(ctx context.Context) error {
	names, err := s.skillRepo.ListActiveNames(ctx)
	if err != nil {
		return err
	}

	var firstErr error
	failed := 0
	for _, name := range names {
		if _, err := s.RecomputeSkillStats(ctx, name); err != nil {
			log.Printf("Stats recompute for %q failed: %v", name, err)
			failed++
			if firstErr == nil {
				firstErr = fmt.Errorf("recompute %q: %w", name, err)
			}
		}
	}

	log.Printf("Stats recomputation pass finished: %d skills, %d failed", len(names), failed)
	return firstErr
}

// RecomputeAllStatsAsync runs the full recomputation pass in the background.
func (s *SkillService) RecomputeAllStatsAsync() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RecomputeTimeout)
		defer cancel()

		if err := s.RecomputeAllStats(ctx); err != nil {
			log.Printf("Background stats recomputation pass failed: %v", err)
		}
	}()
}

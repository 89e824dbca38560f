package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"skillexchange-service/internal/event"
	"skillexchange-service/internal/models"
	"skillexchange-service/internal/repository"
)

const (
	DefaultSearchLimit = 20
	MaxSearchLimit     = 100
)

type SearchService struct {
	skillRepo   *repository.SkillRepository
	profileRepo *repository.ProfileRepository
	publisher   event.Publisher
}

func NewSearchService(skillRepo *repository.SkillRepository, profileRepo *repository.ProfileRepository, publisher event.Publisher) *SearchService {
	return &SearchService{
		skillRepo:   skillRepo,
		profileRepo: profileRepo,
		publisher:   publisher,
	}
}

// ValidateSearchQuery rejects malformed queries before any store query runs
// and fills in paging defaults.
func ValidateSearchQuery(q *models.SearchQuery) error {
	verr := &models.ValidationError{}

	if q.Category != "" && !q.Category.IsValid() {
		verr.Add("category", fmt.Sprintf("unknown category %q", q.Category))
	}
	for _, level := range q.Levels {
		if !level.IsValid() {
			verr.Add("level", fmt.Sprintf("unknown level %q", level))
		}
	}
	if q.Type != "" && !q.Type.IsValid() {
		verr.Add("type", fmt.Sprintf("unknown type %q", q.Type))
	}
	if q.SortBy != "" && !q.SortBy.IsValid() {
		verr.Add("sortBy", fmt.Sprintf("unknown sort mode %q", q.SortBy))
	}
	if q.MinRating < 0 || q.MinRating > 5 {
		verr.Add("rating", "must be between 0 and 5")
	}
	if q.Page < 0 {
		verr.Add("page", "must be at least 1")
	}
	if q.Limit < 0 || q.Limit > MaxSearchLimit {
		verr.Add("limit", fmt.Sprintf("must be between 1 and %d", MaxSearchLimit))
	}

	if verr.HasErrors() {
		return verr
	}

	if q.Page == 0 {
		q.Page = 1
	}
	if q.Limit == 0 {
		q.Limit = DefaultSearchLimit
	}
	q.Text = strings.TrimSpace(q.Text)

	return nil
}

// HasMorePages reports whether a result set extends past the current page.
func HasMorePages(page, limit int, total int64) bool {
	return int64((page-1)*limit+limit) < total
}

// Search runs both sides of a query, merges the totals and pages them
// together. Read-only against the store; the only side effect is the
// fire-and-forget search event.
func (s *SearchService) Search(ctx context.Context, q *models.SearchQuery) (*models.SearchResult, error) {
	if err := ValidateSearchQuery(q); err != nil {
		return nil, err
	}

	skills, totalSkills, err := s.skillRepo.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("catalog search failed: %w", err)
	}

	userSkills, totalUserSkills, err := s.profileRepo.SearchUserSkills(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("user skill search failed: %w", err)
	}

	if skills == nil {
		skills = []*models.SkillSearchHit{}
	}
	if userSkills == nil {
		userSkills = []*models.UserSkillHit{}
	}

	result := &models.SearchResult{
		Skills:          skills,
		UserSkills:      userSkills,
		TotalSkills:     totalSkills,
		TotalUserSkills: totalUserSkills,
		CurrentPage:     q.Page,
		HasMore: HasMorePages(q.Page, q.Limit, totalSkills) ||
			HasMorePages(q.Page, q.Limit, totalUserSkills),
	}

	if q.Text != "" && s.publisher != nil {
		searchEvent := &models.SearchEvent{
			EventType: models.EventTypeSearchPerformed,
			Query:     strings.ToLower(q.Text),
			SortBy:    q.EffectiveSort(),
			Results:   totalSkills + totalUserSkills,
			Timestamp: time.Now(),
		}
		if err := s.publisher.PublishSearchEvent(searchEvent); err != nil {
			log.Printf("Failed to publish search event: %v", err)
		}
	}

	return result, nil
}

package handlers

import (
	"reflect"
	"testing"

	"skillexchange-service/internal/models"
)

func queryFromParams(params map[string]string) *models.SearchQuery {
	return buildSearchQuery(func(key string) string {
		return params[key]
	})
}

func TestBuildSearchQueryDocumentedNames(t *testing.T) {
	q := queryFromParams(map[string]string{
		"query":    "piano",
		"level":    "beginner,intermediate",
		"rating":   "4.5",
		"category": "music",
		"type":     "teaching",
		"location": "Hanoi",
		"sortBy":   "rating",
		"page":     "2",
		"limit":    "5",
	})

	if q.Text != "piano" {
		t.Errorf("Text = %q, want %q", q.Text, "piano")
	}
	wantLevels := []models.SkillLevel{models.SkillLevelBeginner, models.SkillLevelIntermediate}
	if !reflect.DeepEqual(q.Levels, wantLevels) {
		t.Errorf("Levels = %v, want %v", q.Levels, wantLevels)
	}
	if q.MinRating != 4.5 {
		t.Errorf("MinRating = %v, want 4.5", q.MinRating)
	}
	if q.Category != models.CategoryMusic {
		t.Errorf("Category = %q, want %q", q.Category, models.CategoryMusic)
	}
	if q.Type != models.SearchTypeTeaching {
		t.Errorf("Type = %q, want %q", q.Type, models.SearchTypeTeaching)
	}
	if q.Location != "Hanoi" {
		t.Errorf("Location = %q, want %q", q.Location, "Hanoi")
	}
	if q.SortBy != models.SortByRating {
		t.Errorf("SortBy = %q, want %q", q.SortBy, models.SortByRating)
	}
	if q.Page != 2 || q.Limit != 5 {
		t.Errorf("Page/Limit = %d/%d, want 2/5", q.Page, q.Limit)
	}
}

func TestBuildSearchQueryShortNames(t *testing.T) {
	q := queryFromParams(map[string]string{
		"q":         "guitar",
		"levels":    "expert",
		"minRating": "3",
	})

	if q.Text != "guitar" {
		t.Errorf("Text = %q, want %q", q.Text, "guitar")
	}
	wantLevels := []models.SkillLevel{models.SkillLevelExpert}
	if !reflect.DeepEqual(q.Levels, wantLevels) {
		t.Errorf("Levels = %v, want %v", q.Levels, wantLevels)
	}
	if q.MinRating != 3 {
		t.Errorf("MinRating = %v, want 3", q.MinRating)
	}
}

func TestBuildSearchQueryLongNamesWin(t *testing.T) {
	q := queryFromParams(map[string]string{
		"query":     "piano",
		"q":         "guitar",
		"rating":    "4",
		"minRating": "2",
	})

	if q.Text != "piano" {
		t.Errorf("Text = %q, want the long-form parameter to win", q.Text)
	}
	if q.MinRating != 4 {
		t.Errorf("MinRating = %v, want the long-form parameter to win", q.MinRating)
	}
}

func TestBuildSearchQueryEmpty(t *testing.T) {
	q := queryFromParams(map[string]string{})

	if q.Text != "" || len(q.Levels) != 0 || q.MinRating != 0 || q.Page != 0 || q.Limit != 0 {
		t.Errorf("Empty parameters should produce a zero query, got %+v", q)
	}
}

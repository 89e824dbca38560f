package services

import (
	"errors"
	"testing"

	"skillexchange-service/internal/models"
)

func TestValidateSearchQuery_Defaults(t *testing.T) {
	q := &models.SearchQuery{Text: "  guitar  "}

	if err := ValidateSearchQuery(q); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if q.Page != 1 {
		t.Errorf("Expected default page 1, got %d", q.Page)
	}
	if q.Limit != DefaultSearchLimit {
		t.Errorf("Expected default limit %d, got %d", DefaultSearchLimit, q.Limit)
	}
	if q.Text != "guitar" {
		t.Errorf("Expected trimmed text, got %q", q.Text)
	}
}

func TestValidateSearchQuery_KeepsExplicitPaging(t *testing.T) {
	q := &models.SearchQuery{Page: 3, Limit: 50}

	if err := ValidateSearchQuery(q); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if q.Page != 3 || q.Limit != 50 {
		t.Errorf("Explicit paging was overwritten: page=%d limit=%d", q.Page, q.Limit)
	}
}

func TestValidateSearchQuery_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		query models.SearchQuery
		field string
	}{
		{"unknown category", models.SearchQuery{Category: "astronomy"}, "category"},
		{"unknown level", models.SearchQuery{Levels: []models.SkillLevel{"ninja"}}, "level"},
		{"unknown type", models.SearchQuery{Type: "mentoring"}, "type"},
		{"unknown sort mode", models.SearchQuery{SortBy: "alphabetical"}, "sortBy"},
		{"negative rating", models.SearchQuery{MinRating: -0.5}, "rating"},
		{"rating above five", models.SearchQuery{MinRating: 5.1}, "rating"},
		{"negative page", models.SearchQuery{Page: -1}, "page"},
		{"limit above maximum", models.SearchQuery{Limit: MaxSearchLimit + 1}, "limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSearchQuery(&tt.query)
			if err == nil {
				t.Fatal("Expected validation error")
			}

			var verr *models.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Expected *models.ValidationError, got %T", err)
			}

			found := false
			for _, f := range verr.Fields {
				if f.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("Expected error on field %q, got %+v", tt.field, verr.Fields)
			}
		})
	}
}

func TestValidateSearchQuery_ValidEnumsPass(t *testing.T) {
	q := &models.SearchQuery{
		Category:  models.CategoryMusic,
		Levels:    []models.SkillLevel{models.SkillLevelBeginner, models.SkillLevelExpert},
		Type:      models.SearchTypeTeaching,
		SortBy:    models.SortByRating,
		MinRating: 4.5,
	}

	if err := ValidateSearchQuery(q); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

func TestValidateSearchQuery_CollectsAllFieldErrors(t *testing.T) {
	q := &models.SearchQuery{
		Category:  "astronomy",
		MinRating: 9,
		Limit:     500,
	}

	err := ValidateSearchQuery(q)
	if err == nil {
		t.Fatal("Expected validation error")
	}

	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Expected *models.ValidationError, got %T", err)
	}
	if len(verr.Fields) != 3 {
		t.Errorf("Expected 3 field errors, got %d: %+v", len(verr.Fields), verr.Fields)
	}
}

func TestHasMorePages(t *testing.T) {
	tests := []struct {
		name  string
		page  int
		limit int
		total int64
		want  bool
	}{
		{"empty result", 1, 20, 0, false},
		{"exactly one page", 1, 20, 20, false},
		{"one item past the page", 1, 20, 21, true},
		{"middle page", 2, 20, 41, true},
		{"exact last page", 3, 20, 60, false},
		{"past the end", 5, 20, 60, false},
		{"single item pages", 1, 1, 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasMorePages(tt.page, tt.limit, tt.total); got != tt.want {
				t.Errorf("HasMorePages(%d, %d, %d) = %v, want %v", tt.page, tt.limit, tt.total, got, tt.want)
			}
		})
	}
}

func TestEffectiveSort(t *testing.T) {
	tests := []struct {
		name  string
		query models.SearchQuery
		want  models.SortMode
	}{
		{"explicit mode wins", models.SearchQuery{Text: "piano", SortBy: models.SortByRating}, models.SortByRating},
		{"relevance with text", models.SearchQuery{Text: "piano"}, models.SortByRelevance},
		{"popularity without text", models.SearchQuery{}, models.SortByPopularity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.query.EffectiveSort(); got != tt.want {
				t.Errorf("EffectiveSort() = %q, want %q", got, tt.want)
			}
		})
	}
}

package repository

import (
	"testing"

	"skillexchange-service/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestBuildCatalogFilter_ActiveOnly(t *testing.T) {
	filter := BuildCatalogFilter(&models.SearchQuery{})

	if filter["is_active"] != true {
		t.Error("Catalog filter must always restrict to active skills")
	}
	if len(filter) != 1 {
		t.Errorf("Empty query should only filter on is_active, got %v", filter)
	}
}

func TestBuildCatalogFilter_Text(t *testing.T) {
	filter := BuildCatalogFilter(&models.SearchQuery{Text: "guitar"})

	text, ok := filter["$text"].(bson.M)
	if !ok {
		t.Fatalf("Expected $text clause, got %v", filter)
	}
	if text["$search"] != "guitar" {
		t.Errorf("Expected $search guitar, got %v", text)
	}
}

func TestBuildCatalogFilter_Category(t *testing.T) {
	filter := BuildCatalogFilter(&models.SearchQuery{Category: models.CategoryMusic})

	if filter["category"] != models.CategoryMusic {
		t.Errorf("Expected category filter, got %v", filter)
	}
}

// minRating 4.5 keeps a 4.6 skill and drops a 4.3 one: the filter must be
// an inclusive $gte on the recomputed average.
func TestBuildCatalogFilter_MinRating(t *testing.T) {
	filter := BuildCatalogFilter(&models.SearchQuery{MinRating: 4.5})

	rating, ok := filter["stats.avg_rating"].(bson.M)
	if !ok {
		t.Fatalf("Expected stats.avg_rating clause, got %v", filter)
	}
	if rating["$gte"] != 4.5 {
		t.Errorf("Expected $gte 4.5, got %v", rating)
	}
}

func TestBuildCatalogFilter_ZeroRatingNotFiltered(t *testing.T) {
	filter := BuildCatalogFilter(&models.SearchQuery{MinRating: 0})

	if _, ok := filter["stats.avg_rating"]; ok {
		t.Error("Zero minRating must not add a rating clause")
	}
}

// Levels and location apply to user skills only; the catalog side must
// ignore them.
func TestBuildCatalogFilter_IgnoresUserSkillFilters(t *testing.T) {
	filter := BuildCatalogFilter(&models.SearchQuery{
		Levels:   []models.SkillLevel{models.SkillLevelExpert},
		Location: "Hanoi",
		Type:     models.SearchTypeTeaching,
	})

	if len(filter) != 1 {
		t.Errorf("Expected only is_active, got %v", filter)
	}
}

func sortKeys(sort bson.D) []string {
	keys := make([]string, 0, len(sort))
	for _, e := range sort {
		keys = append(keys, e.Key)
	}
	return keys
}

func assertSortChain(t *testing.T, sort bson.D, want []string) {
	t.Helper()
	got := sortKeys(sort)
	if len(got) != len(want) {
		t.Fatalf("Expected sort chain %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Sort key %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestBuildCatalogSort_Relevance(t *testing.T) {
	sort := BuildCatalogSort(models.SortByRelevance, true)
	assertSortChain(t, sort, []string{"match_score", "popularity_score", "name"})

	meta, ok := sort[0].Value.(bson.M)
	if !ok || meta["$meta"] != "textScore" {
		t.Errorf("Relevance must sort on the text score, got %v", sort[0].Value)
	}
}

func TestBuildCatalogSort_RelevanceWithoutText(t *testing.T) {
	sort := BuildCatalogSort(models.SortByRelevance, false)
	assertSortChain(t, sort, []string{"popularity_score", "stats.total_users", "name"})
}

func TestBuildCatalogSort_TieBreakChains(t *testing.T) {
	tests := []struct {
		mode models.SortMode
		want []string
	}{
		{models.SortByRating, []string{"stats.avg_rating", "stats.total_reviews", "name"}},
		{models.SortByRecent, []string{"created_at", "name"}},
		{models.SortByPopularity, []string{"popularity_score", "stats.total_users", "name"}},
		{models.SortByExperience, []string{"popularity_score", "stats.total_users", "name"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			assertSortChain(t, BuildCatalogSort(tt.mode, false), tt.want)
		})
	}
}

// Every chain ends on the name so equal-score results page out in a stable
// order.
func TestBuildCatalogSort_NameIsFinalTieBreak(t *testing.T) {
	modes := []models.SortMode{
		models.SortByRelevance,
		models.SortByRating,
		models.SortByPopularity,
		models.SortByRecent,
	}

	for _, mode := range modes {
		sort := BuildCatalogSort(mode, true)
		last := sort[len(sort)-1]
		if last.Key != "name" || last.Value != 1 {
			t.Errorf("Mode %s: expected ascending name tie-break, got %v", mode, last)
		}
	}
}

package services

import (
	"testing"

	"skillexchange-service/internal/models"
)

func TestBuildSuggestions_MatchesNamesAndKeywords(t *testing.T) {
	candidates := []*models.Skill{
		{Name: "Guitar", SearchKeywords: []string{"acoustic guitar", "strings"}},
		{Name: "Bass Guitar", SearchKeywords: []string{"bass"}},
		{Name: "Piano", SearchKeywords: []string{"keyboard"}},
	}

	suggestions := BuildSuggestions(candidates, "guitar", 10)

	want := []string{"Guitar", "acoustic guitar", "Bass Guitar"}
	if len(suggestions) != len(want) {
		t.Fatalf("Expected %d suggestions, got %v", len(want), suggestions)
	}
	for i, s := range want {
		if suggestions[i] != s {
			t.Errorf("Suggestion %d: expected %q, got %q", i, s, suggestions[i])
		}
	}
}

func TestBuildSuggestions_CaseInsensitive(t *testing.T) {
	candidates := []*models.Skill{
		{Name: "Guitar"},
	}

	suggestions := BuildSuggestions(candidates, "GUI", 10)
	if len(suggestions) != 1 || suggestions[0] != "Guitar" {
		t.Errorf("Expected [Guitar], got %v", suggestions)
	}
}

// Candidates arrive popularity-ordered, so the first spelling of a
// duplicate is the one that survives.
func TestBuildSuggestions_DedupeFirstWins(t *testing.T) {
	candidates := []*models.Skill{
		{Name: "Guitar", SearchKeywords: []string{"guitar"}},
		{Name: "GUITAR"},
	}

	suggestions := BuildSuggestions(candidates, "guitar", 10)
	if len(suggestions) != 1 {
		t.Fatalf("Expected 1 deduplicated suggestion, got %v", suggestions)
	}
	if suggestions[0] != "Guitar" {
		t.Errorf("Expected first spelling to win, got %q", suggestions[0])
	}
}

func TestBuildSuggestions_RespectsLimit(t *testing.T) {
	candidates := []*models.Skill{
		{Name: "Guitar 1"},
		{Name: "Guitar 2"},
		{Name: "Guitar 3"},
		{Name: "Guitar 4"},
	}

	suggestions := BuildSuggestions(candidates, "guitar", 2)
	if len(suggestions) != 2 {
		t.Errorf("Expected 2 suggestions, got %v", suggestions)
	}
}

func TestBuildSuggestions_NoMatches(t *testing.T) {
	candidates := []*models.Skill{
		{Name: "Piano"},
	}

	suggestions := BuildSuggestions(candidates, "guitar", 10)
	if len(suggestions) != 0 {
		t.Errorf("Expected no suggestions, got %v", suggestions)
	}
}

func TestAggregateDeclarations_Empty(t *testing.T) {
	stats := AggregateDeclarations(nil)

	if stats.TotalUsers != 0 || stats.TeachingUsers != 0 || stats.LearningUsers != 0 {
		t.Errorf("Expected zeroed counts, got %+v", stats)
	}
	if stats.AvgRating != 0 {
		t.Errorf("Expected zero average rating, got %f", stats.AvgRating)
	}
}

func TestAggregateDeclarations_Counts(t *testing.T) {
	declarations := []models.SkillDeclaration{
		{UserID: "u1", IsTeaching: true, UserRating: 4.0},
		{UserID: "u2", IsLearning: true, UserRating: 5.0},
		{UserID: "u3", IsTeaching: true, IsLearning: true, UserRating: 3.0},
	}

	stats := AggregateDeclarations(declarations)

	if stats.TotalUsers != 3 {
		t.Errorf("Expected 3 users, got %d", stats.TotalUsers)
	}
	if stats.TeachingUsers != 2 {
		t.Errorf("Expected 2 teaching users, got %d", stats.TeachingUsers)
	}
	if stats.LearningUsers != 2 {
		t.Errorf("Expected 2 learning users, got %d", stats.LearningUsers)
	}
	if stats.AvgRating != 4.0 {
		t.Errorf("Expected average rating 4.0, got %f", stats.AvgRating)
	}
}

// Unrated users count toward totals but never drag the average down.
func TestAggregateDeclarations_PositiveRatingsOnly(t *testing.T) {
	declarations := []models.SkillDeclaration{
		{UserID: "u1", UserRating: 4.0},
		{UserID: "u2", UserRating: 0},
		{UserID: "u3", UserRating: 5.0},
	}

	stats := AggregateDeclarations(declarations)

	if stats.TotalUsers != 3 {
		t.Errorf("Expected 3 users, got %d", stats.TotalUsers)
	}
	if stats.AvgRating != 4.5 {
		t.Errorf("Expected average 4.5 over rated users only, got %f", stats.AvgRating)
	}
}

func TestAggregateDeclarations_RoundsToTwoDecimals(t *testing.T) {
	declarations := []models.SkillDeclaration{
		{UserID: "u1", UserRating: 4.0},
		{UserID: "u2", UserRating: 4.0},
		{UserID: "u3", UserRating: 5.0},
	}

	stats := AggregateDeclarations(declarations)
	if stats.AvgRating != 4.33 {
		t.Errorf("Expected 4.33, got %f", stats.AvgRating)
	}
}

// Running the fold twice over the same rows must give identical stats; the
// recomputation pass relies on this.
func TestAggregateDeclarations_Idempotent(t *testing.T) {
	declarations := []models.SkillDeclaration{
		{UserID: "u1", IsTeaching: true, UserRating: 4.0},
		{UserID: "u2", IsLearning: true, UserRating: 3.5},
	}

	first := AggregateDeclarations(declarations)
	second := AggregateDeclarations(declarations)

	if first != second {
		t.Errorf("Aggregation not deterministic: %+v vs %+v", first, second)
	}
}

func TestAggregateDeclarations_DuplicateUserCountedOnce(t *testing.T) {
	declarations := []models.SkillDeclaration{
		{UserID: "u1", IsTeaching: true, UserRating: 4.0},
		{UserID: "u1", IsTeaching: true, UserRating: 4.0},
	}

	stats := AggregateDeclarations(declarations)
	if stats.TotalUsers != 1 {
		t.Errorf("Expected 1 distinct user, got %d", stats.TotalUsers)
	}
	if stats.AvgRating != 4.0 {
		t.Errorf("Expected average 4.0, got %f", stats.AvgRating)
	}
}

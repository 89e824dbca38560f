package repository

import (
	"testing"

	"skillexchange-service/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func matchStage(t *testing.T, stages []bson.M) bson.M {
	t.Helper()
	for _, stage := range stages {
		if match, ok := stage["$match"].(bson.M); ok {
			return match
		}
	}
	t.Fatal("No $match stage found")
	return nil
}

func TestBuildUserSkillMatchStages_AlwaysUnwinds(t *testing.T) {
	stages := BuildUserSkillMatchStages(&models.SearchQuery{})

	if len(stages) != 1 {
		t.Fatalf("Empty query should only unwind, got %v", stages)
	}
	if stages[0]["$unwind"] != "$skills" {
		t.Errorf("Expected $unwind on skills, got %v", stages[0])
	}
}

func TestBuildUserSkillMatchStages_TextMatchesNameAndTags(t *testing.T) {
	stages := BuildUserSkillMatchStages(&models.SearchQuery{Text: "guitar"})
	match := matchStage(t, stages)

	or, ok := match["$or"].([]bson.M)
	if !ok || len(or) != 2 {
		t.Fatalf("Expected $or over name and tags, got %v", match)
	}
	if _, ok := or[0]["skills.name"]; !ok {
		t.Errorf("First $or branch should match skills.name, got %v", or[0])
	}
	if _, ok := or[1]["skills.tags"]; !ok {
		t.Errorf("Second $or branch should match skills.tags, got %v", or[1])
	}
}

// Regex metacharacters in the query must match literally.
func TestBuildUserSkillMatchStages_EscapesRegex(t *testing.T) {
	stages := BuildUserSkillMatchStages(&models.SearchQuery{Text: "c++"})
	match := matchStage(t, stages)

	or := match["$or"].([]bson.M)
	name := or[0]["skills.name"].(bson.M)
	if name["$regex"] != `c\+\+` {
		t.Errorf("Expected escaped pattern, got %v", name["$regex"])
	}
}

func TestBuildUserSkillMatchStages_Levels(t *testing.T) {
	stages := BuildUserSkillMatchStages(&models.SearchQuery{
		Levels: []models.SkillLevel{models.SkillLevelAdvanced, models.SkillLevelExpert},
	})
	match := matchStage(t, stages)

	level, ok := match["skills.level"].(bson.M)
	if !ok {
		t.Fatalf("Expected skills.level clause, got %v", match)
	}
	in, ok := level["$in"].([]models.SkillLevel)
	if !ok || len(in) != 2 {
		t.Errorf("Expected $in over both levels, got %v", level)
	}
}

func TestBuildUserSkillMatchStages_Type(t *testing.T) {
	stages := BuildUserSkillMatchStages(&models.SearchQuery{Type: models.SearchTypeTeaching})
	match := matchStage(t, stages)
	if match["skills.is_teaching"] != true {
		t.Errorf("Teaching search must require is_teaching, got %v", match)
	}

	stages = BuildUserSkillMatchStages(&models.SearchQuery{Type: models.SearchTypeLearning})
	match = matchStage(t, stages)
	if match["skills.is_learning"] != true {
		t.Errorf("Learning search must require is_learning, got %v", match)
	}

	// "both" applies no declaration-side restriction
	stages = BuildUserSkillMatchStages(&models.SearchQuery{Type: models.SearchTypeBoth})
	if len(stages) != 1 {
		t.Errorf("Type both should not add a match stage, got %v", stages)
	}
}

func TestBuildUserSkillMatchStages_LocationMatchesCityOrCountry(t *testing.T) {
	stages := BuildUserSkillMatchStages(&models.SearchQuery{Location: "Hanoi"})
	match := matchStage(t, stages)

	and, ok := match["$and"].([]bson.M)
	if !ok || len(and) != 1 {
		t.Fatalf("Expected wrapped location clause, got %v", match)
	}
	or, ok := and[0]["$or"].([]bson.M)
	if !ok || len(or) != 2 {
		t.Fatalf("Expected $or over city and country, got %v", and[0])
	}
	if _, ok := or[0]["location.city"]; !ok {
		t.Errorf("Expected location.city branch, got %v", or[0])
	}
	if _, ok := or[1]["location.country"]; !ok {
		t.Errorf("Expected location.country branch, got %v", or[1])
	}
}

// Text and location both use $or; the location one must be wrapped so the
// clauses do not clobber each other.
func TestBuildUserSkillMatchStages_TextAndLocationCoexist(t *testing.T) {
	stages := BuildUserSkillMatchStages(&models.SearchQuery{Text: "guitar", Location: "Hanoi"})
	match := matchStage(t, stages)

	if _, ok := match["$or"]; !ok {
		t.Error("Text $or clause missing")
	}
	if _, ok := match["$and"]; !ok {
		t.Error("Location $and clause missing")
	}
}

func TestBuildUserSkillMatchStages_MinRating(t *testing.T) {
	stages := BuildUserSkillMatchStages(&models.SearchQuery{MinRating: 4.5})
	match := matchStage(t, stages)

	rating, ok := match["stats.rating"].(bson.M)
	if !ok {
		t.Fatalf("Expected stats.rating clause, got %v", match)
	}
	if rating["$gte"] != 4.5 {
		t.Errorf("Expected inclusive $gte 4.5, got %v", rating)
	}
}

func TestBuildUserSkillSort_Relevance(t *testing.T) {
	sort := BuildUserSkillSort(models.SortByRelevance, true)
	assertSortChain(t, sort, []string{"match_score", "stats.total_sessions", "skills.name"})
}

func TestBuildUserSkillSort_RelevanceWithoutText(t *testing.T) {
	sort := BuildUserSkillSort(models.SortByRelevance, false)
	assertSortChain(t, sort, []string{"stats.total_sessions", "skills.name"})
}

func TestBuildUserSkillSort_TieBreakChains(t *testing.T) {
	tests := []struct {
		mode models.SortMode
		want []string
	}{
		{models.SortByRating, []string{"stats.rating", "stats.total_reviews", "skills.name"}},
		{models.SortByRecent, []string{"skills.created_at", "skills.name"}},
		{models.SortByExperience, []string{"skills.years_of_experience", "skills.name"}},
		{models.SortByPopularity, []string{"stats.total_sessions", "skills.name"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			assertSortChain(t, BuildUserSkillSort(tt.mode, false), tt.want)
		})
	}
}

func TestBuildUserSkillSort_NameIsFinalTieBreak(t *testing.T) {
	modes := []models.SortMode{
		models.SortByRelevance,
		models.SortByRating,
		models.SortByRecent,
		models.SortByExperience,
		models.SortByPopularity,
	}

	for _, mode := range modes {
		sort := BuildUserSkillSort(mode, true)
		last := sort[len(sort)-1]
		if last.Key != "skills.name" || last.Value != 1 {
			t.Errorf("Mode %s: expected ascending skills.name tie-break, got %v", mode, last)
		}
	}
}

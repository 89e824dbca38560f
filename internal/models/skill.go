package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// SkillStats holds the aggregate numbers shown on a catalog entry. They are
// maintained by an explicit recomputation pass over all profiles, not
// incrementally on profile edits.
type SkillStats struct {
	TotalUsers    int     `bson:"total_users" json:"totalUsers"`
	TeachingUsers int     `bson:"teaching_users" json:"teachingUsers"`
	LearningUsers int     `bson:"learning_users" json:"learningUsers"`
	AvgRating     float64 `bson:"avg_rating" json:"avgRating"`
	TotalSessions int     `bson:"total_sessions" json:"totalSessions"`
	TotalReviews  int     `bson:"total_reviews" json:"totalReviews"`
}

// Skill is a canonical catalog entry. Name is unique, case-sensitive as
// stored. Inactive skills never appear in search results.
type Skill struct {
	ID              bson.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name            string        `bson:"name" json:"name"`
	Description     string        `bson:"description" json:"description"`
	Category        SkillCategory `bson:"category" json:"category"`
	Subcategory     string        `bson:"subcategory" json:"subcategory,omitempty"`
	Tags            []string      `bson:"tags" json:"tags"`
	AvailableLevels []SkillLevel  `bson:"available_levels" json:"availableLevels"`

	// SearchKeywords feed suggestion matching only, never ranking. Marshalled
	// without omitempty so an emptied list reaches the $set update document.
	SearchKeywords []string `bson:"search_keywords" json:"searchKeywords,omitempty"`

	Trending        bool       `bson:"trending" json:"trending"`
	PopularityScore float64    `bson:"popularity_score" json:"popularityScore"`
	Stats           SkillStats `bson:"stats" json:"stats"`

	IsActive  bool      `bson:"is_active" json:"isActive"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// SkillSearchHit decorates a catalog skill with its text-match score when a
// free-text query was used.
type SkillSearchHit struct {
	Skill      `bson:",inline"`
	MatchScore float64 `bson:"match_score,omitempty" json:"matchScore,omitempty"`
}

// SkillDeclaration is one profile's relationship to a named skill, the
// input row of the stats recomputation pass.
type SkillDeclaration struct {
	UserID     string  `bson:"user_id" json:"userId"`
	IsTeaching bool    `bson:"is_teaching" json:"isTeaching"`
	IsLearning bool    `bson:"is_learning" json:"isLearning"`
	UserRating float64 `bson:"user_rating" json:"userRating"`
}

// CategoryCount is one row of the categories endpoint.
type CategoryCount struct {
	Category   SkillCategory `bson:"_id" json:"category"`
	SkillCount int           `bson:"skill_count" json:"skillCount"`
	TotalUsers int           `bson:"total_users" json:"totalUsers"`
}

// GetSkillIndexes returns the MongoDB indexes for the skills collection.
func GetSkillIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "category", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "tags", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "search_keywords", Value: 1}},
		},
		{
			Keys: bson.D{
				{Key: "is_active", Value: 1},
				{Key: "popularity_score", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "trending", Value: 1},
				{Key: "created_at", Value: -1},
			},
		},
		{
			Keys: bson.D{{Key: "stats.avg_rating", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
		// Text search index backing the relevance sort
		{
			Keys: bson.D{
				{Key: "name", Value: "text"},
				{Key: "description", Value: "text"},
				{Key: "tags", Value: "text"},
			},
			Options: options.Index().SetWeights(bson.M{
				"name":        10,
				"description": 5,
				"tags":        4,
			}),
		},
	}
}

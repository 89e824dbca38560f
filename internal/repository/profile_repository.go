package repository

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"skillexchange-service/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type ProfileRepository struct {
	collection *mongo.Collection
}

func NewProfileRepository(database *mongo.Database, collection string) *ProfileRepository {
	return &ProfileRepository{
		collection: database.Collection(collection),
	}
}

func (r *ProfileRepository) InitializeIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, models.GetProfileIndexes())
	if err != nil {
		return fmt.Errorf("failed to create profile indexes: %w", err)
	}
	return nil
}

func (r *ProfileRepository) Create(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	if profile.ID.IsZero() {
		profile.ID = bson.NewObjectID()
	}

	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now
	profile.Email = strings.ToLower(profile.Email)
	if profile.Skills == nil {
		profile.Skills = []models.UserSkill{}
	}

	_, err := r.collection.InsertOne(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to insert profile: %w", err)
	}
	return profile, nil
}

func (r *ProfileRepository) FindByID(ctx context.Context, id bson.ObjectID) (*models.Profile, error) {
	var profile models.Profile
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&profile)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}
	return &profile, nil
}

func (r *ProfileRepository) FindByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	var profile models.Profile
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&profile)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find profile by user ID: %w", err)
	}
	return &profile, nil
}

func (r *ProfileRepository) FindByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var profile models.Profile
	err := r.collection.FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&profile)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find profile by email: %w", err)
	}
	return &profile, nil
}

// Update replaces the whole document. Concurrent edits to the same profile
// resolve last-write-wins at the document level; there is no optimistic
// concurrency token.
func (r *ProfileRepository) Update(ctx context.Context, id bson.ObjectID, profile *models.Profile) (*models.Profile, error) {
	profile.UpdatedAt = time.Now()

	filter := bson.M{"_id": id}
	update := bson.M{"$set": profile}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Profile
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return &updated, nil
}

func (r *ProfileRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	if result.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// BuildUserSkillMatchStages produces the $unwind + $match stages shared by
// the count and page pipelines of a user-skill search.
func BuildUserSkillMatchStages(q *models.SearchQuery) []bson.M {
	match := bson.M{}

	if q.Text != "" {
		escaped := regexp.QuoteMeta(q.Text)
		match["$or"] = []bson.M{
			{"skills.name": bson.M{"$regex": escaped, "$options": "i"}},
			{"skills.tags": bson.M{"$regex": escaped, "$options": "i"}},
		}
	}
	if q.Category != "" {
		match["skills.category"] = q.Category
	}
	if len(q.Levels) > 0 {
		match["skills.level"] = bson.M{"$in": q.Levels}
	}
	switch q.Type {
	case models.SearchTypeTeaching:
		match["skills.is_teaching"] = true
	case models.SearchTypeLearning:
		match["skills.is_learning"] = true
	}
	if q.Location != "" {
		escaped := regexp.QuoteMeta(q.Location)
		match["$and"] = []bson.M{
			{"$or": []bson.M{
				{"location.city": bson.M{"$regex": escaped, "$options": "i"}},
				{"location.country": bson.M{"$regex": escaped, "$options": "i"}},
			}},
		}
	}
	if q.MinRating > 0 {
		match["stats.rating"] = bson.M{"$gte": q.MinRating}
	}

	stages := []bson.M{
		{"$unwind": "$skills"},
	}
	if len(match) > 0 {
		stages = append(stages, bson.M{"$match": match})
	}
	return stages
}

// userSkillScoreStage scores a text match on an unwound skill declaration:
// a name hit outweighs a tag hit.
func userSkillScoreStage(text string) bson.M {
	escaped := regexp.QuoteMeta(text)
	regexMatch := func(input string) bson.M {
		return bson.M{"$regexMatch": bson.M{
			"input":   input,
			"regex":   escaped,
			"options": "i",
		}}
	}

	return bson.M{"$addFields": bson.M{
		"match_score": bson.M{"$add": []any{
			bson.M{"$cond": []any{regexMatch("$skills.name"), 3, 0}},
			bson.M{"$cond": []any{
				bson.M{"$gt": []any{
					bson.M{"$size": bson.M{"$filter": bson.M{
						"input": bson.M{"$ifNull": []any{"$skills.tags", []any{}}},
						"as":    "tag",
						"cond":  regexMatch("$$tag"),
					}}},
					0,
				}},
				1, 0,
			}},
		}},
	}}
}

// BuildUserSkillSort returns the ordered sort document for the user-skill
// side of a search. Profile session counts stand in for catalog popularity.
func BuildUserSkillSort(mode models.SortMode, withText bool) bson.D {
	switch mode {
	case models.SortByRelevance:
		if withText {
			return bson.D{
				{Key: "match_score", Value: -1},
				{Key: "stats.total_sessions", Value: -1},
				{Key: "skills.name", Value: 1},
			}
		}
		return BuildUserSkillSort(models.SortByPopularity, false)
	case models.SortByRating:
		return bson.D{
			{Key: "stats.rating", Value: -1},
			{Key: "stats.total_reviews", Value: -1},
			{Key: "skills.name", Value: 1},
		}
	case models.SortByRecent:
		return bson.D{
			{Key: "skills.created_at", Value: -1},
			{Key: "skills.name", Value: 1},
		}
	case models.SortByExperience:
		return bson.D{
			{Key: "skills.years_of_experience", Value: -1},
			{Key: "skills.name", Value: 1},
		}
	default:
		return bson.D{
			{Key: "stats.total_sessions", Value: -1},
			{Key: "skills.name", Value: 1},
		}
	}
}

// SearchUserSkills runs the profile side of a search query: unwind the
// embedded declarations, filter, score, sort and page.
func (r *ProfileRepository) SearchUserSkills(ctx context.Context, q *models.SearchQuery) ([]*models.UserSkillHit, int64, error) {
	base := BuildUserSkillMatchStages(q)

	countPipeline := append(append([]bson.M{}, base...), bson.M{"$count": "total"})
	countCursor, err := r.collection.Aggregate(ctx, countPipeline)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count user skills: %w", err)
	}

	var total int64
	if countCursor.Next(ctx) {
		var row struct {
			Total int64 `bson:"total"`
		}
		if err := countCursor.Decode(&row); err != nil {
			countCursor.Close(ctx)
			return nil, 0, fmt.Errorf("failed to decode user skill count: %w", err)
		}
		total = row.Total
	}
	countCursor.Close(ctx)

	withText := q.Text != ""
	pipeline := append([]bson.M{}, base...)
	if withText {
		pipeline = append(pipeline, userSkillScoreStage(q.Text))
	}
	pipeline = append(pipeline,
		bson.M{"$sort": BuildUserSkillSort(q.EffectiveSort(), withText)},
		bson.M{"$skip": int64((q.Page - 1) * q.Limit)},
		bson.M{"$limit": int64(q.Limit)},
		bson.M{"$project": bson.M{
			"_id":         0,
			"profile_id":  "$_id",
			"user_id":     1,
			"user_name":   "$name",
			"avatar":      1,
			"location":    1,
			"user_rating": "$stats.rating",
			"sessions":    "$stats.total_sessions",
			"skill":       "$skills",
			"match_score": 1,
		}},
	)

	aggOpts := options.Aggregate().SetCollation(caseInsensitiveName)
	cursor, err := r.collection.Aggregate(ctx, pipeline, aggOpts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search user skills: %w", err)
	}
	defer cursor.Close(ctx)

	var hits []*models.UserSkillHit
	if err := cursor.All(ctx, &hits); err != nil {
		return nil, 0, fmt.Errorf("failed to decode user skill hits: %w", err)
	}

	return hits, total, nil
}

// CollectSkillDeclarations scans all profiles for declarations of the named
// skill. Full collection scan; callers bound it with a timeout.
func (r *ProfileRepository) CollectSkillDeclarations(ctx context.Context, skillName string) ([]models.SkillDeclaration, error) {
	pipeline := []bson.M{
		{"$unwind": "$skills"},
		{"$match": bson.M{"skills.name": skillName}},
		{"$project": bson.M{
			"_id":         0,
			"user_id":     1,
			"is_teaching": "$skills.is_teaching",
			"is_learning": "$skills.is_learning",
			"user_rating": "$stats.rating",
		}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to collect skill declarations: %w", err)
	}
	defer cursor.Close(ctx)

	var declarations []models.SkillDeclaration
	if err := cursor.All(ctx, &declarations); err != nil {
		return nil, fmt.Errorf("failed to decode skill declarations: %w", err)
	}

	return declarations, nil
}

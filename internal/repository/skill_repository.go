package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"skillexchange-service/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// caseInsensitiveName makes name tie-breaks independent of letter case.
var caseInsensitiveName = &options.Collation{Locale: "en", Strength: 2}

type SkillRepository struct {
	collection *mongo.Collection
}

func NewSkillRepository(database *mongo.Database, collection string) *SkillRepository {
	return &SkillRepository{
		collection: database.Collection(collection),
	}
}

func (r *SkillRepository) InitializeIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, models.GetSkillIndexes())
	if err != nil {
		return fmt.Errorf("failed to create skill indexes: %w", err)
	}
	return nil
}

// InitializeData loads catalog seed files from <dataDir>/skills/*.json.
// Existing skills are left untouched.
func (r *SkillRepository) InitializeData(ctx context.Context, dataDir string) error {
	skillsDir := filepath.Join(dataDir, "skills")

	if _, err := os.Stat(skillsDir); os.IsNotExist(err) {
		return fmt.Errorf("skills directory not found: %s", skillsDir)
	}

	var skillsLoaded int
	err := filepath.WalkDir(skillsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".json") {
			return nil
		}

		skill, err := r.loadSkillFromFile(path)
		if err != nil {
			log.Printf("Warning: Failed to load skill from %s: %v", path, err)
			return nil
		}

		exists, err := r.ExistsByName(ctx, skill.Name)
		if err != nil {
			return fmt.Errorf("failed to check if skill exists: %w", err)
		}
		if exists {
			return nil
		}

		if _, err := r.Create(ctx, skill); err != nil {
			log.Printf("Warning: Failed to insert skill '%s': %v", skill.Name, err)
			return nil
		}

		skillsLoaded++
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk skills directory: %w", err)
	}

	log.Printf("Loaded %d skills from %s", skillsLoaded, skillsDir)
	return nil
}

func (r *SkillRepository) loadSkillFromFile(filePath string) (*models.Skill, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var skill models.Skill
	if err := json.Unmarshal(data, &skill); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	return &skill, nil
}

func (r *SkillRepository) Create(ctx context.Context, skill *models.Skill) (*models.Skill, error) {
	if skill.ID.IsZero() {
		skill.ID = bson.NewObjectID()
	}

	now := time.Now()
	skill.CreatedAt = now
	skill.UpdatedAt = now
	skill.IsActive = true

	_, err := r.collection.InsertOne(ctx, skill)
	if err != nil {
		return nil, fmt.Errorf("failed to create skill: %w", err)
	}

	return skill, nil
}

func (r *SkillRepository) GetByID(ctx context.Context, id bson.ObjectID) (*models.Skill, error) {
	var skill models.Skill
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&skill)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get skill by ID: %w", err)
	}

	return &skill, nil
}

func (r *SkillRepository) GetByName(ctx context.Context, name string) (*models.Skill, error) {
	var skill models.Skill
	err := r.collection.FindOne(ctx, bson.M{"name": name}).Decode(&skill)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get skill by name: %w", err)
	}

	return &skill, nil
}

func (r *SkillRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"name": name})
	if err != nil {
		return false, fmt.Errorf("failed to check skill existence: %w", err)
	}
	return count > 0, nil
}

func (r *SkillRepository) Update(ctx context.Context, id bson.ObjectID, skill *models.Skill) (*models.Skill, error) {
	skill.ID = id
	skill.UpdatedAt = time.Now()

	update := bson.M{"$set": skill}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update skill: %w", err)
	}
	if result.MatchedCount == 0 {
		return nil, models.ErrNotFound
	}

	return skill, nil
}

// Delete soft-deletes by clearing is_active, which removes the skill from
// every search surface.
func (r *SkillRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	update := bson.M{
		"$set": bson.M{
			"is_active":  false,
			"updated_at": time.Now(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to delete skill: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}

	return nil
}

// BuildCatalogFilter translates a validated search query into the catalog
// filter document. Levels and location never restrict catalog entries.
func BuildCatalogFilter(q *models.SearchQuery) bson.M {
	filter := bson.M{"is_active": true}

	if q.Text != "" {
		filter["$text"] = bson.M{"$search": q.Text}
	}
	if q.Category != "" {
		filter["category"] = q.Category
	}
	if q.MinRating > 0 {
		filter["stats.avg_rating"] = bson.M{"$gte": q.MinRating}
	}

	return filter
}

// BuildCatalogSort returns the ordered sort document for a catalog query.
// The tie-break chain per mode is part of the API contract.
func BuildCatalogSort(mode models.SortMode, withText bool) bson.D {
	switch mode {
	case models.SortByRelevance:
		if withText {
			return bson.D{
				{Key: "match_score", Value: bson.M{"$meta": "textScore"}},
				{Key: "popularity_score", Value: -1},
				{Key: "name", Value: 1},
			}
		}
		// No text to score against, fall back to popularity
		return BuildCatalogSort(models.SortByPopularity, false)
	case models.SortByRating:
		return bson.D{
			{Key: "stats.avg_rating", Value: -1},
			{Key: "stats.total_reviews", Value: -1},
			{Key: "name", Value: 1},
		}
	case models.SortByRecent:
		return bson.D{
			{Key: "created_at", Value: -1},
			{Key: "name", Value: 1},
		}
	default:
		// popularity, and experience which has no catalog meaning
		return bson.D{
			{Key: "popularity_score", Value: -1},
			{Key: "stats.total_users", Value: -1},
			{Key: "name", Value: 1},
		}
	}
}

// Search runs the catalog side of a search query and returns one page of
// hits plus the unpaginated total.
func (r *SkillRepository) Search(ctx context.Context, q *models.SearchQuery) ([]*models.SkillSearchHit, int64, error) {
	filter := BuildCatalogFilter(q)

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count skills: %w", err)
	}

	withText := q.Text != ""
	findOpts := options.Find().
		SetSort(BuildCatalogSort(q.EffectiveSort(), withText)).
		SetSkip(int64((q.Page - 1) * q.Limit)).
		SetLimit(int64(q.Limit))

	if withText {
		findOpts.SetProjection(bson.M{"match_score": bson.M{"$meta": "textScore"}})
	} else {
		// Collation is incompatible with $text queries; text search already
		// tokenizes case-insensitively.
		findOpts.SetCollation(caseInsensitiveName)
	}

	cursor, err := r.collection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search skills: %w", err)
	}
	defer cursor.Close(ctx)

	var hits []*models.SkillSearchHit
	if err := cursor.All(ctx, &hits); err != nil {
		return nil, 0, fmt.Errorf("failed to decode skills: %w", err)
	}

	return hits, total, nil
}

// GetTrending returns the top skills ordered by trending flag then recency.
func (r *SkillRepository) GetTrending(ctx context.Context, limit int) ([]*models.Skill, error) {
	findOpts := options.Find().
		SetSort(bson.D{
			{Key: "trending", Value: -1},
			{Key: "created_at", Value: -1},
		}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"is_active": true}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to get trending skills: %w", err)
	}
	defer cursor.Close(ctx)

	var skills []*models.Skill
	if err := cursor.All(ctx, &skills); err != nil {
		return nil, fmt.Errorf("failed to decode trending skills: %w", err)
	}

	return skills, nil
}

// GetCategoryCounts aggregates per-category skill and user totals for the
// categories endpoint.
func (r *SkillRepository) GetCategoryCounts(ctx context.Context) (map[models.SkillCategory]*models.CategoryCount, error) {
	pipeline := []bson.M{
		{
			"$match": bson.M{"is_active": true},
		},
		{
			"$group": bson.M{
				"_id":         "$category",
				"skill_count": bson.M{"$sum": 1},
				"total_users": bson.M{"$sum": "$stats.total_users"},
			},
		},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate categories: %w", err)
	}
	defer cursor.Close(ctx)

	counts := make(map[models.SkillCategory]*models.CategoryCount)
	for cursor.Next(ctx) {
		var row models.CategoryCount
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("failed to decode category count: %w", err)
		}
		counts[row.Category] = &row
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return counts, nil
}

// FindSuggestionCandidates returns active skills whose name or search
// keywords contain the query substring, popularity-ordered. Deduplication
// happens in the service layer.
func (r *SkillRepository) FindSuggestionCandidates(ctx context.Context, query string, limit int) ([]*models.Skill, error) {
	escaped := regexp.QuoteMeta(query)

	filter := bson.M{
		"is_active": true,
		"$or": []bson.M{
			{"name": bson.M{"$regex": escaped, "$options": "i"}},
			{"search_keywords": bson.M{"$regex": escaped, "$options": "i"}},
		},
	}

	findOpts := options.Find().
		SetSort(bson.D{
			{Key: "popularity_score", Value: -1},
			{Key: "name", Value: 1},
		}).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"name": 1, "search_keywords": 1, "popularity_score": 1})

	cursor, err := r.collection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to find suggestion candidates: %w", err)
	}
	defer cursor.Close(ctx)

	var skills []*models.Skill
	if err := cursor.All(ctx, &skills); err != nil {
		return nil, fmt.Errorf("failed to decode suggestion candidates: %w", err)
	}

	return skills, nil
}

// ListActiveNames returns the names of every active catalog skill, for the
// full recomputation pass.
func (r *SkillRepository) ListActiveNames(ctx context.Context) ([]string, error) {
	findOpts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetProjection(bson.M{"name": 1})

	cursor, err := r.collection.Find(ctx, bson.M{"is_active": true}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to list skill names: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Name string `bson:"name"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode skill names: %w", err)
	}

	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.Name)
	}
	return names, nil
}

// UpdateStats persists a recomputed stats block for the named skill.
func (r *SkillRepository) UpdateStats(ctx context.Context, name string, stats models.SkillStats) error {
	update := bson.M{
		"$set": bson.M{
			"stats":      stats,
			"updated_at": time.Now(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"name": name}, update)
	if err != nil {
		return fmt.Errorf("failed to update skill stats: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}

	return nil
}

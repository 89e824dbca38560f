package models

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type Location struct {
	City    string `bson:"city,omitempty" json:"city,omitempty"`
	Country string `bson:"country,omitempty" json:"country,omitempty"`
}

type ContactInfo struct {
	Phone       string            `bson:"phone,omitempty" json:"phone,omitempty"`
	Website     string            `bson:"website,omitempty" json:"website,omitempty"`
	SocialLinks map[string]string `bson:"social_links,omitempty" json:"socialLinks,omitempty"`
}

// UserSkill is a skill declaration embedded in a profile. It has no identity
// outside its parent; SkillID is only unique within the owning profile.
type UserSkill struct {
	SkillID           bson.ObjectID `bson:"skill_id" json:"skillId"`
	Name              string        `bson:"name" json:"name"`
	Category          SkillCategory `bson:"category" json:"category"`
	Level             SkillLevel    `bson:"level" json:"level"`
	Description       string        `bson:"description,omitempty" json:"description,omitempty"`
	Tags              []string      `bson:"tags,omitempty" json:"tags,omitempty"`
	YearsOfExperience int           `bson:"years_of_experience" json:"yearsOfExperience"`
	Certifications    []string      `bson:"certifications,omitempty" json:"certifications,omitempty"`
	IsTeaching        bool          `bson:"is_teaching" json:"isTeaching"`
	IsLearning        bool          `bson:"is_learning" json:"isLearning"`
	CreatedAt         time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt         time.Time     `bson:"updated_at" json:"updatedAt"`
}

type Preferences struct {
	AvailableHours  []string      `bson:"available_hours,omitempty" json:"availableHours,omitempty"`
	MeetingTypes    []MeetingType `bson:"meeting_types,omitempty" json:"meetingTypes,omitempty"`
	Languages       []string      `bson:"languages,omitempty" json:"languages,omitempty"`
	MaxDistance     int           `bson:"max_distance,omitempty" json:"maxDistance,omitempty"`
	SessionDuration int           `bson:"session_duration,omitempty" json:"sessionDuration,omitempty"`
}

type ProfileStats struct {
	SkillsShared  int     `bson:"skills_shared" json:"skillsShared"`
	SkillsLearned int     `bson:"skills_learned" json:"skillsLearned"`
	Rating        float64 `bson:"rating" json:"rating"`
	TotalSessions int     `bson:"total_sessions" json:"totalSessions"`
	TotalReviews  int     `bson:"total_reviews" json:"totalReviews"`
}

// CompletionSteps are the four derived profile-completion flags.
type CompletionSteps struct {
	BasicInfo   bool `bson:"basic_info" json:"basicInfo"`
	Skills      bool `bson:"skills" json:"skills"`
	Preferences bool `bson:"preferences" json:"preferences"`
	Avatar      bool `bson:"avatar" json:"avatar"`
}

// Profile identity is the unique email, stored lowercased.
type Profile struct {
	ID     bson.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID string        `bson:"user_id" json:"userId"`
	Email  string        `bson:"email" json:"email"`
	Name   string        `bson:"name" json:"name"`
	// Bio, DateOfBirth and Avatar are always marshalled so clearing one
	// reaches the $set update document.
	Bio         string       `bson:"bio" json:"bio,omitempty"`
	DateOfBirth string       `bson:"date_of_birth" json:"dateOfBirth,omitempty"`
	Location    Location     `bson:"location" json:"location"`
	Contact     ContactInfo  `bson:"contact" json:"contact"`
	Avatar      string       `bson:"avatar" json:"avatar,omitempty"`
	Skills      []UserSkill  `bson:"skills" json:"skills"`
	Preferences Preferences  `bson:"preferences" json:"preferences"`
	Stats       ProfileStats `bson:"stats" json:"stats"`

	ProfileCompleted     bool            `bson:"profile_completed" json:"profileCompleted"`
	CompletionSteps      CompletionSteps `bson:"completion_steps" json:"profileCompletionSteps"`
	CompletionPercentage int             `bson:"completion_percentage" json:"profileCompletionPercentage"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// ComputeCompletion derives the completion flags from the current field
// presence. Pure function, invoked on every profile mutation before the
// document is persisted.
func ComputeCompletion(p *Profile) (CompletionSteps, bool, int) {
	steps := CompletionSteps{
		BasicInfo: p.Name != "" && p.Bio != "" &&
			p.Location.City != "" && p.Location.Country != "",
		Skills:      len(p.Skills) > 0,
		Preferences: len(p.Preferences.MeetingTypes) > 0 && len(p.Preferences.Languages) > 0,
		Avatar:      p.Avatar != "",
	}

	done := 0
	for _, flag := range []bool{steps.BasicInfo, steps.Skills, steps.Preferences, steps.Avatar} {
		if flag {
			done++
		}
	}

	percentage := int(math.Round(100 * float64(done) / 4))
	return steps, done == 4, percentage
}

// ApplyCompletion recomputes and stores the derived completion fields.
func (p *Profile) ApplyCompletion() {
	p.CompletionSteps, p.ProfileCompleted, p.CompletionPercentage = ComputeCompletion(p)
}

// UserSkillHit is one user-declared skill row in a search result, carrying
// enough of the parent profile to rank and display it.
type UserSkillHit struct {
	ProfileID  bson.ObjectID `bson:"profile_id" json:"profileId"`
	UserID     string        `bson:"user_id" json:"userId"`
	UserName   string        `bson:"user_name" json:"userName"`
	Avatar     string        `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Location   Location      `bson:"location" json:"location"`
	UserRating float64       `bson:"user_rating" json:"userRating"`
	Sessions   int           `bson:"sessions" json:"sessions"`
	Skill      UserSkill     `bson:"skill" json:"skill"`
	MatchScore float64       `bson:"match_score,omitempty" json:"matchScore,omitempty"`
}

// GetProfileIndexes returns the MongoDB indexes for the profiles collection.
func GetProfileIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "skills.name", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "skills.category", Value: 1}},
		},
		{
			Keys: bson.D{
				{Key: "location.city", Value: 1},
				{Key: "location.country", Value: 1},
			},
		},
		{
			Keys: bson.D{{Key: "stats.rating", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}
}

package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound marks lookups for unknown skills or profiles.
var ErrNotFound = errors.New("not found")

// FieldError carries field-level validation detail for the error envelope.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError rejects malformed input before any store query runs.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// SearchQuery is the parsed and validated search request.
type SearchQuery struct {
	Text      string        `json:"text,omitempty"`
	Category  SkillCategory `json:"category,omitempty"`
	Levels    []SkillLevel  `json:"levels,omitempty"`
	Type      SearchType    `json:"type,omitempty"`
	Location  string        `json:"location,omitempty"`
	MinRating float64       `json:"minRating,omitempty"`
	SortBy    SortMode      `json:"sortBy,omitempty"`
	Page      int           `json:"page"`
	Limit     int           `json:"limit"`
}

// EffectiveSort resolves the sort mode: relevance is the default when free
// text is present, popularity otherwise.
func (q *SearchQuery) EffectiveSort() SortMode {
	if q.SortBy != "" {
		return q.SortBy
	}
	if q.Text != "" {
		return SortByRelevance
	}
	return SortByPopularity
}

// SearchResult is the unified search envelope.
type SearchResult struct {
	Skills          []*SkillSearchHit `json:"skills"`
	UserSkills      []*UserSkillHit   `json:"userSkills"`
	TotalSkills     int64             `json:"totalSkills"`
	TotalUserSkills int64             `json:"totalUserSkills"`
	CurrentPage     int               `json:"currentPage"`
	HasMore         bool              `json:"hasMore"`
}

// PopularSearch is one entry of the popular-searches endpoint.
type PopularSearch struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// CreateProfileRequest carries the fields a client may set on creation.
type CreateProfileRequest struct {
	Email       string      `json:"email"`
	Name        string      `json:"name"`
	Bio         string      `json:"bio"`
	DateOfBirth string      `json:"dateOfBirth"`
	Location    Location    `json:"location"`
	Contact     ContactInfo `json:"contact"`
	Avatar      string      `json:"avatar"`
	Preferences Preferences `json:"preferences"`
}

// UpdateProfileRequest uses pointers so absent fields stay untouched.
type UpdateProfileRequest struct {
	Name        *string      `json:"name,omitempty"`
	Bio         *string      `json:"bio,omitempty"`
	DateOfBirth *string      `json:"dateOfBirth,omitempty"`
	Location    *Location    `json:"location,omitempty"`
	Contact     *ContactInfo `json:"contact,omitempty"`
	Avatar      *string      `json:"avatar,omitempty"`
	Preferences *Preferences `json:"preferences,omitempty"`
}

// UserSkillRequest is the payload for adding or updating a skill declaration.
type UserSkillRequest struct {
	Name              string        `json:"name"`
	Category          SkillCategory `json:"category"`
	Level             SkillLevel    `json:"level"`
	Description       string        `json:"description"`
	Tags              []string      `json:"tags"`
	YearsOfExperience int           `json:"yearsOfExperience"`
	Certifications    []string      `json:"certifications"`
	IsTeaching        bool          `json:"isTeaching"`
	IsLearning        bool          `json:"isLearning"`
}

// CompletionResponse reports the derived completion state of a profile.
type CompletionResponse struct {
	ProfileCompleted     bool            `json:"profileCompleted"`
	CompletionSteps      CompletionSteps `json:"profileCompletionSteps"`
	CompletionPercentage int             `json:"profileCompletionPercentage"`
}

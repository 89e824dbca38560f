package models

import (
	"time"
)

type EventType string

const (
	EventTypeProfileCreated      EventType = "profile.created"
	EventTypeProfileUpdated      EventType = "profile.updated"
	EventTypeProfileDeleted      EventType = "profile.deleted"
	EventTypeSkillAdded          EventType = "profile.skill.added"
	EventTypeSkillUpdated        EventType = "profile.skill.updated"
	EventTypeSkillRemoved        EventType = "profile.skill.removed"
	EventTypeSearchPerformed     EventType = "search.performed"
	EventTypeStatsRecomputeAsked EventType = "skill.stats.recompute"
)

type ProfileEvent struct {
	EventType     EventType      `json:"eventType"`
	ProfileID     string         `json:"profileId"`
	UserID        string         `json:"userId"`
	Timestamp     time.Time      `json:"timestamp"`
	ChangedFields []string       `json:"changedFields,omitempty"`
	SkillName     string         `json:"skillName,omitempty"`
	NewValues     map[string]any `json:"newValues,omitempty"`
}

// SearchEvent feeds the popular-searches counter.
type SearchEvent struct {
	EventType EventType `json:"eventType"`
	Query     string    `json:"query"`
	SortBy    SortMode  `json:"sortBy,omitempty"`
	Results   int64     `json:"results"`
	Timestamp time.Time `json:"timestamp"`
}

// StatsRecomputeEvent asks the background worker to rebuild one skill's stats.
type StatsRecomputeEvent struct {
	EventType EventType `json:"eventType"`
	SkillName string    `json:"skillName"`
	Timestamp time.Time `json:"timestamp"`
}

package models

// SkillLevel represents proficiency levels
type SkillLevel string

const (
	SkillLevelBeginner     SkillLevel = "beginner"
	SkillLevelIntermediate SkillLevel = "intermediate"
	SkillLevelAdvanced     SkillLevel = "advanced"
	SkillLevelExpert       SkillLevel = "expert"
)

func (l SkillLevel) IsValid() bool {
	switch l {
	case SkillLevelBeginner, SkillLevelIntermediate, SkillLevelAdvanced, SkillLevelExpert:
		return true
	}
	return false
}

// SkillCategory is the closed set of catalog categories
type SkillCategory string

const (
	CategoryTechnology SkillCategory = "technology"
	CategoryMusic      SkillCategory = "music"
	CategoryLanguage   SkillCategory = "language"
	CategoryArt        SkillCategory = "art"
	CategorySports     SkillCategory = "sports"
	CategoryCooking    SkillCategory = "cooking"
	CategoryBusiness   SkillCategory = "business"
	CategoryCrafts     SkillCategory = "crafts"
	CategoryAcademic   SkillCategory = "academic"
	CategoryOther      SkillCategory = "other"
)

// AllCategories preserves the order the categories endpoint reports them in.
var AllCategories = []SkillCategory{
	CategoryTechnology,
	CategoryMusic,
	CategoryLanguage,
	CategoryArt,
	CategorySports,
	CategoryCooking,
	CategoryBusiness,
	CategoryCrafts,
	CategoryAcademic,
	CategoryOther,
}

func (c SkillCategory) IsValid() bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

// MeetingType describes how sessions can be held
type MeetingType string

const (
	MeetingOnline   MeetingType = "online"
	MeetingInPerson MeetingType = "in-person"
	MeetingHybrid   MeetingType = "hybrid"
)

func (m MeetingType) IsValid() bool {
	switch m {
	case MeetingOnline, MeetingInPerson, MeetingHybrid:
		return true
	}
	return false
}

// SearchType restricts user-skill results to teachers, learners or both
type SearchType string

const (
	SearchTypeTeaching SearchType = "teaching"
	SearchTypeLearning SearchType = "learning"
	SearchTypeBoth     SearchType = "both"
)

func (t SearchType) IsValid() bool {
	switch t {
	case SearchTypeTeaching, SearchTypeLearning, SearchTypeBoth:
		return true
	}
	return false
}

// SortMode selects the ranking policy for search results
type SortMode string

const (
	SortByRelevance  SortMode = "relevance"
	SortByRating     SortMode = "rating"
	SortByPopularity SortMode = "popularity"
	SortByRecent     SortMode = "recent"
	SortByExperience SortMode = "experience"
)

func (s SortMode) IsValid() bool {
	switch s {
	case SortByRelevance, SortByRating, SortByPopularity, SortByRecent, SortByExperience:
		return true
	}
	return false
}

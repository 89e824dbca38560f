package models

import (
	"testing"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func marshalToDoc(t *testing.T, value any) bson.M {
	t.Helper()

	raw, err := bson.Marshal(value)
	if err != nil {
		t.Fatalf("bson.Marshal failed: %v", err)
	}

	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("bson.Unmarshal failed: %v", err)
	}
	return doc
}

// Updates replace the whole document under $set, so fields a caller cleared
// must still appear in the marshalled form or the old value survives.
func TestSkillMarshalKeepsClearedFields(t *testing.T) {
	skill := &Skill{
		Name:           "Piano",
		Category:       CategoryMusic,
		Subcategory:    "",
		SearchKeywords: nil,
	}

	doc := marshalToDoc(t, skill)

	for _, key := range []string{"subcategory", "search_keywords"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("Marshalled skill is missing %q, clearing it would not persist", key)
		}
	}
}

func TestProfileMarshalKeepsClearedFields(t *testing.T) {
	profile := fullProfile()
	profile.Bio = ""
	profile.Avatar = ""
	profile.DateOfBirth = ""

	doc := marshalToDoc(t, profile)

	for _, key := range []string{"bio", "avatar", "date_of_birth"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("Marshalled profile is missing %q, clearing it would not persist", key)
		}
	}
}

package session

import (
	"encoding/json"

	"github.com/plexusfit/fitplan/internal/model"
)

// Changed reports whether any tracked profile field differs between the two
// snapshots. Tracked fields are the ones both plans are generated from: sex,
// age, height, weight, activity level, goal, preferences, allergies. Edits
// to anything else (name, avatar, flags) never trigger regeneration.
//
// Pure function, no side effects; nil snapshots compare as empty profiles.
func Changed(before, after *model.Profile) bool {
	if before == nil {
		before = &model.Profile{}
	}
	if after == nil {
		after = &model.Profile{}
	}

	if before.Sex != after.Sex ||
		before.Age != after.Age ||
		before.HeightCM != after.HeightCM ||
		before.WeightKG != after.WeightKG ||
		before.ActivityLevel != after.ActivityLevel ||
		before.Goal != after.Goal {
		return true
	}
	if !mapsEqual(before.Preferences, after.Preferences) {
		return true
	}
	if !listsEqual(before.Allergies, after.Allergies) {
		return true
	}
	return false
}

// mapsEqual compares by serialized form; nil and empty are the same thing.
func mapsEqual(a, b model.JSONMap) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return string(ja) == string(jb)
}

func listsEqual(a, b model.StringList) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

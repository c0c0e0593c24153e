// Package plan owns the canonical payload schemas of generated artifacts and
// the normalization of the looser shapes the generation service may return.
package plan

import (
	"encoding/json"

	apperrors "github.com/plexusfit/fitplan/internal/errors"
	"github.com/plexusfit/fitplan/internal/model"
)

// Exercise is one entry of a training day.
type Exercise struct {
	Name     string `json:"name"`
	SetsReps string `json:"setsReps"`
	Note     string `json:"note,omitempty"`
}

// TrainingDay is one day of a training plan payload.
type TrainingDay struct {
	Day       string     `json:"day"`
	Exercises []Exercise `json:"exercises"`
	ImageRef  string     `json:"imageRef,omitempty"`
}

// DietDay is one day of a diet plan payload.
type DietDay struct {
	Day      string   `json:"day"`
	Calories int      `json:"calories"`
	Meals    []string `json:"meals"`
	ImageRef string   `json:"imageRef,omitempty"`
}

// wrapped is the legacy { name, days: [...] } payload variant.
type wrapped struct {
	Name string          `json:"name"`
	Days json.RawMessage `json:"days"`
}

// Normalize turns raw generated JSON into the canonical day sequence for
// kind. Two input shapes are accepted: a bare array of days, and the legacy
// wrapper object with a days field. Anything else, and an empty day
// sequence, is ErrMalformedResponse.
func Normalize(kind model.PlanKind, raw []byte) (json.RawMessage, error) {
	days := daysPayload(raw)
	if days == nil {
		return nil, apperrors.ErrMalformedResponse
	}

	switch kind {
	case model.PlanTraining:
		var parsed []TrainingDay
		if err := json.Unmarshal(days, &parsed); err != nil || len(parsed) == 0 {
			return nil, apperrors.ErrMalformedResponse
		}
		return json.Marshal(parsed)
	case model.PlanDiet:
		var parsed []DietDay
		if err := json.Unmarshal(days, &parsed); err != nil || len(parsed) == 0 {
			return nil, apperrors.ErrMalformedResponse
		}
		return json.Marshal(parsed)
	default:
		return nil, apperrors.ErrMalformedResponse
	}
}

// daysPayload probes the two accepted shapes and returns the day array,
// or nil when neither matches.
func daysPayload(raw []byte) json.RawMessage {
	var asArray []json.RawMessage
	if err := json.Unmarshal(raw, &asArray); err == nil {
		return raw
	}

	var w wrapped
	if err := json.Unmarshal(raw, &w); err == nil && len(w.Days) > 0 {
		if err := json.Unmarshal(w.Days, &asArray); err == nil {
			return w.Days
		}
	}
	return nil
}

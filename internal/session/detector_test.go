package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/plexusfit/fitplan/internal/model"
)

func baseProfile() *model.Profile {
	return &model.Profile{
		Sex:           "male",
		Age:           30,
		HeightCM:      178,
		WeightKG:      70,
		ActivityLevel: "moderate",
		Goal:          "perder",
		Preferences:   model.JSONMap{"style": "gym"},
		Allergies:     model.StringList{"nuts"},
	}
}

func TestChanged(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *model.Profile)
		changed bool
	}{
		{
			name:    "identical profiles",
			mutate:  func(p *model.Profile) {},
			changed: false,
		},
		{
			name:    "weight changed",
			mutate:  func(p *model.Profile) { p.WeightKG = 71 },
			changed: true,
		},
		{
			name:    "goal changed",
			mutate:  func(p *model.Profile) { p.Goal = "ganar" },
			changed: true,
		},
		{
			name:    "age changed",
			mutate:  func(p *model.Profile) { p.Age = 31 },
			changed: true,
		},
		{
			name:    "allergy added",
			mutate:  func(p *model.Profile) { p.Allergies = append(p.Allergies, "lactose") },
			changed: true,
		},
		{
			name:    "preference value changed",
			mutate:  func(p *model.Profile) { p.Preferences = model.JSONMap{"style": "home"} },
			changed: true,
		},
		{
			name: "only untracked fields changed",
			mutate: func(p *model.Profile) {
				p.Name = "Someone Else"
				p.AvatarURL = "https://cdn/avatar.png"
				p.IsAdmin = true
			},
			changed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := baseProfile()
			after := baseProfile()
			tt.mutate(after)
			assert.Equal(t, tt.changed, Changed(before, after))
		})
	}
}

func TestChanged_EmptyEquivalence(t *testing.T) {
	// Absent and empty structured fields are the same thing.
	before := baseProfile()
	before.Preferences = nil
	before.Allergies = nil

	after := baseProfile()
	after.Preferences = model.JSONMap{}
	after.Allergies = model.StringList{}

	assert.False(t, Changed(before, after))
}

func TestChanged_NilSnapshots(t *testing.T) {
	assert.False(t, Changed(nil, nil))
	assert.False(t, Changed(nil, &model.Profile{}))
	assert.True(t, Changed(nil, baseProfile()))
}

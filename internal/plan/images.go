package plan

import (
	"encoding/json"
	"math/rand"

	"github.com/plexusfit/fitplan/internal/model"
)

// Static pools of illustrative day images served from object storage.
// The diet pool has no assets yet; AttachImages degrades to a no-op for it.
var trainingDayImages = []string{
	"https://storage.plexusfit.app/training/training-1.jpg",
	"https://storage.plexusfit.app/training/training-2.jpg",
	"https://storage.plexusfit.app/training/training-3.jpg",
	"https://storage.plexusfit.app/training/training-4.jpg",
	"https://storage.plexusfit.app/training/training-5.jpg",
	"https://storage.plexusfit.app/training/training-6.jpg",
	"https://storage.plexusfit.app/training/training-7.jpg",
	"https://storage.plexusfit.app/training/training-8.jpg",
	"https://storage.plexusfit.app/training/training-9.jpg",
	"https://storage.plexusfit.app/training/training-10.jpg",
	"https://storage.plexusfit.app/training/training-11.jpg",
	"https://storage.plexusfit.app/training/training-12.jpg",
}

var dietDayImages = []string{}

// AttachImages decorates each day of a canonical payload with a random image
// from the kind's pool, keeping any imageRef the day already carries.
// Attaching images is cosmetic: on any problem the payload is returned as-is.
func AttachImages(kind model.PlanKind, payload json.RawMessage) json.RawMessage {
	pool := trainingDayImages
	if kind == model.PlanDiet {
		pool = dietDayImages
	}
	if len(pool) == 0 {
		return payload
	}

	var days []map[string]interface{}
	if err := json.Unmarshal(payload, &days); err != nil {
		return payload
	}
	for _, day := range days {
		if ref, ok := day["imageRef"].(string); ok && ref != "" {
			continue
		}
		day["imageRef"] = pool[rand.Intn(len(pool))]
	}

	decorated, err := json.Marshal(days)
	if err != nil {
		return payload
	}
	return decorated
}

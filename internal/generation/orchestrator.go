package generation

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/plexusfit/fitplan/internal/cache"
	apperrors "github.com/plexusfit/fitplan/internal/errors"
	"github.com/plexusfit/fitplan/internal/model"
	"github.com/plexusfit/fitplan/internal/plan"
	"github.com/plexusfit/fitplan/internal/repository"
)

// Orchestrator turns a profile into a persisted plan version: generate,
// extract, normalize, decorate, insert. Concurrent Regenerate calls are
// independent; a failure in one kind never affects the other.
type Orchestrator struct {
	gen     Generator
	plans   repository.PlanRepository
	cache   *cache.Client
	log     *zap.Logger
	timeout time.Duration
}

// NewOrchestrator creates an orchestrator. timeout bounds each generation
// call; zero means no bound beyond the caller's context.
func NewOrchestrator(gen Generator, plans repository.PlanRepository, cacheClient *cache.Client, log *zap.Logger, timeout time.Duration) *Orchestrator {
	return &Orchestrator{
		gen:     gen,
		plans:   plans,
		cache:   cacheClient,
		log:     log,
		timeout: timeout,
	}
}

// Regenerate produces and stores a new plan version for (profile, kind).
func (o *Orchestrator) Regenerate(ctx context.Context, kind model.PlanKind, profile *model.Profile) (*model.Plan, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	text, err := o.gen.Generate(ctx, kind, profile)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.ErrGenerationTimeout
		}
		o.log.Warn("generation service call failed",
			zap.String("kind", string(kind)),
			zap.Error(err))
		return nil, apperrors.ErrServiceUnavailable
	}

	raw, err := plan.ExtractJSON(text)
	if err != nil {
		return nil, err
	}
	payload, err := plan.Normalize(kind, raw)
	if err != nil {
		return nil, err
	}
	payload = plan.AttachImages(kind, payload)

	stored := &model.Plan{
		OwnerID:   profile.ID,
		Kind:      kind,
		WeekStart: weekStart(time.Now()),
		Payload:   payload,
	}
	if err := o.plans.Insert(ctx, stored); err != nil {
		o.log.Error("plan insert failed",
			zap.String("kind", string(kind)),
			zap.String("owner", profile.ID.String()),
			zap.Error(err))
		return nil, apperrors.ErrStoreWriteFailed
	}

	// The latest-plan cache entry is now stale.
	_ = o.cache.Delete(ctx, cache.LatestPlanKey(profile.ID, string(kind)))

	o.log.Info("plan regenerated",
		zap.String("kind", string(kind)),
		zap.String("owner", profile.ID.String()),
		zap.String("plan_id", stored.ID.String()))
	return stored, nil
}

// weekStart returns the Monday of t's week, the informational week anchor.
func weekStart(t time.Time) time.Time {
	t = t.Truncate(24 * time.Hour)
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return t.AddDate(0, 0, 1-weekday)
}

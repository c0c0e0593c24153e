package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/plexusfit/fitplan/internal/cache"
	"github.com/plexusfit/fitplan/internal/generation"
	"github.com/plexusfit/fitplan/internal/model"
	"github.com/plexusfit/fitplan/internal/repository"
)

const latestPlanCacheTTL = 5 * time.Minute

// PlanService exposes the versioned plan store plus explicit user-initiated
// regeneration. All operations are scoped to the owner.
type PlanService interface {
	// Latest returns the current plan for (owner, kind), nil if none exists.
	Latest(ctx context.Context, owner uuid.UUID, kind model.PlanKind) (*model.Plan, error)
	// History returns all versions for (owner, kind), most recent first.
	History(ctx context.Context, owner uuid.UUID, kind model.PlanKind) ([]model.Plan, error)
	// Delete removes one version owned by the caller.
	Delete(ctx context.Context, owner, planID uuid.UUID) error
	// CreateNew generates and stores a fresh version. Unlike the
	// change-driven background path, errors propagate to the caller.
	CreateNew(ctx context.Context, profile *model.Profile, kind model.PlanKind) (*model.Plan, error)
}

type planService struct {
	repo  repository.PlanRepository
	orch  *generation.Orchestrator
	cache *cache.Client
}

// NewPlanService creates a new plan service.
func NewPlanService(repo repository.PlanRepository, orch *generation.Orchestrator, cacheClient *cache.Client) PlanService {
	return &planService{
		repo:  repo,
		orch:  orch,
		cache: cacheClient,
	}
}

// Latest returns the newest version, going through the cache first.
func (s *planService) Latest(ctx context.Context, owner uuid.UUID, kind model.PlanKind) (*model.Plan, error) {
	key := cache.LatestPlanKey(owner, string(kind))
	if data, _ := s.cache.Get(ctx, key); data != nil {
		var cached model.Plan
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	plan, err := s.repo.Latest(ctx, owner, kind)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, nil
	}

	if payload, err := json.Marshal(plan); err == nil {
		_ = s.cache.Set(ctx, key, payload, latestPlanCacheTTL)
	}
	return plan, nil
}

// History returns all versions, newest first.
func (s *planService) History(ctx context.Context, owner uuid.UUID, kind model.PlanKind) ([]model.Plan, error) {
	return s.repo.History(ctx, owner, kind)
}

// Delete removes one owned version and drops the cached latest entry, which
// may have pointed at the deleted row.
func (s *planService) Delete(ctx context.Context, owner, planID uuid.UUID) error {
	if err := s.repo.Delete(ctx, owner, planID); err != nil {
		return err
	}
	for _, kind := range []model.PlanKind{model.PlanTraining, model.PlanDiet} {
		_ = s.cache.Delete(ctx, cache.LatestPlanKey(owner, string(kind)))
	}
	return nil
}

// CreateNew runs a synchronous regeneration for the profile.
func (s *planService) CreateNew(ctx context.Context, profile *model.Profile, kind model.PlanKind) (*model.Plan, error) {
	return s.orch.Regenerate(ctx, kind, profile)
}

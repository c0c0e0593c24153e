// Package session owns the authenticated state of the application: the live
// session, the loaded profile, and everything derived from the two. It is
// the only writer of that state; consumers read immutable snapshots.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "github.com/plexusfit/fitplan/internal/errors"
	"github.com/plexusfit/fitplan/internal/identity"
	"github.com/plexusfit/fitplan/internal/model"
	"github.com/plexusfit/fitplan/internal/repository"
)

// Regenerator is the slice of the generation orchestrator the core needs.
type Regenerator interface {
	Regenerate(ctx context.Context, kind model.PlanKind, profile *model.Profile) (*model.Plan, error)
}

// State is the read-only snapshot handed to consumers. Loading=true means
// "unknown", never "unauthenticated"; guards must not reject on it.
type State struct {
	Session *model.Session
	Profile *model.Profile
	Loading bool
	IsAdmin bool
}

// Ready reports whether both session and profile are conclusively present.
func (s State) Ready() bool {
	return !s.Loading && s.Session != nil && s.Profile != nil
}

// ProfileUpdate is a partial profile edit; nil fields are left untouched.
type ProfileUpdate struct {
	Name          *string          `json:"name,omitempty"`
	AvatarURL     *string          `json:"avatar_url,omitempty"`
	Sex           *string          `json:"sex,omitempty"`
	Age           *int             `json:"age,omitempty"`
	HeightCM      *float64         `json:"height_cm,omitempty"`
	WeightKG      *float64         `json:"weight_kg,omitempty"`
	ActivityLevel *string          `json:"activity_level,omitempty"`
	Goal          *string          `json:"goal,omitempty"`
	Preferences   model.JSONMap    `json:"preferences,omitempty"`
	Allergies     model.StringList `json:"allergies,omitempty"`
}

// Core is the identity & profile session core. Every session/profile load is
// keyed by a monotonic sequence number; a load may only apply its result
// while its number is still the newest, so an early load that resolves late
// can never overwrite the state of a later one.
type Core struct {
	provider        identity.Provider
	profiles        repository.ProfileRepository
	regen           Regenerator
	log             *zap.Logger
	adminEmail      string
	providerTimeout time.Duration

	mu           sync.Mutex
	session      *model.Session
	profile      *model.Profile
	loading      bool
	seq          uint64
	deactivating bool
	unsubscribe  func()
	draft        *ProfileUpdate

	loadWG  sync.WaitGroup
	regenWG sync.WaitGroup
	onRegen func(kind model.PlanKind, plan *model.Plan, err error) // test seam
}

// NewCore constructs the core. Call Initialize and Subscribe before serving.
// providerTimeout bounds every call into the identity provider; zero means
// no bound beyond the caller's context.
func NewCore(provider identity.Provider, profiles repository.ProfileRepository, regen Regenerator, adminEmail string, providerTimeout time.Duration, log *zap.Logger) *Core {
	return &Core{
		provider:        provider,
		profiles:        profiles,
		regen:           regen,
		log:             log,
		adminEmail:      adminEmail,
		providerTimeout: providerTimeout,
	}
}

// providerCtx derives the bounded context for identity-provider calls.
func (c *Core) providerCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.providerTimeout > 0 {
		return context.WithTimeout(ctx, c.providerTimeout)
	}
	return ctx, func() {}
}

// Initialize restores any persisted session from the provider and loads the
// matching profile. loading transitions to false exactly once, whether or
// not a session exists. If a live event supersedes this transition, the
// superseding load owns the flag instead. A provider that never answers is
// cut off by the provider timeout, so loading cannot stay true forever.
func (c *Core) Initialize(ctx context.Context) {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.loading = true
	c.mu.Unlock()

	pctx, cancel := c.providerCtx(ctx)
	sess, err := c.provider.GetSession(pctx)
	cancel()
	if err != nil || sess == nil {
		if err != nil && !errors.Is(err, identity.ErrNoActiveSession) {
			c.log.Warn("session restore failed", zap.Error(err))
		}
		c.applyTransition(seq, nil, nil)
		return
	}

	c.mu.Lock()
	if seq == c.seq {
		c.session = sess
	}
	c.mu.Unlock()
	c.loadProfile(ctx, seq, sess)
}

// Subscribe attaches the core to the provider's session-change stream.
// Safe to call more than once; only the first registration sticks.
func (c *Core) Subscribe() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unsubscribe != nil {
		return nil
	}
	unsub, err := c.provider.OnSessionChange(c.handleEvent)
	if err != nil {
		return err
	}
	c.unsubscribe = unsub
	return nil
}

// Close tears down the session-change subscription.
func (c *Core) Close() {
	c.mu.Lock()
	unsub := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

// SignIn authenticates and loads the profile before returning. The provider
// session is revoked before EmailNotConfirmed or AccountInactive surface, so
// no partially-authenticated state is ever observable.
func (c *Core) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	pctx, cancel := c.providerCtx(ctx)
	sess, err := c.provider.SignInWithPassword(pctx, email, password)
	cancel()
	if err != nil {
		if errors.Is(err, identity.ErrBadCredentials) {
			return nil, apperrors.ErrInvalidCredentials
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.ErrProviderTimeout
		}
		return nil, err
	}

	if !sess.EmailConfirmed {
		_ = c.provider.SignOut(ctx)
		return nil, apperrors.ErrEmailNotConfirmed
	}

	if profile, err := c.profiles.FindByID(ctx, sess.UserID); err == nil && profile != nil && !profile.Active {
		_ = c.provider.SignOut(ctx)
		return nil, apperrors.ErrAccountInactive
	}

	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.session = sess
	c.loading = true
	c.deactivating = false
	c.mu.Unlock()

	c.loadProfile(ctx, seq, sess)
	return sess, nil
}

// SignUp registers a new identity. It never leaves a session active and
// fails with AlreadyRegistered when a profile already claims the email.
func (c *Core) SignUp(ctx context.Context, email, password string) error {
	if existing, err := c.profiles.FindByEmail(ctx, email); err == nil && existing != nil {
		return apperrors.ErrAlreadyRegistered
	}

	if err := c.provider.SignUp(ctx, email, password); err != nil {
		if errors.Is(err, identity.ErrUserExists) {
			return apperrors.ErrAlreadyRegistered
		}
		return err
	}

	_ = c.provider.SignOut(ctx)
	return nil
}

// SignOut clears local state first, then best-effort revokes the provider
// session. Idempotent; never fails visibly.
func (c *Core) SignOut(ctx context.Context) {
	c.mu.Lock()
	c.seq++ // any in-flight load is now stale
	c.session = nil
	c.profile = nil
	c.loading = false
	c.mu.Unlock()

	if err := c.provider.SignOut(ctx); err != nil {
		c.log.Warn("provider sign-out failed", zap.Error(err))
	}
}

// UpdateProfile applies a partial edit and persists it. When a tracked field
// changed, it kicks off regeneration of both plan kinds in the background.
// The call returns as soon as the profile write is durable; regeneration
// outcomes are only logged, never surfaced here.
func (c *Core) UpdateProfile(ctx context.Context, upd ProfileUpdate) (*model.Profile, error) {
	c.mu.Lock()
	sess := c.session
	before := c.profile.Clone()
	c.mu.Unlock()

	if sess == nil {
		return nil, apperrors.ErrNoSession
	}

	merged := before.Clone()
	if merged == nil {
		merged = &model.Profile{Active: true}
	}
	applyUpdate(merged, upd)
	merged.ID = sess.UserID
	merged.Email = sess.Email // mirrors the identity provider

	if err := c.profiles.Upsert(ctx, merged); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrProfileWriteFailed, err)
	}

	c.mu.Lock()
	if c.session != nil && c.session.UserID == sess.UserID {
		c.profile = merged.Clone()
	}
	c.mu.Unlock()

	if Changed(before, merged) {
		snapshot := merged.Clone()
		for _, kind := range []model.PlanKind{model.PlanTraining, model.PlanDiet} {
			kind := kind
			c.regenWG.Add(1)
			go func() {
				defer c.regenWG.Done()
				plan, err := c.regen.Regenerate(context.Background(), kind, snapshot)
				if err != nil {
					c.log.Warn("background regeneration failed",
						zap.String("kind", string(kind)),
						zap.Error(err))
				}
				c.mu.Lock()
				hook := c.onRegen
				c.mu.Unlock()
				if hook != nil {
					hook(kind, plan, err)
				}
			}()
		}
	}

	return merged.Clone(), nil
}

// StashDraft stores a profile edit to apply after the next successful
// authenticated load, for edits captured before sign-in completed.
func (c *Core) StashDraft(upd ProfileUpdate) {
	c.mu.Lock()
	c.draft = &upd
	c.mu.Unlock()
}

// Snapshot returns the current derived state. IsAdmin is recomputed on
// every call from the session email and the loaded profile flag.
func (c *Core) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	var sess *model.Session
	if c.session != nil {
		s := *c.session
		sess = &s
	}
	isAdmin := c.session != nil &&
		((c.profile != nil && c.profile.IsAdmin) || c.session.Email == c.adminEmail)

	return State{
		Session: sess,
		Profile: c.profile.Clone(),
		Loading: c.loading,
		IsAdmin: isAdmin,
	}
}

// handleEvent is the single long-lived session-change observer. Every event
// starts a new transition; a session-bearing event starts a superseding
// profile load.
func (c *Core) handleEvent(evt identity.Event) {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	sess := evt.Session
	if sess == nil {
		c.session = nil
		c.profile = nil
		c.loading = false
		c.mu.Unlock()
		return
	}
	c.session = sess
	c.loading = true
	c.mu.Unlock()

	c.loadWG.Add(1)
	go func() {
		defer c.loadWG.Done()
		c.loadProfile(context.Background(), seq, sess)
	}()
}

// loadProfile fetches (or lazily creates) the profile and applies it under
// the transition's sequence number.
func (c *Core) loadProfile(ctx context.Context, seq uint64, sess *model.Session) {
	profile, err := c.profiles.FindByID(ctx, sess.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		profile = &model.Profile{ID: sess.UserID, Email: sess.Email, Active: true}
		if upErr := c.profiles.Upsert(ctx, profile); upErr != nil {
			err = upErr
			profile = nil
		} else {
			err = nil
		}
	}
	if err != nil {
		c.log.Warn("profile load failed",
			zap.String("user", sess.UserID.String()),
			zap.Error(err))
		profile = nil
	}
	c.applyTransition(seq, sess, profile)
}

// applyTransition installs a load result, unless a newer transition has
// started since; late results of superseded loads are discarded, not
// applied. It also runs the deactivation watcher: a loaded profile with
// Active=false forces exactly one sign-out.
func (c *Core) applyTransition(seq uint64, sess *model.Session, profile *model.Profile) {
	c.mu.Lock()
	if seq < c.seq {
		c.mu.Unlock()
		c.log.Debug("superseded load discarded", zap.Uint64("seq", seq))
		return
	}
	c.session = sess
	c.profile = profile
	c.loading = false

	needSignOut := false
	if profile != nil && !profile.Active {
		if !c.deactivating {
			c.deactivating = true
			needSignOut = true
		}
	} else if profile != nil {
		c.deactivating = false
	}

	var draft *ProfileUpdate
	if sess != nil && profile != nil && profile.Active {
		draft = c.draft
		c.draft = nil
	}
	c.mu.Unlock()

	if needSignOut {
		c.log.Warn("account deactivated, forcing sign-out",
			zap.String("user", profile.ID.String()))
		c.SignOut(context.Background())
		return
	}

	if draft != nil {
		if _, err := c.UpdateProfile(context.Background(), *draft); err != nil {
			c.log.Warn("stashed profile draft not applied", zap.Error(err))
		}
	}
}

func applyUpdate(p *model.Profile, upd ProfileUpdate) {
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.AvatarURL != nil {
		p.AvatarURL = *upd.AvatarURL
	}
	if upd.Sex != nil {
		p.Sex = *upd.Sex
	}
	if upd.Age != nil {
		p.Age = *upd.Age
	}
	if upd.HeightCM != nil {
		p.HeightCM = *upd.HeightCM
	}
	if upd.WeightKG != nil {
		p.WeightKG = *upd.WeightKG
	}
	if upd.ActivityLevel != nil {
		p.ActivityLevel = *upd.ActivityLevel
	}
	if upd.Goal != nil {
		p.Goal = *upd.Goal
	}
	if upd.Preferences != nil {
		p.Preferences = upd.Preferences
	}
	if upd.Allergies != nil {
		p.Allergies = upd.Allergies
	}
}

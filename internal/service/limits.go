package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-quest/internal/domain"
	"github.com/phrazzld/scry-quest/internal/domain/ratelimit"
	"github.com/phrazzld/scry-quest/internal/store"
)

// Unlimited is returned by Remaining for tiers that bypass daily limits.
const Unlimited = -1

func (e *Engine) capacity(feature domain.Feature) (int, error) {
	if !feature.IsValid() {
		return 0, fmt.Errorf("%w: %q", domain.ErrUnknownFeature, feature)
	}
	return e.capacities[feature], nil
}

// MayConsume reports whether the learner has a unit of feature left today.
// Paid tiers always may.
func (e *Engine) MayConsume(ctx context.Context, userID uuid.UUID, feature domain.Feature, tier domain.Tier) (bool, error) {
	capacity, err := e.capacity(feature)
	if err != nil {
		return false, NewEngineError("may_consume", "unknown feature", err)
	}
	if tier.Unlimited() {
		return true, nil
	}
	snap, err := e.repo.Counter(ctx, userID, feature)
	if err != nil {
		return false, NewEngineError("may_consume", "failed to load counter", err)
	}
	return ratelimit.MayConsume(snap.Value, capacity, e.calendar.Today()), nil
}

// Consume records one unit of feature used today. It does not check the
// limit; callers ask MayConsume first. Paid tiers are not counted.
func (e *Engine) Consume(ctx context.Context, userID uuid.UUID, feature domain.Feature, tier domain.Tier) error {
	if _, err := e.capacity(feature); err != nil {
		return NewEngineError("consume", "unknown feature", err)
	}
	if tier.Unlimited() {
		return nil
	}
	snap, err := e.repo.Counter(ctx, userID, feature)
	if err != nil {
		return NewEngineError("consume", "failed to load counter", err)
	}

	next := ratelimit.Consume(snap.Value, e.calendar.Today())
	entry, err := store.CounterEntry(feature, next)
	if err != nil {
		return NewEngineError("consume", "failed to encode counter", err)
	}
	if err := e.repo.Save(ctx, userID, entry); err != nil {
		return NewEngineError("consume", "failed to save counter", err)
	}
	e.log(ctx, userID).DebugContext(ctx, "daily unit consumed",
		slog.String("feature", string(feature)),
		slog.Int("count_used", next.CountUsed))
	return nil
}

// Remaining returns the units of feature left today, or Unlimited.
func (e *Engine) Remaining(ctx context.Context, userID uuid.UUID, feature domain.Feature, tier domain.Tier) (int, error) {
	capacity, err := e.capacity(feature)
	if err != nil {
		return 0, NewEngineError("remaining", "unknown feature", err)
	}
	if tier.Unlimited() {
		return Unlimited, nil
	}
	snap, err := e.repo.Counter(ctx, userID, feature)
	if err != nil {
		return 0, NewEngineError("remaining", "failed to load counter", err)
	}
	return ratelimit.Remaining(snap.Value, capacity, e.calendar.Today()), nil
}

// TryConsume checks and consumes one unit of feature as a single step,
// using the store's compare-and-swap so concurrent writers cannot both take
// the last unit. It returns the units left afterwards, ErrLimitReached when
// none were left, or store.ErrConflict when every retry lost a race.
func (e *Engine) TryConsume(ctx context.Context, userID uuid.UUID, feature domain.Feature, tier domain.Tier) (int, error) {
	capacity, err := e.capacity(feature)
	if err != nil {
		return 0, NewEngineError("try_consume", "unknown feature", err)
	}
	if tier.Unlimited() {
		return Unlimited, nil
	}

	log := e.log(ctx, userID)
	for attempt := 1; attempt <= e.retries; attempt++ {
		snap, err := e.repo.Counter(ctx, userID, feature)
		if err != nil {
			return 0, NewEngineError("try_consume", "failed to load counter", err)
		}

		today := e.calendar.Today()
		if !ratelimit.MayConsume(snap.Value, capacity, today) {
			return 0, NewEngineError("try_consume", string(feature), ErrLimitReached)
		}

		next := ratelimit.Consume(snap.Value, today)
		swapped, err := e.repo.SwapCounter(ctx, userID, feature, snap.Raw, next)
		if err != nil {
			return 0, NewEngineError("try_consume", "failed to swap counter", err)
		}
		if swapped {
			return ratelimit.Remaining(next, capacity, today), nil
		}
		log.DebugContext(ctx, "counter changed concurrently, retrying",
			slog.String("feature", string(feature)),
			slog.Int("attempt", attempt))
	}

	log.WarnContext(ctx, "gave up consuming after repeated conflicts",
		slog.String("feature", string(feature)),
		slog.Int("attempts", e.retries))
	return 0, NewEngineError("try_consume", "too many concurrent updates", store.ErrConflict)
}

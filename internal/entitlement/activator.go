package entitlement

import (
	"context"
	"fmt"
	"time"

	"github.com/VladKvetkin/paywebhook/internal/entities"
	"go.uber.org/zap"
)

type UserStore interface {
	UpdateUserPremium(context.Context, string, entities.Premium) error
}

type Activator struct {
	now func() time.Time
}

func NewActivator(now func() time.Time) *Activator {
	if now == nil {
		now = time.Now
	}

	return &Activator{now: now}
}

// Grant computes the premium window for plan starting now.
func (a *Activator) Grant(plan entities.PlanType) (entities.Premium, error) {
	duration, err := plan.Duration()
	if err != nil {
		return entities.Premium{}, fmt.Errorf("%w: %q", err, plan)
	}

	start := a.now().UTC()

	return entities.Premium{
		Plan:      plan,
		StartDate: start,
		EndDate:   start.Add(duration),
	}, nil
}

// Activate overwrites the user's premium fields with a fresh window.
func (a *Activator) Activate(ctx context.Context, store UserStore, userID string, plan entities.PlanType) (entities.Premium, error) {
	premium, err := a.Grant(plan)
	if err != nil {
		return entities.Premium{}, err
	}

	if err := store.UpdateUserPremium(ctx, userID, premium); err != nil {
		return entities.Premium{}, fmt.Errorf("error update user premium: %w", err)
	}

	zap.L().Info(
		"premium activated",
		zap.String("user_id", userID),
		zap.String("plan", string(plan)),
		zap.Time("premium_end_date", premium.EndDate),
	)

	return premium, nil
}

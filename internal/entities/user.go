package entities

import (
	"time"
)

type User struct {
	ID               string     `db:"id"`
	IsPremium        bool       `db:"is_premium"`
	PremiumPlan      *PlanType  `db:"premium_plan"`
	PremiumStartDate *time.Time `db:"premium_start_date"`
	PremiumEndDate   *time.Time `db:"premium_end_date"`
}

// Premium is the entitlement window written to a user record.
type Premium struct {
	Plan      PlanType
	StartDate time.Time
	EndDate   time.Time
}

func (u User) PremiumActive(now time.Time) bool {
	return u.IsPremium && u.PremiumEndDate != nil && now.Before(*u.PremiumEndDate)
}

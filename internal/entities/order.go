package entities

import (
	"errors"
	"time"
)

const (
	OrderStatusPending = "pending"
	OrderStatusSuccess = "success"
)

type PlanType string

const (
	PlanMonthly PlanType = "monthly"
	PlanYearly  PlanType = "yearly"
)

var ErrUnknownPlan = errors.New("unknown plan type")

// Duration is the length of one premium period bought with the plan.
func (p PlanType) Duration() (time.Duration, error) {
	switch p {
	case PlanMonthly:
		return 30 * 24 * time.Hour, nil
	case PlanYearly:
		return 365 * 24 * time.Hour, nil
	}

	return 0, ErrUnknownPlan
}

type Order struct {
	Code        string     `db:"order_code"`
	UserID      string     `db:"user_id"`
	PlanType    PlanType   `db:"plan_type"`
	Status      string     `db:"status"`
	PaymentData *string    `db:"payment_data"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   *time.Time `db:"updated_at"`
}

func (o Order) IsPaid() bool {
	return o.Status == OrderStatusSuccess
}

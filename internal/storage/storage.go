package storage

import (
	"context"
	"errors"
	"time"

	"github.com/VladKvetkin/paywebhook/internal/entities"
)

var (
	ErrConflict         = errors.New("conflict")
	ErrNoRows           = errors.New("no rows")
	ErrAlreadyProcessed = errors.New("order already processed")
	ErrStoreUnavailable = errors.New("store unavailable")
)

type Storage interface {
	GetOrderByCode(context.Context, string) (entities.Order, error)
	GetUser(context.Context, string) (entities.User, error)

	// MarkOrderPaid moves the order to success only if it is not there yet.
	// It returns ErrAlreadyProcessed when another callback won the race.
	MarkOrderPaid(ctx context.Context, code string, payload []byte, now time.Time) (entities.Order, error)
	UpdateUserPremium(context.Context, string, entities.Premium) error

	CreateUser(context.Context, string) error
	CreateOrder(context.Context, entities.Order) error

	// InTx runs fn against a Storage bound to a single transaction.
	InTx(ctx context.Context, fn func(Storage) error) error
}

package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/VladKvetkin/paywebhook/internal/entities"
	"github.com/jackc/pgerrcode"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var sqlitePragmas = url.Values{
	"_pragma": []string{
		"busy_timeout(30000)",
		"journal_mode(WAL)",
		"foreign_keys(1)",
	},
}

func sqliteDSN(uri string) string {
	separator := "?"
	if strings.Contains(uri, "?") {
		separator = "&"
	}

	return uri + separator + sqlitePragmas.Encode()
}

// querier is satisfied by both *sqlx.DB and *sqlx.Tx.
type querier interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

type SQLStorage struct {
	db     *sqlx.DB
	q      querier
	driver string
	inTx   bool
}

// Open connects to the database behind uri and prepares the schema.
func Open(driverName string, uri string) (*sqlx.DB, error) {
	switch driverName {
	case DriverPostgres:
		return sqlx.Connect(driverName, uri)
	case DriverSQLite:
		db, err := sqlx.Connect(driverName, sqliteDSN(uri))
		if err != nil {
			return nil, err
		}

		// Writers serialize on the single connection.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)

		return db, nil
	}

	return nil, fmt.Errorf("unsupported database driver %q", driverName)
}

func NewSQLStorage(db *sqlx.DB) (Storage, error) {
	storage := &SQLStorage{db: db, q: db, driver: db.DriverName()}

	if _, ok := migrations[storage.driver]; !ok {
		return nil, fmt.Errorf("unsupported database driver %q", storage.driver)
	}

	if err := storage.runMigrations(context.Background()); err != nil {
		return nil, err
	}

	return storage, nil
}

func (s *SQLStorage) InTx(ctx context.Context, fn func(Storage) error) error {
	if s.inTx {
		return fn(s)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return classify(err)
	}

	defer tx.Rollback()

	if err := fn(&SQLStorage{db: s.db, q: tx, driver: s.driver, inTx: true}); err != nil {
		return err
	}

	return classify(tx.Commit())
}

func (s *SQLStorage) GetOrderByCode(ctx context.Context, code string) (entities.Order, error) {
	var order entities.Order

	err := s.q.GetContext(
		ctx,
		&order,
		s.rebind("SELECT order_code, user_id, plan_type, status, payment_data, created_at, updated_at FROM orders WHERE order_code = ?;"),
		code,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return order, ErrNoRows
		}

		return order, classify(err)
	}

	return order, nil
}

func (s *SQLStorage) MarkOrderPaid(ctx context.Context, code string, payload []byte, now time.Time) (entities.Order, error) {
	result, err := s.q.ExecContext(
		ctx,
		s.rebind(`UPDATE orders SET status = ?, payment_data = ?, updated_at = ? WHERE order_code = ? AND status <> ?;`),
		entities.OrderStatusSuccess, string(payload), now.UTC(), code, entities.OrderStatusSuccess,
	)
	if err != nil {
		return entities.Order{}, classify(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return entities.Order{}, classify(err)
	}

	if affected == 0 {
		if _, err := s.GetOrderByCode(ctx, code); err != nil {
			return entities.Order{}, err
		}

		return entities.Order{}, ErrAlreadyProcessed
	}

	return s.GetOrderByCode(ctx, code)
}

func (s *SQLStorage) GetUser(ctx context.Context, userID string) (entities.User, error) {
	var user entities.User

	err := s.q.GetContext(
		ctx,
		&user,
		s.rebind("SELECT id, is_premium, premium_plan, premium_start_date, premium_end_date FROM users WHERE id = ?;"),
		userID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user, ErrNoRows
		}

		return user, classify(err)
	}

	return user, nil
}

func (s *SQLStorage) UpdateUserPremium(ctx context.Context, userID string, premium entities.Premium) error {
	result, err := s.q.ExecContext(
		ctx,
		s.rebind(`UPDATE users SET is_premium = ?, premium_plan = ?, premium_start_date = ?, premium_end_date = ? WHERE id = ?;`),
		true, string(premium.Plan), premium.StartDate.UTC(), premium.EndDate.UTC(), userID,
	)
	if err != nil {
		return classify(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return classify(err)
	}

	if affected == 0 {
		return ErrNoRows
	}

	return nil
}

func (s *SQLStorage) CreateUser(ctx context.Context, userID string) error {
	_, err := s.q.ExecContext(ctx, s.rebind(`INSERT INTO users (id, is_premium) VALUES (?, ?);`), userID, false)

	return classify(err)
}

func (s *SQLStorage) CreateOrder(ctx context.Context, order entities.Order) error {
	status := order.Status
	if status == "" {
		status = entities.OrderStatusPending
	}

	createdAt := order.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.q.ExecContext(
		ctx,
		s.rebind(`INSERT INTO orders (order_code, user_id, plan_type, status, created_at)
		VALUES (?, ?, ?, ?, ?);`),
		order.Code, order.UserID, string(order.PlanType), status, createdAt.UTC(),
	)

	return classify(err)
}

func (s *SQLStorage) rebind(query string) string {
	return sqlx.Rebind(sqlx.BindType(s.driver), query)
}

func classify(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pgerrcode.IsIntegrityConstraintViolation(string(pqErr.Code)):
			return fmt.Errorf("%w: %s", ErrConflict, pqErr.Message)
		case pgerrcode.IsConnectionException(string(pqErr.Code)),
			pgerrcode.IsInsufficientResources(string(pqErr.Code)):
			return fmt.Errorf("%w: %s", ErrStoreUnavailable, pqErr.Message)
		}

		return err
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & 0xff {
		case sqlite3.SQLITE_CONSTRAINT:
			return fmt.Errorf("%w: %s", ErrConflict, sqliteErr.Error())
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED, sqlite3.SQLITE_CANTOPEN:
			return fmt.Errorf("%w: %s", ErrStoreUnavailable, sqliteErr.Error())
		}

		return err
	}

	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return err
}

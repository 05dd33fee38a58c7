package storage

import "context"

var migrations = map[string][]string{
	DriverPostgres: {
		`
		CREATE TABLE IF NOT EXISTS users(
			id VARCHAR PRIMARY KEY,
			is_premium BOOLEAN NOT NULL DEFAULT FALSE,
			premium_plan VARCHAR,
			premium_start_date TIMESTAMPTZ,
			premium_end_date TIMESTAMPTZ
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS orders(
			order_code VARCHAR PRIMARY KEY,
			user_id VARCHAR NOT NULL,
			plan_type VARCHAR NOT NULL,
			status VARCHAR NOT NULL,
			payment_data TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ,
			CONSTRAINT fk_user FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
		);
		`,
	},
	DriverSQLite: {
		`
		CREATE TABLE IF NOT EXISTS users(
			id TEXT PRIMARY KEY,
			is_premium BOOLEAN NOT NULL DEFAULT 0,
			premium_plan TEXT,
			premium_start_date DATETIME,
			premium_end_date DATETIME
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS orders(
			order_code TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			plan_type TEXT NOT NULL,
			status TEXT NOT NULL,
			payment_data TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME
		);
		`,
	},
}

func (s *SQLStorage) runMigrations(ctx context.Context) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer tx.Rollback()

	for _, statement := range migrations[s.driver] {
		if _, err := tx.ExecContext(ctx, statement); err != nil {
			return err
		}
	}

	return tx.Commit()
}

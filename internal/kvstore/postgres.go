package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Postgres хранит значения в таблице kv_entries. Схему создают миграции из каталога migrations.
type Postgres struct {
	DB *sql.DB
}

// NewPostgres открывает соединение с PostgreSQL и проверяет его.
func NewPostgres(ctx context.Context, connectionString string) (*Postgres, error) {
	const op = "kvstore.NewPostgres"

	db, err := sql.Open("pgx", connectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Postgres{DB: db}, nil
}

func (p *Postgres) Get(ctx context.Context, key string) (string, bool, error) {
	const op = "kvstore.Postgres.Get"

	var value string
	err := p.DB.QueryRowContext(ctx, `SELECT value FROM kv_entries WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	return value, true, nil
}

func (p *Postgres) Set(ctx context.Context, key, value string) error {
	const op = "kvstore.Postgres.Set"

	query := `INSERT INTO kv_entries (key, value, updated_at)
			  VALUES ($1, $2, NOW())
			  ON CONFLICT (key) DO UPDATE
			  SET value = EXCLUDED.value,
			      updated_at = EXCLUDED.updated_at`
	if _, err := p.DB.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (p *Postgres) Remove(ctx context.Context, key string) error {
	const op = "kvstore.Postgres.Remove"

	if _, err := p.DB.ExecContext(ctx, `DELETE FROM kv_entries WHERE key = $1`, key); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (p *Postgres) Close() error {
	return p.DB.Close()
}

// CheckReady проверяет, что миграции применены и таблица kv_entries существует.
func (p *Postgres) CheckReady(ctx context.Context) error {
	var exists bool
	err := p.DB.QueryRowContext(ctx, `SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'kv_entries'
    )`).Scan(&exists)
	if err != nil {
		return fmt.Errorf("kvstore.CheckReady: %w", err)
	}
	if !exists {
		return errors.New("kvstore.CheckReady: required table kv_entries missing")
	}
	return nil
}

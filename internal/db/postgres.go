package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// NewPostgres создаёт подключение к PostgreSQL с заданным DSN.
func NewPostgres(ctx context.Context, dsn string) (*sqlx.DB, error) {
	conn, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: не удалось подключиться: %w", err)
	}

	// Сайт-портфолио читает мало, но админка и публичные страницы работают параллельно.
	conn.SetMaxOpenConns(20)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	return conn, nil
}

// RunMigrations применяет встроенные в бинарник миграции.
func RunMigrations(ctx context.Context, conn *sqlx.DB) error {
	return migrate(conn, func(db *sql.DB) error {
		return goose.UpContext(ctx, db, migrationsDir)
	})
}

const migrationsDir = "migrations"

func migrate(conn *sqlx.DB, up func(*sql.DB) error) error {
	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("postgres: не удалось выбрать диалект миграций: %w", err)
	}

	if err := up(conn.DB); err != nil {
		return fmt.Errorf("postgres: не удалось применить миграции: %w", err)
	}

	return nil
}

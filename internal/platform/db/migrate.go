package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations
var migrationsFS embed.FS

// Migrate: ドライバに応じた埋め込みスキーマを適用する
func Migrate(ctx context.Context, conn *sql.DB, driver string) error {
	var dialect, dir string
	switch driver {
	case DriverMySQL:
		dialect, dir = "mysql", "migrations/mysql"
	case DriverSQLite:
		dialect, dir = "sqlite3", "migrations/sqlite"
	default:
		return fmt.Errorf("unsupported driver %q", driver)
	}

	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	goose.SetBaseFS(migrationsFS)
	if err := goose.UpContext(ctx, conn, dir); err != nil {
		return fmt.Errorf("migrate %s: %w", driver, err)
	}
	return nil
}

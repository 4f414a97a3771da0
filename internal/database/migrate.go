package database

import (
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Migrate applies every pending migration to the database at pgurl.
func Migrate(pgurl string) error {
	migrationDB, err := sql.Open("pgx", pgurl)
	if err != nil {
		return fmt.Errorf("open db for migrations: %w", err)
	}
	defer migrationDB.Close()

	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Up(migrationDB, "migrations"); err != nil {
		return fmt.Errorf("run up migrations: %w", err)
	}

	log.Info().Msg("[Migrate] migrations applied successfully")
	return nil
}

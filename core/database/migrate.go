package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"booking-router/core/logger"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies the embedded schema files in name order. Every statement in
// them is written to be re-runnable.
func Migrate(ctx context.Context, db IDatabase) error {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)

	for _, name := range names {
		body, err := migrations.ReadFile(name)
		if err != nil {
			return err
		}
		if err := db.ExecContext(ctx, string(body)); err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
		logger.Info("Database:Migrate:Applied", "file", name)
	}
	return nil
}

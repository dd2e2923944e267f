package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"sort"
	"strings"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migrate applies every embedded migration file in name order.  Statements
// use CREATE TABLE IF NOT EXISTS so running it on each start is harmless.
// The MySQL driver rejects multi-statement strings by default, so each file
// is split on ";" line endings and executed statement by statement.
func Migrate(ctx context.Context, db *sql.DB) error {
	names, err := fs.Glob(migrationFS, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)
	for _, name := range names {
		raw, err := migrationFS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		for _, stmt := range splitStatements(string(raw)) {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("apply %s: %w", name, err)
			}
		}
		log.Printf("migrations: applied %s", name)
	}
	return nil
}

func splitStatements(src string) []string {
	var out []string
	for _, part := range strings.Split(src, ";\n") {
		s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(part), ";"))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// RunMigrations applies the schema migrations in lexical order. When dir is
// set and exists it overrides the embedded files, which lets deployments
// patch the schema without a rebuild.
func RunMigrations(db *sql.DB, dir string) error {
	src, root, err := migrationSource(dir)
	if err != nil {
		return err
	}
	pattern := "*.sql"
	if root != "." {
		pattern = root + "/*.sql"
	}
	names, err := fs.Glob(src, pattern)
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(names)
	for _, name := range names {
		stmt, err := fs.ReadFile(src, name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if len(strings.TrimSpace(string(stmt))) == 0 {
			continue
		}
		if _, err := db.Exec(string(stmt)); err != nil {
			return fmt.Errorf("exec migration %s: %w", name, err)
		}
	}
	return nil
}

func migrationSource(dir string) (fs.FS, string, error) {
	if dir == "" {
		return embeddedMigrations, "migrations", nil
	}
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return embeddedMigrations, "migrations", nil
		}
		return nil, "", fmt.Errorf("stat migrations dir: %w", err)
	}
	return os.DirFS(dir), ".", nil
}

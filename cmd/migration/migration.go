package migration

import (
	"database/sql"
	"log"
	"os"
	"path/filepath"

	migrate "github.com/rubenv/sql-migrate"
)

// Run applies all pending schema migrations from internal/migration.
// It is called on API startup so the orders, results and outbox tables
// exist before the first request is served.
func Run(db *sql.DB) {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("failed to resolve working directory: %v", err)
	}

	source := &migrate.FileMigrationSource{
		Dir: filepath.Join(wd, "internal/migration"),
	}

	applied, err := migrate.Exec(db, "postgres", source, migrate.Up)
	if err != nil {
		log.Fatalf("failed to apply migrations: %v", err)
	}

	log.Printf("applied %d migrations\n", applied)
}

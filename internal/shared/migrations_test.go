package shared

import (
	"errors"
	"testing"
)

func TestMigrationRunner(t *testing.T) {
	t.Run("loadMigrations", func(t *testing.T) {
		for _, dir := range []string{sqliteMigrations, postgresMigrations} {
			migrations, err := loadMigrations(dir)
			if err != nil {
				t.Fatalf("failed to load migrations from %s: %v", dir, err)
			}

			if len(migrations) == 0 {
				t.Fatalf("expected at least one migration in %s", dir)
			}

			for i := 1; i < len(migrations); i++ {
				if migrations[i].Version <= migrations[i-1].Version {
					t.Errorf("migrations not sorted: version %d comes after %d", migrations[i].Version, migrations[i-1].Version)
				}
			}

			for _, m := range migrations {
				if m.Up == "" {
					t.Errorf("migration version %d missing up SQL", m.Version)
				}
				if m.Down == "" {
					t.Errorf("migration version %d missing down SQL", m.Version)
				}
			}
		}
	})

	t.Run("Statements strips comments", func(t *testing.T) {
		m := Migration{
			Version: 1,
			Up:      "-- first; with a semicolon\nCREATE TABLE a (id INTEGER);\n\nCREATE TABLE b (id INTEGER); -- trailing",
			Down:    "DROP TABLE b;DROP TABLE a;",
		}

		up := m.Statements(true)
		if len(up) != 2 {
			t.Fatalf("expected 2 up statements, got %d: %q", len(up), up)
		}
		if up[0] != "CREATE TABLE a (id INTEGER)" {
			t.Errorf("unexpected first statement %q", up[0])
		}

		if down := m.Statements(false); len(down) != 2 {
			t.Errorf("expected 2 down statements, got %d", len(down))
		}
	})

	t.Run("RunMigrations And Rollback", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()
		ConfigureDatabase(db, 1, 1)

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		var count int
		err = db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
		if err != nil {
			t.Fatalf("failed to query schema_migrations: %v", err)
		}
		if count == 0 {
			t.Error("expected at least one migration to be applied")
		}

		_, err = db.Exec("SELECT id, first_name, last_name, email FROM employees LIMIT 1")
		if err != nil {
			t.Errorf("employees table should exist after migrations: %v", err)
		}

		if err := RollbackMigration(db); err != nil {
			t.Fatalf("failed to rollback migration: %v", err)
		}

		var newCount int
		err = db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&newCount)
		if err != nil {
			t.Fatalf("failed to query schema_migrations after rollback: %v", err)
		}
		if newCount >= count {
			t.Errorf("expected migration count to decrease after rollback, got %d (was %d)", newCount, count)
		}
	})

	t.Run("Rollback everything", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()
		ConfigureDatabase(db, 1, 1)

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		migrations, _ := loadMigrations(sqliteMigrations)
		for range migrations {
			if err := RollbackMigration(db); err != nil {
				t.Fatalf("failed to rollback: %v", err)
			}
		}

		if err := RollbackMigration(db); !errors.Is(err, ErrNoMigrations) {
			t.Errorf("expected ErrNoMigrations, got %v", err)
		}

		if _, err := db.Exec("SELECT 1 FROM employees LIMIT 1"); err == nil {
			t.Error("employees table should be dropped after full rollback")
		}
	})

	t.Run("Idempotent Migrations", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		defer db.Close()
		ConfigureDatabase(db, 1, 1)

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations first time: %v", err)
		}

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations second time: %v", err)
		}

		var count int
		err = db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
		if err != nil {
			t.Fatalf("failed to query schema_migrations: %v", err)
		}

		migrations, _ := loadMigrations(sqliteMigrations)
		if count != len(migrations) {
			t.Errorf("expected %d migrations to be applied, got %d", len(migrations), count)
		}
	})
}

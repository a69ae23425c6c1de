package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/ems/internal/models"
	"github.com/desertthunder/ems/internal/shared"
)

func TestEmployeeRepositoryErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("Save", func(t *testing.T) {
		t.Run("NilEmployee", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			_, err := NewEmployeeRepository(db).Save(ctx, nil)
			if !errors.Is(err, shared.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})

		t.Run("ClosedDatabase", func(t *testing.T) {
			db := setupTestDB(t)
			db.Close()

			_, err := NewEmployeeRepository(db).Save(ctx, models.NewEmployee("John", "Cena", "cena@example.com"))
			if err == nil {
				t.Fatal("expected error when saving to closed database")
			}
		})
	})

	t.Run("FindByID", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			employee, err := NewEmployeeRepository(db).FindByID(ctx, 999)
			if err != nil {
				t.Fatalf("expected no error for missing employee, got %v", err)
			}

			if employee != nil {
				t.Errorf("expected nil, got %+v", employee)
			}
		})
	})

	t.Run("FindByEmail", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			employee, err := NewEmployeeRepository(db).FindByEmail(ctx, "nobody@example.com")
			if err != nil {
				t.Fatalf("expected no error for missing email, got %v", err)
			}

			if employee != nil {
				t.Errorf("expected nil, got %+v", employee)
			}
		})
	})

	t.Run("DeleteByID", func(t *testing.T) {
		t.Run("Missing", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewEmployeeRepository(db)
			if err := repo.DeleteByID(ctx, 999); err != nil {
				t.Fatalf("expected deleting a missing employee to succeed, got %v", err)
			}
		})

		t.Run("Twice", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewEmployeeRepository(db)
			employee := models.NewEmployee("John", "Cena", "cena@example.com")
			seed(t, repo, employee)

			for i := range 2 {
				if err := repo.DeleteByID(ctx, employee.ID); err != nil {
					t.Fatalf("delete %d failed: %v", i+1, err)
				}
			}
		})
	})

	t.Run("NameLookups", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewEmployeeRepository(db)
			seed(t, repo, models.NewEmployee("John", "Cena", "cena@example.com"))

			for name, lookup := range lookups(repo) {
				t.Run(name, func(t *testing.T) {
					_, err := lookup(ctx, "Tony", "Stark")
					if !errors.Is(err, shared.ErrEmployeeNotFound) {
						t.Errorf("expected ErrEmployeeNotFound, got %v", err)
					}
				})
			}
		})

		t.Run("NonUnique", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewEmployeeRepository(db)
			seed(t, repo,
				models.NewEmployee("John", "Cena", "cena@example.com"),
				models.NewEmployee("John", "Cena", "john.cena@example.com"),
			)

			for name, lookup := range lookups(repo) {
				t.Run(name, func(t *testing.T) {
					_, err := lookup(ctx, "John", "Cena")
					if !errors.Is(err, shared.ErrNonUniqueResult) {
						t.Errorf("expected ErrNonUniqueResult, got %v", err)
					}
				})
			}
		})

		t.Run("CaseSensitive", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewEmployeeRepository(db)
			seed(t, repo, models.NewEmployee("John", "Cena", "cena@example.com"))

			for name, lookup := range lookups(repo) {
				t.Run(name, func(t *testing.T) {
					_, err := lookup(ctx, "john", "cena")
					if !errors.Is(err, shared.ErrEmployeeNotFound) {
						t.Errorf("expected exact match only, got %v", err)
					}
				})
			}
		})
	})

	t.Run("ClosedDatabase", func(t *testing.T) {
		db := setupTestDB(t)
		db.Close()

		repo := NewEmployeeRepository(db)

		if _, err := repo.FindAll(ctx); err == nil {
			t.Error("expected FindAll error on closed database")
		}

		if _, err := repo.FindByID(ctx, 1); err == nil {
			t.Error("expected FindByID error on closed database")
		}

		if err := repo.DeleteByID(ctx, 1); err == nil {
			t.Error("expected DeleteByID error on closed database")
		}

		if err := repo.Ping(ctx); err == nil {
			t.Error("expected Ping error on closed database")
		}

		if _, err := repo.FindByNameQuery(ctx, "John", "Cena"); errors.Is(err, shared.ErrEmployeeNotFound) || err == nil {
			t.Errorf("expected query error on closed database, got %v", err)
		}
	})
}

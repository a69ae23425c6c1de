package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/ems/internal/models"
	"github.com/desertthunder/ems/internal/repositories"
	"github.com/desertthunder/ems/internal/services"
	"github.com/desertthunder/ems/internal/shared"
	tu "github.com/desertthunder/ems/internal/testing"
)

func newTestHandler(svc services.Service) *EmployeeHandler {
	return NewEmployeeHandler(svc, shared.NewLogger(&bytes.Buffer{}))
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

const rameshJSON = `{"firstName":"Ramesh","lastName":"Fadatare","email":"ramesh@example.com"}`

func TestEmployeeHandler(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		t.Run("Created", func(t *testing.T) {
			svc := &tu.MockEmployeeService{}
			rec := do(t, newTestHandler(svc), http.MethodPost, EmployeesPath, rameshJSON)

			if rec.Code != http.StatusCreated {
				t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
			}

			got := decode[models.Employee](t, rec)
			if got.FirstName != "Ramesh" || got.LastName != "Fadatare" || got.Email != "ramesh@example.com" {
				t.Errorf("expected echoed fields, got %+v", got)
			}

			if rec.Header().Get("Content-Type") != "application/json" {
				t.Errorf("expected JSON content type, got %q", rec.Header().Get("Content-Type"))
			}
		})

		t.Run("TrailingSlash", func(t *testing.T) {
			rec := do(t, newTestHandler(&tu.MockEmployeeService{}), http.MethodPost, EmployeesPath+"/", rameshJSON)
			if rec.Code != http.StatusCreated {
				t.Errorf("expected 201, got %d", rec.Code)
			}
		})

		t.Run("IgnoresClientID", func(t *testing.T) {
			svc := &tu.MockEmployeeService{}
			do(t, newTestHandler(svc), http.MethodPost, EmployeesPath, `{"id":77,"firstName":"A","lastName":"B","email":"a@b.c"}`)

			if len(svc.Saved) != 1 || svc.Saved[0].ID == 77 {
				t.Errorf("expected store-assigned id, got %+v", svc.Saved)
			}
		})

		t.Run("Duplicate", func(t *testing.T) {
			svc := &tu.MockEmployeeService{Err: fmt.Errorf("%w with given email", shared.ErrEmployeeAlreadyExists)}
			rec := do(t, newTestHandler(svc), http.MethodPost, EmployeesPath, rameshJSON)

			if rec.Code != http.StatusConflict {
				t.Errorf("expected 409, got %d", rec.Code)
			}
			if body := decode[map[string]string](t, rec); body["error"] == "" {
				t.Error("expected error message")
			}
		})

		badBodies := map[string]string{
			"Malformed":    `{"firstName":`,
			"MissingFirst": `{"lastName":"Fadatare","email":"ramesh@example.com"}`,
			"MissingEmail": `{"firstName":"Ramesh","lastName":"Fadatare"}`,
			"BadEmail":     `{"firstName":"Ramesh","lastName":"Fadatare","email":"ramesh"}`,
		}
		for name, body := range badBodies {
			t.Run(name, func(t *testing.T) {
				svc := &tu.MockEmployeeService{}
				rec := do(t, newTestHandler(svc), http.MethodPost, EmployeesPath, body)

				if rec.Code != http.StatusBadRequest {
					t.Errorf("expected 400, got %d", rec.Code)
				}
				if len(svc.Saved) != 0 {
					t.Error("expected nothing saved")
				}
			})
		}

		t.Run("InternalError", func(t *testing.T) {
			svc := &tu.MockEmployeeService{Err: errors.New("disk on fire")}
			rec := do(t, newTestHandler(svc), http.MethodPost, EmployeesPath, rameshJSON)

			if rec.Code != http.StatusInternalServerError {
				t.Errorf("expected 500, got %d", rec.Code)
			}
			if strings.Contains(rec.Body.String(), "disk on fire") {
				t.Error("expected internal error detail to be hidden")
			}
		})
	})

	t.Run("List", func(t *testing.T) {
		t.Run("Empty", func(t *testing.T) {
			rec := do(t, newTestHandler(&tu.MockEmployeeService{}), http.MethodGet, EmployeesPath, "")

			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			if strings.TrimSpace(rec.Body.String()) != "[]" {
				t.Errorf("expected [], got %s", rec.Body.String())
			}
		})

		t.Run("All", func(t *testing.T) {
			svc := &tu.MockEmployeeService{Employees: []models.Employee{
				{ID: 1, FirstName: "Ramesh", LastName: "Fadatare", Email: "ramesh@example.com"},
				{ID: 2, FirstName: "John", LastName: "Cena", Email: "cena@example.com"},
			}}
			rec := do(t, newTestHandler(svc), http.MethodGet, EmployeesPath+"/", "")

			got := decode[[]models.Employee](t, rec)
			if len(got) != 2 {
				t.Errorf("expected 2 employees, got %d", len(got))
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		svc := &tu.MockEmployeeService{Employee: &models.Employee{ID: 1, FirstName: "John", LastName: "Cena", Email: "cena@example.com"}}
		h := newTestHandler(svc)

		t.Run("Found", func(t *testing.T) {
			rec := do(t, h, http.MethodGet, EmployeesPath+"/1", "")

			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			if got := decode[models.Employee](t, rec); got.Email != "cena@example.com" {
				t.Errorf("unexpected employee %+v", got)
			}
		})

		t.Run("Absent", func(t *testing.T) {
			rec := do(t, h, http.MethodGet, EmployeesPath+"/2", "")

			if rec.Code != http.StatusNotFound {
				t.Errorf("expected 404, got %d", rec.Code)
			}
			if rec.Body.Len() != 0 {
				t.Errorf("expected empty body, got %q", rec.Body.String())
			}
		})

		t.Run("BadID", func(t *testing.T) {
			if rec := do(t, h, http.MethodGet, EmployeesPath+"/abc", ""); rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
		})
	})

	t.Run("Update", func(t *testing.T) {
		t.Run("Existing", func(t *testing.T) {
			svc := &tu.MockEmployeeService{Employee: &models.Employee{ID: 1, FirstName: "Ramesh", LastName: "Fadatare", Email: "ramesh@example.com"}}
			rec := do(t, newTestHandler(svc), http.MethodPut, EmployeesPath+"/1", `{"id":9,"firstName":"Ram","lastName":"Jadhav","email":"ram@example.com"}`)

			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
			}

			got := decode[models.Employee](t, rec)
			want := models.Employee{ID: 1, FirstName: "Ram", LastName: "Jadhav", Email: "ram@example.com"}
			if got != want {
				t.Errorf("expected %+v, got %+v", want, got)
			}
		})

		t.Run("Absent", func(t *testing.T) {
			svc := &tu.MockEmployeeService{}
			rec := do(t, newTestHandler(svc), http.MethodPut, EmployeesPath+"/1", rameshJSON)

			if rec.Code != http.StatusNotFound {
				t.Errorf("expected 404, got %d", rec.Code)
			}
			if len(svc.Saved) != 0 {
				t.Error("expected no save for an absent employee")
			}
		})

		t.Run("Invalid", func(t *testing.T) {
			svc := &tu.MockEmployeeService{Employee: &models.Employee{ID: 1}}
			if rec := do(t, newTestHandler(svc), http.MethodPut, EmployeesPath+"/1", `{"firstName":""}`); rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
		})
	})

	t.Run("Delete", func(t *testing.T) {
		svc := &tu.MockEmployeeService{}
		h := newTestHandler(svc)

		for range 2 {
			rec := do(t, h, http.MethodDelete, EmployeesPath+"/5", "")

			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			if body := decode[map[string]string](t, rec); body["message"] != "employee deleted successfully" {
				t.Errorf("unexpected message %v", body)
			}
		}

		if len(svc.Deleted) != 2 || svc.Deleted[0] != 5 {
			t.Errorf("expected two deletes of 5, got %v", svc.Deleted)
		}
	})

	t.Run("Search", func(t *testing.T) {
		t.Run("Found", func(t *testing.T) {
			svc := &tu.MockEmployeeService{Employee: &models.Employee{ID: 1, FirstName: "John", LastName: "Cena", Email: "cena@example.com"}}
			rec := do(t, newTestHandler(svc), http.MethodGet, EmployeesPath+"/search?firstName=John&lastName=Cena&kind=sql-named", "")

			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			if len(svc.Kinds) != 1 || svc.Kinds[0] != services.QuerySQLNamed {
				t.Errorf("expected sql-named lookup, got %v", svc.Kinds)
			}
		})

		t.Run("DefaultKind", func(t *testing.T) {
			svc := &tu.MockEmployeeService{Employee: &models.Employee{ID: 1}}
			do(t, newTestHandler(svc), http.MethodGet, EmployeesPath+"/search?firstName=John&lastName=Cena", "")

			if len(svc.Kinds) != 1 || svc.Kinds[0] != services.QueryDerived {
				t.Errorf("expected derived lookup, got %v", svc.Kinds)
			}
		})

		tests := []struct {
			name  string
			query string
			err   error
			want  int
		}{
			{name: "NotFound", query: "firstName=Tony&lastName=Stark", err: shared.ErrEmployeeNotFound, want: http.StatusNotFound},
			{name: "NonUnique", query: "firstName=John&lastName=Cena", err: shared.ErrNonUniqueResult, want: http.StatusConflict},
			{name: "MissingName", query: "firstName=John", want: http.StatusBadRequest},
			{name: "BadKind", query: "firstName=John&lastName=Cena&kind=fuzzy", want: http.StatusBadRequest},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				svc := &tu.MockEmployeeService{Err: tt.err}
				rec := do(t, newTestHandler(svc), http.MethodGet, EmployeesPath+"/search?"+tt.query, "")

				if rec.Code != tt.want {
					t.Errorf("expected %d, got %d", tt.want, rec.Code)
				}
			})
		}
	})

	t.Run("MethodNotAllowed", func(t *testing.T) {
		if rec := do(t, newTestHandler(&tu.MockEmployeeService{}), http.MethodPatch, EmployeesPath+"/1", ""); rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: shared.ErrInvalidInput, want: http.StatusBadRequest},
		{err: fmt.Errorf("wrapped: %w", shared.ErrInvalidArgument), want: http.StatusBadRequest},
		{err: shared.ErrEmployeeNotFound, want: http.StatusNotFound},
		{err: shared.ErrEmployeeAlreadyExists, want: http.StatusConflict},
		{err: shared.ErrNonUniqueResult, want: http.StatusConflict},
		{err: shared.ErrServiceUnavailable, want: http.StatusServiceUnavailable},
		{err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := StatusFor(tt.err); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

// TestEmployeeAPI runs the full router against a migrated in-memory SQLite store.
func TestEmployeeAPI(t *testing.T) {
	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, 1, 1)
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	logger := shared.NewLogger(&bytes.Buffer{})
	svc := services.NewEmployeeService(repositories.NewEmployeeRepository(db), logger)
	router := NewRouter(svc, shared.DefaultConfig().Server, logger)

	rec := do(t, router, http.MethodPost, EmployeesPath, rameshJSON)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	created := decode[models.Employee](t, rec)

	if rec := do(t, router, http.MethodPost, EmployeesPath, rameshJSON); rec.Code != http.StatusConflict {
		t.Errorf("expected duplicate to be 409, got %d", rec.Code)
	}

	path := fmt.Sprintf("%s/%d", EmployeesPath, created.ID)

	rec = do(t, router, http.MethodGet, path, "")
	if got := decode[models.Employee](t, rec); got != created {
		t.Errorf("round trip mismatch: %+v vs %+v", got, created)
	}

	rec = do(t, router, http.MethodPut, path, `{"firstName":"Ram","lastName":"Fadatare","email":"ram@example.com"}`)
	if got := decode[models.Employee](t, rec); got.ID != created.ID || got.Email != "ram@example.com" {
		t.Errorf("unexpected update result %+v", got)
	}

	for _, kind := range services.QueryKinds {
		rec := do(t, router, http.MethodGet, EmployeesPath+"/search?firstName=Ram&lastName=Fadatare&kind="+string(kind), "")
		if rec.Code != http.StatusOK {
			t.Errorf("%s lookup: expected 200, got %d", kind, rec.Code)
		}
	}

	if rec := do(t, router, http.MethodDelete, path, ""); rec.Code != http.StatusOK {
		t.Errorf("expected delete 200, got %d", rec.Code)
	}

	if rec := do(t, router, http.MethodGet, path, ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}

	rec = do(t, router, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || rec.Header().Get(HeaderRequestID) == "" {
		t.Errorf("expected healthy response with request id, got %d", rec.Code)
	}
}

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/ems/internal/models"
	"github.com/desertthunder/ems/internal/services"
	"github.com/desertthunder/ems/internal/shared"
)

// EmployeesPath is the collection path of the employee API.
const EmployeesPath = "/api/v1/employees"

const maxBodyBytes = 1 << 20

// EmployeeHandler serves the employee REST API under [EmployeesPath].
//
// Routes:
//   - POST   /api/v1/employees          create, 201
//   - GET    /api/v1/employees          list, 200
//   - GET    /api/v1/employees/search   single name lookup, 200
//   - GET    /api/v1/employees/{id}     fetch, 200 or 404 with an empty body
//   - PUT    /api/v1/employees/{id}     merge and save, 200 or 404
//   - DELETE /api/v1/employees/{id}     delete, 200
//
// The collection routes also accept a trailing slash.
type EmployeeHandler struct {
	svc    services.Service
	logger *log.Logger
	mux    *http.ServeMux
}

var _ Handler = (*EmployeeHandler)(nil)

// NewEmployeeHandler creates an [EmployeeHandler] backed by svc.
func NewEmployeeHandler(svc services.Service, logger *log.Logger) *EmployeeHandler {
	h := &EmployeeHandler{svc: svc, logger: logger, mux: http.NewServeMux()}

	h.mux.HandleFunc("POST "+EmployeesPath, h.create)
	h.mux.HandleFunc("POST "+EmployeesPath+"/{$}", h.create)
	h.mux.HandleFunc("GET "+EmployeesPath, h.list)
	h.mux.HandleFunc("GET "+EmployeesPath+"/{$}", h.list)
	h.mux.HandleFunc("GET "+EmployeesPath+"/search", h.search)
	h.mux.HandleFunc("GET "+EmployeesPath+"/{id}", h.get)
	h.mux.HandleFunc("PUT "+EmployeesPath+"/{id}", h.update)
	h.mux.HandleFunc("DELETE "+EmployeesPath+"/{id}", h.delete)

	return h
}

// Routes returns the collection path and its subtree.
func (h *EmployeeHandler) Routes() []string {
	return []string{EmployeesPath, EmployeesPath + "/"}
}

func (h *EmployeeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *EmployeeHandler) create(w http.ResponseWriter, r *http.Request) {
	employee, err := decodeEmployee(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Creation always lets the store assign the ID.
	employee.ID = 0

	saved, err := h.svc.SaveEmployee(r.Context(), employee)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, saved)
}

func (h *EmployeeHandler) list(w http.ResponseWriter, r *http.Request) {
	employees, err := h.svc.GetAllEmployees(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if employees == nil {
		employees = []models.Employee{}
	}

	writeJSON(w, http.StatusOK, employees)
}

func (h *EmployeeHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	employee, err := h.svc.GetEmployeeByID(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if employee == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, employee)
}

func (h *EmployeeHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	incoming, err := decodeEmployee(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	existing, err := h.svc.GetEmployeeByID(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if existing == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	existing.Merge(*incoming)

	updated, err := h.svc.UpdateEmployee(r.Context(), existing)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *EmployeeHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.DeleteEmployee(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "employee deleted successfully"})
}

func (h *EmployeeHandler) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	firstName, lastName := q.Get("firstName"), q.Get("lastName")

	if firstName == "" || lastName == "" {
		writeError(w, http.StatusBadRequest, "firstName and lastName are required")
		return
	}

	kind, err := services.ParseQueryKind(q.Get("kind"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	employee, err := h.svc.FindEmployeeByName(r.Context(), firstName, lastName, kind)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, employee)
}

// fail maps a service error onto a status code. Unrecognised errors are logged and reported as 500.
func (h *EmployeeHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "request_id", RequestIDFrom(r.Context()), "error", err)
		writeError(w, status, "internal server error")
		return
	}
	writeError(w, status, err.Error())
}

// StatusFor returns the HTTP status for err.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrInvalidInput), errors.Is(err, shared.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrEmployeeNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrEmployeeAlreadyExists), errors.Is(err, shared.ErrNonUniqueResult):
		return http.StatusConflict
	case errors.Is(err, shared.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid employee id %q", raw)
	}
	return id, nil
}

func decodeEmployee(w http.ResponseWriter, r *http.Request) (*models.Employee, error) {
	var employee models.Employee

	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&employee); err != nil {
		return nil, fmt.Errorf("malformed employee body: %v", err)
	}

	if err := employee.Validate(); err != nil {
		return nil, err
	}

	return &employee, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

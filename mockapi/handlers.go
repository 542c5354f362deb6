package mockapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/crudcheck/crud-contract-tests/framework"
	"github.com/crudcheck/crud-contract-tests/servicedef"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// DefaultPageSize is the number of users per page when the list request has a page parameter.
const DefaultPageSize = 6

// Options controls how the mock API behaves.
type Options struct {
	// DeleteStatus is the status returned for a successful delete: 200 (the default, with an
	// empty JSON object) or 204.
	DeleteStatus int

	PageSize int

	// Latency delays every response.
	Latency time.Duration

	Logger framework.Logger
}

// Handler serves the users API from a UserStore.
type Handler struct {
	store   *UserStore
	options Options
}

func NewHandler(store *UserStore, options Options) *Handler {
	if options.DeleteStatus == 0 {
		options.DeleteStatus = http.StatusOK
	}
	if options.PageSize <= 0 {
		options.PageSize = DefaultPageSize
	}
	if options.Logger == nil {
		options.Logger = framework.NullLogger()
	}
	return &Handler{store: store, options: options}
}

// NewRouter returns an http.Handler serving the users API.
func NewRouter(store *UserStore, options Options) http.Handler {
	h := NewHandler(store, options)
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(h.requestLog)
	if h.options.Latency > 0 {
		r.Use(h.latency)
	}
	h.Routes(r)
	return r
}

// Routes mounts the users API on r.
func (h *Handler) Routes(r chi.Router) {
	r.Route(servicedef.UsersPath, func(r chi.Router) {
		r.Post("/", h.CreateUser)
		r.Get("/", h.ListUsers)
		r.Get("/{id}", h.GetUser)
		r.Put("/{id}", h.UpdateUser)
		r.Patch("/{id}", h.UpdateUser)
		r.Delete("/{id}", h.DeleteUser)
	})
}

func (h *Handler) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.options.Logger.Printf("%s %s -> %d", r.Method, r.URL.RequestURI(), ww.Status())
	})
}

func (h *Handler) latency(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(h.options.Latency):
		case <-r.Context().Done():
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CreateUser handles POST /users
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req servicedef.User
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, h.store.Create(req))
}

// GetUser handles GET /users/{id}
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	rec, found := h.store.Get(id)
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// ListUsers handles GET /users, optionally with ?page=n (1-based)
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users := h.store.List()
	if p := r.URL.Query().Get(servicedef.PageParam); p != "" {
		page, err := strconv.Atoi(p)
		if err != nil || page < 1 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid page %q", p))
			return
		}
		start := (page - 1) * h.options.PageSize
		if start > len(users) {
			start = len(users)
		}
		end := start + h.options.PageSize
		if end > len(users) {
			end = len(users)
		}
		users = users[start:end]
	}
	writeJSON(w, http.StatusOK, users)
}

// UpdateUser handles PUT and PATCH /users/{id}
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	var req servicedef.User
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	rec, found := h.store.Update(id, req)
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// DeleteUser handles DELETE /users/{id}
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(w, r)
	if !ok {
		return
	}
	if !h.store.Delete(id) {
		writeJSON(w, http.StatusNotFound, map[string]any{})
		return
	}
	if h.options.DeleteStatus == http.StatusNoContent {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, h.options.DeleteStatus, map[string]any{})
}

func userID(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]any{})
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

// Package apitest runs a scripted fake of the HomeRent REST API for tests.
package apitest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"

	"github.com/Kiran6976/Houserent-Frontend-sub000/internal/api"
)

// Server is a fake API. Routes are registered per test; every matched call
// is counted by its route template, e.g. "GET /api/bookings/{id}/status".
type Server struct {
	*httptest.Server
	Router *mux.Router

	mu     sync.Mutex
	calls  map[string]int
	bodies map[string][]byte
	token  string
}

// New starts a fake API that is closed when the test ends
func New(t testing.TB) *Server {
	s := &Server{
		Router: mux.NewRouter(),
		calls:  make(map[string]int),
		bodies: make(map[string][]byte),
	}
	s.Router.Use(s.recordMiddleware)
	s.Router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusNotFound, map[string]string{"message": "route not found: " + r.Method + " " + r.URL.Path})
	})
	// token checks run before routing so unscripted routes reject too
	s.Server = httptest.NewServer(s.authMiddleware(s.Router))
	t.Cleanup(s.Close)
	return s
}

// On registers a handler for method and path (a gorilla/mux template)
func (s *Server) On(method, path string, h http.HandlerFunc) {
	s.Router.HandleFunc(path, h).Methods(method)
}

// Reply registers a fixed JSON response
func (s *Server) Reply(method, path string, status int, body interface{}) {
	s.On(method, path, func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, status, body)
	})
}

// Sequence registers responses served in order; the last one repeats
func (s *Server) Sequence(method, path string, responses ...Response) {
	var mu sync.Mutex
	i := 0
	s.On(method, path, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		resp := responses[i]
		if i < len(responses)-1 {
			i++
		}
		mu.Unlock()
		WriteJSON(w, resp.Status, resp.Body)
	})
}

// Response is one scripted reply
type Response struct {
	Status int
	Body   interface{}
}

// RequireToken makes every /api route except auth reject other bearer tokens
func (s *Server) RequireToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// Calls returns how many times the route template was hit
func (s *Server) Calls(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method+" "+path]
}

// LastBody decodes the most recent request body sent to the route into v
func (s *Server) LastBody(method, path string, v interface{}) error {
	s.mu.Lock()
	body := s.bodies[method+" "+path]
	s.mu.Unlock()
	return json.Unmarshal(body, v)
}

// LastRawBody returns the most recent request body sent to the route
func (s *Server) LastRawBody(method, path string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bodies[method+" "+path]
}

// APIClient returns a client for the fake, authenticated with token when set
func (s *Server) APIClient(token string) *api.Client {
	c := api.NewClient(s.URL, 0, nil)
	if token != "" {
		c = c.WithAuth(api.StaticToken(token))
	}
	return c
}

func (s *Server) recordMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				key = r.Method + " " + tpl
			}
		}

		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(body))
		}

		s.mu.Lock()
		s.calls[key]++
		s.bodies[key] = body
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		want := s.token
		s.mu.Unlock()

		if want == "" || strings.HasPrefix(r.URL.Path, "/api/auth/") && r.URL.Path != "/api/auth/me" {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			WriteJSON(w, http.StatusUnauthorized, map[string]string{
				"error":   "unauthorized",
				"message": "Authorization header required",
				"code":    api.CodeMissingAuthHeader,
			})
			return
		}
		if authHeader != "Bearer "+want {
			WriteJSON(w, http.StatusUnauthorized, map[string]string{
				"error":   "unauthorized",
				"message": "Invalid token",
				"code":    api.CodeInvalidToken,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WriteJSON writes v as a JSON response
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

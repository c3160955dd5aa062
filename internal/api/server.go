// Package api exposes the task tracker over HTTP. Handlers extract the
// authenticated caller once and pass it explicitly into the services;
// no business logic lives here.
package api

import (
	"log"
	"net/http"

	"tasktracker/internal/service"
)

// Server binds the HTTP surface to the services.
type Server struct {
	accounts *service.AccountService
	tasks    *service.TaskService
	auth     *service.AuthService
}

func New(accounts *service.AccountService, tasks *service.TaskService, auth *service.AuthService) *Server {
	return &Server{
		accounts: accounts,
		tasks:    tasks,
		auth:     auth,
	}
}

// Handler returns the routed handler. Registration and the token
// endpoints are the only routes reachable without a bearer credential.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /register", s.handleRegister)
	mux.HandleFunc("POST /token", s.handleToken)
	mux.HandleFunc("POST /token/refresh", s.handleTokenRefresh)
	mux.HandleFunc("POST /token/revoke", s.handleTokenRevoke)

	mux.Handle("GET /tasks", s.requireAuth(s.handleListTasks))
	mux.Handle("POST /tasks", s.requireAuth(s.handleCreateTask))
	mux.Handle("GET /tasks/{id}", s.requireAuth(s.handleGetTask))
	mux.Handle("PUT /tasks/{id}", s.requireAuth(s.handleUpdateTask))
	mux.Handle("PATCH /tasks/{id}", s.requireAuth(s.handlePatchTask))
	mux.Handle("DELETE /tasks/{id}", s.requireAuth(s.handleDeleteTask))

	return logRequests(mux)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("[info] %s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

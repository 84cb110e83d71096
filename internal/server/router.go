package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/harborbank/core/internal/auth"
)

// RouterDependencies collects handler dependencies.
type RouterDependencies struct {
	Health           HealthService
	API              *APIHandlers
	Sessions         *auth.Service
	AllowedOrigins   []string
	AllowCredentials bool
}

// NewRouter wires the HTTP routes exposed by the ledger service.
func NewRouter(logger *slog.Logger, deps RouterDependencies) http.Handler {
	r := mux.NewRouter()
	r.Use(recoverMiddleware(logger))
	r.Use(loggingMiddleware(logger))

	r.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		payload := map[string]any{
			"status": "ok",
		}

		if deps.Health != nil {
			if err := deps.Health.Probe(ctx); err != nil {
				logger.Error("health probe failed", "error", err)
				status = http.StatusServiceUnavailable
				payload["status"] = "degraded"
				payload["error"] = err.Error()
			}
		}

		respondJSON(w, status, payload)
	}).Methods(http.MethodGet)

	api := deps.API

	r.HandleFunc("/auth/register", api.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", api.handleLogin).Methods(http.MethodPost)

	protected := r.PathPrefix("/").Subrouter()
	protected.Use(authenticate(deps.Sessions))

	protected.HandleFunc("/auth/me", api.handleMe).Methods(http.MethodGet)

	protected.HandleFunc("/accounts", api.handleListAccounts).Methods(http.MethodGet)
	protected.HandleFunc("/accounts", api.handleOpenAccount).Methods(http.MethodPost)
	protected.HandleFunc("/accounts/{id}", api.handleGetAccount).Methods(http.MethodGet)
	protected.HandleFunc("/accounts/{id}/transactions", api.handleStatement).Methods(http.MethodGet)

	protected.HandleFunc("/transactions/deposit", api.handleDeposit).Methods(http.MethodPost)
	protected.HandleFunc("/transactions/withdraw", api.handleWithdraw).Methods(http.MethodPost)
	protected.HandleFunc("/transactions/transfer", api.handleTransfer).Methods(http.MethodPost)

	protected.HandleFunc("/users/{id}", api.handleUpdateProfile).Methods(http.MethodPatch)

	admin := protected.PathPrefix("/admin").Subrouter()
	admin.Use(requireAdmin)
	admin.HandleFunc("/users", api.handleListUsers).Methods(http.MethodGet)
	admin.HandleFunc("/users/{id}/toggle-active", api.handleToggleUserActive).Methods(http.MethodPost)
	admin.HandleFunc("/users/{id}", api.handleDeleteUser).Methods(http.MethodDelete)
	admin.HandleFunc("/transactions", api.handleAllTransactions).Methods(http.MethodGet)

	handler := http.Handler(r)
	if len(deps.AllowedOrigins) > 0 {
		handler = corsMiddleware(deps.AllowedOrigins, deps.AllowCredentials)(handler)
	}
	return handler
}

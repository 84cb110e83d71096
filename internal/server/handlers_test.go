package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/harborbank/core/internal/auth"
	"github.com/harborbank/core/internal/config"
	"github.com/harborbank/core/internal/ledger"
)

type testEnv struct {
	handler  http.Handler
	ledger   *ledger.Ledger
	sessions *auth.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	l := ledger.New(nil)
	sessions := auth.NewService(l, config.AuthConfig{
		JWTSecret:  "test-secret",
		TokenTTL:   time.Hour,
		BcryptCost: 4,
	})
	api := NewAPIHandlers(logger, sessions, l)
	handler := NewRouter(logger, RouterDependencies{
		API:      api,
		Sessions: sessions,
	})

	return &testEnv{handler: handler, ledger: l, sessions: sessions}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func (e *testEnv) register(t *testing.T, name, email string) sessionResponse {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": "hunter2",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register returned %d: %s", rec.Code, rec.Body.String())
	}
	var session sessionResponse
	decodeBody(t, rec, &session)
	return session
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	if _, err := e.sessions.EnsureAdmin("Admin", "admin@example.com", "admin-pass"); err != nil {
		t.Fatalf("admin bootstrap failed: %v", err)
	}
	rec := e.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "admin@example.com",
		"password": "admin-pass",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("admin login returned %d: %s", rec.Code, rec.Body.String())
	}
	var session sessionResponse
	decodeBody(t, rec, &session)
	return session.Token
}

func TestRegisterLoginAndDepositFlow(t *testing.T) {
	env := newTestEnv(t)

	session := env.register(t, "Alice", "alice@example.com")
	if session.Token == "" || session.Account == nil {
		t.Fatalf("register must return a token and default account")
	}
	if session.Account.Balance != "0.00" {
		t.Fatalf("default account balance must be 0.00, got %s", session.Account.Balance)
	}

	rec := env.do(t, http.MethodPost, "/transactions/deposit", session.Token, map[string]string{
		"accountId":   session.Account.ID,
		"amount":      "100.00",
		"description": "paycheck",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("deposit returned %d: %s", rec.Code, rec.Body.String())
	}
	var depositResp struct {
		Account     accountResponse     `json:"account"`
		Transaction transactionResponse `json:"transaction"`
	}
	decodeBody(t, rec, &depositResp)
	if depositResp.Account.Balance != "100.00" {
		t.Fatalf("expected balance 100.00, got %s", depositResp.Account.Balance)
	}
	if depositResp.Transaction.Type != "deposit" || depositResp.Transaction.Status != "completed" {
		t.Fatalf("unexpected transaction payload: %+v", depositResp.Transaction)
	}

	rec = env.do(t, http.MethodPost, "/transactions/withdraw", session.Token, map[string]string{
		"accountId": session.Account.ID,
		"amount":    "150.00",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("overdraft withdrawal must return 422, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/accounts/"+session.Account.ID+"/transactions", session.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("statement returned %d", rec.Code)
	}
	var stmt struct {
		Transactions []transactionResponse `json:"transactions"`
	}
	decodeBody(t, rec, &stmt)
	if len(stmt.Transactions) != 1 {
		t.Fatalf("failed withdrawal must not appear in statement, got %d entries", len(stmt.Transactions))
	}
}

func TestTransferByAccountNumber(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "Alice", "alice@example.com")
	bob := env.register(t, "Bob", "bob@example.com")

	rec := env.do(t, http.MethodPost, "/transactions/deposit", alice.Token, map[string]string{
		"accountId": alice.Account.ID,
		"amount":    "200.00",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("deposit returned %d", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/transactions/transfer", alice.Token, map[string]string{
		"fromAccountId":   alice.Account.ID,
		"toAccountNumber": bob.Account.Number,
		"amount":          "50.00",
		"description":     "rent",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("transfer returned %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		FromAccount accountResponse     `json:"fromAccount"`
		ToAccount   accountResponse     `json:"toAccount"`
		Transaction transactionResponse `json:"transaction"`
	}
	decodeBody(t, rec, &resp)
	if resp.FromAccount.Balance != "150.00" || resp.ToAccount.Balance != "50.00" {
		t.Fatalf("unexpected balances after transfer: %s / %s", resp.FromAccount.Balance, resp.ToAccount.Balance)
	}
	if resp.Transaction.FromAccountID != alice.Account.ID || resp.Transaction.ToAccountID != bob.Account.ID {
		t.Fatalf("transfer record must reference both accounts")
	}
}

func TestTransferRequiresSourceOwnership(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "Alice", "alice@example.com")
	bob := env.register(t, "Bob", "bob@example.com")

	rec := env.do(t, http.MethodPost, "/transactions/deposit", alice.Token, map[string]string{
		"accountId": alice.Account.ID,
		"amount":    "100.00",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("deposit returned %d", rec.Code)
	}

	// Bob tries to move Alice's money.
	rec = env.do(t, http.MethodPost, "/transactions/transfer", bob.Token, map[string]string{
		"fromAccountId": alice.Account.ID,
		"toAccountId":   bob.Account.ID,
		"amount":        "10.00",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("foreign source account must be hidden, got %d", rec.Code)
	}
}

func TestAuthenticationRequired(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/accounts", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token must return 401, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/accounts", "garbage-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("invalid token must return 401, got %d", rec.Code)
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Alice", "alice@example.com")

	rec := env.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"name":     "Impostor",
		"email":    "alice@example.com",
		"password": "other",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate email must return 409, got %d", rec.Code)
	}
}

func TestAdminSurfaceRequiresRole(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "Alice", "alice@example.com")

	rec := env.do(t, http.MethodGet, "/admin/users", alice.Token, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("customer on admin surface must get 403, got %d", rec.Code)
	}

	admin := env.adminToken(t)
	rec = env.do(t, http.MethodGet, "/admin/users", admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin list users returned %d", rec.Code)
	}
	var usersResp struct {
		Users []userResponse `json:"users"`
	}
	decodeBody(t, rec, &usersResp)
	if len(usersResp.Users) != 2 {
		t.Fatalf("expected 2 users (alice + admin), got %d", len(usersResp.Users))
	}
}

func TestAdminToggleAndDeleteUser(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "Alice", "alice@example.com")
	admin := env.adminToken(t)

	rec := env.do(t, http.MethodPost, "/admin/users/"+alice.User.ID+"/toggle-active", admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle returned %d: %s", rec.Code, rec.Body.String())
	}
	var toggled userResponse
	decodeBody(t, rec, &toggled)
	if toggled.Active {
		t.Fatalf("user must be inactive after toggle")
	}
	if got := env.ledger.AccountsByUser(alice.User.ID); len(got) != 0 {
		t.Fatalf("deactivation must cascade to accounts")
	}

	rec = env.do(t, http.MethodDelete, "/admin/users/"+alice.User.ID, admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete returned %d", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "hunter2",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("deleted user must not log in, got %d", rec.Code)
	}
}

func TestUpdateProfileOwnership(t *testing.T) {
	env := newTestEnv(t)
	alice := env.register(t, "Alice", "alice@example.com")
	bob := env.register(t, "Bob", "bob@example.com")

	rec := env.do(t, http.MethodPatch, "/users/"+bob.User.ID, alice.Token, map[string]string{
		"name": "Hijacked",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("cross-user profile update must return 403, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodPatch, "/users/"+alice.User.ID, alice.Token, map[string]string{
		"name": "Alice B.",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("self update returned %d: %s", rec.Code, rec.Body.String())
	}
	var updated userResponse
	decodeBody(t, rec, &updated)
	if updated.Name != "Alice B." {
		t.Fatalf("name not updated: %+v", updated)
	}

	rec = env.do(t, http.MethodPatch, "/users/"+alice.User.ID, alice.Token, map[string]string{
		"email": "bob@example.com",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("email collision on update must return 409, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz returned %d", rec.Code)
	}
}

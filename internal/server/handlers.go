package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/harborbank/core/internal/auth"
	"github.com/harborbank/core/internal/domain"
	"github.com/harborbank/core/internal/ledger"
)

// APIHandlers exposes HTTP handlers for the ledger command surface.
type APIHandlers struct {
	logger   *slog.Logger
	sessions *auth.Service
	ledger   *ledger.Ledger
}

// NewAPIHandlers constructs an APIHandlers instance.
func NewAPIHandlers(logger *slog.Logger, sessions *auth.Service, l *ledger.Ledger) *APIHandlers {
	return &APIHandlers{
		logger:   logger,
		sessions: sessions,
		ledger:   l,
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type openAccountRequest struct {
	Type string `json:"type"`
}

type moveRequest struct {
	AccountID   string `json:"accountId"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

type transferRequest struct {
	FromAccountID   string `json:"fromAccountId"`
	ToAccountID     string `json:"toAccountId"`
	ToAccountNumber string `json:"toAccountNumber"`
	Amount          string `json:"amount"`
	Description     string `json:"description"`
}

type updateProfileRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

type userResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Phone     string `json:"phone,omitempty"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"createdAt"`
}

type accountResponse struct {
	ID           string `json:"id"`
	UserID       string `json:"userId"`
	Number       string `json:"number"`
	MaskedNumber string `json:"maskedNumber"`
	Type         string `json:"type"`
	Balance      string `json:"balance"`
	Active       bool   `json:"active"`
	CreatedAt    string `json:"createdAt"`
}

type transactionResponse struct {
	ID            string `json:"id"`
	FromAccountID string `json:"fromAccountId,omitempty"`
	ToAccountID   string `json:"toAccountId,omitempty"`
	Amount        string `json:"amount"`
	Type          string `json:"type"`
	Description   string `json:"description,omitempty"`
	Status        string `json:"status"`
	CreatedAt     string `json:"createdAt"`
}

type sessionResponse struct {
	Token   string           `json:"token"`
	User    userResponse     `json:"user"`
	Account *accountResponse `json:"account,omitempty"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		Phone:     u.Phone,
		Active:    u.Active,
		CreatedAt: formatTime(u.CreatedAt),
	}
}

func toAccountResponse(a domain.Account) accountResponse {
	return accountResponse{
		ID:           a.ID,
		UserID:       a.UserID,
		Number:       a.Number,
		MaskedNumber: a.MaskedNumber(),
		Type:         string(a.Type),
		Balance:      a.Balance.String(),
		Active:       a.Active,
		CreatedAt:    formatTime(a.CreatedAt),
	}
}

func toTransactionResponse(tx domain.Transaction) transactionResponse {
	return transactionResponse{
		ID:            tx.ID,
		FromAccountID: tx.FromAccountID,
		ToAccountID:   tx.ToAccountID,
		Amount:        tx.Amount.String(),
		Type:          string(tx.Type),
		Description:   tx.Description,
		Status:        string(tx.Status),
		CreatedAt:     formatTime(tx.CreatedAt),
	}
}

func toTransactionResponses(txs []domain.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTransactionResponse(tx))
	}
	return out
}

func (h *APIHandlers) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, account, token, err := h.sessions.Register(req.Name, req.Email, req.Password, req.Phone)
	if err != nil {
		h.respondError(w, err, "registration failed")
		return
	}

	acc := toAccountResponse(account)
	respondJSON(w, http.StatusCreated, sessionResponse{
		Token:   token,
		User:    toUserResponse(user),
		Account: &acc,
	})
}

func (h *APIHandlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, token, err := h.sessions.Login(req.Email, req.Password)
	if err != nil {
		h.respondError(w, err, "login failed")
		return
	}

	respondJSON(w, http.StatusOK, sessionResponse{
		Token: token,
		User:  toUserResponse(user),
	})
}

func (h *APIHandlers) handleMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.ledger.UserByID(principal.UserID)
	if err != nil {
		h.respondError(w, err, "user lookup failed")
		return
	}
	respondJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *APIHandlers) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFrom(r.Context())

	accounts := h.ledger.AccountsByUser(principal.UserID)
	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	respondJSON(w, http.StatusOK, map[string]any{"accounts": out})
}

func (h *APIHandlers) handleOpenAccount(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFrom(r.Context())

	var req openAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	account, err := h.ledger.OpenAccount(principal.UserID, domain.AccountType(req.Type))
	if err != nil {
		h.respondError(w, err, "account opening failed")
		return
	}
	respondJSON(w, http.StatusCreated, toAccountResponse(account))
}

// loadOwnedAccount fetches an account and enforces that the principal owns
// it or is an admin.
func (h *APIHandlers) loadOwnedAccount(r *http.Request, accountID string) (domain.Account, error) {
	principal, _ := auth.PrincipalFrom(r.Context())

	account, err := h.ledger.AccountByID(accountID)
	if err != nil {
		return domain.Account{}, err
	}
	if account.UserID != principal.UserID && !principal.IsAdmin() {
		// Hide other users' accounts entirely.
		return domain.Account{}, domain.ErrAccountNotFound
	}
	return account, nil
}

func (h *APIHandlers) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	account, err := h.loadOwnedAccount(r, mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, err, "account lookup failed")
		return
	}
	respondJSON(w, http.StatusOK, toAccountResponse(account))
}

func (h *APIHandlers) handleStatement(w http.ResponseWriter, r *http.Request) {
	account, err := h.loadOwnedAccount(r, mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, err, "account lookup failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"accountId":    account.ID,
		"transactions": toTransactionResponses(h.ledger.StatementFor(account.ID)),
	})
}

func (h *APIHandlers) handleDeposit(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, domain.ErrInvalidAmount.Error())
		return
	}
	if _, err := h.loadOwnedAccount(r, req.AccountID); err != nil {
		h.respondError(w, err, "account lookup failed")
		return
	}

	account, tx, err := h.ledger.Deposit(req.AccountID, amount, req.Description)
	if err != nil {
		h.respondError(w, err, "deposit failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"account":     toAccountResponse(account),
		"transaction": toTransactionResponse(tx),
	})
}

func (h *APIHandlers) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, domain.ErrInvalidAmount.Error())
		return
	}
	if _, err := h.loadOwnedAccount(r, req.AccountID); err != nil {
		h.respondError(w, err, "account lookup failed")
		return
	}

	account, tx, err := h.ledger.Withdraw(req.AccountID, amount, req.Description)
	if err != nil {
		h.respondError(w, err, "withdrawal failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"account":     toAccountResponse(account),
		"transaction": toTransactionResponse(tx),
	})
}

func (h *APIHandlers) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, domain.ErrInvalidAmount.Error())
		return
	}

	// The sender must own the source account. The destination may be any
	// account, addressed by id or by full account number.
	if _, err := h.loadOwnedAccount(r, req.FromAccountID); err != nil {
		h.respondError(w, err, "account lookup failed")
		return
	}

	toID := req.ToAccountID
	if toID == "" && req.ToAccountNumber != "" {
		dest, err := h.ledger.AccountByNumber(req.ToAccountNumber)
		if err != nil {
			h.respondError(w, err, "destination lookup failed")
			return
		}
		toID = dest.ID
	}

	result, err := h.ledger.Transfer(req.FromAccountID, toID, amount, req.Description)
	if err != nil {
		h.respondError(w, err, "transfer failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"fromAccount": toAccountResponse(result.From),
		"toAccount":   toAccountResponse(result.To),
		"transaction": toTransactionResponse(result.Tx),
	})
}

func (h *APIHandlers) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFrom(r.Context())
	userID := mux.Vars(r)["id"]
	if userID != principal.UserID && !principal.IsAdmin() {
		writeError(w, http.StatusForbidden, "cannot update another user's profile")
		return
	}

	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.ledger.UpdateProfile(userID, domain.ProfilePatch{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		h.respondError(w, err, "profile update failed")
		return
	}
	respondJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *APIHandlers) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users := h.ledger.Users()
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	respondJSON(w, http.StatusOK, map[string]any{"users": out})
}

func (h *APIHandlers) handleToggleUserActive(w http.ResponseWriter, r *http.Request) {
	user, err := h.ledger.ToggleUserActive(mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, err, "toggle failed")
		return
	}
	respondJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *APIHandlers) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.DeleteUser(mux.Vars(r)["id"]); err != nil {
		h.respondError(w, err, "delete failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *APIHandlers) handleAllTransactions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"transactions": toTransactionResponses(h.ledger.AllTransactions()),
	})
}

// respondError maps a domain error to its HTTP status. Unclassified errors
// are logged and surfaced as a generic 500.
func (h *APIHandlers) respondError(w http.ResponseWriter, err error, logMsg string) {
	status := statusFromError(err)
	if status == http.StatusInternalServerError {
		h.logger.Error(logMsg, "error", err)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

func statusFromError(err error) int {
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindInsufficientFunds:
		return http.StatusUnprocessableEntity
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return err
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{
		"error": msg,
	})
}

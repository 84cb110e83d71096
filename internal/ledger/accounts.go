package ledger

import (
	"fmt"

	"github.com/harborbank/core/internal/domain"
)

// OpenAccount creates a zero-balance active account of the given type for an
// existing user.
func (l *Ledger) OpenAccount(userID string, typ domain.AccountType) (domain.Account, error) {
	if typ != domain.AccountChecking && typ != domain.AccountSavings {
		return domain.Account{}, domain.ErrMissingField
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	u, ok := l.users[userID]
	if !ok {
		return domain.Account{}, domain.ErrUserNotFound
	}
	if !u.Active {
		return domain.Account{}, domain.ErrUserInactive
	}

	return *l.createAccount(userID, typ), nil
}

// createAccount assumes l.mu is held for writing.
func (l *Ledger) createAccount(userID string, typ domain.AccountType) *domain.Account {
	a := &domain.Account{
		ID:        newID(),
		UserID:    userID,
		Number:    l.newAccountNumber(),
		Type:      typ,
		Balance:   0,
		Active:    true,
		CreatedAt: l.now(),
	}
	l.accounts[a.ID] = a
	l.accountOrder = append(l.accountOrder, a.ID)
	return a
}

// newAccountNumber generates a 10-digit account number, retrying on the
// unlikely collision with an existing account. Assumes l.mu is held.
func (l *Ledger) newAccountNumber() string {
	for {
		n := fmt.Sprintf("%010d", l.rng.Int63n(1e10))
		if !l.accountNumberExists(n) {
			return n
		}
	}
}

func (l *Ledger) accountNumberExists(number string) bool {
	for _, a := range l.accounts {
		if a.Number == number {
			return true
		}
	}
	return false
}

// AccountsByUser returns the user's active accounts in creation order.
func (l *Ledger) AccountsByUser(userID string) []domain.Account {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []domain.Account
	for _, id := range l.accountOrder {
		a := l.accounts[id]
		if a.UserID == userID && a.Active {
			out = append(out, *a)
		}
	}
	return out
}

// AccountByID returns a snapshot of a single account.
func (l *Ledger) AccountByID(id string) (domain.Account, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	a, ok := l.accounts[id]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	return *a, nil
}

// AccountByNumber resolves a full account number to its account. Used by the
// transfer surface so senders can address recipients by number.
func (l *Ledger) AccountByNumber(number string) (domain.Account, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, a := range l.accounts {
		if a.Number == number {
			return *a, nil
		}
	}
	return domain.Account{}, domain.ErrAccountNotFound
}

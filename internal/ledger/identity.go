package ledger

import (
	"strings"

	"github.com/harborbank/core/internal/domain"
)

// RegisterUser creates a new customer identity together with its default
// checking account. Email matching is a case-sensitive exact match; a live
// user already holding the email rejects the registration.
func (l *Ledger) RegisterUser(name, email, passwordHash, phone string) (domain.User, domain.Account, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || passwordHash == "" {
		return domain.User{}, domain.Account{}, domain.ErrMissingField
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, taken := l.emailIndex[email]; taken {
		return domain.User{}, domain.Account{}, domain.ErrEmailTaken
	}

	user := &domain.User{
		ID:           newID(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         domain.RoleCustomer,
		Phone:        phone,
		Active:       true,
		CreatedAt:    l.now(),
	}
	l.users[user.ID] = user
	l.emailIndex[user.Email] = user.ID

	account := l.createAccount(user.ID, domain.AccountChecking)
	return *user, *account, nil
}

// UserByEmail looks up a user by exact email. Used by authentication.
func (l *Ledger) UserByEmail(email string) (domain.User, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	id, ok := l.emailIndex[email]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return *l.users[id], nil
}

// UserByID returns a snapshot of the user with the given id.
func (l *Ledger) UserByID(id string) (domain.User, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	u, ok := l.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return *u, nil
}

// UpdateProfile merges the provided fields into the user record. Changing
// the email re-validates uniqueness against all live users.
func (l *Ledger) UpdateProfile(userID string, patch domain.ProfilePatch) (domain.User, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	u, ok := l.users[userID]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}

	if patch.Email != nil && *patch.Email != u.Email {
		if strings.TrimSpace(*patch.Email) == "" {
			return domain.User{}, domain.ErrMissingField
		}
		if _, taken := l.emailIndex[*patch.Email]; taken {
			return domain.User{}, domain.ErrEmailTaken
		}
		delete(l.emailIndex, u.Email)
		u.Email = *patch.Email
		l.emailIndex[u.Email] = u.ID
	}
	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return domain.User{}, domain.ErrMissingField
		}
		u.Name = *patch.Name
	}
	if patch.Phone != nil {
		u.Phone = *patch.Phone
	}

	return *u, nil
}

// SetUserActive toggles the active flag. Deactivation cascades to all of the
// user's accounts inside the same critical section; reactivation does not
// reactivate accounts.
func (l *Ledger) SetUserActive(userID string, active bool) (domain.User, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.setUserActiveLocked(userID, active)
}

// ToggleUserActive flips the active flag atomically and returns the updated
// user. Admin surface of SetUserActive.
func (l *Ledger) ToggleUserActive(userID string) (domain.User, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	u, ok := l.users[userID]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return l.setUserActiveLocked(userID, !u.Active)
}

func (l *Ledger) setUserActiveLocked(userID string, active bool) (domain.User, error) {
	u, ok := l.users[userID]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}

	u.Active = active
	if !active {
		for _, a := range l.accounts {
			if a.UserID == userID {
				a.Active = false
			}
		}
	}
	return *u, nil
}

// SetUserRole changes a user's role. Used when bootstrapping the admin
// account; registration always produces customers.
func (l *Ledger) SetUserRole(userID string, role domain.Role) (domain.User, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	u, ok := l.users[userID]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	u.Role = role
	return *u, nil
}

// DeleteUser hard-deletes the user and all accounts they own. Transactions
// stay in the log; it is append-only.
func (l *Ledger) DeleteUser(userID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	u, ok := l.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}

	delete(l.emailIndex, u.Email)
	delete(l.users, userID)

	kept := l.accountOrder[:0]
	for _, id := range l.accountOrder {
		if l.accounts[id].UserID == userID {
			delete(l.accounts, id)
			continue
		}
		kept = append(kept, id)
	}
	l.accountOrder = kept
	return nil
}

// Users returns a snapshot of every user record, in no particular order.
// Admin-only consumer.
func (l *Ledger) Users() []domain.User {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.User, 0, len(l.users))
	for _, u := range l.users {
		out = append(out, *u)
	}
	return out
}

package ledger

import (
	"errors"
	"testing"

	"github.com/harborbank/core/internal/domain"
)

func strptr(s string) *string { return &s }

func TestRegisterCreatesDefaultCheckingAccount(t *testing.T) {
	l := New(nil)

	user, account, err := l.RegisterUser("Alice", "alice@example.com", "hash", "555-0100")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Role != domain.RoleCustomer || !user.Active {
		t.Fatalf("new users must be active customers")
	}
	if account.UserID != user.ID || account.Type != domain.AccountChecking {
		t.Fatalf("default account must be a checking account owned by the new user")
	}
	if account.Balance != 0 || !account.Active {
		t.Fatalf("default account must start active with zero balance")
	}

	accounts := l.AccountsByUser(user.ID)
	if len(accounts) != 1 || accounts[0].ID != account.ID {
		t.Fatalf("expected exactly the default account, got %d", len(accounts))
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	l := New(nil)
	if _, _, err := l.RegisterUser("Alice", "alice@example.com", "hash", ""); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	_, _, err := l.RegisterUser("Impostor", "alice@example.com", "hash2", "")
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if got := len(l.Users()); got != 1 {
		t.Fatalf("failed registration must not create a user, have %d", got)
	}
}

func TestEmailMatchIsCaseSensitive(t *testing.T) {
	l := New(nil)
	if _, _, err := l.RegisterUser("Alice", "alice@example.com", "hash", ""); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, _, err := l.RegisterUser("Other", "Alice@example.com", "hash", ""); err != nil {
		t.Fatalf("differently-cased email must register: %v", err)
	}
	if _, err := l.UserByEmail("ALICE@example.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("lookup must be exact-match, got %v", err)
	}
}

func TestUpdateProfileMergesFields(t *testing.T) {
	l := New(nil)
	user, _, err := l.RegisterUser("Alice", "alice@example.com", "hash", "555-0100")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	updated, err := l.UpdateProfile(user.ID, domain.ProfilePatch{Name: strptr("Alice B."), Phone: strptr("555-0199")})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Name != "Alice B." || updated.Phone != "555-0199" || updated.Email != "alice@example.com" {
		t.Fatalf("patch merged incorrectly: %+v", updated)
	}

	if _, err := l.UpdateProfile("missing", domain.ProfilePatch{Name: strptr("x")}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUpdateProfileEnforcesEmailUniqueness(t *testing.T) {
	l := New(nil)
	alice, _, _ := l.RegisterUser("Alice", "alice@example.com", "hash", "")
	if _, _, err := l.RegisterUser("Bob", "bob@example.com", "hash", ""); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, err := l.UpdateProfile(alice.ID, domain.ProfilePatch{Email: strptr("bob@example.com")}); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	// Switching to a free address reindexes so the old one is reusable.
	if _, err := l.UpdateProfile(alice.ID, domain.ProfilePatch{Email: strptr("alice.b@example.com")}); err != nil {
		t.Fatalf("email change failed: %v", err)
	}
	if _, _, err := l.RegisterUser("Newcomer", "alice@example.com", "hash", ""); err != nil {
		t.Fatalf("released email must be registrable again: %v", err)
	}
}

func TestDeactivateUserCascadesToAccounts(t *testing.T) {
	l := New(nil)
	user, _, _ := l.RegisterUser("Alice", "alice@example.com", "hash", "")
	if _, err := l.OpenAccount(user.ID, domain.AccountSavings); err != nil {
		t.Fatalf("open account failed: %v", err)
	}

	updated, err := l.SetUserActive(user.ID, false)
	if err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}
	if updated.Active {
		t.Fatalf("user still active after deactivation")
	}
	if got := l.AccountsByUser(user.ID); len(got) != 0 {
		t.Fatalf("expected no active accounts after deactivation, got %d", len(got))
	}
}

func TestReactivationDoesNotReactivateAccounts(t *testing.T) {
	l := New(nil)
	user, _, _ := l.RegisterUser("Alice", "alice@example.com", "hash", "")
	if _, err := l.SetUserActive(user.ID, false); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}

	updated, err := l.SetUserActive(user.ID, true)
	if err != nil {
		t.Fatalf("reactivate failed: %v", err)
	}
	if !updated.Active {
		t.Fatalf("user must be active again")
	}
	if got := l.AccountsByUser(user.ID); len(got) != 0 {
		t.Fatalf("accounts must stay inactive after user reactivation, got %d", len(got))
	}
}

func TestToggleUserActiveFlips(t *testing.T) {
	l := New(nil)
	user, _, _ := l.RegisterUser("Alice", "alice@example.com", "hash", "")

	off, err := l.ToggleUserActive(user.ID)
	if err != nil || off.Active {
		t.Fatalf("first toggle should deactivate: %+v %v", off, err)
	}
	on, err := l.ToggleUserActive(user.ID)
	if err != nil || !on.Active {
		t.Fatalf("second toggle should reactivate: %+v %v", on, err)
	}
	if _, err := l.ToggleUserActive("missing"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestDeleteUserRemovesOnlyTheirAccounts(t *testing.T) {
	l := New(nil)
	alice, aliceAcc, _ := l.RegisterUser("Alice", "alice@example.com", "hash", "")
	bob, bobAcc, _ := l.RegisterUser("Bob", "bob@example.com", "hash", "")

	if err := l.DeleteUser(alice.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := l.UserByID(alice.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("deleted user still present")
	}
	if _, err := l.AccountByID(aliceAcc.ID); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("deleted user's account still present")
	}
	if _, err := l.AccountByID(bobAcc.ID); err != nil {
		t.Fatalf("unrelated account was removed: %v", err)
	}
	if got := l.AccountsByUser(bob.ID); len(got) != 1 {
		t.Fatalf("bob must keep exactly his account, got %d", len(got))
	}

	// Freed email becomes registrable again after a hard delete.
	if _, _, err := l.RegisterUser("Alice II", "alice@example.com", "hash", ""); err != nil {
		t.Fatalf("email not released by delete: %v", err)
	}
}

package domain

import "time"

// AccountType is the product category of an account.
type AccountType string

const (
	AccountChecking AccountType = "checking"
	AccountSavings  AccountType = "savings"
)

// Account is a bank account owned by exactly one user. Its balance is only
// ever mutated by the ledger engine and never goes negative.
type Account struct {
	ID        string
	UserID    string
	Number    string
	Type      AccountType
	Balance   Amount
	Active    bool
	CreatedAt time.Time
}

// MaskedNumber hides all but the last four digits of the account number for
// display surfaces.
func (a Account) MaskedNumber() string {
	if len(a.Number) <= 4 {
		return a.Number
	}
	return "**** " + a.Number[len(a.Number)-4:]
}

package ledger

import (
	"math"

	"github.com/harborbank/core/internal/domain"
)

// TransferResult is the committed outcome of a transfer: both updated
// accounts and the single transaction recording the movement.
type TransferResult struct {
	From domain.Account
	To   domain.Account
	Tx   domain.Transaction
}

// Deposit credits the account and appends a completed deposit record. The
// balance change and the log append happen in one critical section; a failed
// precondition mutates nothing.
func (l *Ledger) Deposit(accountID string, amount domain.Amount, description string) (domain.Account, domain.Transaction, error) {
	if amount <= 0 {
		return domain.Account{}, domain.Transaction{}, domain.ErrInvalidAmount
	}

	l.mu.Lock()
	a, ok := l.accounts[accountID]
	if !ok {
		l.mu.Unlock()
		return domain.Account{}, domain.Transaction{}, domain.ErrAccountNotFound
	}
	if !a.Active {
		l.mu.Unlock()
		return domain.Account{}, domain.Transaction{}, domain.ErrAccountInactive
	}
	if creditWouldOverflow(a.Balance, amount) {
		l.mu.Unlock()
		return domain.Account{}, domain.Transaction{}, domain.ErrInvalidAmount
	}

	a.Balance += amount
	tx := l.appendTransaction(domain.Transaction{
		ToAccountID: accountID,
		Amount:      amount,
		Type:        domain.TypeDeposit,
		Description: description,
		Status:      domain.StatusCompleted,
	})
	account := *a
	l.mu.Unlock()

	l.notify(tx)
	return account, tx, nil
}

// Withdraw debits the account and appends a completed withdrawal record.
// Insufficient funds fail the command without touching balance or log.
func (l *Ledger) Withdraw(accountID string, amount domain.Amount, description string) (domain.Account, domain.Transaction, error) {
	if amount <= 0 {
		return domain.Account{}, domain.Transaction{}, domain.ErrInvalidAmount
	}

	l.mu.Lock()
	a, ok := l.accounts[accountID]
	if !ok {
		l.mu.Unlock()
		return domain.Account{}, domain.Transaction{}, domain.ErrAccountNotFound
	}
	if !a.Active {
		l.mu.Unlock()
		return domain.Account{}, domain.Transaction{}, domain.ErrAccountInactive
	}
	if a.Balance < amount {
		l.mu.Unlock()
		return domain.Account{}, domain.Transaction{}, domain.ErrInsufficientFunds
	}

	a.Balance -= amount
	tx := l.appendTransaction(domain.Transaction{
		FromAccountID: accountID,
		Amount:        amount,
		Type:          domain.TypeWithdrawal,
		Description:   description,
		Status:        domain.StatusCompleted,
	})
	account := *a
	l.mu.Unlock()

	l.notify(tx)
	return account, tx, nil
}

// Transfer moves funds between two distinct active accounts, recording
// exactly one transfer transaction referencing both. Either both balances
// change and the record is appended, or nothing happens.
func (l *Ledger) Transfer(fromID, toID string, amount domain.Amount, description string) (TransferResult, error) {
	if amount <= 0 {
		return TransferResult{}, domain.ErrInvalidAmount
	}
	if fromID == toID {
		return TransferResult{}, domain.ErrSameAccount
	}

	l.mu.Lock()
	from, okFrom := l.accounts[fromID]
	to, okTo := l.accounts[toID]
	if !okFrom || !okTo {
		l.mu.Unlock()
		return TransferResult{}, domain.ErrAccountNotFound
	}
	if !from.Active || !to.Active {
		l.mu.Unlock()
		return TransferResult{}, domain.ErrAccountInactive
	}
	if from.Balance < amount {
		l.mu.Unlock()
		return TransferResult{}, domain.ErrInsufficientFunds
	}
	if creditWouldOverflow(to.Balance, amount) {
		l.mu.Unlock()
		return TransferResult{}, domain.ErrInvalidAmount
	}

	from.Balance -= amount
	to.Balance += amount
	tx := l.appendTransaction(domain.Transaction{
		FromAccountID: fromID,
		ToAccountID:   toID,
		Amount:        amount,
		Type:          domain.TypeTransfer,
		Description:   description,
		Status:        domain.StatusCompleted,
	})
	result := TransferResult{From: *from, To: *to, Tx: tx}
	l.mu.Unlock()

	l.notify(tx)
	return result, nil
}

// creditWouldOverflow reports whether adding amount to balance would wrap
// int64 and produce a negative balance.
func creditWouldOverflow(balance, amount domain.Amount) bool {
	return balance > domain.Amount(math.MaxInt64)-amount
}

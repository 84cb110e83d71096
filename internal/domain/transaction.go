package domain

import "time"

// TransactionType distinguishes the three money movements.
type TransactionType string

const (
	TypeDeposit    TransactionType = "deposit"
	TypeWithdrawal TransactionType = "withdrawal"
	TypeTransfer   TransactionType = "transfer"
)

// TransactionStatus tracks settlement state. The base engine always commits
// transactions as completed; pending and failed are reserved for deferred
// settlement flows.
type TransactionStatus string

const (
	StatusCompleted TransactionStatus = "completed"
	StatusPending   TransactionStatus = "pending"
	StatusFailed    TransactionStatus = "failed"
)

// Transaction is one immutable entry in the append-only ledger log.
// A deposit has only a destination, a withdrawal only a source, and a
// transfer references both accounts in a single record.
type Transaction struct {
	ID            string
	FromAccountID string
	ToAccountID   string
	Amount        Amount
	Type          TransactionType
	Description   string
	Status        TransactionStatus
	CreatedAt     time.Time
}

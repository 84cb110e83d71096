package ledger

import "github.com/harborbank/core/internal/domain"

// appendTransaction assigns an id and timestamp and stores the record in the
// append-only log. Assumes l.mu is held for writing.
func (l *Ledger) appendTransaction(tx domain.Transaction) domain.Transaction {
	tx.ID = newID()
	tx.CreatedAt = l.now()
	l.log = append(l.log, tx)
	return tx
}

// StatementFor returns every transaction where the account is source or
// destination, newest first. The ordering is part of the log's contract;
// appends are serialized, so insertion order is creation order.
func (l *Ledger) StatementFor(accountID string) []domain.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []domain.Transaction
	for i := len(l.log) - 1; i >= 0; i-- {
		tx := l.log[i]
		if tx.FromAccountID == accountID || tx.ToAccountID == accountID {
			out = append(out, tx)
		}
	}
	return out
}

// AllTransactions returns the full log newest first. Admin-only consumer.
func (l *Ledger) AllTransactions() []domain.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.Transaction, 0, len(l.log))
	for i := len(l.log) - 1; i >= 0; i-- {
		out = append(out, l.log[i])
	}
	return out
}

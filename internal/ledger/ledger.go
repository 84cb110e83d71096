// Package ledger holds the in-memory banking core: the identity table, the
// account table, the append-only transaction log, and the engine that
// executes money movements against them. All state lives behind one lock;
// every command runs validate-then-apply inside a single critical section,
// so readers only ever observe fully committed states.
package ledger

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/harborbank/core/internal/domain"
)

// Notifier receives committed transactions after the critical section has
// been released. Implementations must not call back into the ledger.
type Notifier interface {
	TransactionCommitted(tx domain.Transaction)
}

// Ledger is the aggregate owning users, accounts and the transaction log.
// No other component may mutate balances or append transactions.
type Ledger struct {
	mu sync.RWMutex

	users      map[string]*domain.User
	emailIndex map[string]string

	accounts     map[string]*domain.Account
	accountOrder []string

	log []domain.Transaction

	notifier Notifier
	rng      *rand.Rand
	now      func() time.Time
}

// New constructs an empty ledger. The notifier may be nil.
func New(notifier Notifier) *Ledger {
	return &Ledger{
		users:      make(map[string]*domain.User),
		emailIndex: make(map[string]string),
		accounts:   make(map[string]*domain.Account),
		notifier:   notifier,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func newID() string {
	return uuid.NewString()
}

func (l *Ledger) notify(txs ...domain.Transaction) {
	if l.notifier == nil {
		return
	}
	for _, tx := range txs {
		l.notifier.TransactionCommitted(tx)
	}
}

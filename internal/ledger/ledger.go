// Package ledger implements the debt lifecycle:
//
//	pending -> confirmed -> paid
//	pending -> rejected
//
// Every mutation is persisted through a Store before it is reported as done.
// If the store fails, the in-memory change is undone and the caller gets a
// KindPersistenceFailure error. A single mutex covers read, modify and persist,
// so the ledger is safe for concurrent use by several transports.
package ledger

import (
	"context"
	"slices"
	"sync"

	"github.com/dmitrijs2005/debtkeeper/internal/common"
	"github.com/dmitrijs2005/debtkeeper/internal/models"
)

// Store is the durable backing collection. Save always receives the whole
// collection in ascending id order.
type Store interface {
	Load(ctx context.Context) ([]models.Debt, error)
	Save(ctx context.Context, debts []models.Debt) error
}

// Ledger owns the debt collection. Mutations are serialized and each one is
// persisted before it becomes visible.
type Ledger struct {
	mu     sync.Mutex
	store  Store
	debts  []models.Debt
	nextID int64
}

// Open loads the collection from store. Any load or validation problem is
// reported as KindStartupCorruption; callers are expected to stop.
func Open(ctx context.Context, store Store) (*Ledger, error) {
	debts, err := store.Load(ctx)
	if err != nil {
		return nil, newError(KindStartupCorruption, "open", err)
	}
	if err := models.ValidateCollection(debts); err != nil {
		return nil, newError(KindStartupCorruption, "open", err)
	}

	l := &Ledger{store: store, debts: debts, nextID: 1}
	if n := len(debts); n > 0 {
		l.nextID = debts[n-1].ID + 1
	}
	return l, nil
}

// CreateDebt records that debtor owes creditor amount and returns the new id.
// An identical pending debt (same parties and amount) blocks creation.
func (l *Ledger) CreateDebt(ctx context.Context, debtor, creditor string, amount int64) (int64, error) {
	const op = "create debt"

	if amount <= 0 || debtor == "" || creditor == "" {
		return 0, newError(KindInvalidArgument, op, common.ErrorInvalidArgument)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, d := range l.debts {
		if d.Status == models.StatusPending && d.Debtor == debtor && d.Creditor == creditor && d.Amount == amount {
			return 0, newError(KindDuplicatePending, op, nil)
		}
	}

	id := l.nextID
	l.debts = append(l.debts, models.Debt{
		ID:       id,
		Debtor:   debtor,
		Creditor: creditor,
		Amount:   amount,
		Status:   models.StatusPending,
	})

	if err := l.persist(ctx); err != nil {
		l.debts = l.debts[:len(l.debts)-1]
		return 0, newError(KindPersistenceFailure, op, err)
	}

	l.nextID++
	return id, nil
}

// ConfirmDebt moves a pending debt to confirmed. Only the creditor may do it.
func (l *Ledger) ConfirmDebt(ctx context.Context, actor string, id int64) (models.Debt, error) {
	return l.transition(ctx, "confirm debt", id, models.StatusConfirmed, func(d models.Debt) bool {
		return d.Status == models.StatusPending && d.Creditor == actor
	})
}

// RejectDebt moves a pending debt to rejected. Only the creditor may do it.
func (l *Ledger) RejectDebt(ctx context.Context, actor string, id int64) (models.Debt, error) {
	return l.transition(ctx, "reject debt", id, models.StatusRejected, func(d models.Debt) bool {
		return d.Status == models.StatusPending && d.Creditor == actor
	})
}

// SettleDebt marks a confirmed debt as paid. Either party may do it.
func (l *Ledger) SettleDebt(ctx context.Context, actor string, id int64) (models.Debt, error) {
	return l.transition(ctx, "settle debt", id, models.StatusPaid, func(d models.Debt) bool {
		return d.Status == models.StatusConfirmed && (d.Debtor == actor || d.Creditor == actor)
	})
}

// ListOwed returns open debts where actor is the debtor, ascending by id.
func (l *Ledger) ListOwed(actor string) []models.Debt {
	return l.filter(func(d models.Debt) bool { return d.Debtor == actor && d.Status.Open() })
}

// ListOwedTo returns open debts where actor is the creditor, ascending by id.
func (l *Ledger) ListOwedTo(actor string) []models.Debt {
	return l.filter(func(d models.Debt) bool { return d.Creditor == actor && d.Status.Open() })
}

// Get returns a copy of the debt with the given id.
func (l *Ledger) Get(id int64) (models.Debt, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if i := l.index(id); i >= 0 {
		return l.debts[i], true
	}
	return models.Debt{}, false
}

// transition applies to to debt id when allowed holds. A missing record and a
// refused actor produce the same error on purpose.
func (l *Ledger) transition(ctx context.Context, op string, id int64, to models.Status, allowed func(models.Debt) bool) (models.Debt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.index(id)
	if i < 0 || !allowed(l.debts[i]) {
		return models.Debt{}, newError(KindNotFoundOrUnauthorized, op, nil)
	}

	prev := l.debts[i].Status
	l.debts[i].Status = to

	if err := l.persist(ctx); err != nil {
		l.debts[i].Status = prev
		return models.Debt{}, newError(KindPersistenceFailure, op, err)
	}
	return l.debts[i], nil
}

func (l *Ledger) filter(keep func(models.Debt) bool) []models.Debt {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []models.Debt
	for _, d := range l.debts {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out
}

// index finds id with a binary search; ids are strictly increasing.
func (l *Ledger) index(id int64) int {
	i, found := slices.BinarySearchFunc(l.debts, id, func(d models.Debt, id int64) int {
		switch {
		case d.ID < id:
			return -1
		case d.ID > id:
			return 1
		}
		return 0
	})
	if !found {
		return -1
	}
	return i
}

// persist hands the store its own copy. The request context may be cancelled
// by the transport, but a mutation that reached this point must still be
// written, so cancellation is detached.
func (l *Ledger) persist(ctx context.Context) error {
	return l.store.Save(context.WithoutCancel(ctx), slices.Clone(l.debts))
}

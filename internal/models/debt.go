// Package models holds the debt record shared by the ledger, the storage
// backends and the transports.
package models

import (
	"fmt"

	"github.com/dmitrijs2005/debtkeeper/internal/common"
)

// Status is the lifecycle state of a debt.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusRejected  Status = "rejected"
	StatusPaid      Status = "paid"
)

// ParseStatus converts a stored status string into a Status.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusConfirmed, StatusRejected, StatusPaid:
		return st, nil
	default:
		return "", fmt.Errorf("unknown status %q: %w", s, common.ErrorInvalidArgument)
	}
}

// Open reports whether the debt still counts as outstanding.
func (s Status) Open() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusPaid
}

// Debt is a single obligation of Debtor towards Creditor.
// Amount is a whole number of currency units and never changes after creation.
type Debt struct {
	ID       int64
	Debtor   string
	Creditor string
	Amount   int64
	Status   Status
}

// Validate checks a single record read back from storage.
func (d Debt) Validate() error {
	if d.ID <= 0 {
		return fmt.Errorf("debt id %d: %w", d.ID, common.ErrorInvalidArgument)
	}
	if d.Amount <= 0 {
		return fmt.Errorf("debt #%d amount %d: %w", d.ID, d.Amount, common.ErrorInvalidArgument)
	}
	if d.Debtor == "" || d.Creditor == "" {
		return fmt.Errorf("debt #%d has an empty party: %w", d.ID, common.ErrorInvalidArgument)
	}
	if _, err := ParseStatus(string(d.Status)); err != nil {
		return fmt.Errorf("debt #%d: %w", d.ID, err)
	}
	return nil
}

// ValidateCollection checks every record and that ids are strictly increasing.
func ValidateCollection(debts []Debt) error {
	var prev int64
	for _, d := range debts {
		if err := d.Validate(); err != nil {
			return err
		}
		if d.ID <= prev {
			return fmt.Errorf("debt id %d after %d: %w", d.ID, prev, common.ErrorCorrupted)
		}
		prev = d.ID
	}
	return nil
}

package models

import (
	"testing"

	"github.com/dmitrijs2005/debtkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"pending", "confirmed", "rejected", "paid"} {
		st, err := ParseStatus(s)
		require.NoError(t, err)
		assert.Equal(t, Status(s), st)
	}

	_, err := ParseStatus("settled")
	require.ErrorIs(t, err, common.ErrorInvalidArgument)
}

func TestStatusPredicates(t *testing.T) {
	assert.True(t, StatusPending.Open())
	assert.True(t, StatusConfirmed.Open())
	assert.False(t, StatusRejected.Open())
	assert.False(t, StatusPaid.Open())

	assert.True(t, StatusPaid.Terminal())
	assert.True(t, StatusRejected.Terminal())
	assert.False(t, StatusPending.Terminal())
}

func TestDebtValidate(t *testing.T) {
	ok := Debt{ID: 1, Debtor: "alice", Creditor: "bob", Amount: 500, Status: StatusPending}
	require.NoError(t, ok.Validate())

	tests := []struct {
		name string
		mut  func(*Debt)
	}{
		{"zero id", func(d *Debt) { d.ID = 0 }},
		{"zero amount", func(d *Debt) { d.Amount = 0 }},
		{"negative amount", func(d *Debt) { d.Amount = -5 }},
		{"empty debtor", func(d *Debt) { d.Debtor = "" }},
		{"empty creditor", func(d *Debt) { d.Creditor = "" }},
		{"bad status", func(d *Debt) { d.Status = "lost" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := ok
			tt.mut(&d)
			assert.ErrorIs(t, d.Validate(), common.ErrorInvalidArgument)
		})
	}
}

func TestValidateCollection(t *testing.T) {
	d := func(id int64) Debt {
		return Debt{ID: id, Debtor: "a", Creditor: "b", Amount: 1, Status: StatusPaid}
	}

	require.NoError(t, ValidateCollection(nil))
	require.NoError(t, ValidateCollection([]Debt{d(1), d(2), d(5)}))
	assert.ErrorIs(t, ValidateCollection([]Debt{d(2), d(2)}), common.ErrorCorrupted)
	assert.ErrorIs(t, ValidateCollection([]Debt{d(3), d(1)}), common.ErrorCorrupted)
}

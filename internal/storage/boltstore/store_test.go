package boltstore

import (
	"context"
	"path/filepath"
	"testing"

	bolt "github.com/boltdb/bolt"

	"github.com/dmitrijs2005/debtkeeper/internal/common"
	"github.com/dmitrijs2005/debtkeeper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "debts.bolt")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestLoad_EmptyDatabase(t *testing.T) {
	s, _ := openStore(t)

	debts, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, debts)
}

func TestSaveLoad_RoundTripAndOrder(t *testing.T) {
	ctx := context.Background()
	s, path := openStore(t)

	debts := []models.Debt{
		{ID: 1, Debtor: "alice", Creditor: "bob", Amount: 500, Status: models.StatusPaid},
		{ID: 2, Debtor: "bob", Creditor: "alice", Amount: 20, Status: models.StatusPending},
		{ID: 300, Debtor: "carol", Creditor: "bob", Amount: 7, Status: models.StatusConfirmed},
	}
	require.NoError(t, s.Save(ctx, debts))

	// survives reopening
	require.NoError(t, s.Close())
	s2, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s2.Close() })

	got, err := s2.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, debts, got)
}

func TestSave_UpdatesAndRemovesStale(t *testing.T) {
	ctx := context.Background()
	s, _ := openStore(t)

	require.NoError(t, s.Save(ctx, []models.Debt{
		{ID: 1, Debtor: "a", Creditor: "b", Amount: 1, Status: models.StatusPending},
		{ID: 2, Debtor: "a", Creditor: "b", Amount: 2, Status: models.StatusPending},
	}))

	next := []models.Debt{
		{ID: 1, Debtor: "a", Creditor: "b", Amount: 1, Status: models.StatusConfirmed},
	}
	require.NoError(t, s.Save(ctx, next))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, next, got)
}

func TestLoad_CorruptValue(t *testing.T) {
	s, _ := openStore(t)

	require.NoError(t, s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put(key(1), []byte("{oops"))
	}))

	_, err := s.Load(context.Background())
	require.ErrorIs(t, err, common.ErrorCorrupted)
}

func TestLoad_UnknownStatus(t *testing.T) {
	s, _ := openStore(t)

	require.NoError(t, s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put(key(1), []byte(`{"from":"a","to":"b","amount":1,"status":"gone"}`))
	}))

	_, err := s.Load(context.Background())
	require.ErrorIs(t, err, common.ErrorCorrupted)
}

func TestKeyOrdering(t *testing.T) {
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 1, 0}, key(256))
}

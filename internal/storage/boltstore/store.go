// Package boltstore keeps debt records in an embedded BoltDB file, one key per
// debt. Keys are big-endian ids so a cursor walks them in id order.
package boltstore

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	bolt "github.com/boltdb/bolt"

	"github.com/dmitrijs2005/debtkeeper/internal/common"
	"github.com/dmitrijs2005/debtkeeper/internal/filex"
	"github.com/dmitrijs2005/debtkeeper/internal/models"
)

const bucketName = "debts"

type value struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount int64  `json:"amount"`
	Status string `json:"status"`
}

type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the database at path and makes sure the bucket
// exists. The file lock is held until Close.
func Open(path string) (*Store, error) {
	if err := filex.EnsureDir(path); err != nil {
		return nil, err
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("bolt open %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Load(_ context.Context) ([]models.Debt, error) {
	debts := []models.Debt{}

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		return b.ForEach(func(k, v []byte) error {
			if len(k) != 8 {
				return fmt.Errorf("key %x: %w", k, common.ErrorCorrupted)
			}
			var val value
			if err := json.Unmarshal(v, &val); err != nil {
				return fmt.Errorf("key %x: %v: %w", k, err, common.ErrorCorrupted)
			}
			st, err := models.ParseStatus(val.Status)
			if err != nil {
				return fmt.Errorf("key %x: %v: %w", k, err, common.ErrorCorrupted)
			}
			debts = append(debts, models.Debt{
				ID:       int64(binary.BigEndian.Uint64(k)),
				Debtor:   val.From,
				Creditor: val.To,
				Amount:   val.Amount,
				Status:   st,
			})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return debts, nil
}

// Save makes the bucket match debts in one transaction. Records whose stored
// bytes are already identical are not rewritten, and keys absent from debts
// are removed.
func (s *Store) Save(_ context.Context, debts []models.Debt) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))

		keep := make(map[uint64]struct{}, len(debts))
		for _, d := range debts {
			keep[uint64(d.ID)] = struct{}{}
		}

		var stale [][]byte
		c := b.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			if len(k) == 8 {
				if _, ok := keep[binary.BigEndian.Uint64(k)]; ok {
					continue
				}
			}
			stale = append(stale, append([]byte(nil), k...))
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}

		for _, d := range debts {
			data, err := json.Marshal(value{From: d.Debtor, To: d.Creditor, Amount: d.Amount, Status: string(d.Status)})
			if err != nil {
				return err
			}
			k := key(d.ID)
			if bytes.Equal(b.Get(k), data) {
				continue
			}
			if err := b.Put(k, data); err != nil {
				return fmt.Errorf("put debt #%d: %w", d.ID, err)
			}
		}
		return nil
	})
}

func key(id int64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, uint64(id))
	return k
}

// Package jsonfile stores the debt collection as a single JSON array:
//
//	[
//	  {"id": 1, "from": "alice", "to": "bob", "amount": 500, "status": "pending"}
//	]
//
// The file is rewritten in full on every save via an atomic rename.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/dmitrijs2005/debtkeeper/internal/common"
	"github.com/dmitrijs2005/debtkeeper/internal/filex"
	"github.com/dmitrijs2005/debtkeeper/internal/models"
)

type record struct {
	ID     int64  `json:"id"`
	From   string `json:"from"`
	To     string `json:"to"`
	Amount int64  `json:"amount"`
	Status string `json:"status"`
}

// Store is a storage backend over one JSON file.
type Store struct {
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string { return s.path }

// Load reads the collection. A missing file is an empty collection; anything
// that does not decode is reported as common.ErrorCorrupted.
func (s *Store) Load(_ context.Context) ([]models.Debt, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []models.Debt{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	debts, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	return debts, nil
}

func (s *Store) Save(_ context.Context, debts []models.Debt) error {
	b, err := Marshal(debts)
	if err != nil {
		return err
	}
	if err := filex.WriteFileAtomic(s.path, b, 0o600); err != nil {
		return fmt.Errorf("save %s: %w", s.path, err)
	}
	return nil
}

// Decode parses a JSON array of debt records.
func Decode(r io.Reader) ([]models.Debt, error) {
	var recs []record
	dec := json.NewDecoder(r)
	if err := dec.Decode(&recs); err != nil {
		return nil, fmt.Errorf("decode: %v: %w", err, common.ErrorCorrupted)
	}
	if recs == nil {
		return nil, fmt.Errorf("expected a JSON array: %w", common.ErrorCorrupted)
	}
	// Only whitespace may follow the array.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("extra data after the array: %w", common.ErrorCorrupted)
	}

	debts := make([]models.Debt, 0, len(recs))
	for _, rec := range recs {
		st, err := models.ParseStatus(rec.Status)
		if err != nil {
			return nil, fmt.Errorf("record %d: %v: %w", rec.ID, err, common.ErrorCorrupted)
		}
		debts = append(debts, models.Debt{
			ID:       rec.ID,
			Debtor:   rec.From,
			Creditor: rec.To,
			Amount:   rec.Amount,
			Status:   st,
		})
	}
	return debts, nil
}

// Marshal renders debts with two-space indentation and without escaping
// non-ASCII or HTML characters. An empty collection becomes "[]".
func Marshal(debts []models.Debt) ([]byte, error) {
	recs := make([]record, 0, len(debts))
	for _, d := range debts {
		recs = append(recs, record{
			ID:     d.ID,
			From:   d.Debtor,
			To:     d.Creditor,
			Amount: d.Amount,
			Status: string(d.Status),
		})
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(recs); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Close is a no-op; the file is only open during Load and Save.
func (s *Store) Close() error { return nil }

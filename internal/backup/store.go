// Package backup ships a copy of the debt collection off-site after every
// successful save. Uploads run in the background and their failures are only
// logged.
package backup

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/debtkeeper/internal/logging"
	"github.com/dmitrijs2005/debtkeeper/internal/models"
	"github.com/dmitrijs2005/debtkeeper/internal/storage"
	"github.com/dmitrijs2005/debtkeeper/internal/storage/jsonfile"
)

const uploadTimeout = 10 * time.Second

// Uploader puts one object under key.
type Uploader interface {
	Upload(ctx context.Context, key string, body []byte) error
}

type snapshot struct {
	ctx     context.Context
	body    []byte
	records int
}

// Store wraps a storage backend and queues a JSON snapshot after each Save.
// At most one snapshot waits behind the running upload; a newer one replaces it.
type Store struct {
	storage.Backend
	uploader Uploader
	key      string
	logger   logging.Logger

	mu      sync.Mutex
	closed  bool
	pending chan snapshot
	done    chan struct{}
}

// Wrap starts the upload worker. Close stops it after the queued snapshot
// has been shipped.
func Wrap(backend storage.Backend, uploader Uploader, key string, logger logging.Logger) *Store {
	s := &Store{
		Backend:  backend,
		uploader: uploader,
		key:      key,
		logger:   logger,
		pending:  make(chan snapshot, 1),
		done:     make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *Store) Save(ctx context.Context, debts []models.Debt) error {
	if err := s.Backend.Save(ctx, debts); err != nil {
		return err
	}

	body, err := jsonfile.Marshal(debts)
	if err != nil {
		s.logger.Warn(ctx, "snapshot encode failed", "error", err)
		return nil
	}

	s.enqueue(snapshot{ctx: context.WithoutCancel(ctx), body: body, records: len(debts)})
	return nil
}

// Close drains the queue and closes the wrapped backend.
func (s *Store) Close() error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.pending)
	}
	s.mu.Unlock()

	<-s.done
	return s.Backend.Close()
}

func (s *Store) enqueue(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		s.logger.Warn(snap.ctx, "snapshot dropped, backup closed", "key", s.key)
		return
	}

	select {
	case s.pending <- snap:
		return
	default:
	}

	// Replace the stale snapshot. The worker may have taken it meanwhile,
	// either way there is room afterwards since only enqueue sends.
	select {
	case <-s.pending:
	default:
	}
	s.pending <- snap
}

func (s *Store) run() {
	defer close(s.done)
	for snap := range s.pending {
		s.upload(snap)
	}
}

func (s *Store) upload(snap snapshot) {
	ctx, cancel := context.WithTimeout(snap.ctx, uploadTimeout)
	defer cancel()

	if err := s.uploader.Upload(ctx, s.key, snap.body); err != nil {
		s.logger.Warn(ctx, "snapshot upload failed", "key", s.key, "error", err)
		return
	}
	s.logger.Debug(ctx, "snapshot uploaded", "key", s.key, "records", snap.records)
}

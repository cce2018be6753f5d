package telegram

import "sync"

// Directory remembers the private chat of every user who has written to the
// bot during this process lifetime. It is used for counterparty notices only
// and is not persisted.
type Directory struct {
	mu    sync.RWMutex
	chats map[string]int64
}

func NewDirectory() *Directory {
	return &Directory{chats: make(map[string]int64)}
}

func (d *Directory) Remember(identity string, chatID int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.chats[identity] = chatID
}

func (d *Directory) Lookup(identity string) (int64, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	id, ok := d.chats[identity]
	return id, ok
}

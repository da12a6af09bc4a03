package db

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/vidquote/transcript-engine/internal/domain"
)

// MemoryStore keeps transcripts in process memory. Meant for tests and
// single-instance deployments without Redis.
type MemoryStore struct {
	data map[string][]byte

	lock sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (am *MemoryStore) Save(ctx context.Context, tr *domain.Transcript) error {
	if tr == nil || tr.SourceID == "" {
		return fmt.Errorf("no source ID")
	}
	bs, err := json.Marshal(tr)
	if err != nil {
		return err
	}
	am.lock.Lock()
	defer am.lock.Unlock()
	am.data[tr.SourceID] = bs
	return nil
}

func (am *MemoryStore) Load(ctx context.Context, sourceID string) (*domain.Transcript, error) {
	am.lock.RLock()
	bs, ok := am.data[sourceID]
	am.lock.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	var tr domain.Transcript
	if err := json.Unmarshal(bs, &tr); err != nil {
		return nil, err
	}
	return &tr, nil
}

package progress

import "sync"

// Tracker records coarse acquisition progress per source ID.
// Writes are last-write-wins, there is no history.
type Tracker interface {
	SetProgress(sourceID string, percent int)
	GetProgress(sourceID string) (int, bool)
	Clear(sourceID string)
}

// MemTracker is an in-memory Tracker safe for concurrent use.
type MemTracker struct {
	data map[string]int

	lock sync.RWMutex
}

func NewMemTracker() *MemTracker {
	return &MemTracker{data: make(map[string]int)}
}

func (t *MemTracker) SetProgress(sourceID string, percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	t.lock.Lock()
	defer t.lock.Unlock()
	t.data[sourceID] = percent
}

func (t *MemTracker) GetProgress(sourceID string) (int, bool) {
	t.lock.RLock()
	defer t.lock.RUnlock()
	p, ok := t.data[sourceID]
	return p, ok
}

func (t *MemTracker) Clear(sourceID string) {
	t.lock.Lock()
	defer t.lock.Unlock()
	delete(t.data, sourceID)
}

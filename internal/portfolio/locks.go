package portfolio

import (
	"fmt"
	"sync"
)

// tickerLocks serializes writes per (portfolio, ticker) pair. It closes the
// window between the holdings check and the ledger insert in which two
// concurrent sells could both read the same stale position.
type tickerLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newTickerLocks() *tickerLocks {
	return &tickerLocks{locks: make(map[string]*sync.Mutex)}
}

func (t *tickerLocks) lock(portfolioID int64, ticker string) *sync.Mutex {
	key := fmt.Sprintf("%d:%s", portfolioID, ticker)

	t.mu.Lock()
	m, ok := t.locks[key]
	if !ok {
		m = &sync.Mutex{}
		t.locks[key] = m
	}
	t.mu.Unlock()

	m.Lock()
	return m
}

package catalog

import (
	"context"
	"sort"
	"sync"
)

// Memory is the terminal's in-process catalog cache.
type Memory struct {
	mu    sync.RWMutex
	items map[string]Item
	order []string
}

func NewMemory() *Memory {
	return &Memory{items: make(map[string]Item)}
}

func (m *Memory) ListItems(_ context.Context) ([]Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]Item, 0, len(m.order))
	for _, id := range m.order {
		items = append(items, m.items[id])
	}

	return items, nil
}

func (m *Memory) GetItem(_ context.Context, id string) (Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	it, ok := m.items[id]
	if !ok {
		return Item{}, ErrNotFound
	}

	return it, nil
}

func (m *Memory) FindByBarcode(_ context.Context, barcode string) (Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, it := range m.items {
		if it.Barcode != "" && it.Barcode == barcode {
			return it, nil
		}
	}

	return Item{}, ErrNotFound
}

func (m *Memory) ReplaceItems(_ context.Context, items []Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = make(map[string]Item, len(items))
	m.order = m.order[:0]

	for _, it := range items {
		if _, dup := m.items[it.ID]; !dup {
			m.order = append(m.order, it.ID)
		}

		m.items[it.ID] = it
	}

	sort.SliceStable(m.order, func(a, b int) bool {
		return m.items[m.order[a]].Name < m.items[m.order[b]].Name
	})

	return nil
}

func (m *Memory) AdjustStock(_ context.Context, adjustments []StockAdjustment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, adj := range adjustments {
		it, ok := m.items[adj.ItemID]
		if !ok {
			continue
		}

		it.Stock = max(0, it.Stock+adj.Delta)
		m.items[adj.ItemID] = it
	}

	return nil
}

package customer

import (
	"context"
	"sync"
)

type Memory struct {
	mu        sync.RWMutex
	customers []Customer
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) ListCustomers(_ context.Context) ([]Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Customer, len(m.customers))
	copy(out, m.customers)

	return out, nil
}

func (m *Memory) GetCustomer(_ context.Context, id string) (Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.customers {
		if c.ID == id {
			return c, nil
		}
	}

	return Customer{}, ErrNotFound
}

func (m *Memory) ReplaceCustomers(_ context.Context, customers []Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.customers = make([]Customer, len(customers))
	copy(m.customers, customers)

	return nil
}

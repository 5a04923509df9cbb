package buildstore

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is a map-backed store. Records go through the codec so they
// are isolated from later mutation by the caller.
type MemoryStore struct {
	mu    sync.RWMutex
	data  map[int][]byte
	codec codec
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore(compressThreshold int) *MemoryStore {
	return &MemoryStore{data: make(map[int][]byte), codec: newCodec(compressThreshold)}
}

func (m *MemoryStore) Save(_ context.Context, rec Record) error {
	if err := validate(rec); err != nil {
		return err
	}
	data, err := m.codec.encode(rec)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[rec.Number] = data
	return nil
}

func (m *MemoryStore) Get(_ context.Context, number int) (Record, error) {
	m.mu.RLock()
	data, ok := m.data[number]
	m.mu.RUnlock()
	if !ok {
		return Record{}, ErrBuildNotFound
	}
	return m.codec.decode(data)
}

func (m *MemoryStore) LastSuccessful(ctx context.Context) (Record, error) {
	numbers := m.numbers()
	for i := len(numbers) - 1; i >= 0; i-- {
		rec, err := m.Get(ctx, numbers[i])
		if err != nil {
			return Record{}, err
		}
		if rec.Result == Success {
			return rec, nil
		}
	}
	return Record{}, ErrBuildNotFound
}

func (m *MemoryStore) List(ctx context.Context) ([]Record, error) {
	var out []Record
	for _, n := range m.numbers() {
		rec, err := m.Get(ctx, n)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) numbers() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	numbers := make([]int, 0, len(m.data))
	for n := range m.data {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)
	return numbers
}

package portfolio

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/portfolio-backend/internal/models"
	"github.com/ignatzorin/portfolio-backend/internal/store"
	"github.com/ignatzorin/portfolio-backend/internal/upload"
)

// memTable: хранилище в памяти с подсчётом вызовов и подменой ошибок.
type memTable[T any] struct {
	mu     sync.Mutex
	rows   []T
	record func(*T) *models.Record
	clock  time.Time
	calls  map[string]int
	fail   map[string]error
	orders []store.Order
	// gate блокирует Query, пока тест не разрешит продолжить.
	gate chan struct{}
}

func newMemTable[T any](schema *Schema[T]) *memTable[T] {
	return &memTable[T]{
		record: schema.Record,
		clock:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		calls:  make(map[string]int),
		fail:   make(map[string]error),
	}
}

func (m *memTable[T]) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

func (m *memTable[T]) remoteCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls["insert"] + m.calls["update"] + m.calls["upsert"] + m.calls["delete"]
}

func (m *memTable[T]) FailOn(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail[op] = err
}

func (m *memTable[T]) begin(op string) error {
	m.calls[op]++
	return m.fail[op]
}

func (m *memTable[T]) Query(ctx context.Context, filter store.Filter, order store.Order) ([]T, error) {
	m.mu.Lock()
	gate := m.gate
	m.mu.Unlock()
	if gate != nil {
		<-gate
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = append(m.orders, order)
	if err := m.begin("query"); err != nil {
		return nil, err
	}

	out := []T{}
	for _, row := range m.rows {
		if filter.OwnerID == uuid.Nil || m.record(&row).UserID == filter.OwnerID {
			out = append(out, row)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return m.record(&out[i]).CreatedAt.After(m.record(&out[j]).CreatedAt)
	})
	return out, nil
}

func (m *memTable[T]) Insert(ctx context.Context, row *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("insert"); err != nil {
		return err
	}
	m.clock = m.clock.Add(time.Minute)
	rec := m.record(row)
	rec.ID = uuid.New()
	rec.CreatedAt = m.clock
	m.rows = append(m.rows, *row)
	return nil
}

func (m *memTable[T]) Update(ctx context.Context, id uuid.UUID, filter store.Filter, row *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("update"); err != nil {
		return err
	}
	for i := range m.rows {
		rec := m.record(&m.rows[i])
		if rec.ID == id && (filter.OwnerID == uuid.Nil || rec.UserID == filter.OwnerID) {
			updated := m.record(row)
			updated.ID = id
			updated.CreatedAt = rec.CreatedAt
			m.rows[i] = *row
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *memTable[T]) Upsert(ctx context.Context, row *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("upsert"); err != nil {
		return err
	}
	owner := m.record(row).UserID
	for i := range m.rows {
		rec := m.record(&m.rows[i])
		if rec.UserID == owner {
			updated := m.record(row)
			updated.ID = rec.ID
			updated.CreatedAt = rec.CreatedAt
			m.rows[i] = *row
			return nil
		}
	}
	m.clock = m.clock.Add(time.Minute)
	rec := m.record(row)
	rec.ID = uuid.New()
	rec.CreatedAt = m.clock
	m.rows = append(m.rows, *row)
	return nil
}

func (m *memTable[T]) Delete(ctx context.Context, id uuid.UUID, filter store.Filter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin("delete"); err != nil {
		return err
	}
	for i := range m.rows {
		rec := m.record(&m.rows[i])
		if rec.ID == id && (filter.OwnerID == uuid.Nil || rec.UserID == filter.OwnerID) {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(owner uuid.UUID, notice Notice) {
	m.Called(owner, notice)
}

func (m *mockNotifier) Invalidated(owner uuid.UUID, kind Kind) {
	m.Called(owner, kind)
}

func (m *mockNotifier) UploadChanged(owner uuid.UUID, kind Kind, status upload.Status) {
	m.Called(owner, kind, status)
}

// permissiveNotifier принимает любые вызовы.
func permissiveNotifier() *mockNotifier {
	n := new(mockNotifier)
	n.On("Notify", mock.Anything, mock.Anything).Maybe()
	n.On("Invalidated", mock.Anything, mock.Anything).Maybe()
	n.On("UploadChanged", mock.Anything, mock.Anything, mock.Anything).Maybe()
	return n
}

func testOwner() Owner {
	return Owner{ID: uuid.New(), Email: "owner@example.com", Name: "Ignat"}
}

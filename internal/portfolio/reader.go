package portfolio

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/portfolio-backend/internal/logger"
	"github.com/ignatzorin/portfolio-backend/internal/store"
)

// Status: состояние чтения раздела.
type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// Result: результат чтения: loading, ready(Data) или failed(Err).
type Result[T any] struct {
	Status Status
	Data   []T
	Err    error
}

// ReadCache: общий кэш прочитанных разделов, ключ (раздел, владелец).
// Поколение ключа растёт при каждой инвалидации: чтение, начатое до неё,
// не кладёт устаревшие строки обратно в кэш.
type ReadCache struct {
	items *gocache.Cache

	mu          sync.Mutex
	generations map[string]uint64
	loading     map[string]int
	failures    map[string]error
}

// NewReadCache создаёт кэш; ttl <= 0 означает хранение до инвалидации.
func NewReadCache(ttl time.Duration) *ReadCache {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &ReadCache{
		items:       gocache.New(ttl, 10*time.Minute),
		generations: make(map[string]uint64),
		loading:     make(map[string]int),
		failures:    make(map[string]error),
	}
}

func cacheKey(kind Kind, owner uuid.UUID) string {
	return string(kind) + ":" + owner.String()
}

func (c *ReadCache) begin(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading[key]++
	return c.generations[key]
}

// finish сохраняет результат чтения, если за время запроса не было инвалидации.
func (c *ReadCache) finish(key string, generation uint64, rows any, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loading[key]--; c.loading[key] <= 0 {
		delete(c.loading, key)
	}
	if c.generations[key] != generation {
		return
	}
	if err != nil {
		c.failures[key] = err
		return
	}
	delete(c.failures, key)
	c.items.SetDefault(key, rows)
}

func (c *ReadCache) invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[key]++
	delete(c.failures, key)
	c.items.Delete(key)
}

func (c *ReadCache) peek(key string) (rows any, loading bool, err error) {
	if rows, ok := c.items.Get(key); ok {
		return rows, false, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return nil, c.loading[key] > 0, c.failures[key]
}

// Reader читает раздел владельца с кэшированием. Повторов при ошибке нет:
// ошибка логируется и возвращается как failed.
type Reader[T any] struct {
	schema *Schema[T]
	table  store.Table[T]
	cache  *ReadCache
}

// NewReader создаёт читателя раздела.
func NewReader[T any](schema *Schema[T], table store.Table[T], cache *ReadCache) *Reader[T] {
	return &Reader[T]{schema: schema, table: table, cache: cache}
}

// Fetch возвращает строки владельца из кэша или из хранилища.
func (r *Reader[T]) Fetch(ctx context.Context, owner uuid.UUID) Result[T] {
	key := cacheKey(r.schema.Kind, owner)
	if rows, ok := r.cached(key); ok {
		return Result[T]{Status: StatusReady, Data: rows}
	}

	generation := r.cache.begin(key)
	rows, err := r.table.Query(ctx, store.ByOwner(owner), r.schema.Order)
	r.cache.finish(key, generation, rows, err)

	if err != nil {
		logger.Log.WithFields(logrus.Fields{
			"entity":   r.schema.Kind,
			"owner_id": owner,
			"error":    err,
		}).Error("portfolio: не удалось прочитать раздел")
		return Result[T]{Status: StatusFailed, Err: err}
	}

	return Result[T]{Status: StatusReady, Data: r.clone(rows)}
}

// Peek возвращает состояние без обращения к хранилищу.
// ok == false, если раздел ещё не читали.
func (r *Reader[T]) Peek(owner uuid.UUID) (Result[T], bool) {
	rows, loading, err := r.cache.peek(cacheKey(r.schema.Kind, owner))
	switch {
	case rows != nil:
		return Result[T]{Status: StatusReady, Data: r.clone(rows.([]T))}, true
	case loading:
		return Result[T]{Status: StatusLoading}, true
	case err != nil:
		return Result[T]{Status: StatusFailed, Err: err}, true
	default:
		return Result[T]{}, false
	}
}

// Invalidate сбрасывает кэш раздела владельца.
func (r *Reader[T]) Invalidate(owner uuid.UUID) {
	r.cache.invalidate(cacheKey(r.schema.Kind, owner))
}

func (r *Reader[T]) cached(key string) ([]T, bool) {
	v, ok := r.cache.items.Get(key)
	if !ok {
		return nil, false
	}
	return r.clone(v.([]T)), true
}

// clone копирует строки вместе со списками, чтобы вызывающий не мог испортить кэш.
func (r *Reader[T]) clone(rows []T) []T {
	out := make([]T, len(rows))
	for i, row := range rows {
		out[i] = r.schema.Clone(row)
	}
	return out
}

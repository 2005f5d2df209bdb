package requestcode

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/procare-io/srportal/internal/database"
)

// MemoryStore keeps counters in process.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{counters: make(map[string]int64)}
}

func (m *MemoryStore) Next(_ context.Context, key string, start int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.counters[key]
	if !ok {
		n = start - 1
	}
	n++
	m.counters[key] = n
	return n, nil
}

// SQLStore keeps one row per counter key and increments it with an upsert.
// PostgreSQL and SQLite read the counter back with RETURNING; MySQL hands
// it over through LAST_INSERT_ID(expr).
type SQLStore struct {
	qb *database.QueryBuilder
}

func NewSQLStore(qb *database.QueryBuilder) *SQLStore {
	return &SQLStore{qb: qb}
}

func (s *SQLStore) Next(ctx context.Context, key string, start int64) (int64, error) {
	if s.qb.IsMySQL() {
		res, err := s.qb.ExecContext(ctx, `INSERT INTO request_code_counter (counter_key, counter)
		VALUES (?, LAST_INSERT_ID(?))
		ON DUPLICATE KEY UPDATE counter = LAST_INSERT_ID(counter + 1)`, key, start)
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	}

	var n int64
	err := s.qb.QueryRowContext(ctx, `INSERT INTO request_code_counter (counter_key, counter)
		VALUES (?, ?)
		ON CONFLICT (counter_key) DO UPDATE SET counter = request_code_counter.counter + 1
		RETURNING counter`, key, start).Scan(&n)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// RedisStore increments counters with INCR, seeding new keys to start-1.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix + "requestcode:"}
}

func (s *RedisStore) Next(ctx context.Context, key string, start int64) (int64, error) {
	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, s.prefix+key, start-1, 0)
		incr = pipe.Incr(ctx, s.prefix+key)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

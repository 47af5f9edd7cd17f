package cache_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/internal/cache"
	"github.com/pkordes/trip-planner/internal/domain"
)

// fakeKV is an in-memory stand-in for *redis.Client built on go-redis's own
// command types.
type fakeKV struct {
	data   map[string][]byte
	getErr error
	sets   int
	dels   []string
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string][]byte{}}
}

func (f *fakeKV) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx, "get", key)
	if f.getErr != nil {
		cmd.SetErr(f.getErr)
		return cmd
	}
	v, ok := f.data[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(string(v))
	return cmd
}

func (f *fakeKV) Set(ctx context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	f.sets++
	f.data[key] = value.([]byte)
	cmd := redis.NewStatusCmd(ctx, "set", key)
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeKV) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			n++
		}
		delete(f.data, k)
		f.dels = append(f.dels, k)
	}
	cmd := redis.NewIntCmd(ctx, "del")
	cmd.SetVal(n)
	return cmd
}

// mockStore is a hand-written repo.TripStore. Only the functions a test
// sets are callable.
type mockStore struct {
	loadByIDFn  func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	upsertFn    func(ctx context.Context, t domain.Trip) (domain.Trip, error)
	deleteFn    func(ctx context.Context, id uuid.UUID, owner string) error
	loadByIDHit int
}

func (m *mockStore) Load(context.Context, string) ([]domain.Trip, error) { return nil, nil }
func (m *mockStore) LoadPaged(context.Context, string, domain.PaginationParams) ([]domain.Trip, int64, error) {
	return nil, 0, nil
}
func (m *mockStore) LoadByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	m.loadByIDHit++
	return m.loadByIDFn(ctx, id)
}
func (m *mockStore) Upsert(ctx context.Context, t domain.Trip) (domain.Trip, error) {
	return m.upsertFn(ctx, t)
}
func (m *mockStore) Delete(ctx context.Context, id uuid.UUID, owner string) error {
	return m.deleteFn(ctx, id, owner)
}

func TestTripCache_LoadByID_MissThenHit(t *testing.T) {
	id := uuid.New()
	store := &mockStore{loadByIDFn: func(_ context.Context, got uuid.UUID) (domain.Trip, error) {
		return domain.Trip{ID: got, Name: "Kyoto"}, nil
	}}
	kv := newFakeKV()
	c := cache.NewTripCache(store, kv, time.Minute)

	first, err := c.LoadByID(context.Background(), id)
	require.NoError(t, err)
	second, err := c.LoadByID(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, "Kyoto", first.Name)
	assert.Equal(t, first.Name, second.Name)
	assert.Equal(t, 1, store.loadByIDHit, "second read should come from cache")
	assert.Equal(t, 1, kv.sets)
}

func TestTripCache_LoadByID_RedisDownFallsThrough(t *testing.T) {
	store := &mockStore{loadByIDFn: func(_ context.Context, id uuid.UUID) (domain.Trip, error) {
		return domain.Trip{ID: id, Name: "Lisbon"}, nil
	}}
	kv := newFakeKV()
	kv.getErr = errors.New("connection refused")
	c := cache.NewTripCache(store, kv, time.Minute)

	got, err := c.LoadByID(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.Equal(t, "Lisbon", got.Name)
}

func TestTripCache_LoadByID_CorruptEntryReloads(t *testing.T) {
	id := uuid.New()
	store := &mockStore{loadByIDFn: func(_ context.Context, id uuid.UUID) (domain.Trip, error) {
		return domain.Trip{ID: id, Name: "Oslo"}, nil
	}}
	kv := newFakeKV()
	kv.data["trip:"+id.String()] = []byte("{not json")
	c := cache.NewTripCache(store, kv, time.Minute)

	got, err := c.LoadByID(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, "Oslo", got.Name)
	assert.Equal(t, 1, store.loadByIDHit)
}

func TestTripCache_LoadByID_NotFoundNotCached(t *testing.T) {
	store := &mockStore{loadByIDFn: func(context.Context, uuid.UUID) (domain.Trip, error) {
		return domain.Trip{}, domain.ErrNotFound
	}}
	kv := newFakeKV()
	c := cache.NewTripCache(store, kv, time.Minute)

	_, err := c.LoadByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, kv.sets)
}

func TestTripCache_UpsertEvicts(t *testing.T) {
	id := uuid.New()
	kv := newFakeKV()
	stale, _ := json.Marshal(domain.Trip{ID: id, Name: "old"})
	kv.data["trip:"+id.String()] = stale

	store := &mockStore{upsertFn: func(_ context.Context, t domain.Trip) (domain.Trip, error) {
		return t, nil
	}}
	c := cache.NewTripCache(store, kv, time.Minute)

	_, err := c.Upsert(context.Background(), domain.Trip{ID: id, Name: "new"})

	require.NoError(t, err)
	assert.NotContains(t, kv.data, "trip:"+id.String())
}

func TestTripCache_DeleteFailureKeepsEntry(t *testing.T) {
	id := uuid.New()
	kv := newFakeKV()
	kv.data["trip:"+id.String()] = []byte("{}")

	store := &mockStore{deleteFn: func(context.Context, uuid.UUID, string) error {
		return domain.ErrNotFound
	}}
	c := cache.NewTripCache(store, kv, time.Minute)

	err := c.Delete(context.Background(), id, "someone")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, kv.dels)
}

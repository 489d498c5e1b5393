package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/gitquest/pkg/adapters/redis"
	"github.com/aretw0/gitquest/pkg/domain"
	"github.com/aretw0/gitquest/pkg/ports"
	contract "github.com/aretw0/gitquest/pkg/ports/tests"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ ports.SessionStore      = (*redis.Store)(nil)
	_ ports.SettingsStore     = (*redis.Store)(nil)
	_ ports.DistributedLocker = (*redis.Locker)(nil)
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	contract.RunSessionStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_SettingsContract(t *testing.T) {
	_, client := newClient(t)
	contract.RunSettingsStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_TTL(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithTTL(time.Minute), redis.WithPrefix("test:"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", domain.NewLessonState("s1", 1, "intro")))
	assert.True(t, mr.Exists("test:session:s1"))
	assert.Equal(t, time.Minute, mr.TTL("test:session:s1"))

	mr.FastForward(2 * time.Minute)
	_, err := store.Load(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestRedisStore_ListPrunesExpired(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithPrefix("test:"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "alive", domain.NewLessonState("alive", 1, "intro")))
	// An index entry whose score lies in the past is stale.
	_, err := mr.ZAdd("test:session:index", 1, "stale")
	require.NoError(t, err)

	sessions, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alive"}, sessions)
}

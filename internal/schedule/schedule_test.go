package schedule

import (
	"context"
	"github.com/ariefcatur/go-shop-bot/internal/basket"
	"github.com/ariefcatur/go-shop-bot/internal/redisx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"sync"
	"testing"
	"time"
)

type fired struct {
	mu  sync.Mutex
	ids []string
}

func (f *fired) fire(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, id)
	return nil
}

func (f *fired) list() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.ids...)
}

func TestMemory_FiresOnce(t *testing.T) {
	f := &fired{}
	m := NewMemory(context.Background(), f.fire)
	defer m.Stop()

	require.NoError(t, m.Schedule(context.Background(), "a", time.Now().Add(20*time.Millisecond)))
	require.Eventually(t, func() bool { return len(f.list()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"a"}, f.list())
	assert.Equal(t, 0, m.Len())
}

func TestMemory_ScheduleReplaces(t *testing.T) {
	f := &fired{}
	m := NewMemory(context.Background(), f.fire)
	defer m.Stop()

	far := time.Now().Add(time.Hour)
	require.NoError(t, m.Schedule(context.Background(), "a", time.Now().Add(10*time.Millisecond)))
	require.NoError(t, m.Schedule(context.Background(), "a", far))

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, f.list())
	at, ok := m.When("a")
	require.True(t, ok)
	assert.Equal(t, far, at)
	assert.Equal(t, 1, m.Len())
}

func TestMemory_Cancel(t *testing.T) {
	f := &fired{}
	m := NewMemory(context.Background(), f.fire)
	defer m.Stop()

	require.NoError(t, m.Schedule(context.Background(), "a", time.Now().Add(20*time.Millisecond)))
	require.NoError(t, m.Cancel(context.Background(), "a"))
	assert.ErrorIs(t, m.Cancel(context.Background(), "a"), basket.ErrJobNotFound)

	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, f.list())
}

func TestMemory_CanceledContextDrops(t *testing.T) {
	f := &fired{}
	ctx, cancel := context.WithCancel(context.Background())
	m := NewMemory(ctx, f.fire)
	require.NoError(t, m.Schedule(context.Background(), "a", time.Now().Add(10*time.Millisecond)))
	cancel()

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, f.list())
}

// Needs a disposable Redis: TEST_REDIS_ADDR=localhost:6379 go test ./internal/schedule
func TestRedis_Roundtrip(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	rdb := redisx.New(addr, 15)
	defer rdb.Close()

	f := &fired{}
	r := NewRedis(rdb, "test-"+t.Name(), f.fire)
	defer rdb.Del(ctx, r.key)

	now := time.Now()
	require.NoError(t, r.Schedule(ctx, "a", now.Add(time.Minute)))
	require.NoError(t, r.Schedule(ctx, "a", now.Add(2*time.Minute)))
	require.NoError(t, r.Schedule(ctx, "b", now.Add(time.Minute)))
	assert.EqualValues(t, 2, rdb.ZCard(ctx, r.key).Val())

	at, ok, err := r.When(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, now.Add(2*time.Minute).UnixMilli(), at.UnixMilli())

	require.NoError(t, r.Poll(ctx, now.Add(90*time.Second)))
	assert.Equal(t, []string{"b"}, f.list())

	require.NoError(t, r.Cancel(ctx, "a"))
	assert.ErrorIs(t, r.Cancel(ctx, "a"), basket.ErrJobNotFound)
	assert.ErrorIs(t, r.Cancel(ctx, "b"), basket.ErrJobNotFound)
}

package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"evalboard/domain/core"
	"evalboard/domain/evaluation"
	"evalboard/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockLoader struct {
	mock.Mock
}

func (m *mockLoader) LoadTable(ctx context.Context) (*evaluation.Table, error) {
	args := m.Called(ctx)
	table, _ := args.Get(0).(*evaluation.Table)
	return table, args.Error(1)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 10, 24, 12, 0, 0, 0, time.UTC)}
}

func TestTableStoreCachesUntilTTL(t *testing.T) {
	clock := newClock()
	first := evaluation.NewTable("a", nil, nil)
	second := evaluation.NewTable("b", nil, nil)

	loader := &mockLoader{}
	loader.On("LoadTable", mock.Anything).Return(first, nil).Once()
	loader.On("LoadTable", mock.Anything).Return(second, nil).Once()

	store := NewTableStore(loader, time.Hour, clock.Now)
	ctx := context.Background()

	got, err := store.Table(ctx)
	require.NoError(t, err)
	assert.Same(t, first, got)

	clock.Advance(30 * time.Minute)
	got, _ = store.Table(ctx)
	assert.Same(t, first, got)

	clock.Advance(31 * time.Minute)
	got, _ = store.Table(ctx)
	assert.Same(t, second, got)

	loader.AssertNumberOfCalls(t, "LoadTable", 2)
}

func TestTableStoreKeepsServingOnReloadFailure(t *testing.T) {
	clock := newClock()
	first := evaluation.NewTable("a", nil, nil)

	loader := &mockLoader{}
	loader.On("LoadTable", mock.Anything).Return(first, nil).Once()
	loader.On("LoadTable", mock.Anything).Return(nil, errors.DataUnavailable("gone", nil))

	store := NewTableStore(loader, time.Minute, clock.Now)
	_, err := store.Table(context.Background())
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	got, err := store.Table(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, got)
}

func TestTableStoreReloadReportsFailure(t *testing.T) {
	clock := newClock()
	first := evaluation.NewTable("a", nil, nil)
	second := evaluation.NewTable("b", nil, nil)

	loader := &mockLoader{}
	loader.On("LoadTable", mock.Anything).Return(first, nil).Once()
	loader.On("LoadTable", mock.Anything).Return(nil, errors.DataUnavailable("unreadable workbook", nil)).Once()
	loader.On("LoadTable", mock.Anything).Return(second, nil).Once()

	store := NewTableStore(loader, time.Hour, clock.Now)
	ctx := context.Background()
	_, err := store.Table(ctx)
	require.NoError(t, err)

	got, err := store.Reload(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsDataUnavailable(err))
	assert.Nil(t, got)

	// the old snapshot is still served
	got, err = store.Table(ctx)
	require.NoError(t, err)
	assert.Same(t, first, got)

	got, err = store.Reload(ctx)
	require.NoError(t, err)
	assert.Same(t, second, got)
	got, _ = store.Table(ctx)
	assert.Same(t, second, got)

	loader.AssertNumberOfCalls(t, "LoadTable", 3)
}

func TestTableStorePropagatesFirstLoadFailure(t *testing.T) {
	loader := &mockLoader{}
	loader.On("LoadTable", mock.Anything).Return(nil, errors.DataUnavailable("missing workbook", nil))

	_, err := NewTableStore(loader, time.Minute, nil).Table(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsDataUnavailable(err))
}

func TestMemoGetAndExpiry(t *testing.T) {
	clock := newClock()
	memo := NewMemo[int](5*time.Minute, clock.Now)
	key := core.ComputeSelectionKey("v1", "4ta", []string{"IMTP", "CMJ"})

	calls := 0
	compute := func() (int, error) {
		calls++
		return calls * 10, nil
	}

	v, err := memo.Get(key, compute)
	require.NoError(t, err)
	assert.Equal(t, 10, v)

	v, _ = memo.Get(core.ComputeSelectionKey("v1", "4ta", []string{"CMJ", "IMTP"}), compute)
	assert.Equal(t, 10, v, "metric order does not change the key")

	clock.Advance(5 * time.Minute)
	assert.Equal(t, 1, memo.Purge())
	v, _ = memo.Get(key, compute)
	assert.Equal(t, 20, v)
	assert.Equal(t, 1, memo.Len())
}

func TestMemoClear(t *testing.T) {
	memo := NewMemo[int](time.Hour, nil)
	for _, category := range []string{"4ta", "Reserva"} {
		_, err := memo.Get(core.ComputeSelectionKey("v1", category, nil), func() (int, error) { return 1, nil })
		require.NoError(t, err)
	}

	assert.Equal(t, 0, memo.Purge(), "nothing expired yet")
	assert.Equal(t, 2, memo.Clear())
	assert.Equal(t, 0, memo.Len())
}

func TestMemoDoesNotCacheErrors(t *testing.T) {
	memo := NewMemo[string](time.Minute, nil)
	key := core.ComputeSelectionKey("v1", "4ta", nil)

	_, err := memo.Get(key, func() (string, error) { return "", errors.InternalError("boom") })
	require.Error(t, err)

	v, err := memo.Get(key, func() (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestMemoCollapsesConcurrentMisses(t *testing.T) {
	memo := NewMemo[int](time.Minute, nil)
	key := core.ComputeSelectionKey("v1", "4ta", []string{"IMTP"})

	var calls int32
	release := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := memo.Get(key, func() (int, error) {
				atomic.AddInt32(&calls, 1)
				<-release
				return 42, nil
			})
			assert.NoError(t, err)
			assert.Equal(t, 42, v)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

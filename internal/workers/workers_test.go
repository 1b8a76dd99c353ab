package workers

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	go_redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-builders/satchat-backend/internal/platform/redis"
	"github.com/open-builders/satchat-backend/internal/service/telegram"
)

type collectingHandler struct {
	mu      sync.Mutex
	updates []telegram.Update
}

func (h *collectingHandler) Submit(_ context.Context, u telegram.Update, done func()) error {
	h.mu.Lock()
	h.updates = append(h.updates, u)
	h.mu.Unlock()
	if done != nil {
		done()
	}
	return nil
}

// gatedHandler accepts updates at once and handles them only after open is closed.
type gatedHandler struct {
	collectingHandler
	open chan struct{}
	wg   sync.WaitGroup
}

func (h *gatedHandler) Submit(ctx context.Context, u telegram.Update, done func()) error {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		<-h.open
		_ = h.collectingHandler.Submit(ctx, u, done)
	}()
	return nil
}

type refusingHandler struct{ err error }

func (h refusingHandler) Submit(context.Context, telegram.Update, func()) error { return h.err }

func (h *collectingHandler) ids() []int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]int64, 0, len(h.updates))
	for _, u := range h.updates {
		out = append(out, u.UpdateID)
	}
	return out
}

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	c := go_redis.NewClient(&go_redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = c.Close() })
	return redis.Wrap(c)
}

func TestUpdateStreamConsumesAndAcks(t *testing.T) {
	ctx := context.Background()
	rdb := newRedis(t)
	h := &collectingHandler{}
	w := NewUpdateStream(rdb, h, "test")
	w.block = 10 * time.Millisecond

	require.NoError(t, w.EnsureGroup(ctx))
	require.NoError(t, w.EnsureGroup(ctx), "group creation is idempotent")

	for i := int64(1); i <= 3; i++ {
		_, err := w.Publish(ctx, telegram.Update{UpdateID: i, Message: &telegram.Message{MessageID: i, Text: "hi"}})
		require.NoError(t, err)
	}

	n, _, err := w.consume(ctx, ">")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []int64{1, 2, 3}, h.ids())

	pending, err := rdb.XPending(ctx, UpdatesStreamKey, updatesConsumerGroup).Result()
	require.NoError(t, err)
	assert.Zero(t, pending.Count)

	n, _, err = w.consume(ctx, ">")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUpdateStreamAcksEachEntryAfterHandling(t *testing.T) {
	ctx := context.Background()
	rdb := newRedis(t)
	h := &gatedHandler{open: make(chan struct{})}
	w := NewUpdateStream(rdb, h, "test")
	w.block = 10 * time.Millisecond
	require.NoError(t, w.EnsureGroup(ctx))

	for i := int64(1); i <= 2; i++ {
		_, err := w.Publish(ctx, telegram.Update{UpdateID: i})
		require.NoError(t, err)
	}

	n, _, err := w.consume(ctx, ">")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	pending, err := rdb.XPending(ctx, UpdatesStreamKey, updatesConsumerGroup).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(2), pending.Count, "entries stay pending while in flight")

	close(h.open)
	h.wg.Wait()

	pending, err = rdb.XPending(ctx, UpdatesStreamKey, updatesConsumerGroup).Result()
	require.NoError(t, err)
	assert.Zero(t, pending.Count)
}

func TestUpdateStreamReplaysAllPendingEntries(t *testing.T) {
	ctx := context.Background()
	rdb := newRedis(t)

	// A worker that read entries and died before handling them.
	crashed := NewUpdateStream(rdb, refusingHandler{}, "test")
	crashed.block = 10 * time.Millisecond
	require.NoError(t, crashed.EnsureGroup(ctx))
	const total = 70
	for i := int64(1); i <= total; i++ {
		_, err := crashed.Publish(ctx, telegram.Update{UpdateID: i})
		require.NoError(t, err)
	}
	crashed.batch = total
	n, _, err := crashed.consume(ctx, ">")
	require.NoError(t, err)
	require.Equal(t, total, n)

	h := &collectingHandler{}
	w := NewUpdateStream(rdb, h, "test")
	w.replayPending(ctx)

	assert.Len(t, h.ids(), total)
	pending, err := rdb.XPending(ctx, UpdatesStreamKey, updatesConsumerGroup).Result()
	require.NoError(t, err)
	assert.Zero(t, pending.Count)
}

func TestUpdateStreamSkipsMalformedEntries(t *testing.T) {
	ctx := context.Background()
	rdb := newRedis(t)
	h := &collectingHandler{}
	w := NewUpdateStream(rdb, h, "test")
	w.block = 10 * time.Millisecond
	require.NoError(t, w.EnsureGroup(ctx))

	require.NoError(t, rdb.XAdd(ctx, &go_redis.XAddArgs{
		Stream: UpdatesStreamKey,
		Values: map[string]interface{}{"update": "{not json"},
	}).Err())
	_, err := w.Publish(ctx, telegram.Update{UpdateID: 9})
	require.NoError(t, err)

	n, _, err := w.consume(ctx, ">")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []int64{9}, h.ids())

	pending, err := rdb.XPending(ctx, UpdatesStreamKey, updatesConsumerGroup).Result()
	require.NoError(t, err)
	assert.Zero(t, pending.Count)
}

type scriptedSource struct {
	mu      sync.Mutex
	calls   int
	offsets []int64
	batches [][]telegram.Update
	errs    []error
}

func (s *scriptedSource) GetUpdates(ctx context.Context, offset int64, _ time.Duration) ([]telegram.Update, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offsets = append(s.offsets, offset)
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	if i < len(s.batches) {
		return s.batches[i], nil
	}
	return nil, nil
}

func TestUpdatePollerAdvancesOffset(t *testing.T) {
	ctx := context.Background()
	src := &scriptedSource{
		batches: [][]telegram.Update{
			{{UpdateID: 10}, {UpdateID: 11}},
			nil,
			{{UpdateID: 15}},
		},
	}
	h := &collectingHandler{}
	p := NewUpdatePoller(src, h, time.Second)

	for i := 0; i < 4; i++ {
		require.NoError(t, p.poll(ctx))
	}
	assert.Equal(t, []int64{0, 12, 12, 16}, src.offsets)
	assert.Equal(t, []int64{10, 11, 15}, h.ids())
}

func TestUpdatePollerDoesNotWaitForHandlers(t *testing.T) {
	ctx := context.Background()
	src := &scriptedSource{
		batches: [][]telegram.Update{
			{{UpdateID: 10}, {UpdateID: 11}},
			{{UpdateID: 12}},
		},
	}
	h := &gatedHandler{open: make(chan struct{})}
	p := NewUpdatePoller(src, h, time.Second)

	require.NoError(t, p.poll(ctx))
	require.NoError(t, p.poll(ctx))
	assert.Equal(t, []int64{0, 12}, src.offsets, "second getUpdates ran while the first batch was unhandled")
	assert.Empty(t, h.ids())

	close(h.open)
	h.wg.Wait()
	assert.ElementsMatch(t, []int64{10, 11, 12}, h.ids())
}

func TestUpdatePollerStopsAtRefusedUpdate(t *testing.T) {
	ctx := context.Background()
	src := &scriptedSource{batches: [][]telegram.Update{{{UpdateID: 3}}}}
	p := NewUpdatePoller(src, refusingHandler{err: context.Canceled}, time.Second)

	assert.ErrorIs(t, p.poll(ctx), context.Canceled)
	assert.Zero(t, p.offset)
}

func TestUpdatePollerKeepsOffsetOnError(t *testing.T) {
	ctx := context.Background()
	src := &scriptedSource{errs: []error{errors.New("timeout")}}
	p := NewUpdatePoller(src, &collectingHandler{}, time.Second)
	p.offset = 5

	assert.Error(t, p.poll(ctx))
	assert.Equal(t, int64(5), p.offset)
}

func TestUpdatePollerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := &scriptedSource{}
	p := NewUpdatePoller(src, &collectingHandler{}, time.Second)

	done := make(chan struct{})
	go func() {
		p.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop")
	}
}

type countingTable struct {
	calls atomic.Int32
	err   error
}

func (c *countingTable) Refresh(context.Context) error {
	c.calls.Add(1)
	return c.err
}

func (c *countingTable) Len() int { return 0 }

func TestKeywordRefresherTicks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	table := &countingTable{err: errors.New("db down")}
	r := NewKeywordRefresher(table, 5*time.Millisecond)

	go r.Start(ctx)

	assert.Eventually(t, func() bool { return table.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
}

package workers

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	go_redis "github.com/redis/go-redis/v9"

	"github.com/open-builders/satchat-backend/internal/common/logger"
	"github.com/open-builders/satchat-backend/internal/platform/redis"
	"github.com/open-builders/satchat-backend/internal/service/telegram"
)

const (
	UpdatesStreamKey     = "bot:updates"
	updatesConsumerGroup = "satchat_backend_consumers"
	updatesStreamMaxLen  = 100000
)

// UpdateHandler processes a batch of Telegram updates.
type UpdateHandler interface {
	// Submit queues u and returns without waiting for it; done runs once u is handled.
	Submit(ctx context.Context, u telegram.Update, done func()) error
}

// UpdateStream buffers webhook updates in a Redis stream and consumes them
// through a consumer group, so a restart does not lose accepted updates.
type UpdateStream struct {
	rdb      *redis.Client
	handler  UpdateHandler
	consumer string
	batch    int64
	block    time.Duration
}

func NewUpdateStream(rdb *redis.Client, handler UpdateHandler, consumer string) *UpdateStream {
	if consumer == "" {
		consumer = "satchat_worker_1"
	}
	return &UpdateStream{rdb: rdb, handler: handler, consumer: consumer, batch: 32, block: 5 * time.Second}
}

// Publish appends a raw update to the stream.
func (w *UpdateStream) Publish(ctx context.Context, u telegram.Update) (string, error) {
	payload, err := json.Marshal(u)
	if err != nil {
		return "", err
	}
	return w.rdb.XAdd(ctx, &go_redis.XAddArgs{
		Stream: UpdatesStreamKey,
		MaxLen: updatesStreamMaxLen,
		Approx: true,
		Values: map[string]interface{}{
			"update_id": u.UpdateID,
			"update":    string(payload),
		},
	}).Result()
}

// EnsureGroup creates the consumer group, reading the stream from its start.
func (w *UpdateStream) EnsureGroup(ctx context.Context) error {
	err := w.rdb.XGroupCreateMkStream(ctx, UpdatesStreamKey, updatesConsumerGroup, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

// Start consumes the stream until ctx is cancelled.
func (w *UpdateStream) Start(ctx context.Context) {
	if err := w.EnsureGroup(ctx); err != nil {
		logger.Error().Err(err).Msg("Error creating consumer group")
	}

	logger.Info().Str("stream", UpdatesStreamKey).Str("consumer", w.consumer).Msg("Starting update stream worker")

	w.replayPending(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Stopping update stream worker")
			return
		default:
		}
		if _, _, err := w.consume(ctx, ">"); err != nil {
			if ctx.Err() != nil {
				continue
			}
			logger.Error().Err(err).Msg("Error reading from stream")
			time.Sleep(time.Second)
		}
	}
}

// replayPending redelivers entries handed to this consumer before a restart but
// never acked, one page at a time until the pending list is exhausted.
func (w *UpdateStream) replayPending(ctx context.Context) {
	after, total := "0", 0
	for {
		n, last, err := w.consume(ctx, after)
		if err != nil {
			if ctx.Err() == nil {
				logger.Warn().Err(err).Msg("Error replaying pending updates")
			}
			return
		}
		if n == 0 || last == after {
			break
		}
		total += n
		after = last
	}
	if total > 0 {
		logger.Info().Int("count", total).Msg("Replayed pending updates")
	}
}

// consume reads one batch starting after id (an entry id for pending entries, ">"
// for new ones) and submits every update to the handler. Each entry is acked once its
// update has been handled; malformed entries are acked at once. It returns the number
// of entries read and the id of the last one.
func (w *UpdateStream) consume(ctx context.Context, id string) (int, string, error) {
	args := &go_redis.XReadGroupArgs{
		Group:    updatesConsumerGroup,
		Consumer: w.consumer,
		Streams:  []string{UpdatesStreamKey, id},
		Count:    w.batch,
	}
	if id == ">" {
		args.Block = w.block
	}
	entries, err := w.rdb.XReadGroup(ctx, args).Result()
	if err != nil {
		if errors.Is(err, go_redis.Nil) {
			return 0, "", nil
		}
		return 0, "", err
	}

	var (
		n    int
		last string
	)
	for _, stream := range entries {
		for _, msg := range stream.Messages {
			n++
			last = msg.ID
			raw, _ := msg.Values["update"].(string)
			var u telegram.Update
			if err := json.Unmarshal([]byte(raw), &u); err != nil {
				logger.Warn().Err(err).Str("entry_id", msg.ID).Msg("Dropping malformed update")
				w.ack(ctx, msg.ID)
				continue
			}
			entryID := msg.ID
			if err := w.handler.Submit(ctx, u, func() { w.ack(ctx, entryID) }); err != nil {
				return n, last, err
			}
		}
	}
	return n, last, nil
}

func (w *UpdateStream) ack(ctx context.Context, id string) {
	if err := w.rdb.XAck(ctx, UpdatesStreamKey, updatesConsumerGroup, id).Err(); err != nil {
		logger.Warn().Err(err).Str("entry_id", id).Msg("Failed to ack update")
	}
}

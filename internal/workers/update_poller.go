package workers

import (
	"context"
	"errors"
	"time"

	"github.com/open-builders/satchat-backend/internal/common/logger"
	"github.com/open-builders/satchat-backend/internal/service/telegram"
)

// UpdatesSource is the long-polling part of the Bot API.
type UpdatesSource interface {
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]telegram.Update, error)
}

// UpdatePoller fetches updates with getUpdates and hands each one to the handler.
type UpdatePoller struct {
	source  UpdatesSource
	handler UpdateHandler
	timeout time.Duration
	backoff time.Duration
	offset  int64
}

func NewUpdatePoller(source UpdatesSource, handler UpdateHandler, timeout time.Duration) *UpdatePoller {
	return &UpdatePoller{source: source, handler: handler, timeout: timeout, backoff: 3 * time.Second}
}

// Start polls until ctx is cancelled.
func (p *UpdatePoller) Start(ctx context.Context) {
	logger.Info().Dur("timeout", p.timeout).Msg("Starting update poller")
	for {
		if ctx.Err() != nil {
			logger.Info().Msg("Stopping update poller")
			return
		}
		if err := p.poll(ctx); err != nil {
			if ctx.Err() != nil {
				continue
			}
			wait := p.backoff
			var apiErr *telegram.APIError
			if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
				wait = apiErr.RetryAfter
			}
			logger.Warn().Err(err).Dur("retry_in", wait).Msg("getUpdates failed")
			select {
			case <-ctx.Done():
			case <-time.After(wait):
			}
		}
	}
}

// poll fetches one batch and submits it update by update. The offset moves past
// each update once the handler has accepted it, so the next getUpdates does not
// wait for slow handlers.
func (p *UpdatePoller) poll(ctx context.Context) error {
	updates, err := p.source.GetUpdates(ctx, p.offset, p.timeout)
	if err != nil {
		return err
	}
	for _, u := range updates {
		if err := p.handler.Submit(ctx, u, nil); err != nil {
			return err
		}
		if u.UpdateID >= p.offset {
			p.offset = u.UpdateID + 1
		}
	}
	return nil
}

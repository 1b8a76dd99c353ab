package workers

import (
	"context"
	"time"

	"github.com/open-builders/satchat-backend/internal/common/logger"
)

// Refresher reloads a snapshot from storage.
type Refresher interface {
	Refresh(ctx context.Context) error
	Len() int
}

// KeywordRefresher periodically reloads the keyword table.
type KeywordRefresher struct {
	table    Refresher
	interval time.Duration
}

func NewKeywordRefresher(table Refresher, interval time.Duration) *KeywordRefresher {
	if interval <= 0 {
		interval = time.Minute
	}
	return &KeywordRefresher{table: table, interval: interval}
}

// Start refreshes immediately and then on every tick until ctx is cancelled.
// A failed refresh keeps the previous snapshot.
func (r *KeywordRefresher) Start(ctx context.Context) {
	r.refresh(ctx)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

func (r *KeywordRefresher) refresh(ctx context.Context) {
	if err := r.table.Refresh(ctx); err != nil {
		logger.Warn().Err(err).Msg("Keyword refresh failed, keeping previous rules")
		return
	}
	logger.Debug().Int("rules", r.table.Len()).Msg("Keyword rules refreshed")
}

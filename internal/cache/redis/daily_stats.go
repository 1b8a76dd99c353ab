package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	rplatform "github.com/open-builders/satchat-backend/internal/platform/redis"
)

const (
	dailyStatsRetention = 48 * time.Hour
	dailyCapKey         = "settings:daily_cap"
)

// DaySnapshot is the reward activity of one UTC day.
type DaySnapshot struct {
	Date        string `json:"date"`
	Distributed int64  `json:"distributed"`
	Messages    int64  `json:"messages"`
	ActiveUsers int64  `json:"active_users"`
}

// DailyStats counts distributed sats, rewarded messages and active users per UTC day.
// Counters expire two days after their last write.
type DailyStats struct {
	client *rplatform.Client
	now    func() time.Time
}

func NewDailyStats(client *rplatform.Client) *DailyStats {
	return &DailyStats{client: client, now: time.Now}
}

// WithClock overrides the time source.
func (s *DailyStats) WithClock(now func() time.Time) *DailyStats {
	s.now = now
	return s
}

func (s *DailyStats) day() string { return s.now().UTC().Format("2006-01-02") }

func statsKey(day string) string      { return fmt.Sprintf("stats:daily:%s", day) }
func statsUsersKey(day string) string { return fmt.Sprintf("stats:daily:%s:users", day) }

// Record adds one rewarded message of amount sats by userID to today's counters.
func (s *DailyStats) Record(ctx context.Context, userID, amount int64) error {
	day := s.day()
	key, usersKey := statsKey(day), statsUsersKey(day)
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HIncrBy(ctx, key, "distributed", amount)
		p.HIncrBy(ctx, key, "messages", 1)
		p.SAdd(ctx, usersKey, userID)
		p.Expire(ctx, key, dailyStatsRetention)
		p.Expire(ctx, usersKey, dailyStatsRetention)
		return nil
	})
	return err
}

// Distributed returns the sats distributed today.
func (s *DailyStats) Distributed(ctx context.Context) (int64, error) {
	v, err := s.client.HGet(ctx, statsKey(s.day()), "distributed").Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// Today returns the full snapshot for the current UTC day.
func (s *DailyStats) Today(ctx context.Context) (*DaySnapshot, error) {
	day := s.day()
	fields, err := s.client.HGetAll(ctx, statsKey(day)).Result()
	if err != nil {
		return nil, err
	}
	users, err := s.client.SCard(ctx, statsUsersKey(day)).Result()
	if err != nil {
		return nil, err
	}
	snap := &DaySnapshot{Date: day, ActiveUsers: users}
	if v, ok := fields["distributed"]; ok {
		snap.Distributed, _ = strconv.ParseInt(v, 10, 64)
	}
	if v, ok := fields["messages"]; ok {
		snap.Messages, _ = strconv.ParseInt(v, 10, 64)
	}
	return snap, nil
}

// LoadDailyCap returns the cap saved by SaveDailyCap; ok is false when none was saved.
func (s *DailyStats) LoadDailyCap(ctx context.Context) (int64, bool, error) {
	v, err := s.client.Get(ctx, dailyCapKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

// SaveDailyCap stores the cap without expiry.
func (s *DailyStats) SaveDailyCap(ctx context.Context, value int64) error {
	return s.client.Set(ctx, dailyCapKey, value, 0).Err()
}

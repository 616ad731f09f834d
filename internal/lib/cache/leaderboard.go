// Package cache keeps computed leaderboards in Redis so repeated reads do
// not rescan every prediction.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/deppfellow/pickboard/internal/model"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// LeaderboardTTL bounds how stale a cached leaderboard can get if an
// invalidation is missed.
const LeaderboardTTL = 5 * time.Minute

const keyPrefix = "pickboard:leaderboard:"

type LeaderboardCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewLeaderboardCache(client redis.Cmdable) *LeaderboardCache {
	return &LeaderboardCache{client: client, ttl: LeaderboardTTL}
}

func leaderboardKey(tournamentID uuid.UUID) string {
	return keyPrefix + tournamentID.String()
}

// Get returns the cached leaderboard, or ok=false on a miss.
func (c *LeaderboardCache) Get(ctx context.Context, tournamentID uuid.UUID) (lb *model.Leaderboard, ok bool, err error) {
	raw, err := c.client.Get(ctx, leaderboardKey(tournamentID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached leaderboard %s: %w", tournamentID, err)
	}

	lb = &model.Leaderboard{}
	if err := json.Unmarshal(raw, lb); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached leaderboard %s: %w", tournamentID, err)
	}
	return lb, true, nil
}

func (c *LeaderboardCache) Set(ctx context.Context, lb *model.Leaderboard) error {
	raw, err := json.Marshal(lb)
	if err != nil {
		return fmt.Errorf("failed to encode leaderboard %s: %w", lb.TournamentID, err)
	}
	if err := c.client.Set(ctx, leaderboardKey(lb.TournamentID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache leaderboard %s: %w", lb.TournamentID, err)
	}
	return nil
}

func (c *LeaderboardCache) Invalidate(ctx context.Context, tournamentID uuid.UUID) error {
	if err := c.client.Del(ctx, leaderboardKey(tournamentID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate leaderboard %s: %w", tournamentID, err)
	}
	return nil
}

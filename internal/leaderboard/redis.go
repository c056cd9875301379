package leaderboard

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
)

// NewRedis connects to the Redis instance at url and verifies the connection.
func NewRedis(url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return NewRedisWithClient(client, defaultKeyPrefix), nil
}

// NewRedisWithClient wraps an existing client (for testing).
func NewRedisWithClient(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &Redis{client: client, prefix: prefix}
}

var _ Leaderboard = (*Redis)(nil)

func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) key(name string) string {
	return r.prefix + ":" + name
}

func (r *Redis) Record(ctx context.Context, standings []Standing) error {
	if len(standings) == 0 {
		return nil
	}
	members := make([]redis.Z, 0, len(standings))
	nicknames := make(map[string]any, len(standings))
	for _, s := range standings {
		members = append(members, redis.Z{Score: s.Elo, Member: s.PlayerID})
		nicknames[s.PlayerID] = s.Nickname
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, r.key(ratingsKey), members...)
		pipe.HSet(ctx, r.key(nicknamesKey), nicknames)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record standings: %w", err)
	}
	log.Debug("Recorded standings", "count", len(standings))
	return nil
}

func (r *Redis) Top(ctx context.Context, n int) ([]Standing, error) {
	stop := int64(n - 1)
	if n <= 0 {
		stop = -1
	}
	scores, err := r.client.ZRevRangeWithScores(ctx, r.key(ratingsKey), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}
	if len(scores) == 0 {
		return []Standing{}, nil
	}

	ids := make([]string, len(scores))
	for i, z := range scores {
		ids[i] = z.Member.(string)
	}
	names, err := r.client.HMGet(ctx, r.key(nicknamesKey), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read nicknames: %w", err)
	}

	standings := make([]Standing, len(scores))
	for i, z := range scores {
		nickname, _ := names[i].(string)
		standings[i] = Standing{Rank: i + 1, PlayerID: ids[i], Nickname: nickname, Elo: z.Score}
	}
	return standings, nil
}

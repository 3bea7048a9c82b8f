// Package scorestore holds the fast per-learner word-score store. Score
// updates are additive and atomic, so concurrent ingestion never loses
// increments.
package scorestore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the word-score store interface. The production implementation is
// Redis; tests substitute an in-memory fake.
type Store interface {
	// Add atomically increments a word's accumulated score
	Add(ctx context.Context, clientID, lang string, wordID int64, delta float64) error
	// MarkSeen records the last exposure time for a word
	MarkSeen(ctx context.Context, clientID, lang string, wordID int64, at time.Time) error
	// Scores returns every accumulated score for the learner and language
	Scores(ctx context.Context, clientID, lang string) (map[int64]float64, error)
	// SeenAt returns the last exposure time per word
	SeenAt(ctx context.Context, clientID, lang string) (map[int64]time.Time, error)
}

// RedisStore implements Store on Redis hashes
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection
func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{rdb: rdb}, nil
}

// Close releases the connection pool
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func scoresKey(clientID, lang string) string {
	return fmt.Sprintf("lex:%s:%s:scores", clientID, lang)
}

func seenKey(clientID, lang string) string {
	return fmt.Sprintf("lex:%s:%s:seen", clientID, lang)
}

func field(wordID int64) string {
	return strconv.FormatInt(wordID, 10)
}

// Add atomically increments the accumulated score. HIncrByFloat is a single
// Redis operation, so concurrent adds for the same word all land.
func (s *RedisStore) Add(ctx context.Context, clientID, lang string, wordID int64, delta float64) error {
	if err := s.rdb.HIncrByFloat(ctx, scoresKey(clientID, lang), field(wordID), delta).Err(); err != nil {
		return fmt.Errorf("failed to increment word score: %w", err)
	}
	return nil
}

// MarkSeen stores the last-seen unix timestamp for the word
func (s *RedisStore) MarkSeen(ctx context.Context, clientID, lang string, wordID int64, at time.Time) error {
	if err := s.rdb.HSet(ctx, seenKey(clientID, lang), field(wordID), at.Unix()).Err(); err != nil {
		return fmt.Errorf("failed to mark word seen: %w", err)
	}
	return nil
}

// Scores loads the full score hash for a learner
func (s *RedisStore) Scores(ctx context.Context, clientID, lang string) (map[int64]float64, error) {
	raw, err := s.rdb.HGetAll(ctx, scoresKey(clientID, lang)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load word scores: %w", err)
	}
	out := make(map[int64]float64, len(raw))
	for k, v := range raw {
		wordID, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			continue
		}
		score, err := strconv.ParseFloat(v, 64)
		if err != nil {
			continue
		}
		out[wordID] = score
	}
	return out, nil
}

// SeenAt loads the last-seen timestamps for a learner
func (s *RedisStore) SeenAt(ctx context.Context, clientID, lang string) (map[int64]time.Time, error) {
	raw, err := s.rdb.HGetAll(ctx, seenKey(clientID, lang)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load seen timestamps: %w", err)
	}
	out := make(map[int64]time.Time, len(raw))
	for k, v := range raw {
		wordID, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			continue
		}
		unix, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		out[wordID] = time.Unix(unix, 0)
	}
	return out, nil
}

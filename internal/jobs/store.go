package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrJobNotFound is returned when the job ID is unknown or expired.
var ErrJobNotFound = errors.New("job not found")

const (
	jobKeyPrefix = "job:"
	recentKey    = "jobs:recent"
)

// Store keeps job state in Redis. Finished jobs expire with the TTL,
// their output files are cleaned up separately.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore connects to Redis and verifies the connection.
func NewStore(ctx context.Context, addr string, ttl time.Duration) (*Store, error) {
	if addr == "" {
		return nil, errors.New("redis address is required")
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Store{rdb: rdb, ttl: ttl}, nil
}

// NewStoreWithClient wraps an existing client, for tests.
func NewStoreWithClient(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// Close releases the connection.
func (s *Store) Close() error {
	return s.rdb.Close()
}

// Ping checks the Redis connection, for readiness probes.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Put writes the job state and refreshes its place in the recency
// index.
func (s *Store) Put(ctx context.Context, job Job) error {
	job.UpdatedAt = time.Now().UTC()
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job %s: %w", job.ID, err)
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, jobKeyPrefix+job.ID, raw, s.ttl)
	pipe.ZAdd(ctx, recentKey, redis.Z{
		Score:  float64(job.UpdatedAt.UnixMilli()),
		Member: job.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store job %s: %w", job.ID, err)
	}
	return nil
}

// Get returns the job or ErrJobNotFound.
func (s *Store) Get(ctx context.Context, id string) (Job, error) {
	raw, err := s.rdb.Get(ctx, jobKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return Job{}, ErrJobNotFound
	}
	if err != nil {
		return Job{}, fmt.Errorf("load job %s: %w", id, err)
	}
	var job Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return Job{}, fmt.Errorf("decode job %s: %w", id, err)
	}
	return job, nil
}

// SetStatus transitions the job, recording the error message for
// failed jobs and the output path for finished ones.
func (s *Store) SetStatus(ctx context.Context, id string, status Status, outputPath, errMsg string) error {
	job, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	job.Status = status
	job.Error = errMsg
	if outputPath != "" {
		job.OutputPath = outputPath
	}
	return s.Put(ctx, job)
}

// Recent lists the most recently touched job IDs, newest first.
func (s *Store) Recent(ctx context.Context, n int64) ([]string, error) {
	ids, err := s.rdb.ZRevRange(ctx, recentKey, 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("list recent jobs: %w", err)
	}
	return ids, nil
}

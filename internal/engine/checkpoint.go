package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/IshaanNene/SEOCrawl/internal/types"
)

// CheckpointFile is the file name used by FileCheckpointStore.
const CheckpointFile = "_checkpoint.json"

// Checkpoint is the serializable state needed to resume a crawl.
type Checkpoint struct {
	CrawlID   string             `json:"crawl_id"`
	SeedURL   string             `json:"seed_url"`
	Domain    string             `json:"domain"`
	StartedAt time.Time          `json:"started_at"`
	Root      string             `json:"root"`
	SavedAt   time.Time          `json:"saved_at"`
	Crawled   int                `json:"crawled"`
	Visited   []string           `json:"visited"`
	Pending   []string           `json:"pending"`
	Errors    []types.CrawlError `json:"errors"`
}

// Job rebuilds the crawl job a checkpoint belongs to with a new page budget.
func (cp *Checkpoint) Job(budget int) (*types.CrawlJob, error) {
	return types.NewCrawlJob(cp.CrawlID, cp.SeedURL, budget, cp.StartedAt)
}

// CheckpointStore persists one checkpoint per crawl domain.
type CheckpointStore interface {
	// Save replaces the checkpoint for cp.Domain.
	Save(ctx context.Context, cp *Checkpoint) error

	// Load returns the checkpoint for domain, or types.ErrNoCheckpoint.
	Load(ctx context.Context, domain string) (*Checkpoint, error)

	// Clear removes the checkpoint for domain. Clearing a missing
	// checkpoint is not an error.
	Clear(ctx context.Context, domain string) error

	// Name returns the backend identifier.
	Name() string
}

// --- File Store ---

// FileCheckpointStore keeps checkpoints at <dir>/<domain>/_checkpoint.json.
type FileCheckpointStore struct {
	dir string
}

// NewFileCheckpointStore creates a store rooted at the crawl output dir.
func NewFileCheckpointStore(dir string) *FileCheckpointStore {
	return &FileCheckpointStore{dir: dir}
}

func (s *FileCheckpointStore) Name() string { return "file" }

func (s *FileCheckpointStore) path(domain string) string {
	return filepath.Join(s.dir, domain, CheckpointFile)
}

// Save writes the checkpoint through a temp file and rename.
func (s *FileCheckpointStore) Save(_ context.Context, cp *Checkpoint) error {
	finalPath := s.path(cp.Domain)
	if err := os.MkdirAll(filepath.Dir(finalPath), 0o755); err != nil {
		return fmt.Errorf("create checkpoint dir: %w", err)
	}
	tmpPath := finalPath + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create checkpoint file: %w", err)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cp); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("encode checkpoint: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close checkpoint file: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		return fmt.Errorf("rename checkpoint file: %w", err)
	}
	return nil
}

func (s *FileCheckpointStore) Load(_ context.Context, domain string) (*Checkpoint, error) {
	f, err := os.Open(s.path(domain))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, types.ErrNoCheckpoint
		}
		return nil, fmt.Errorf("open checkpoint: %w", err)
	}
	defer f.Close()

	var cp Checkpoint
	if err := json.NewDecoder(f).Decode(&cp); err != nil {
		return nil, fmt.Errorf("decode checkpoint: %w", err)
	}
	return &cp, nil
}

func (s *FileCheckpointStore) Clear(_ context.Context, domain string) error {
	if err := os.Remove(s.path(domain)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// --- Redis Store ---

// RedisCheckpointStore keeps checkpoints as JSON values in Redis.
type RedisCheckpointStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCheckpointStore connects to addr and verifies the connection.
func NewRedisCheckpointStore(ctx context.Context, addr string, ttl time.Duration) (*RedisCheckpointStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisCheckpointStore{
		client: client,
		prefix: "seocrawl:checkpoint:",
		ttl:    ttl,
	}, nil
}

func (s *RedisCheckpointStore) Name() string { return "redis" }

func (s *RedisCheckpointStore) Save(ctx context.Context, cp *Checkpoint) error {
	payload, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}
	return s.client.Set(ctx, s.prefix+cp.Domain, payload, s.ttl).Err()
}

func (s *RedisCheckpointStore) Load(ctx context.Context, domain string) (*Checkpoint, error) {
	val, err := s.client.Get(ctx, s.prefix+domain).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, types.ErrNoCheckpoint
		}
		return nil, err
	}
	var cp Checkpoint
	if err := json.Unmarshal(val, &cp); err != nil {
		return nil, fmt.Errorf("decode checkpoint: %w", err)
	}
	return &cp, nil
}

func (s *RedisCheckpointStore) Clear(ctx context.Context, domain string) error {
	return s.client.Del(ctx, s.prefix+domain).Err()
}

// Close closes the Redis client.
func (s *RedisCheckpointStore) Close() error {
	return s.client.Close()
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"socialclient/config"
	"socialclient/models"
)

// ErrNotFound - the KV store holds no blob under the requested key.
var ErrNotFound = errors.New("snapshot not found")

// KV is the external string-keyed blob store backing the offline fallback.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, blob []byte) error
}

// snapshotBlob - the persisted snapshot format: an ordered array of feed
// item records plus an envelope version for forward compatibility.
type snapshotBlob struct {
	Version int               `json:"version"`
	SavedAt time.Time         `json:"saved_at"`
	Items   []models.FeedItem `json:"items"`
}

const snapshotBlobVersion = 1

// ToPersistable serializes the current ordered list. The round trip through
// RestoreFromPersistable reproduces the same ids, order and flags.
func (s *Snapshot) ToPersistable() ([]byte, error) {
	blob := snapshotBlob{
		Version: snapshotBlobVersion,
		SavedAt: time.Now().UTC(),
		Items:   s.Items(),
	}
	return json.Marshal(blob)
}

// RestoreFromPersistable replaces the snapshot contents with a persisted
// copy.
func (s *Snapshot) RestoreFromPersistable(data []byte) error {
	var blob snapshotBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		return fmt.Errorf("decode snapshot blob: %w", err)
	}
	if blob.Version != snapshotBlobVersion {
		return fmt.Errorf("unsupported snapshot blob version %d", blob.Version)
	}
	s.Replace(blob.Items)
	return nil
}

// Persister couples a snapshot with a KV store under a fixed key.
type Persister struct {
	kv  KV
	key string
}

func NewPersister(kv KV, key string) *Persister {
	return &Persister{kv: kv, key: key}
}

// Save serializes the snapshot as it is at call time. The snapshot is
// re-read here rather than passed as a captured list so a save issued after
// later merges persists the newest state.
func (p *Persister) Save(ctx context.Context, s *Snapshot) error {
	blob, err := s.ToPersistable()
	if err != nil {
		return err
	}
	return p.kv.Set(ctx, p.key, blob)
}

// Load restores the snapshot from the last persisted copy.
func (p *Persister) Load(ctx context.Context, s *Snapshot) error {
	blob, err := p.kv.Get(ctx, p.key)
	if err != nil {
		return err
	}
	return s.RestoreFromPersistable(blob)
}

// OpenKV builds the KV backend selected by config.
func OpenKV(conf config.CacheConfig, redisConf config.RedisConfig) (KV, error) {
	switch conf.Driver {
	case "", "memory":
		return NewMemoryKV(), nil
	case "sqlite", "postgres":
		return OpenGormKV(conf)
	case "redis":
		return NewRedisKV(redisConf)
	default:
		return nil, fmt.Errorf("unknown cache driver %q", conf.Driver)
	}
}

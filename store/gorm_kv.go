package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
	"gorm.io/plugin/dbresolver"

	"socialclient/config"
)

// SnapshotRecord - one persisted blob row
type SnapshotRecord struct {
	Key       string    `gorm:"primaryKey;size:255"`
	Blob      []byte    `gorm:"type:blob"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (SnapshotRecord) TableName() string {
	return "snapshots"
}

// GormKV - KV backend on a local database: sqlite file on device, postgres
// for desktop/dev setups.
type GormKV struct {
	db *gorm.DB
}

func OpenGormKV(conf config.CacheConfig) (*GormKV, error) {
	var dialector gorm.Dialector
	switch conf.Driver {
	case "postgres":
		if conf.DSN == "" {
			return nil, fmt.Errorf("cache.dsn is required for the postgres driver")
		}
		dialector = postgres.Open(conf.DSN)
	default:
		dsn := conf.DSN
		if dsn == "" {
			dsn = "socialclient_cache.db"
		}
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	// Read replicas, if the deployment has them.
	if len(conf.Replicas) > 0 && conf.Driver == "postgres" {
		replicaDialectors := make([]gorm.Dialector, 0, len(conf.Replicas))
		for _, dsn := range conf.Replicas {
			replicaDialectors = append(replicaDialectors, postgres.Open(dsn))
		}
		err = db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: replicaDialectors,
			Policy:   dbresolver.RandomPolicy{},
		}))
		if err != nil {
			return nil, fmt.Errorf("register replicas: %w", err)
		}
	}

	if err := db.AutoMigrate(&SnapshotRecord{}); err != nil {
		return nil, fmt.Errorf("migrate cache db: %w", err)
	}
	return &GormKV{db: db}, nil
}

func (g *GormKV) Get(ctx context.Context, key string) ([]byte, error) {
	var record SnapshotRecord
	err := g.db.WithContext(ctx).First(&record, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cache get %s: %w", key, err)
	}
	return record.Blob, nil
}

func (g *GormKV) Set(ctx context.Context, key string, blob []byte) error {
	record := SnapshotRecord{Key: key, Blob: blob}
	err := g.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			UpdateAll: true,
		}).
		Create(&record).Error
	if err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

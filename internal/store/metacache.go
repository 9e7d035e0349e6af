package store

// The metadata cache is an intentional data accumulator, not a transparent
// HTTP cache: series metadata is written explicitly after a successful
// gateway fetch and read by plot labeling. No TTL, no auto-invalidation.

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/macrolab/fredmcp/internal/model"
)

// Bump when bucket layout or key format changes.
const metaSchemaVersion = 1

var (
	bucketSeriesMeta = []byte("series_meta")
	bucketInternal   = []byte("_meta")
)

// MetaCache wraps a bbolt database holding fetched series metadata.
type MetaCache struct {
	db *bolt.DB
}

// OpenMetaCache opens (or creates) the bbolt database at path.
// Parent directories are created automatically.
func OpenMetaCache(path string) (*MetaCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening db %s: %w", path, err)
	}

	c := &MetaCache{db: db}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration: %w", err)
	}
	return c, nil
}

// Close closes the database.
func (c *MetaCache) Close() error {
	return c.db.Close()
}

func (c *MetaCache) migrate() error {
	return c.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketSeriesMeta, bucketInternal} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("creating bucket %s: %w", name, err)
			}
		}
		meta := tx.Bucket(bucketInternal)
		if meta.Get([]byte("schema_version")) == nil {
			if err := meta.Put([]byte("schema_version"), []byte(fmt.Sprintf("%d", metaSchemaVersion))); err != nil {
				return err
			}
			if err := meta.Put([]byte("created_at"), []byte(time.Now().UTC().Format(time.RFC3339))); err != nil {
				return err
			}
		}
		return nil
	})
}

// PutSeriesMeta stores metadata for a series, stamping FetchedAt.
func (c *MetaCache) PutSeriesMeta(meta model.SeriesMeta) error {
	meta.FetchedAt = time.Now().UTC()
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encoding series meta: %w", err)
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSeriesMeta).Put([]byte(meta.ID), data)
	})
}

// GetSeriesMeta retrieves metadata for a series by ID.
// Returns (meta, true, nil) if found, (zero, false, nil) if not found.
func (c *MetaCache) GetSeriesMeta(id string) (model.SeriesMeta, bool, error) {
	var meta model.SeriesMeta
	err := c.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketSeriesMeta).Get([]byte(id))
		if v == nil {
			return nil
		}
		return json.Unmarshal(v, &meta)
	})
	if err != nil {
		return meta, false, err
	}
	return meta, meta.ID != "", nil
}

// ListSeriesMeta returns all cached series metadata.
func (c *MetaCache) ListSeriesMeta() ([]model.SeriesMeta, error) {
	var metas []model.SeriesMeta
	err := c.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSeriesMeta).ForEach(func(k, v []byte) error {
			var m model.SeriesMeta
			if err := json.Unmarshal(v, &m); err != nil {
				return err
			}
			metas = append(metas, m)
			return nil
		})
	})
	return metas, err
}

package perchbase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"perchbot/logger"

	"git.mills.io/prologic/bitcask"
)

var ErrNotFound = errors.New("key not found")

// DB is a compressed key/value store on top of bitcask. Keys are hashed, so the store
// holds opaque values looked up by a known name.
type DB struct {
	data *bitcask.Bitcask
}

// Open opens or creates the database directory at path.
func Open(path string) (*DB, error) {
	// Increase the maximum value size to 10MB (from the default 64KB)
	data, err := bitcask.Open(path, bitcask.WithMaxValueSize(10*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}
	return &DB{data: data}, nil
}

func (db *DB) Close() error {
	return db.data.Close()
}

// MergeEvery reclaims space on the given interval until ctx ends.
func (db *DB) MergeEvery(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			db.Merge()
		}
	}
}

func (db *DB) Merge() {
	logger.Info("Merging database to reclaim space...")
	if err := db.data.Merge(); err != nil {
		logger.Error("Error merging database", "error", err)
		return
	}
	logger.Info("Database merge complete.")
}

func (db *DB) PutString(key string, value string) error {
	return db.PutBytes(key, []byte(value))
}

func (db *DB) PutInt(key string, value int) error {
	return db.PutBytes(key, []byte(strconv.Itoa(value)))
}

func (db *DB) PutBytes(key string, value []byte) error {
	compressed, err := compress(value)
	if err != nil {
		return err
	}
	return db.data.Put(CacheKey(key), compressed)
}

// PutExpire stores value under key for ttl.
func (db *DB) PutExpire(key string, value []byte, ttl time.Duration) error {
	compressed, err := compress(value)
	if err != nil {
		return err
	}
	return db.data.PutWithTTL(CacheKey(key), compressed, ttl)
}

func (db *DB) PutJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return db.PutBytes(key, data)
}

func (db *DB) Get(key string) ([]byte, error) {
	compressed, err := db.data.Get(CacheKey(key))
	if err != nil {
		if errors.Is(err, bitcask.ErrKeyNotFound) {
			return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		return nil, err
	}
	return decompress(compressed)
}

func (db *DB) GetInt(key string) (int, error) {
	data, err := db.Get(key)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(string(data))
}

// GetJSON decodes the value under key into v. A missing key leaves v untouched and
// returns ErrNotFound.
func (db *DB) GetJSON(key string, v any) error {
	data, err := db.Get(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", key, err)
	}
	return nil
}

func (db *DB) Has(key string) bool {
	return db.data.Has(CacheKey(key))
}

func (db *DB) Delete(key string) error {
	return db.data.Delete(CacheKey(key))
}

package audio

import (
	"context"
	"crypto/md5"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Cache stores rendered speech so repeated descriptions are not sent to
// the provider again. Files live under dir and are indexed in a SQLite
// database next to them.
type Cache struct {
	dir string
	db  *sql.DB
}

// CacheStats summarises the cache contents
type CacheStats struct {
	Files int
	Bytes int64
	Hits  int64
}

// OpenCache opens or creates the cache in dir
func OpenCache(dir string) (*Cache, error) {
	if dir == "" {
		return nil, fmt.Errorf("cache directory is required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dir, "index.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open cache index: %w", err)
	}
	// A single connection serialises writers from concurrent utterances
	db.SetMaxOpenConns(1)

	c := &Cache{dir: dir, db: db}
	if err := c.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache tables: %w", err)
	}
	return c, nil
}

func (c *Cache) createTables() error {
	_, err := c.db.Exec(`CREATE TABLE IF NOT EXISTS speech (
		key        TEXT PRIMARY KEY,
		file       TEXT NOT NULL,
		language   TEXT NOT NULL,
		chars      INTEGER NOT NULL,
		bytes      INTEGER NOT NULL,
		hits       INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		used_at    INTEGER NOT NULL
	)`)
	return err
}

// Close releases the index database
func (c *Cache) Close() error {
	return c.db.Close()
}

// Dir returns the cache directory
func (c *Cache) Dir() string {
	return c.dir
}

// Key derives the cache key of text spoken by the provider identified by
// signature in language
func Key(signature, language, text string) string {
	h := md5.New()
	h.Write([]byte(signature))
	h.Write([]byte{0})
	h.Write([]byte(language))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// Lookup returns the cached file for key. Entries whose file has vanished
// are dropped from the index.
func (c *Cache) Lookup(ctx context.Context, key string) (string, bool, error) {
	var file string
	err := c.db.QueryRowContext(ctx, `SELECT file FROM speech WHERE key = ?`, key).Scan(&file)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache lookup failed: %w", err)
	}

	path := filepath.Join(c.dir, file)
	if _, err := os.Stat(path); err != nil {
		_, _ = c.db.ExecContext(ctx, `DELETE FROM speech WHERE key = ?`, key)
		return "", false, nil
	}

	_, err = c.db.ExecContext(ctx, `UPDATE speech SET hits = hits + 1, used_at = ? WHERE key = ?`,
		time.Now().Unix(), key)
	if err != nil {
		return "", false, fmt.Errorf("cache update failed: %w", err)
	}
	return path, true, nil
}

// Store copies src into the cache under key and returns the cached path
func (c *Cache) Store(ctx context.Context, key, language, text, src string) (string, error) {
	// First two hex chars as subdirectory to keep directories small
	rel := filepath.Join(key[:2], key[2:]+filepath.Ext(src))
	dst := filepath.Join(c.dir, rel)

	size, err := copyFile(src, dst)
	if err != nil {
		return "", fmt.Errorf("failed to copy into cache: %w", err)
	}

	now := time.Now().Unix()
	_, err = c.db.ExecContext(ctx, `INSERT OR REPLACE INTO speech
		(key, file, language, chars, bytes, hits, created_at, used_at)
		VALUES (?, ?, ?, ?, ?, 0, ?, ?)`,
		key, rel, language, len([]rune(text)), size, now, now)
	if err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("failed to index cached audio: %w", err)
	}
	return dst, nil
}

// Stats returns cache statistics
func (c *Cache) Stats(ctx context.Context) (CacheStats, error) {
	var s CacheStats
	err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(bytes), 0), COALESCE(SUM(hits), 0) FROM speech`).
		Scan(&s.Files, &s.Bytes, &s.Hits)
	if err != nil {
		return CacheStats{}, fmt.Errorf("failed to read cache stats: %w", err)
	}
	return s, nil
}

// Clear removes all cached audio
func (c *Cache) Clear(ctx context.Context) error {
	rows, err := c.db.QueryContext(ctx, `SELECT file FROM speech`)
	if err != nil {
		return fmt.Errorf("failed to list cache entries: %w", err)
	}
	var files []string
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			rows.Close()
			return err
		}
		files = append(files, f)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, f := range files {
		if err := os.Remove(filepath.Join(c.dir, f)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove cached file: %w", err)
		}
	}

	_, err = c.db.ExecContext(ctx, `DELETE FROM speech`)
	return err
}

// copyFile copies a file from src to dst and returns the bytes written
func copyFile(src, dst string) (int64, error) {
	dir := filepath.Dir(dst)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, err
		}
	}

	source, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer source.Close()

	destination, err := os.Create(dst)
	if err != nil {
		return 0, err
	}
	defer destination.Close()

	return io.Copy(destination, source)
}

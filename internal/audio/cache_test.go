package audio

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := OpenCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("OpenCache() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestKey(t *testing.T) {
	k1 := Key("openai/tts-1/alloy/1.00", "en-US", "hello")
	if k1 != Key("openai/tts-1/alloy/1.00", "en-US", "hello") {
		t.Error("Same input should produce the same key")
	}
	if k1 == Key("openai/tts-1/nova/1.00", "en-US", "hello") {
		t.Error("Different signature should produce a different key")
	}
	if k1 == Key("openai/tts-1/alloy/1.00", "de-DE", "hello") {
		t.Error("Different language should produce a different key")
	}
	if k1 == Key("openai/tts-1/alloy/1.00", "en-US", "hello!") {
		t.Error("Different text should produce a different key")
	}
	if len(k1) != 32 {
		t.Errorf("Expected md5 hex key, got %q", k1)
	}
}

func TestOpenCacheRequiresDir(t *testing.T) {
	if _, err := OpenCache(""); err == nil {
		t.Error("Expected error for empty cache dir")
	}
}

func TestCacheStoreAndLookup(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	key := Key("sig", "en-US", "hello")

	if _, ok, err := c.Lookup(ctx, key); err != nil || ok {
		t.Fatalf("Lookup() on empty cache = %v, %v", ok, err)
	}

	src := writeTemp(t, "speech.mp3", "audio-bytes")
	stored, err := c.Store(ctx, key, "en-US", "hello", src)
	if err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if filepath.Ext(stored) != ".mp3" {
		t.Errorf("Stored file should keep its extension, got %s", stored)
	}
	if filepath.Base(filepath.Dir(stored)) != key[:2] {
		t.Errorf("Stored file should live in a %s subdirectory, got %s", key[:2], stored)
	}

	path, ok, err := c.Lookup(ctx, key)
	if err != nil || !ok {
		t.Fatalf("Lookup() = %v, %v", ok, err)
	}
	if path != stored {
		t.Errorf("Lookup() path = %s, want %s", path, stored)
	}

	data, err := os.ReadFile(path)
	if err != nil || string(data) != "audio-bytes" {
		t.Errorf("Cached content = %q, %v", data, err)
	}

	stats, err := c.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Files != 1 || stats.Bytes != int64(len("audio-bytes")) || stats.Hits != 1 {
		t.Errorf("Stats() = %+v", stats)
	}
}

func TestCacheDropsMissingFiles(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	key := Key("sig", "en-US", "gone")

	stored, err := c.Store(ctx, key, "en-US", "gone", writeTemp(t, "gone.mp3", "x"))
	if err != nil {
		t.Fatal(err)
	}
	os.Remove(stored)

	if _, ok, err := c.Lookup(ctx, key); err != nil || ok {
		t.Fatalf("Lookup() of removed file = %v, %v", ok, err)
	}
	stats, _ := c.Stats(ctx)
	if stats.Files != 0 {
		t.Errorf("Expected stale entry to be dropped, got %d files", stats.Files)
	}
}

func TestCacheClear(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	var stored []string
	for _, text := range []string{"one", "two"} {
		p, err := c.Store(ctx, Key("sig", "en-US", text), "en-US", text, writeTemp(t, text+".mp3", text))
		if err != nil {
			t.Fatal(err)
		}
		stored = append(stored, p)
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	for _, p := range stored {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("Expected %s to be removed", p)
		}
	}
	stats, _ := c.Stats(ctx)
	if stats.Files != 0 || stats.Bytes != 0 {
		t.Errorf("Stats() after Clear = %+v", stats)
	}
}

func TestCacheSurvivesReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	ctx := context.Background()
	key := Key("sig", "en-US", "persist")

	c, err := OpenCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Store(ctx, key, "en-US", "persist", writeTemp(t, "p.wav", "wav")); err != nil {
		t.Fatal(err)
	}
	c.Close()

	c, err = OpenCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if _, ok, err := c.Lookup(ctx, key); err != nil || !ok {
		t.Errorf("Lookup() after reopen = %v, %v", ok, err)
	}
}

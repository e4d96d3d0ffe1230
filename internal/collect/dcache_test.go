package collect

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func TestDiskCachePutGet(t *testing.T) {
	cache, err := NewDiskCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskCache: %v", err)
	}
	key := KeyFor([]string{"node", "collect.mjs"}, "content")

	var got DiskPayload
	if ok, err := cache.Get(key, &got); err != nil || ok {
		t.Fatalf("empty cache Get = %v, %v", ok, err)
	}

	if err := cache.Put(key, &DiskPayload{Path: "a.ts", Output: []byte(`{"definitions":[]}`)}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	ok, err := cache.Get(key, &got)
	if err != nil || !ok {
		t.Fatalf("Get after Put = %v, %v", ok, err)
	}
	if got.Path != "a.ts" || string(got.Output) != `{"definitions":[]}` {
		t.Errorf("unexpected payload: %+v", got)
	}

	if err := cache.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	if ok, _ := cache.Get(key, &got); ok {
		t.Errorf("entry survived DropAll")
	}
	if err := cache.DropAll(); err != nil {
		t.Errorf("DropAll on empty cache: %v", err)
	}
}

func TestKeyForDependsOnCommandAndContent(t *testing.T) {
	a := KeyFor([]string{"x"}, "1")
	if a == KeyFor([]string{"x"}, "2") || a == KeyFor([]string{"y"}, "1") {
		t.Errorf("key collision")
	}
	if KeyFor([]string{"ab", "c"}, "") == KeyFor([]string{"a", "bc"}, "") {
		t.Errorf("argument boundaries must be part of the key")
	}
}

func TestNilDiskCacheIsInert(t *testing.T) {
	var cache *DiskCache
	if err := cache.Put(Key{}, &DiskPayload{}); err != nil {
		t.Errorf("nil Put: %v", err)
	}
	if ok, err := cache.Get(Key{}, &DiskPayload{}); ok || err != nil {
		t.Errorf("nil Get = %v, %v", ok, err)
	}
}

func TestCommandCollectorRunsAndCaches(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	root := t.TempDir()
	file := filepath.Join(root, "a.test-d.ts")
	if err := os.WriteFile(file, []byte("describe('x', () => {})\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	defs := `{"definitions": [{"type": "suite", "name": "x", "start": 0, "end": 22}]}`
	if err := os.WriteFile(file+".json", []byte(defs), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cache, err := NewDiskCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskCache: %v", err)
	}
	c := &CommandCollector{Command: []string{"sh", "-c", `cat "$0.json"`}, Cache: cache}

	got, err := c.Collect(context.Background(), root, file)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(got.Definitions) != 1 || got.Definitions[0].Task.Name != "x" {
		t.Fatalf("unexpected definitions: %+v", got.Definitions)
	}

	// second run is served from cache even if the extractor output is gone
	if err := os.Remove(file + ".json"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	got, err = c.Collect(context.Background(), root, file)
	if err != nil {
		t.Fatalf("cached Collect: %v", err)
	}
	if len(got.Definitions) != 1 {
		t.Fatalf("cache miss after first run")
	}
}

func TestCommandCollectorWithoutCommand(t *testing.T) {
	c := &CommandCollector{}
	if _, err := c.Collect(context.Background(), ".", "a.ts"); err != ErrNoCommand {
		t.Fatalf("expected ErrNoCommand, got %v", err)
	}
}

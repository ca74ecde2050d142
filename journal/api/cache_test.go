package api

import (
	"context"
	"testing"
	"time"
)

func TestPostCache(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cache, err := newPostCache(ctx, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, found := cache.get("a"); found {
		t.Fatal("empty cache should not have entries")
	}
	if !cache.putIfCurrent("a", cache.generation("a"), []byte(`{"_id":"a"}`)) {
		t.Fatal("body read under the current generation should be stored")
	}
	if buf, found := cache.get("a"); !found || string(buf) != `{"_id":"a"}` {
		t.Fatalf("unexpected cache entry %q", buf)
	}
	if err := cache.forget("a"); err != nil {
		t.Fatal(err)
	}
	if err := cache.forget("a"); err != nil {
		t.Fatalf("forgetting a missing entry should not fail, got %v", err)
	}
	if _, found := cache.get("a"); found {
		t.Fatal("entry should have been removed")
	}
}

func TestPostCacheDropsBodiesReadBeforeForget(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cache, err := newPostCache(ctx, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	gen := cache.generation("a")
	// an update commits and evicts while the reader still holds the old body
	if err := cache.forget("a"); err != nil {
		t.Fatal(err)
	}
	if cache.putIfCurrent("a", gen, []byte(`{"title":"old"}`)) {
		t.Fatal("body read before forget must not be stored")
	}
	if _, found := cache.get("a"); found {
		t.Fatal("stale body found in cache")
	}
	if !cache.putIfCurrent("a", cache.generation("a"), []byte(`{"title":"new"}`)) {
		t.Fatal("body read after forget should be stored")
	}
}

func TestETag(t *testing.T) {
	a := etag([]byte("one"))
	if a != etag([]byte("one")) {
		t.Fatal("etag must be stable")
	}
	if a == etag([]byte("two")) {
		t.Fatal("different bodies should have different etags")
	}
	if a[0] != '"' || a[len(a)-1] != '"' {
		t.Fatalf("etag should be quoted, got %v", a)
	}
}

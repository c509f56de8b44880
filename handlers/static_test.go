package handlers

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func newTestCache(t *testing.T) (*AssetCache, string) {
	t.Helper()
	root := t.TempDir()
	return NewAssetCache(root, zap.NewNop().Sugar()), root
}

func writeAsset(t *testing.T, root, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(root, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func get(cache *AssetCache, target string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	cache.ServeHTTP(rec, req)
	return rec
}

func TestAssetCacheServesWithETag(t *testing.T) {
	cache, root := newTestCache(t)
	writeAsset(t, root, "app.js", "console.log(1);")

	rec := get(cache, "/app.js", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/javascript; charset=utf-8" {
		t.Fatalf("content type = %q", got)
	}
	if rec.Header().Get("ETag") == "" {
		t.Fatal("missing ETag header")
	}
	if rec.Body.String() != "console.log(1);" {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestAssetCacheRevalidatesWithIfNoneMatch(t *testing.T) {
	cache, root := newTestCache(t)
	writeAsset(t, root, "style.css", "body {}")

	etag := get(cache, "/style.css", nil).Header().Get("ETag")
	rec := get(cache, "/style.css", map[string]string{"If-None-Match": etag})
	if rec.Code != http.StatusNotModified {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotModified)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("304 response carried a body of %d bytes", rec.Body.Len())
	}
}

func TestAssetCacheGzipsTextAssets(t *testing.T) {
	cache, root := newTestCache(t)
	writeAsset(t, root, "app.js", "console.log('gzip me');")

	rec := get(cache, "/app.js", map[string]string{"Accept-Encoding": "gzip, deflate"})
	if got := rec.Header().Get("Content-Encoding"); got != "gzip" {
		t.Fatalf("content encoding = %q, want gzip", got)
	}
	gz, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	body, err := io.ReadAll(gz)
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != "console.log('gzip me');" {
		t.Fatalf("decompressed body = %q", body)
	}
}

func TestAssetCacheBinaryAssetsNotCompressed(t *testing.T) {
	cache, root := newTestCache(t)
	writeAsset(t, root, "ship.png", "\x89PNG")

	rec := get(cache, "/ship.png", map[string]string{"Accept-Encoding": "gzip"})
	if got := rec.Header().Get("Content-Encoding"); got != "" {
		t.Fatalf("content encoding = %q, want none", got)
	}
	if rec.Body.String() != "\x89PNG" {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestAssetCacheMissingFileIs404(t *testing.T) {
	cache, _ := newTestCache(t)
	if rec := get(cache, "/nope.js", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestAssetCacheServesIndexForDirectory(t *testing.T) {
	cache, root := newTestCache(t)
	writeAsset(t, root, "index.html", "<html></html>")

	rec := get(cache, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec.Body.String() != "<html></html>" {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

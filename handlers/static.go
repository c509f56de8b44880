package handlers

import (
	"bytes"
	"compress/gzip"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
)

const defaultContentType = "text/plain"

var contentTypeMap = map[string]string{
	".js":   "text/javascript; charset=utf-8",
	".css":  "text/css; charset=utf-8",
	".ttf":  "font/ttf",
	".html": "text/html; charset=utf-8",
	".png":  "image/png",
	".bmp":  "image/x-ms-bmp",
	".jpg":  "image/jpeg",
	".wav":  "audio/wav",
}

type cacheItem struct {
	etag        string
	contentType string
	content     []byte
	gzipContent []byte
}

// AssetCache serves the arena client's static files out of memory with
// ETag revalidation. Text assets are kept gzip-compressed as well.
type AssetCache struct {
	root string
	log  *zap.SugaredLogger

	mu    sync.Mutex
	items map[string]*cacheItem
}

func NewAssetCache(root string, log *zap.SugaredLogger) *AssetCache {
	return &AssetCache{
		root:  root,
		log:   log,
		items: make(map[string]*cacheItem),
	}
}

func (c *AssetCache) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	uri := path.Clean("/" + r.URL.Path)

	if uri == "/favicon.ico" {
		w.WriteHeader(http.StatusOK)
		return
	}

	item, err := c.load(uri)
	if err != nil {
		if os.IsNotExist(err) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		c.log.Errorw("unable to read asset", "uri", uri, "err", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if r.Header.Get("If-None-Match") == item.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", item.contentType)
	w.Header().Set("ETag", item.etag)

	content := item.content
	if item.gzipContent != nil && strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
		w.Header().Set("Content-Encoding", "gzip")
		content = item.gzipContent
	}
	w.Write(content)
}

func (c *AssetCache) load(uri string) (*cacheItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if item, ok := c.items[uri]; ok {
		return item, nil
	}

	filename := filepath.Join(c.root, filepath.FromSlash(uri))
	stat, err := os.Stat(filename)
	if err != nil {
		return nil, err
	}
	if stat.IsDir() {
		filename = filepath.Join(filename, "index.html")
		if stat, err = os.Stat(filename); err != nil {
			return nil, err
		}
	}

	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	contentType := contentTypeMap[filepath.Ext(filename)]
	if contentType == "" {
		contentType = defaultContentType
	}

	item := &cacheItem{
		etag:        strconv.FormatInt(stat.ModTime().UnixMilli(), 10),
		contentType: contentType,
		content:     content,
	}
	if strings.HasPrefix(contentType, "text/") {
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		if _, err := gz.Write(content); err == nil && gz.Close() == nil {
			item.gzipContent = buf.Bytes()
		}
	}

	c.items[uri] = item
	return item, nil
}

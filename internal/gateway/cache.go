package gateway

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/birkelund/boltdbcache"
	"github.com/gregjones/httpcache"
)

const cacheFileName = "http-cache.db"

// newCacheTransport returns a transport that serves repeated GETs from a bolt
// database under dir and revalidates them with conditional requests.
func newCacheTransport(dir string) (*httpcache.Transport, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	c, err := boltdbcache.New(filepath.Join(dir, cacheFileName))
	if err != nil {
		return nil, fmt.Errorf("failed to open HTTP cache: %w", err)
	}
	t := httpcache.NewTransport(c)
	t.MarkCachedResponses = true
	return t, nil
}

// DefaultCacheDir is the per-user cache location.
func DefaultCacheDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "prsample"), nil
}

package cache

import (
    "context"
    "crypto/sha256"
    "encoding/hex"
    "errors"
    "os"
    "path/filepath"
    "time"
)

// LLMCache stores model responses keyed by model name and prompt digest.
type LLMCache struct {
    Dir string
    // StrictPerms enforces 0700 directories and 0600 files.
    StrictPerms bool
}

func (c *LLMCache) ensureDir() error {
    if c == nil || c.Dir == "" {
        return errors.New("cache dir not configured")
    }
    return ensureDir(c.Dir, c.StrictPerms)
}

// KeyFrom builds a cache key from model and prompt.
func KeyFrom(model string, prompt string) string {
    h := sha256.Sum256([]byte(model + "\n\n" + prompt))
    return hex.EncodeToString(h[:])
}

func (c *LLMCache) pathFor(key string) string {
    return filepath.Join(c.Dir, key+".json")
}

// Get returns cached bytes if present.
func (c *LLMCache) Get(_ context.Context, key string) ([]byte, bool, error) {
    if err := c.ensureDir(); err != nil {
        return nil, false, err
    }
    p := c.pathFor(key)
    b, err := os.ReadFile(p)
    if err != nil {
        return nil, false, nil
    }
    // touch mtime so age-based purging keeps recently used entries
    now := time.Now()
    _ = os.Chtimes(p, now, now)
    return b, true, nil
}

// Save writes bytes to cache.
func (c *LLMCache) Save(_ context.Context, key string, data []byte) error {
    if err := c.ensureDir(); err != nil {
        return err
    }
    return os.WriteFile(c.pathFor(key), data, fileMode(c.StrictPerms))
}

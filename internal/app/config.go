package app

import (
    "time"

    "github.com/hyperifyio/seoaudit/internal/extract"
)

// Config holds runtime configuration for the application.
type Config struct {
    // URL of the page to analyze.
    URL string
    // OutDir receives report_<timestamp>.pdf (and .md).
    OutDir string

    // Fetch
    Timeout   time.Duration
    UserAgent string

    // LocalPrefix is the absolute URL prefix counted as an internal link.
    LocalPrefix string

    // Optional outputs and chapters
    Markdown bool
    Robots   bool

    // LLM (advice chapter is enabled when LLMModel is set)
    LLMBaseURL string
    LLMModel   string
    LLMAPIKey  string

    // Cache
    CacheDir         string
    CacheMaxAge      time.Duration
    CacheClear       bool
    CacheStrictPerms bool

    Verbose bool
}

const (
    defaultOutDir   = "."
    defaultCacheDir = ".seoaudit-cache"
)

// DefaultUserAgent identifies the tool in requests.
func DefaultUserAgent() string {
    return "seoaudit/" + BuildVersion + " (+https://github.com/hyperifyio/seoaudit)"
}

// ApplyDefaults fills any fields still unset after flags, env and file config.
func ApplyDefaults(cfg *Config) {
    if cfg == nil {
        return
    }
    if trim(cfg.OutDir) == "" {
        cfg.OutDir = defaultOutDir
    }
    if trim(cfg.UserAgent) == "" {
        cfg.UserAgent = DefaultUserAgent()
    }
    if trim(cfg.LocalPrefix) == "" {
        cfg.LocalPrefix = extract.DefaultLocalPrefix
    }
    if trim(cfg.CacheDir) == "" {
        cfg.CacheDir = defaultCacheDir
    }
}

package app

import (
    "encoding/json"
    "errors"
    "fmt"
    "net/url"
    "os"
    "path/filepath"
    "strings"
    "time"

    yaml "gopkg.in/yaml.v3"
)

// FileConfig represents the single-file configuration schema.
type FileConfig struct {
    URL    string `yaml:"url" json:"url"`
    OutDir string `yaml:"outDir" json:"outDir"`

    Fetch struct {
        Timeout     string `yaml:"timeout" json:"timeout"`
        UserAgent   string `yaml:"ua" json:"ua"`
    } `yaml:"fetch" json:"fetch"`

    Links struct {
        LocalPrefix string `yaml:"localPrefix" json:"localPrefix"`
    } `yaml:"links" json:"links"`

    Markdown bool `yaml:"markdown" json:"markdown"`
    Robots   bool `yaml:"robots" json:"robots"`
    Verbose  bool `yaml:"verbose" json:"verbose"`

    LLM struct {
        BaseURL string `yaml:"base" json:"base"`
        Model   string `yaml:"model" json:"model"`
        APIKey  string `yaml:"key" json:"key"`
    } `yaml:"llm" json:"llm"`

    Cache struct {
        Dir         string `yaml:"dir" json:"dir"`
        MaxAge      string `yaml:"maxAge" json:"maxAge"`
        Clear       bool   `yaml:"clear" json:"clear"`
        StrictPerms bool   `yaml:"strictPerms" json:"strictPerms"`
    } `yaml:"cache" json:"cache"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
    var fc FileConfig
    b, err := os.ReadFile(path)
    if err != nil {
        return fc, err
    }
    switch ext := strings.ToLower(filepath.Ext(path)); ext {
    case ".yaml", ".yml":
        if err := yaml.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse yaml: %w", err)
        }
    case ".json":
        if err := json.Unmarshal(b, &fc); err != nil {
            return fc, fmt.Errorf("parse json: %w", err)
        }
    default:
        if err := yaml.Unmarshal(b, &fc); err != nil {
            if jerr := json.Unmarshal(b, &fc); jerr != nil {
                return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
            }
        }
    }
    return fc, nil
}

// ApplyFileConfig overlays values from fc into cfg for any fields that are
// still unset. Call it after flags and env so both keep precedence.
// Malformed durations are reported rather than ignored.
func ApplyFileConfig(cfg *Config, fc FileConfig) error {
    if cfg == nil { return nil }

    if cfg.URL == "" { cfg.URL = fc.URL }
    if cfg.OutDir == "" { cfg.OutDir = fc.OutDir }
    if cfg.UserAgent == "" { cfg.UserAgent = fc.Fetch.UserAgent }
    if cfg.LocalPrefix == "" { cfg.LocalPrefix = fc.Links.LocalPrefix }
    if !cfg.Markdown && fc.Markdown { cfg.Markdown = true }
    if !cfg.Robots && fc.Robots { cfg.Robots = true }
    if !cfg.Verbose && fc.Verbose { cfg.Verbose = true }

    if cfg.LLMBaseURL == "" { cfg.LLMBaseURL = fc.LLM.BaseURL }
    if cfg.LLMModel == "" { cfg.LLMModel = fc.LLM.Model }
    if cfg.LLMAPIKey == "" { cfg.LLMAPIKey = fc.LLM.APIKey }

    if cfg.CacheDir == "" { cfg.CacheDir = fc.Cache.Dir }
    if !cfg.CacheClear && fc.Cache.Clear { cfg.CacheClear = true }
    if !cfg.CacheStrictPerms && fc.Cache.StrictPerms { cfg.CacheStrictPerms = true }

    if cfg.Timeout == 0 && fc.Fetch.Timeout != "" {
        d, err := time.ParseDuration(fc.Fetch.Timeout)
        if err != nil {
            return fmt.Errorf("config: fetch.timeout: %w", err)
        }
        cfg.Timeout = d
    }
    if cfg.CacheMaxAge == 0 && fc.Cache.MaxAge != "" {
        d, err := time.ParseDuration(fc.Cache.MaxAge)
        if err != nil {
            return fmt.Errorf("config: cache.maxAge: %w", err)
        }
        cfg.CacheMaxAge = d
    }
    return nil
}

// ValidateConfig performs minimal validation of the merged configuration.
// An empty URL is allowed here; the caller prompts for it.
func ValidateConfig(cfg Config) error {
    if u := trim(cfg.URL); u != "" {
        if err := validatePageURL(u); err != nil {
            return err
        }
    }
    if trim(cfg.OutDir) == "" {
        return errors.New("config: output directory is required")
    }
    if cfg.Timeout < 0 || cfg.CacheMaxAge < 0 {
        return errors.New("config: negative durations are not allowed")
    }
    if p := trim(cfg.LocalPrefix); p != "" {
        if pu, err := url.Parse(p); err != nil || pu.Scheme == "" || pu.Host == "" {
            return fmt.Errorf("config: local prefix must be an absolute URL: %q", p)
        }
    }
    return nil
}

func validatePageURL(raw string) error {
    u, err := url.Parse(raw)
    if err != nil {
        return fmt.Errorf("config: invalid url: %w", err)
    }
    if s := strings.ToLower(u.Scheme); (s != "http" && s != "https") || u.Host == "" {
        return fmt.Errorf("config: url must be absolute http(s): %q", raw)
    }
    return nil
}

func trim(s string) string { return strings.TrimSpace(s) }

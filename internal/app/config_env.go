package app

import (
    "os"
    "strings"
    "time"
)

// ApplyEnvToConfig populates unset fields of cfg from environment variables.
// Explicit cfg values take precedence over env.
func ApplyEnvToConfig(cfg *Config) {
    if cfg == nil { return }

    setString := func(dst *string, envKey string) {
        if *dst == "" { *dst = os.Getenv(envKey) }
    }
    setString(&cfg.URL, "SEOAUDIT_URL")
    setString(&cfg.OutDir, "SEOAUDIT_OUT_DIR")
    setString(&cfg.UserAgent, "SEOAUDIT_USER_AGENT")
    setString(&cfg.LocalPrefix, "SEOAUDIT_LOCAL_PREFIX")
    setString(&cfg.CacheDir, "CACHE_DIR")
    setString(&cfg.LLMBaseURL, "LLM_BASE_URL")
    setString(&cfg.LLMModel, "LLM_MODEL")
    setString(&cfg.LLMAPIKey, "LLM_API_KEY")

    setDuration := func(dst *time.Duration, envKey string) {
        if *dst != 0 { return }
        if s := strings.TrimSpace(os.Getenv(envKey)); s != "" {
            if d, err := time.ParseDuration(s); err == nil {
                *dst = d
            }
        }
    }
    setDuration(&cfg.Timeout, "SEOAUDIT_TIMEOUT")
    setDuration(&cfg.CacheMaxAge, "CACHE_MAX_AGE")

    setBool := func(dst *bool, envKey string) {
        if *dst { return }
        *dst = truthy(os.Getenv(envKey))
    }
    setBool(&cfg.Markdown, "SEOAUDIT_MARKDOWN")
    setBool(&cfg.Robots, "SEOAUDIT_ROBOTS")
    setBool(&cfg.CacheClear, "CACHE_CLEAR")
    setBool(&cfg.CacheStrictPerms, "CACHE_STRICT_PERMS")
    setBool(&cfg.Verbose, "VERBOSE")
}

func truthy(s string) bool {
    switch strings.ToLower(strings.TrimSpace(s)) {
    case "1", "true", "yes", "on":
        return true
    }
    return false
}

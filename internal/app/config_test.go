package app

import (
    "os"
    "path/filepath"
    "strings"
    "testing"
    "time"
)

func TestLoadConfigFile_YAMLAndJSON(t *testing.T) {
    dir := t.TempDir()
    y := filepath.Join(dir, "seoaudit.yaml")
    yamlBody := "url: https://file.example/\noutDir: out\nfetch:\n  timeout: 5s\n  ua: file-agent\nmarkdown: true\nllm:\n  model: file-model\ncache:\n  maxAge: 24h\n"
    if err := os.WriteFile(y, []byte(yamlBody), 0o600); err != nil {
        t.Fatal(err)
    }
    fc, err := LoadConfigFile(y)
    if err != nil {
        t.Fatalf("load yaml: %v", err)
    }
    if fc.URL != "https://file.example/" || fc.Fetch.Timeout != "5s" || fc.LLM.Model != "file-model" || !fc.Markdown {
        t.Fatalf("unexpected yaml config: %+v", fc)
    }

    j := filepath.Join(dir, "seoaudit.json")
    if err := os.WriteFile(j, []byte(`{"url":"https://json.example/","robots":true}`), 0o600); err != nil {
        t.Fatal(err)
    }
    fc, err = LoadConfigFile(j)
    if err != nil || fc.URL != "https://json.example/" || !fc.Robots {
        t.Fatalf("load json: %+v err=%v", fc, err)
    }

    bad := filepath.Join(dir, "bad.json")
    _ = os.WriteFile(bad, []byte("{"), 0o600)
    if _, err := LoadConfigFile(bad); err == nil {
        t.Fatalf("expected parse error")
    }
}

// flags > env > file > defaults
func TestConfigPrecedence(t *testing.T) {
    unset(t, "SEOAUDIT_URL", "SEOAUDIT_OUT_DIR", "SEOAUDIT_USER_AGENT", "SEOAUDIT_TIMEOUT", "LLM_MODEL")
    t.Setenv("SEOAUDIT_OUT_DIR", "env-out")
    t.Setenv("LLM_MODEL", "env-model")

    var fc FileConfig
    fc.URL = "https://file.example/"
    fc.OutDir = "file-out"
    fc.Fetch.Timeout = "3s"
    fc.LLM.Model = "file-model"

    cfg := Config{URL: "https://flag.example/"}
    ApplyEnvToConfig(&cfg)
    if err := ApplyFileConfig(&cfg, fc); err != nil {
        t.Fatalf("apply file: %v", err)
    }
    ApplyDefaults(&cfg)

    if cfg.URL != "https://flag.example/" {
        t.Fatalf("flag should win, got %q", cfg.URL)
    }
    if cfg.OutDir != "env-out" || cfg.LLMModel != "env-model" {
        t.Fatalf("env should beat file: %+v", cfg)
    }
    if cfg.Timeout != 3*time.Second {
        t.Fatalf("file should fill timeout, got %v", cfg.Timeout)
    }
    if !strings.HasPrefix(cfg.UserAgent, "seoaudit/") || cfg.LocalPrefix != "http://localhost" || cfg.CacheDir != ".seoaudit-cache" {
        t.Fatalf("defaults not applied: %+v", cfg)
    }
    if err := ValidateConfig(cfg); err != nil {
        t.Fatalf("validate: %v", err)
    }
}

func TestApplyFileConfig_BadDuration(t *testing.T) {
    var fc FileConfig
    fc.Cache.MaxAge = "soon"
    if err := ApplyFileConfig(&Config{}, fc); err == nil {
        t.Fatalf("expected duration error")
    }
}

func TestValidateConfig(t *testing.T) {
    ok := Config{OutDir: ".", LocalPrefix: "http://localhost"}
    if err := ValidateConfig(ok); err != nil {
        t.Fatalf("empty URL should be allowed before prompting: %v", err)
    }
    cases := []Config{
        {URL: "example.com", OutDir: "."},
        {URL: "ftp://example.com/", OutDir: "."},
        {URL: "https://example.com/"},
        {URL: "https://example.com/", OutDir: ".", Timeout: -time.Second},
        {URL: "https://example.com/", OutDir: ".", LocalPrefix: "/relative"},
    }
    for i, c := range cases {
        if err := ValidateConfig(c); err == nil {
            t.Fatalf("case %d: expected error for %+v", i, c)
        }
    }
}

package app

import (
    "errors"
    "fmt"
    "os"
    "strings"

    "github.com/joho/godotenv"
)

// LoadEnvFiles loads dotenv files of KEY=VALUE pairs into the process
// environment. Variables already present in the real environment are kept;
// among the files, later ones override earlier ones. Missing files are
// skipped.
func LoadEnvFiles(paths ...string) error {
    preset := make(map[string]bool)
    for _, kv := range os.Environ() {
        if i := strings.IndexByte(kv, '='); i > 0 {
            preset[kv[:i]] = true
        }
    }
    for _, p := range paths {
        if strings.TrimSpace(p) == "" {
            continue
        }
        vars, err := godotenv.Read(p)
        if err != nil {
            if errors.Is(err, os.ErrNotExist) {
                continue
            }
            return fmt.Errorf("env file %s: %w", p, err)
        }
        for k, v := range vars {
            if preset[k] {
                continue
            }
            if err := os.Setenv(k, v); err != nil {
                return err
            }
        }
    }
    return nil
}

// SplitList splits a comma separated flag value, dropping blanks.
func SplitList(s string) []string {
    var out []string
    for _, p := range strings.Split(s, ",") {
        if v := strings.TrimSpace(p); v != "" {
            out = append(out, v)
        }
    }
    return out
}

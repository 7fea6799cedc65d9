package advise

import (
    "strings"
    "unicode/utf8"
)

// reservedOutputTokens is kept free for the model's answer.
const reservedOutputTokens = 1024

// estimateTokens approximates the token count at four bytes per token,
// rounding up.
func estimateTokens(s string) int {
    return (len(s) + 3) / 4
}

// contextTokens guesses the context window of model from its name.
func contextTokens(model string) int {
    name := strings.ToLower(strings.TrimSpace(model))
    switch {
    case strings.Contains(name, "1m"):
        return 1_000_000
    case strings.Contains(name, "200k"):
        return 200_000
    case strings.Contains(name, "128k"), strings.Contains(name, "-mini"),
        strings.HasPrefix(name, "gpt-4o"), strings.HasPrefix(name, "gpt-4.1"):
        return 128_000
    case strings.Contains(name, "32k"):
        return 32_768
    case strings.Contains(name, "16k"):
        return 16_384
    }
    return 8192
}

// fitExcerpt trims excerpt so that a prompt of usedTokens plus the excerpt
// stays inside the model's context window. The cut lands on a rune boundary.
func fitExcerpt(model string, usedTokens int, excerpt string) string {
    remaining := contextTokens(model) - reservedOutputTokens - usedTokens
    if remaining <= 0 {
        return ""
    }
    maxBytes := remaining * 4
    if len(excerpt) <= maxBytes {
        return excerpt
    }
    cut := maxBytes
    for cut > 0 && !utf8.RuneStart(excerpt[cut]) {
        cut--
    }
    return excerpt[:cut]
}

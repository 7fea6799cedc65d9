package advise

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "strings"

    "github.com/rs/zerolog/log"
    openai "github.com/sashabaranov/go-openai"

    "github.com/hyperifyio/seoaudit/internal/cache"
    "github.com/hyperifyio/seoaudit/internal/extract"
    "github.com/hyperifyio/seoaudit/internal/rank"
)

// ChatClient is the subset of an OpenAI-compatible client the advisor needs.
// *openai.Client satisfies it.
type ChatClient interface {
    CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ErrNoAdvice is returned when the model produced no usable recommendations.
var ErrNoAdvice = errors.New("no recommendations")

const defaultSystemPrompt = "You are an experienced technical SEO consultant. Base every recommendation only on the audit data provided. Be concrete and actionable. Do not invent data."

// Input is the audit data the recommendations are based on.
type Input struct {
    URL     string
    Results []extract.Result
    Terms   []rank.TermScore
    // Content is an excerpt of the readable page text.
    Content string
}

// Advisor asks a chat model for prioritized SEO recommendations.
type Advisor struct {
    Client ChatClient
    Model  string
    Cache  *cache.LLMCache
    // SystemPrompt overrides the default system message when non-empty.
    SystemPrompt string
    // MaxItems caps the number of recommendations. Zero means 8.
    MaxItems int
}

// NewOpenAI builds an Advisor talking to an OpenAI-compatible endpoint.
func NewOpenAI(baseURL, apiKey, model string, c *cache.LLMCache) *Advisor {
    cfg := openai.DefaultConfig(apiKey)
    if strings.TrimSpace(baseURL) != "" {
        cfg.BaseURL = baseURL
    }
    return &Advisor{Client: openai.NewClientWithConfig(cfg), Model: model, Cache: c}
}

// Advise returns one recommendation per entry.
func (a *Advisor) Advise(ctx context.Context, in Input) ([]string, error) {
    if a == nil || a.Client == nil || strings.TrimSpace(a.Model) == "" {
        return nil, errors.New("advisor not configured")
    }
    system := defaultSystemPrompt
    if strings.TrimSpace(a.SystemPrompt) != "" {
        system = a.SystemPrompt
    }
    user := a.buildUserMessage(system, in)

    key := cache.KeyFrom(a.Model, system+"\n\n"+user)
    if a.Cache != nil {
        if raw, ok, _ := a.Cache.Get(ctx, key); ok {
            var cached struct {
                Items []string `json:"items"`
            }
            if err := json.Unmarshal(raw, &cached); err == nil && len(cached.Items) > 0 {
                log.Debug().Str("model", a.Model).Msg("advice served from cache")
                return cached.Items, nil
            }
        }
    }

    resp, err := a.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
        Model: a.Model,
        Messages: []openai.ChatCompletionMessage{
            {Role: openai.ChatMessageRoleSystem, Content: system},
            {Role: openai.ChatMessageRoleUser, Content: user},
        },
        Temperature: 0.1,
        N:           1,
    })
    if err != nil {
        return nil, fmt.Errorf("advice call: %w", err)
    }
    if len(resp.Choices) == 0 {
        return nil, ErrNoAdvice
    }
    items := ParseItems(resp.Choices[0].Message.Content, a.maxItems())
    if len(items) == 0 {
        return nil, ErrNoAdvice
    }
    if a.Cache != nil {
        payload, _ := json.Marshal(map[string][]string{"items": items})
        _ = a.Cache.Save(ctx, key, payload)
    }
    return items, nil
}

func (a *Advisor) maxItems() int {
    if a.MaxItems > 0 {
        return a.MaxItems
    }
    return 8
}

func (a *Advisor) buildUserMessage(system string, in Input) string {
    var sb strings.Builder
    fmt.Fprintf(&sb, "List at most %d prioritized SEO improvements for %s.", a.maxItems(), in.URL)
    sb.WriteString("\nOutput one recommendation per line as a plain list. No headings, no preamble.")
    sb.WriteString("\n\nAudit findings:\n")
    for _, r := range in.Results {
        sb.WriteString("\n## ")
        sb.WriteString(r.Title)
        sb.WriteString("\n")
        text := r.Text()
        if strings.TrimSpace(text) == "" {
            text = "(none)\n"
        }
        sb.WriteString(text)
    }
    if len(in.Terms) > 0 {
        sb.WriteString("\n## Top terms\n")
        for _, line := range rank.Lines(in.Terms) {
            sb.WriteString(line)
            sb.WriteString("\n")
        }
    }
    const excerptHeading = "\n## Page content excerpt\n"
    used := estimateTokens(system) + estimateTokens(sb.String()) + estimateTokens(excerptHeading)
    if c := strings.TrimSpace(fitExcerpt(a.Model, used, in.Content)); c != "" {
        sb.WriteString(excerptHeading)
        sb.WriteString(c)
        sb.WriteString("\n")
    }
    return sb.String()
}

// ParseItems splits model output into list entries, stripping bullet and
// numbering markers and dropping blank lines and headings.
func ParseItems(content string, max int) []string {
    var items []string
    for _, line := range strings.Split(content, "\n") {
        s := strings.TrimSpace(line)
        if s == "" || strings.HasPrefix(s, "#") {
            continue
        }
        s = strings.TrimLeft(s, "-*• ")
        if i := strings.IndexAny(s, ".)"); i > 0 && i <= 3 && isDigits(s[:i]) {
            s = strings.TrimSpace(s[i+1:])
        }
        if s == "" {
            continue
        }
        items = append(items, s)
        if max > 0 && len(items) == max {
            break
        }
    }
    return items
}

func isDigits(s string) bool {
    for _, r := range s {
        if r < '0' || r > '9' {
            return false
        }
    }
    return s != ""
}

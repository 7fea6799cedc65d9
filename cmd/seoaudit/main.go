package main

import (
    "bufio"
    "context"
    "errors"
    "flag"
    "fmt"
    "io"
    "os"
    "os/signal"
    "strings"
    "time"

    "github.com/rs/zerolog"
    "github.com/rs/zerolog/log"

    "github.com/hyperifyio/seoaudit/internal/app"
)

const urlPrompt = "Please enter the URL of the page you want to analyze: "

// Exit codes.
const (
    exitOK     = 0
    exitConfig = 1
    exitFetch  = 2
    exitRender = 3
)

func main() {
    zerolog.TimeFieldFormat = time.RFC3339
    log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
    code := run(ctx, os.Args[1:], os.Stdin, os.Stdout)
    stop()
    os.Exit(code)
}

type options struct {
    cfg         app.Config
    configPath  string
    envFiles    string
    showVersion bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
    var o options
    fs := flag.NewFlagSet("seoaudit", flag.ContinueOnError)
    fs.SetOutput(stderr)

    fs.StringVar(&o.cfg.URL, "url", "", "URL of the page to analyze (prompted on stdin when empty)")
    fs.StringVar(&o.configPath, "config", "", "Path to YAML or JSON config file")
    fs.StringVar(&o.envFiles, "env", ".env", "Comma-separated dotenv files to load")
    fs.StringVar(&o.cfg.OutDir, "out.dir", "", "Directory for report_<timestamp>.pdf (default \".\")")
    fs.DurationVar(&o.cfg.Timeout, "timeout", 0, "Timeout for the page fetch, robots.txt lookup and LLM call, e.g. 30s; 0 disables")
    fs.StringVar(&o.cfg.UserAgent, "ua", "", "User-Agent for page and robots.txt requests")
    fs.StringVar(&o.cfg.LocalPrefix, "local.prefix", "", "Absolute URL prefix counted as internal by the links analysis (default \"http://localhost\")")
    fs.BoolVar(&o.cfg.Markdown, "markdown", false, "Also write report_<timestamp>.md")
    fs.BoolVar(&o.cfg.Robots, "robots", false, "Add a robots.txt chapter")
    fs.StringVar(&o.cfg.CacheDir, "cache.dir", "", "Cache directory for robots.txt and LLM responses (default \".seoaudit-cache\")")
    fs.DurationVar(&o.cfg.CacheMaxAge, "cache.maxAge", 0, "Purge cache entries older than this before the run; 0 disables")
    fs.BoolVar(&o.cfg.CacheClear, "cache.clear", false, "Clear the cache directory before the run")
    fs.BoolVar(&o.cfg.CacheStrictPerms, "cache.strictPerms", false, "Restrict cache permissions (0700 dirs, 0600 files)")
    fs.StringVar(&o.cfg.LLMBaseURL, "llm.base", "", "OpenAI-compatible base URL for the recommendations chapter")
    fs.StringVar(&o.cfg.LLMModel, "llm.model", "", "Model name; enables the recommendations chapter")
    fs.StringVar(&o.cfg.LLMAPIKey, "llm.key", "", "API key for the OpenAI-compatible server")
    fs.BoolVar(&o.cfg.Verbose, "v", false, "Verbose logging")
    fs.BoolVar(&o.showVersion, "version", false, "Print version and exit")

    err := fs.Parse(args)
    return o, err
}

// loadConfig merges flags, env and the config file, in that precedence.
func loadConfig(o options) (app.Config, error) {
    cfg := o.cfg
    if err := app.LoadEnvFiles(app.SplitList(o.envFiles)...); err != nil {
        return cfg, err
    }
    app.ApplyEnvToConfig(&cfg)
    if strings.TrimSpace(o.configPath) != "" {
        fc, err := app.LoadConfigFile(o.configPath)
        if err != nil {
            return cfg, fmt.Errorf("load config: %w", err)
        }
        if err := app.ApplyFileConfig(&cfg, fc); err != nil {
            return cfg, err
        }
    }
    app.ApplyDefaults(&cfg)
    return cfg, app.ValidateConfig(cfg)
}

// promptURL asks for the page URL on stdout and reads one line from in.
func promptURL(in io.Reader, out io.Writer) (string, error) {
    if _, err := io.WriteString(out, urlPrompt); err != nil {
        return "", err
    }
    line, err := bufio.NewReader(in).ReadString('\n')
    if err != nil && !errors.Is(err, io.EOF) {
        return "", err
    }
    if line = strings.TrimSpace(line); line == "" {
        return "", app.ErrNoURL
    }
    return line, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) int {
    o, err := parseFlags(args, os.Stderr)
    if err != nil {
        if errors.Is(err, flag.ErrHelp) {
            return exitOK
        }
        return exitConfig
    }
    if o.showVersion {
        fmt.Fprintln(stdout, app.VersionString())
        return exitOK
    }

    cfg, err := loadConfig(o)
    if err != nil {
        log.Error().Err(err).Msg("invalid configuration")
        return exitConfig
    }
    if cfg.Verbose {
        zerolog.SetGlobalLevel(zerolog.DebugLevel)
    } else {
        zerolog.SetGlobalLevel(zerolog.InfoLevel)
    }

    if strings.TrimSpace(cfg.URL) == "" {
        u, err := promptURL(stdin, stdout)
        if err != nil {
            log.Error().Err(err).Msg("no URL")
            return exitConfig
        }
        cfg.URL = u
        if err := app.ValidateConfig(cfg); err != nil {
            log.Error().Err(err).Msg("invalid URL")
            return exitConfig
        }
    }

    a, err := app.New(ctx, cfg)
    if err != nil {
        log.Error().Err(err).Msg("init app")
        return exitConfig
    }
    a.Stdout = stdout
    if _, err := a.Run(ctx); err != nil {
        log.Error().Err(err).Msg("run failed")
        return exitCode(err)
    }
    return exitOK
}

func exitCode(err error) int {
    switch {
    case err == nil:
        return exitOK
    case errors.Is(err, app.ErrFetch):
        return exitFetch
    case errors.Is(err, app.ErrRender):
        return exitRender
    default:
        return exitConfig
    }
}

package app

import (
    "fmt"
    "os"
    "path/filepath"
    "strings"

    "github.com/hyperifyio/seoaudit/internal/report"
)

// Output lists the files a run produced.
type Output struct {
    PDFPath      string
    MarkdownPath string
}

// reportPaths derives the output file paths for rep under outDir. Both files
// share the report_<timestamp> stem.
func reportPaths(outDir string, rep report.Report, withMarkdown bool) (Output, error) {
    root := strings.TrimSpace(outDir)
    if root == "" {
        root = defaultOutDir
    }
    if err := os.MkdirAll(root, 0o755); err != nil {
        return Output{}, fmt.Errorf("create output dir: %w", err)
    }
    out := Output{PDFPath: filepath.Join(root, rep.FileName("pdf"))}
    if withMarkdown {
        out.MarkdownPath = filepath.Join(root, rep.FileName("md"))
    }
    return out, nil
}

package report

import (
    "bytes"
    "io"
    "strings"

    "github.com/nao1215/markdown"

    "github.com/hyperifyio/seoaudit/internal/rank"
)

// MarkdownWriter renders a Report as a Markdown companion document.
type MarkdownWriter struct{}

// Write outputs r in Markdown to out.
func (MarkdownWriter) Write(out io.Writer, r Report) error {
    md := markdown.NewMarkdown(out)

    md.H1(r.Title)
    md.PlainText("")
    md.PlainText("Generated on " + r.GeneratedAt.Format("2006-01-02 15:04:05"))
    md.PlainText("")

    for _, ch := range r.Chapters {
        md.H2(ch.Title)
        md.PlainText("")
        switch b := ch.Body.(type) {
        case ListBody:
            if len(b) == 0 {
                md.PlainText("_none_")
            } else {
                md.BulletList(b...)
            }
        case TextBody:
            text := strings.TrimRight(string(b), "\n")
            if text == "" {
                md.PlainText("_none_")
            } else {
                md.BulletList(strings.Split(text, "\n")...)
            }
        }
        md.PlainText("")
    }

    md.H2(TermsTitle)
    md.PlainText("")
    rows := make([][]string, 0, len(r.Terms))
    for _, t := range r.Terms {
        rows = append(rows, []string{t.Term, rank.FormatPercent(t.Weight)})
    }
    md.Table(markdown.TableSet{
        Header: []string{"Term", "Weight"},
        Rows:   rows,
    })
    return md.Build()
}

// WriteFile renders r to path with the same all-or-nothing guarantee as the PDF.
func (w MarkdownWriter) WriteFile(r Report, path string) error {
    var buf bytes.Buffer
    if err := w.Write(&buf, r); err != nil {
        return err
    }
    return writeAtomic(path, buf.Bytes())
}

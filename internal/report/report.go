package report

import (
    "time"

    "github.com/hyperifyio/seoaudit/internal/rank"
)

// DefaultTitle is the cover and running-header title of every report.
const DefaultTitle = "SEO Analysis Report"

// TermsTitle heads the final page holding the ranked-terms table.
const TermsTitle = "Top 10 Most Used Words (TF-IDF)"

// FileTimeLayout is the timestamp layout embedded in report file names.
const FileTimeLayout = "2006-01-02_15-04-05"

// Body is the content of a chapter. It is either a TextBody or a ListBody.
type Body interface {
    // Paragraphs returns the body as the paragraphs a renderer lays out.
    Paragraphs() []string
    isBody()
}

// TextBody is a single block of text.
type TextBody string

func (b TextBody) Paragraphs() []string { return []string{string(b)} }
func (TextBody) isBody()                {}

// ListBody holds one paragraph per entry.
type ListBody []string

func (b ListBody) Paragraphs() []string { return append([]string(nil), b...) }
func (ListBody) isBody()                {}

// Chapter is one titled section of the report.
type Chapter struct {
    Title string
    Body  Body
}

// Report is an immutable report description. The With methods return
// modified copies so a partially built value is never shared.
type Report struct {
    Title       string
    GeneratedAt time.Time
    Chapters    []Chapter
    Terms       []rank.TermScore
}

// New starts an empty report.
func New(title string, generatedAt time.Time) Report {
    if title == "" {
        title = DefaultTitle
    }
    return Report{Title: title, GeneratedAt: generatedAt}
}

// WithChapter returns a copy of r with one more chapter appended.
func (r Report) WithChapter(title string, body Body) Report {
    if body == nil {
        body = TextBody("")
    }
    chapters := make([]Chapter, len(r.Chapters), len(r.Chapters)+1)
    copy(chapters, r.Chapters)
    r.Chapters = append(chapters, Chapter{Title: title, Body: body})
    return r
}

// WithTerms returns a copy of r carrying the ranked terms table.
func (r Report) WithTerms(terms []rank.TermScore) Report {
    r.Terms = append([]rank.TermScore(nil), terms...)
    return r
}

// FileName returns "report_<timestamp>.<ext>" for the generation time.
func (r Report) FileName(ext string) string {
    return "report_" + r.GeneratedAt.Format(FileTimeLayout) + "." + ext
}

package report

import (
    "bytes"
    "fmt"
    "os"
    "path/filepath"
    "strings"

    "github.com/jung-kurt/gofpdf"
    "golang.org/x/text/encoding/charmap"

    "github.com/hyperifyio/seoaudit/internal/rank"
)

// PDFWriter lays out a Report on A4 pages using the gofpdf core fonts.
type PDFWriter struct {
    // Margin is the left/right page margin in millimetres. Zero means 10.
    Margin float64
}

// Render produces the PDF bytes for r without touching the filesystem.
func (w PDFWriter) Render(r Report) ([]byte, error) {
    margin := w.Margin
    if margin <= 0 {
        margin = 10
    }
    pdf := gofpdf.New("P", "mm", "A4", "")
    pdf.SetMargins(margin, 10, margin)
    pdf.SetAutoPageBreak(true, 15)
    title := toLatin1(r.Title)

    pdf.SetHeaderFunc(func() {
        pdf.SetFont("Helvetica", "B", 12)
        pdf.CellFormat(0, 10, title, "", 0, "C", false, 0, "")
        pdf.Ln(10)
    })
    pdf.SetFooterFunc(func() {
        // the cover page carries no page number
        if pdf.PageNo() == 1 {
            return
        }
        pdf.SetY(-15)
        pdf.SetFont("Helvetica", "I", 8)
        pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
    })

    // Cover
    pdf.AddPage()
    pdf.SetFont("Helvetica", "B", 24)
    pdf.CellFormat(0, 60, title, "", 1, "C", false, 0, "")
    pdf.SetFont("Helvetica", "I", 12)
    pdf.CellFormat(0, 10, "Generated on "+r.GeneratedAt.Format("2006-01-02 15:04:05"), "", 1, "C", false, 0, "")

    for _, ch := range r.Chapters {
        pdf.AddPage()
        chapterTitle(pdf, ch.Title)
        pdf.SetFont("Helvetica", "", 12)
        for _, p := range ch.Body.Paragraphs() {
            pdf.MultiCell(0, 10, toLatin1(p), "", "L", false)
            pdf.Ln(5)
        }
        pdf.Ln(-1)
    }

    pdf.AddPage()
    chapterTitle(pdf, TermsTitle)
    termsTable(pdf, r.Terms)

    if err := pdf.Error(); err != nil {
        return nil, fmt.Errorf("layout pdf: %w", err)
    }
    var buf bytes.Buffer
    if err := pdf.Output(&buf); err != nil {
        return nil, fmt.Errorf("encode pdf: %w", err)
    }
    return buf.Bytes(), nil
}

// WriteFile renders r and writes it to path. The file appears only once the
// whole document has been rendered and written; on failure nothing is left behind.
func (w PDFWriter) WriteFile(r Report, path string) error {
    data, err := w.Render(r)
    if err != nil {
        return err
    }
    return writeAtomic(path, data)
}

func chapterTitle(pdf *gofpdf.Fpdf, title string) {
    pdf.SetFont("Helvetica", "B", 16)
    pdf.CellFormat(0, 10, toLatin1(title), "", 1, "L", false, 0, "")
    pdf.Ln(8)
}

func termsTable(pdf *gofpdf.Fpdf, terms []rank.TermScore) {
    pdf.SetFont("Helvetica", "B", 12)
    pageW, _ := pdf.GetPageSize()
    colW := pageW / 4.5
    _, fontH := pdf.GetFontSize()
    rowH := fontH + 2
    for _, t := range terms {
        pdf.CellFormat(colW, rowH, toLatin1(t.Term), "1", 0, "L", false, 0, "")
        pdf.CellFormat(colW, rowH, rank.FormatPercent(t.Weight), "1", 1, "L", false, 0, "")
    }
}

// toLatin1 transcodes UTF-8 to Windows-1252, the encoding of the core PDF
// fonts. Runes outside the code page become '?'.
func toLatin1(s string) string {
    var b strings.Builder
    b.Grow(len(s))
    for _, r := range s {
        if r < 0x80 {
            b.WriteByte(byte(r))
            continue
        }
        if c, ok := charmap.Windows1252.EncodeRune(r); ok {
            b.WriteByte(c)
            continue
        }
        b.WriteByte('?')
    }
    return b.String()
}

func writeAtomic(path string, data []byte) error {
    dir := filepath.Dir(path)
    tmp, err := os.CreateTemp(dir, ".report-*.tmp")
    if err != nil {
        return fmt.Errorf("create temp: %w", err)
    }
    tmpName := tmp.Name()
    if _, err := tmp.Write(data); err != nil {
        tmp.Close()
        os.Remove(tmpName)
        return fmt.Errorf("write temp: %w", err)
    }
    if err := tmp.Close(); err != nil {
        os.Remove(tmpName)
        return fmt.Errorf("close temp: %w", err)
    }
    if err := os.Chmod(tmpName, 0o644); err != nil {
        os.Remove(tmpName)
        return err
    }
    if err := os.Rename(tmpName, path); err != nil {
        os.Remove(tmpName)
        return fmt.Errorf("rename report: %w", err)
    }
    return nil
}

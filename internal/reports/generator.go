// Package reports renders assistant-authored reports to PDF files. The
// assistant supplies the content; layout here is deliberately plain.
package reports

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

// Section is one titled block of report body text.
type Section struct {
	Name string
	Body string
}

// Generator writes PDF reports under a fixed directory.
type Generator struct {
	dir string
	now func() time.Time
}

func NewGenerator(dir string) *Generator {
	if strings.TrimSpace(dir) == "" {
		dir = "reports"
	}
	return &Generator{dir: dir, now: time.Now}
}

// Generate renders the sections under the given title and returns the path
// of the written file: <dir>/<slugified-title>_<timestamp>.pdf.
func (g *Generator) Generate(title string, sections []Section) (string, error) {
	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return "", fmt.Errorf("create reports dir: %w", err)
	}

	path := filepath.Join(g.dir, fmt.Sprintf("%s_%s.pdf", Slugify(title), g.now().Format("20060102_150405")))

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 10, title, "", "C", false)
	pdf.Ln(6)

	for _, s := range sections {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.MultiCell(0, 8, s.Name, "", "L", false)
		pdf.Ln(1)
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, s.Body, "", "L", false)
		pdf.Ln(4)
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("write pdf: %w", err)
	}
	return path, nil
}

var slugNonWord = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lower-cases the title and collapses runs of non-alphanumerics to
// single underscores.
func Slugify(title string) string {
	slug := slugNonWord.ReplaceAllString(strings.ToLower(title), "_")
	slug = strings.Trim(slug, "_")
	if slug == "" {
		slug = "report"
	}
	const maxSlugLen = 60
	if len(slug) > maxSlugLen {
		slug = strings.Trim(slug[:maxSlugLen], "_")
	}
	return slug
}

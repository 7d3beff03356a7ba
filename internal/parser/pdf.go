package parser

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog/log"
	rscpdf "rsc.io/pdf"
)

func parsePDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		b.WriteString(pageText)
		b.WriteString("\n")
	}
	return collapseWhitespace(b.String()), nil
}

// parsePDFAlternate rebuilds text from positioned runs on the first
// maxPages pages. Broken pages are skipped.
func parsePDFAlternate(data []byte, maxPages int) (string, error) {
	reader, err := rscpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	numPages := min(reader.NumPage(), maxPages)
	log.Debug().Int("pages", reader.NumPage()).Int("reading", numPages).Msg("Alternate PDF extraction")

	var b strings.Builder
	for i := 1; i <= numPages; i++ {
		pageText, err := alternatePageText(reader, i)
		if err != nil {
			log.Debug().Err(err).Int("page", i).Msg("Skipping unreadable page")
			continue
		}
		if strings.TrimSpace(pageText) != "" {
			b.WriteString(pageText)
			b.WriteString("\n\n")
		}
	}
	return strings.TrimSpace(b.String()), nil
}

func alternatePageText(reader *rscpdf.Reader, num int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page %d: %v", num, r)
		}
	}()

	page := reader.Page(num)
	if page.V.IsNull() {
		return "", nil
	}

	var b strings.Builder
	var prev *rscpdf.Text
	for _, t := range page.Content().Text {
		if prev != nil {
			switch {
			case math.Abs(t.Y-prev.Y) > math.Max(prev.FontSize, 1)/2:
				b.WriteString("\n")
			case t.X-(prev.X+prev.W) > math.Max(prev.FontSize, 1)/4:
				b.WriteString(" ")
			}
		}
		b.WriteString(t.S)
		prev = &t
	}
	return collapseWhitespace(b.String()), nil
}

func isEncryptedPDF(data []byte) bool {
	return bytes.Contains(data, []byte("/Encrypt"))
}

package parser

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legal-lens/internal/config"
	"legal-lens/internal/models"
)

const (
	pageOneText = "Alpha clause governs renewal"
	pageTwoText = "Bravo clause governs termination"
)

// buildPDF writes a minimal PDF with one Helvetica text line per page and
// a correct xref table.
func buildPDF(t *testing.T, pages ...string) []byte {
	t.Helper()
	n := len(pages)
	fontObj := 3 + 2*n

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
	}
	kids := make([]string, 0, n)
	for i := range pages {
		kids = append(kids, fmt.Sprintf("%d 0 R", 3+2*i))
	}
	objects = append(objects, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), n))
	for i, text := range pages {
		content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R >>", fontObj, 4+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		)
	}
	objects = append(objects, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestParsePDFReadsEveryPage(t *testing.T) {
	text, err := parsePDF(buildPDF(t, pageOneText, pageTwoText))
	require.NoError(t, err)
	assert.Contains(t, text, pageOneText)
	assert.Contains(t, text, pageTwoText)
}

func TestParsePDFAlternateHonoursPageLimit(t *testing.T) {
	data := buildPDF(t, pageOneText, pageTwoText)

	text, err := parsePDFAlternate(data, 1)
	require.NoError(t, err)
	assert.Contains(t, text, pageOneText)
	assert.NotContains(t, text, pageTwoText)

	text, err = parsePDFAlternate(data, 5)
	require.NoError(t, err)
	assert.Contains(t, text, pageOneText)
	assert.Contains(t, text, pageTwoText)
}

func TestExtractValidPDFIsStructured(t *testing.T) {
	out, err := newTestExtractor().Extract(context.Background(), buildPDF(t, pageOneText, pageTwoText), "application/pdf", "lease.pdf")
	require.NoError(t, err)
	assert.Equal(t, models.MethodStructured, out.Method)
	assert.Equal(t, string(KindPDF), out.MediaType)
	assert.Contains(t, out.Text, pageTwoText)
}

func TestExtractFallsBackToAlternatePDF(t *testing.T) {
	failing := Strategy{Method: models.MethodStructured, Extract: func([]byte, Kind) (string, error) {
		return "", errNoText
	}}
	e := NewExtractor(config.ExtractConfig{AlternatePageLimit: 1})
	e.WithStrategies(failing,
		Strategy{Method: models.MethodAlternateStructured, Extract: e.alternateStructured},
		Strategy{Method: models.MethodHeuristic, Extract: e.heuristic},
	)

	out, err := e.Extract(context.Background(), buildPDF(t, pageOneText, pageTwoText), "application/pdf", "lease.pdf")
	require.NoError(t, err)
	assert.Equal(t, models.MethodAlternateStructured, out.Method)
	assert.Contains(t, out.Text, pageOneText)
	assert.NotContains(t, out.Text, pageTwoText)
}

func TestHeuristicAcceptanceBoundary(t *testing.T) {
	tests := []struct {
		name   string
		run    int
		accept bool
	}{
		{"below run length", 19, false},
		{"exactly minimum total", models.HeuristicMinTotal, false},
		{"one over minimum total", models.HeuristicMinTotal + 1, true},
	}
	e := newTestExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := []byte("\x00\x01" + strings.Repeat("a", tt.run) + "\x02\x03")
			text, err := e.heuristic(data, KindUnknown)
			if !tt.accept {
				assert.ErrorIs(t, err, errNoText)
				return
			}
			require.NoError(t, err)
			assert.Len(t, text, tt.run)
		})
	}
}

package payroll

import (
	"bytes"
	"fmt"
	"strings"
)

const (
	pdfLeading      = 14
	pdfLinesPerPage = 54
)

// buildSimplePayslipPDF writes lines as monospaced text on A4 pages,
// starting a new page every pdfLinesPerPage lines.
func buildSimplePayslipPDF(lines []string) ([]byte, error) {
	if len(lines) == 0 {
		lines = []string{"Payslip"}
	}

	var pages [][]string
	for start := 0; start < len(lines); start += pdfLinesPerPage {
		end := start + pdfLinesPerPage
		if end > len(lines) {
			end = len(lines)
		}
		pages = append(pages, lines[start:end])
	}

	// Object layout: 1 catalog, 2 pages, 3 font, then a (page, content) pair per page.
	kids := make([]string, 0, len(pages))
	for i := range pages {
		kids = append(kids, fmt.Sprintf("%d 0 R", 4+i*2))
	}

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Courier >>",
	}
	for i, page := range pages {
		stream := pageStream(page)
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+i*2),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		)
	}

	var out bytes.Buffer
	out.WriteString("%PDF-1.4\n")
	offsets := make([]int, 0, len(objects))
	for i, obj := range objects {
		offsets = append(offsets, out.Len())
		fmt.Fprintf(&out, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xrefStart := out.Len()
	fmt.Fprintf(&out, "xref\n0 %d\n", len(objects)+1)
	out.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&out, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&out, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF", len(objects)+1, xrefStart)

	return out.Bytes(), nil
}

func pageStream(lines []string) string {
	var content strings.Builder
	fmt.Fprintf(&content, "BT\n/F1 10 Tf\n%d TL\n50 800 Td\n", pdfLeading)
	for i, line := range lines {
		if i == 0 {
			fmt.Fprintf(&content, "(%s) Tj\n", pdfEscape(line))
			continue
		}
		fmt.Fprintf(&content, "T* (%s) Tj\n", pdfEscape(line))
	}
	content.WriteString("ET")
	return content.String()
}

func pdfEscape(v string) string {
	replacer := strings.NewReplacer("\\", "\\\\", "(", "\\(", ")", "\\)")
	return replacer.Replace(v)
}

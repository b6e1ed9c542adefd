package extract

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"code.sajari.com/docconv"
	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"github.com/notably-ai/notably/internal/models"
)

// Text converts a binary document buffer of the given type into plain text.
// Empty input yields "" rather than an error, so downstream generation just
// receives no context contribution. A buffer the parser cannot read returns
// an error; callers decide whether that fails the batch. Pure and safe to
// call concurrently across distinct buffers.
func Text(data []byte, kind models.DocumentType) (string, error) {
	if len(data) == 0 {
		return "", nil
	}

	switch kind {
	case models.DocTypeTXT:
		return string(data), nil
	case models.DocTypePDF:
		return pdfText(data)
	case models.DocTypeDOC, models.DocTypeDOCX:
		// DOC shares the OOXML path with DOCX.
		return docxText(data)
	case models.DocTypePPTX:
		return pptxText(data)
	case models.DocTypeXLSX:
		return xlsxText(data)
	case models.DocTypeCSV:
		return csvText(data)
	}
	return "", fmt.Errorf("unsupported document type %q", kind)
}

func pdfText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdf open: %w", err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("pdf text: %w", err)
	}
	out, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("pdf read: %w", err)
	}
	return string(out), nil
}

func docxText(data []byte) (string, error) {
	text, _, err := docconv.ConvertDocx(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("docx convert: %w", err)
	}
	return text, nil
}

func pptxText(data []byte) (string, error) {
	text, _, err := docconv.ConvertPptx(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("pptx convert: %w", err)
	}
	return text, nil
}

// xlsxText renders each sheet row-by-row, cells joined by tabs.
func xlsxText(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("xlsx open: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		for _, row := range rows {
			line := strings.TrimSpace(strings.Join(row, "\t"))
			if line == "" {
				continue
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

func csvText(data []byte) (string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1 // ragged rows are fine
	records, err := r.ReadAll()
	if err != nil {
		return "", fmt.Errorf("csv parse: %w", err)
	}
	var b strings.Builder
	for _, rec := range records {
		b.WriteString(strings.Join(rec, ", "))
		b.WriteString("\n")
	}
	return b.String(), nil
}

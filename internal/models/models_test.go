package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDocumentTypeForFile(t *testing.T) {
	cases := map[string]DocumentType{
		"notes.pdf":      DocTypePDF,
		"old.DOC":        DocTypeDOC,
		"essay.docx":     DocTypeDOCX,
		"readme.txt":     DocTypeTXT,
		"slides.pptx":    DocTypePPTX,
		"table.xlsx":     DocTypeXLSX,
		"export.csv":     DocTypeCSV,
		"dir/nested.PDF": DocTypePDF,
	}
	for name, want := range cases {
		got, ok := DocumentTypeForFile(name)
		require.True(t, ok, name)
		require.Equal(t, want, got, name)
	}
}

func TestDocumentTypeForFileUnsupported(t *testing.T) {
	for _, name := range []string{"a.mp4", "b.exe", "noext", "tar.gz", ""} {
		_, ok := DocumentTypeForFile(name)
		require.False(t, ok, name)
	}
}

package extract

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/notably-ai/notably/internal/models"
)

// zipWith builds an in-memory zip archive from name -> content pairs.
func zipWith(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestTextEmptyBuffer(t *testing.T) {
	for _, kind := range []models.DocumentType{
		models.DocTypePDF, models.DocTypeDOC, models.DocTypeDOCX,
		models.DocTypeTXT, models.DocTypePPTX, models.DocTypeXLSX, models.DocTypeCSV,
	} {
		got, err := Text(nil, kind)
		require.NoError(t, err, "kind %s", kind)
		require.Empty(t, got, "kind %s", kind)
	}
}

func TestTextTxt(t *testing.T) {
	got, err := Text([]byte("plain notes\nsecond line"), models.DocTypeTXT)
	require.NoError(t, err)
	require.Equal(t, "plain notes\nsecond line", got)
}

func TestTextCsv(t *testing.T) {
	got, err := Text([]byte("term,definition\nosmosis,diffusion of water"), models.DocTypeCSV)
	require.NoError(t, err)
	require.Contains(t, got, "term, definition")
	require.Contains(t, got, "osmosis, diffusion of water")
}

func TestTextCsvRaggedRows(t *testing.T) {
	got, err := Text([]byte("a,b,c\nd\n"), models.DocTypeCSV)
	require.NoError(t, err)
	require.Contains(t, got, "a, b, c")
	require.Contains(t, got, "d")
}

func TestTextDocx(t *testing.T) {
	const doc = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body><w:p><w:r><w:t>Mitochondria are the powerhouse</w:t></w:r></w:p></w:body>
</w:document>`
	data := zipWith(t, map[string]string{"word/document.xml": doc})

	got, err := Text(data, models.DocTypeDOCX)
	require.NoError(t, err)
	require.Contains(t, got, "Mitochondria are the powerhouse")

	// DOC rides the same path.
	got, err = Text(data, models.DocTypeDOC)
	require.NoError(t, err)
	require.Contains(t, got, "Mitochondria are the powerhouse")
}

func TestTextPptx(t *testing.T) {
	const slide = `<?xml version="1.0" encoding="UTF-8"?>
<p:sld xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"
       xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">
  <p:cSld><p:spTree><p:sp><p:txBody><a:p><a:r><a:t>Cell division stages</a:t></a:r></a:p></p:txBody></p:sp></p:spTree></p:cSld>
</p:sld>`
	data := zipWith(t, map[string]string{"ppt/slides/slide1.xml": slide})

	got, err := Text(data, models.DocTypePPTX)
	require.NoError(t, err)
	require.Contains(t, got, "Cell division stages")
}

func TestTextXlsx(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "element"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "symbol"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "Hydrogen"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", "H"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	got, errExtract := Text(buf.Bytes(), models.DocTypeXLSX)
	require.NoError(t, errExtract)
	require.Contains(t, got, "element\tsymbol")
	require.Contains(t, got, "Hydrogen\tH")
}

func TestTextCorruptBuffer(t *testing.T) {
	garbage := []byte("not a real container")
	for _, kind := range []models.DocumentType{
		models.DocTypePDF, models.DocTypeDOCX, models.DocTypePPTX, models.DocTypeXLSX,
	} {
		_, err := Text(garbage, kind)
		require.Error(t, err, "kind %s", kind)
	}
}

func TestTextUnknownKind(t *testing.T) {
	_, err := Text([]byte("x"), models.DocumentType("md"))
	require.Error(t, err)
}

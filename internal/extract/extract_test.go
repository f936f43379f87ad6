// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/survey-engine/pkg/types"
)

func writeTempFile(t *testing.T, name string, data []byte) types.Document {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return types.Document{Filename: name, OriginalName: name, Path: path}
}

// buildDOCX assembles a minimal zip container with one word/document.xml.
func buildDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

const sampleDocumentXML = `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second </w:t></w:r><w:r><w:t>paragraph.</w:t></w:r></w:p>
  </w:body>
</w:document>`

func TestExtractDOCX(t *testing.T) {
	doc := writeTempFile(t, "notes.docx", buildDOCX(t, sampleDocumentXML))
	doc.MimeType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	text, err := NewExtractor(nil).Extract(context.Background(), doc)
	require.NoError(t, err)
	assert.Contains(t, text, "First paragraph.")
	assert.Contains(t, text, "Second paragraph.")
}

func TestExtractDOCXWithoutDocumentXML(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("other.txt")
	require.NoError(t, err)
	w.Write([]byte("not a word file"))
	require.NoError(t, zw.Close())

	doc := writeTempFile(t, "notes.docx", buf.Bytes())
	_, err = NewExtractor(nil).Extract(context.Background(), doc)
	assert.ErrorContains(t, err, "word/document.xml")
}

func TestExtractPlainText(t *testing.T) {
	doc := writeTempFile(t, "notes.txt", []byte("plain text content"))
	doc.MimeType = "text/plain"

	text, err := NewExtractor(nil).Extract(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, "plain text content", text)
}

func TestExtractMislabeledPDF(t *testing.T) {
	// Binary bytes labeled as PDF but without a %PDF header.
	doc := writeTempFile(t, "fake.pdf", []byte{0x00, 0x01, 0x02, 0x03})
	doc.MimeType = "application/pdf"

	_, err := NewExtractor(nil).Extract(context.Background(), doc)
	assert.ErrorContains(t, err, "no %PDF header")
}

func TestExtractEmptyFile(t *testing.T) {
	doc := writeTempFile(t, "empty.pdf", nil)
	_, err := NewExtractor(nil).Extract(context.Background(), doc)
	assert.ErrorContains(t, err, "empty file")
}

type stubConverter struct {
	text string
	err  error
}

func (s *stubConverter) Convert(context.Context, string) (string, error) {
	return s.text, s.err
}

func TestExtractLegacyDoc(t *testing.T) {
	doc := writeTempFile(t, "old.doc", []byte{0xD0, 0xCF, 0x11, 0xE0})
	doc.MimeType = "application/msword"

	text, err := NewExtractor(&stubConverter{text: "converted text"}).Extract(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, "converted text", text)
}

func TestExtractLegacyDocWithoutConverter(t *testing.T) {
	doc := writeTempFile(t, "old.doc", []byte{0xD0, 0xCF, 0x11, 0xE0})
	doc.MimeType = "application/msword"

	_, err := NewExtractor(nil).Extract(context.Background(), doc)
	assert.ErrorContains(t, err, "no converter available")
}

func TestExtractUnsupportedBinary(t *testing.T) {
	doc := writeTempFile(t, "image.png", []byte{0x89, 'P', 'N', 'G', 0x00, 0x00})
	doc.MimeType = "image/png"

	_, err := NewExtractor(nil).Extract(context.Background(), doc)
	assert.ErrorContains(t, err, "unsupported file type")
}

func TestSniffers(t *testing.T) {
	assert.True(t, isPDF([]byte("%PDF-1.7 rest")))
	assert.False(t, isPDF([]byte("PDF-1.7")))
	assert.True(t, isZip([]byte{'P', 'K', 3, 4, 0}))
	assert.False(t, isZip([]byte{'P', 'K', 5, 6}))
	assert.True(t, isProbablyText([]byte("hello world\n")))
	assert.False(t, isProbablyText([]byte{'a', 0x00, 'b'}))
}

package extractor

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowyourdocs/docchat/internal/utils/platformerrors"
)

func buildDOCX(t *testing.T, paragraphs []string) []byte {
	t.Helper()
	var body bytes.Buffer
	body.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`)
	}
	body.WriteString(`</w:body></w:document>`)

	var archive bytes.Buffer
	zw := zip.NewWriter(&archive)
	f, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write(body.Bytes())
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return archive.Bytes()
}

func TestExtractPlainText(t *testing.T) {
	e := New()
	text, err := e.Extract(context.Background(), []byte("hello world\nsecond line"), "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello world\nsecond line", text)
}

func TestExtractDOCX(t *testing.T) {
	e := New()
	buf := buildDOCX(t, []string{"First paragraph.", "Second paragraph."})

	text, err := e.Extract(context.Background(), buf, "report.docx")
	require.NoError(t, err)
	assert.Equal(t, "First paragraph.\nSecond paragraph.", text)
}

func TestExtractDOCXCorruptArchive(t *testing.T) {
	e := New()
	_, err := e.Extract(context.Background(), []byte("not a zip archive"), "report.docx")
	require.Error(t, err)
	assert.Equal(t, platformerrors.ErrorTypeExtraction, platformerrors.TypeOf(err))
}

func TestExtractEmptyBuffer(t *testing.T) {
	e := New()
	_, err := e.Extract(context.Background(), nil, "empty.txt")
	require.Error(t, err)

	var perr *platformerrors.PlatformError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, platformerrors.ErrorTypeExtraction, perr.Type)
}

func TestExtractUnsupportedType(t *testing.T) {
	e := New()
	_, err := e.Extract(context.Background(), []byte{0x00, 0x01, 0x02, 0x03}, "image.png")
	require.Error(t, err)
	assert.Equal(t, platformerrors.ErrorTypeExtraction, platformerrors.TypeOf(err))
}

func TestExtractWhitespaceOnlyContent(t *testing.T) {
	e := New()
	_, err := e.Extract(context.Background(), []byte("   \n\t  "), "blank.txt")
	require.Error(t, err)
	assert.Equal(t, platformerrors.ErrorTypeExtraction, platformerrors.TypeOf(err))
}

func TestExtractSniffsMissingExtension(t *testing.T) {
	e := New()
	text, err := e.Extract(context.Background(), []byte("plain content without extension"), "upload")
	require.NoError(t, err)
	assert.Equal(t, "plain content without extension", text)
}

func TestExtractLegacyDOC(t *testing.T) {
	// A realistic .doc is a CFB container; the scavenger only needs printable
	// runs, so synthesize binary padding around body text.
	var buf bytes.Buffer
	buf.Write([]byte{0xd0, 0xcf, 0x11, 0xe0, 0x00, 0x00, 0x01})
	buf.WriteString("The annual budget was approved in March.")
	buf.Write([]byte{0x00, 0x01, 0x02})

	e := New()
	text, err := e.Extract(context.Background(), buf.Bytes(), "budget.doc")
	require.NoError(t, err)
	assert.Contains(t, text, "The annual budget was approved in March.")
}

func utf16leBytes(s string) []byte {
	units := utf16.Encode([]rune(s))
	buf := make([]byte, 0, len(units)*2)
	for _, u := range units {
		buf = append(buf, byte(u), byte(u>>8))
	}
	return buf
}

func TestExtractLegacyDOCUnicodeText(t *testing.T) {
	// Word stores Unicode body text as UTF-16LE, so plain English arrives
	// NUL-interleaved and must still be recovered.
	var buf bytes.Buffer
	buf.Write([]byte{0xd0, 0xcf, 0x11, 0xe0, 0xa1, 0xb1, 0x1a, 0xe1})
	buf.Write(utf16leBytes("Hello world this is the document body text."))
	buf.Write([]byte{0x00, 0x00})

	e := New()
	text, err := e.Extract(context.Background(), buf.Bytes(), "budget.doc")
	require.NoError(t, err)
	assert.Contains(t, text, "Hello world this is the document body text.")
}

func TestExtractLegacyDOCPrefersLongerHarvest(t *testing.T) {
	// Eight-bit body text must not be drowned out by the spurious wide
	// characters its byte pairs decode to.
	var buf bytes.Buffer
	buf.Write([]byte{0xd0, 0xcf, 0x11, 0xe0})
	buf.WriteString("The annual budget was approved in March by the finance committee.")
	buf.Write([]byte{0x00, 0x01, 0x02})

	e := New()
	text, err := e.Extract(context.Background(), buf.Bytes(), "budget.doc")
	require.NoError(t, err)
	assert.Contains(t, text, "The annual budget was approved in March by the finance committee.")
}

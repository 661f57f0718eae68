// Package extractor converts uploaded binary files into plain text.
package extractor

import (
	"context"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"

	"github.com/knowyourdocs/docchat/internal/utils/platformerrors"
)

// Extractor dispatches uploaded buffers to the decoder matching their file
// type. Extraction is a pure transform: a failure is terminal for the upload.
type Extractor struct{}

// New creates a text extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract converts buf into plain text based on fileName's extension, falling
// back to MIME sniffing when the extension is unknown.
func (e *Extractor) Extract(ctx context.Context, buf []byte, fileName string) (string, error) {
	if len(buf) == 0 {
		return "", platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExtraction, "uploaded file is empty", nil)
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" {
		ext = extensionFromMIME(buf)
	}

	var (
		text string
		err  error
	)
	switch ext {
	case ".pdf":
		text, err = extractPDF(buf)
	case ".docx":
		text, err = extractDOCX(buf)
	case ".doc":
		text, err = extractDOC(buf)
	case ".txt", ".md", ".text", ".csv", ".log":
		text, err = extractPlainText(buf)
	default:
		return "", platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExtraction, "unsupported file type: "+fileName, nil)
	}
	if err != nil {
		return "", platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExtraction, "decode "+strings.TrimPrefix(ext, ".")+" file", err)
	}

	if strings.TrimSpace(text) == "" {
		return "", platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeExtraction, "no text content in file: "+fileName, nil)
	}
	return text, nil
}

func extensionFromMIME(buf []byte) string {
	mime := mimetype.Detect(buf)
	switch {
	case mime.Is("application/pdf"):
		return ".pdf"
	case mime.Is("application/vnd.openxmlformats-officedocument.wordprocessingml.document"):
		return ".docx"
	case mime.Is("application/msword"):
		return ".doc"
	case strings.HasPrefix(mime.String(), "text/"):
		return ".txt"
	}
	return ""
}

func extractPlainText(buf []byte) (string, error) {
	if !utf8.Valid(buf) {
		// Salvage what we can; most editors emit valid UTF-8 so this is the
		// rare mixed-encoding upload.
		return strings.ToValidUTF8(string(buf), ""), nil
	}
	return string(buf), nil
}

package extractor

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

func extractPDF(buf []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(buf), int64(len(buf)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}

	var b bytes.Buffer
	if _, err := io.Copy(&b, plain); err != nil {
		return "", fmt.Errorf("copy pdf text: %w", err)
	}
	return b.String(), nil
}

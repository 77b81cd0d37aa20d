// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package document

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// extractPDF pulls the text layer out of a PDF. Scanned PDFs with no text
// layer yield an empty string, which the caller treats as no extractable
// content rather than an error.
func extractPDF(data []byte) (text string, err error) {
	// The pdf package panics on some malformed inputs; a corrupt upload
	// must surface as ErrExtractionFailed, not kill the process.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: malformed PDF: %v", ErrExtractionFailed, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: reading PDF: %v", ErrExtractionFailed, err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: extracting PDF text: %v", ErrExtractionFailed, err)
	}

	buf, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("%w: extracting PDF text: %v", ErrExtractionFailed, err)
	}
	return string(buf), nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package document extracts plain text from uploaded files. TXT and
// Markdown pass through, DOCX is unpacked from its zip container, and PDF
// text is pulled with a pure-Go extractor. The loader has no state and no
// side effects.
package document

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Format is the declared format of an uploaded file.
type Format string

const (
	FormatTXT      Format = "txt"
	FormatMarkdown Format = "markdown"
	FormatDOCX     Format = "docx"
	FormatPDF      Format = "pdf"
)

var (
	// ErrUnsupportedFormat is returned for formats the loader does not handle.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrExtractionFailed is returned when a file of a supported format
	// cannot be read (corrupt archive, encrypted PDF, invalid encoding).
	ErrExtractionFailed = errors.New("extraction failed")
)

// Detect maps a filename extension to a Format.
func Detect(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".text":
		return FormatTXT, nil
	case ".md", ".markdown":
		return FormatMarkdown, nil
	case ".docx":
		return FormatDOCX, nil
	case ".pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// ParseFormat validates a client-declared format tag.
func ParseFormat(tag string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(tag))) {
	case FormatTXT:
		return FormatTXT, nil
	case FormatMarkdown, "md":
		return FormatMarkdown, nil
	case FormatDOCX:
		return FormatDOCX, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, tag)
	}
}

// Extract returns the plain text of data interpreted as format.
func Extract(data []byte, format Format) (string, error) {
	switch format {
	case FormatTXT, FormatMarkdown:
		return extractPlain(data)
	case FormatDOCX:
		return extractDOCX(data)
	case FormatPDF:
		return extractPDF(data)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func extractPlain(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: file is not valid UTF-8 text", ErrExtractionFailed)
	}
	// Normalize line endings; editors on every platform feed this tool.
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	return text, nil
}

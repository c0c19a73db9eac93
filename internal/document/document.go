// Package document extracts plain UTF-8 text from resume and job files.
package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/matchsense/matchsense/internal/logger"
)

// DefaultMaxSize is the largest file accepted by default.
const DefaultMaxSize int64 = 10 << 20

var (
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrFileTooLarge      = errors.New("document exceeds the maximum size")
)

type Kind string

const (
	KindPDF  Kind = "pdf"
	KindDOCX Kind = "docx"
	KindText Kind = "txt"
)

var kindsByExt = map[string]Kind{
	".pdf":  KindPDF,
	".docx": KindDOCX,
	".txt":  KindText,
}

// KindOf resolves the document kind from the file extension.
func KindOf(name string) (Kind, error) {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(name)))
	kind, ok := kindsByExt[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Base(name))
	}
	return kind, nil
}

// Supported reports whether name has a supported extension.
func Supported(name string) bool {
	_, err := KindOf(name)
	return err == nil
}

type Extractor struct {
	maxSize int64
	logger  *zap.Logger
}

// NewExtractor returns an Extractor rejecting files above maxSize bytes.
// Non-positive maxSize selects DefaultMaxSize.
func NewExtractor(maxSize int64, log *zap.Logger) *Extractor {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Extractor{maxSize: maxSize, logger: logger.WithFields(log).Named("document")}
}

// ExtractFile reads and extracts the file at path.
func (e *Extractor) ExtractFile(path string) (string, error) {
	if _, err := KindOf(path); err != nil {
		return "", err
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat %q: %w", path, err)
	}
	if info.Size() > e.maxSize {
		return "", fmt.Errorf("%w: %q is %d bytes, limit is %d", ErrFileTooLarge, path, info.Size(), e.maxSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %q: %w", path, err)
	}

	return e.Extract(filepath.Base(path), data)
}

// Extract converts the content of a file called name into trimmed text.
func (e *Extractor) Extract(name string, data []byte) (string, error) {
	kind, err := KindOf(name)
	if err != nil {
		return "", err
	}
	if int64(len(data)) > e.maxSize {
		return "", fmt.Errorf("%w: %q is %d bytes, limit is %d", ErrFileTooLarge, name, len(data), e.maxSize)
	}

	var text string
	switch kind {
	case KindPDF:
		text, err = pdfText(data)
	case KindDOCX:
		text, err = docxText(data)
	case KindText:
		var encoding string
		text, encoding = DecodeText(data)
		if encoding != EncodingUTF8 {
			e.logger.Debug("decoded text with fallback encoding",
				zap.String("file", name),
				zap.String("encoding", encoding),
			)
		}
	}
	if err != nil {
		e.logger.Warn("document extraction failed", zap.String("file", name), zap.Error(err))
		return "", fmt.Errorf("extracting %s text from %q: %w", kind, name, err)
	}

	return strings.TrimSpace(text), nil
}

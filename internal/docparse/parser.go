// Package docparse extracts plain text from planning documents. It is an
// external collaborator to the orchestration core: unsupported formats
// produce an empty result, never an error, so the planner can decide how to
// proceed.
package docparse

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/naoko-ai/naoko/internal/logging"
)

// Parser turns a document into plain text for prompting.
type Parser interface {
	// Parse returns the document text. Unsupported formats return "", nil.
	// Only a genuinely unreadable file is an error.
	Parse(path string) (string, error)
}

// FileParser reads text-based documents directly. Binary office formats
// (pdf, xlsx, pptx) are recognized but not extracted; they yield an empty
// result with a warning.
type FileParser struct {
	logger *logging.Logger
}

// NewFileParser creates a FileParser.
func NewFileParser(logger *logging.Logger) *FileParser {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &FileParser{logger: logger}
}

func (p *FileParser) Parse(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".md", ".markdown", ".txt":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read document: %w", err)
		}
		return string(data), nil
	case ".pdf", ".xlsx", ".xls", ".pptx", ".docx":
		p.logger.Warn("document format not supported for extraction", "path", path, "ext", ext)
		return "", nil
	default:
		p.logger.Warn("unsupported document format", "path", path, "ext", ext)
		return "", nil
	}
}

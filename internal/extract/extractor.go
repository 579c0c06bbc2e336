// Package extract turns files into plain-text documents.
package extract

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hyperjump/lexis/internal/fileid"
	"github.com/hyperjump/lexis/internal/models"
)

// DefaultExtensions are the file types Load picks up when walking a directory.
var DefaultExtensions = []string{".txt", ".md", ".rst", ".pdf", ".docx", ".pptx", ".xlsx", ".odt", ".odp", ".ods", ".rtf"}

// Extractor extracts plain text from document files.
type Extractor struct {
	// Extensions filters files found while walking directories. Files named explicitly are
	// always extracted.
	Extensions []string
}

// NewExtractor returns an Extractor for extensions, or DefaultExtensions when none are given.
func NewExtractor(extensions ...string) *Extractor {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	normalized := make([]string, len(extensions))
	for i, ext := range extensions {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized[i] = ext
	}
	return &Extractor{Extensions: normalized}
}

// Extract reads the file at path and returns its text with runs of whitespace collapsed.
func (e *Extractor) Extract(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if isCatFormat(ext) {
		text, err := extractCat(path)
		if err != nil {
			return "", err
		}
		return collapseWhitespace(text), nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return e.ExtractBytes(content, ext)
}

// ExtractBytes extracts text from content according to ext, which includes the leading dot.
// Unknown extensions are read as plain text.
func (e *Extractor) ExtractBytes(content []byte, ext string) (string, error) {
	var (
		text string
		err  error
	)
	switch strings.ToLower(ext) {
	case ".pdf":
		text, err = extractPDF(content)
	case ".xlsx":
		text, err = extractExcel(content)
	case ".docx":
		text, err = extractDOCX(content)
	case ".pptx":
		text, err = officeText(content, pptxFormat)
	case ".odp":
		text, err = officeText(content, odpFormat)
	case ".ods":
		text, err = officeText(content, odsFormat)
	case ".rtf", ".odt":
		text, err = extractCatBytes(content, ext)
	default:
		text = extractPlain(content)
	}
	if err != nil {
		return "", err
	}
	return collapseWhitespace(text), nil
}

// Supports reports whether path has one of the extractor's extensions.
func (e *Extractor) Supports(path string) bool {
	return slices.Contains(e.Extensions, strings.ToLower(filepath.Ext(path)))
}

// Load extracts every path in order. Directories are walked in lexical order and only files
// with a supported extension are taken; hidden entries are skipped.
func (e *Extractor) Load(paths []string) ([]models.Document, error) {
	var docs []models.Document
	add := func(path string) error {
		text, err := e.Extract(path)
		if err != nil {
			return fmt.Errorf("extract %s: %w", path, err)
		}
		docs = append(docs, models.Document{ID: fileid.ForPath(path), Source: path, Text: text})
		return nil
	}
	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", root, err)
		}
		if !info.IsDir() {
			if err := add(root); err != nil {
				return nil, err
			}
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if path != root && strings.HasPrefix(d.Name(), ".") {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() || !e.Supports(path) {
				return nil
			}
			return add(path)
		})
		if err != nil {
			return nil, err
		}
	}
	return docs, nil
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

package extract

import (
	"fmt"
	"os"

	"github.com/lu4p/cat"
)

func isCatFormat(ext string) bool {
	return ext == ".rtf" || ext == ".odt"
}

func extractCat(path string) (string, error) {
	text, err := cat.File(path)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", path, err)
	}
	return text, nil
}

// extractCatBytes stages content in a temporary file, since cat detects the format by name.
func extractCatBytes(content []byte, ext string) (string, error) {
	f, err := os.CreateTemp("", "lexis-*"+ext)
	if err != nil {
		return "", fmt.Errorf("stage %s: %w", ext, err)
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(content); err != nil {
		f.Close()
		return "", fmt.Errorf("stage %s: %w", ext, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("stage %s: %w", ext, err)
	}
	return extractCat(f.Name())
}

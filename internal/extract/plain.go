package extract

import "strings"

// extractPlain replaces invalid UTF-8 sequences with U+FFFD.
func extractPlain(content []byte) string {
	return strings.ToValidUTF8(string(content), "�")
}

package cli

import (
	"bufio"
	"fmt"
	"io"

	"github.com/hyperjump/lexis/internal/fileid"
	"github.com/hyperjump/lexis/internal/models"
)

// maxLineSize bounds one stdin document.
const maxLineSize = 16 << 20

// ReadLines reads one document per line. Blank lines are kept as empty documents so
// output indexes line up with input lines.
func ReadLines(r io.Reader, source string) ([]models.Document, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	var docs []models.Document
	for sc.Scan() {
		n := len(docs)
		docs = append(docs, models.Document{ID: fileid.ForLine(source, n), Source: fmt.Sprintf("%s:%d", source, n+1), Text: sc.Text()})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", source, err)
	}
	return docs, nil
}

package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// zipFormat describes where an Office/OpenDocument package keeps its text.
type zipFormat struct {
	name  string
	parts func(name string) bool
	text  *regexp.Regexp
	// required fails extraction when no part matches.
	required bool
}

var (
	pptxFormat = zipFormat{
		name: "PPTX",
		parts: func(name string) bool {
			return strings.HasPrefix(name, "ppt/slides/slide") && strings.HasSuffix(name, ".xml")
		},
		text: regexp.MustCompile(`<a:t[^>]*>([^<]*)</a:t>`),
	}
	odpFormat = zipFormat{
		name:     "ODP",
		parts:    isContentXML,
		text:     odfText,
		required: true,
	}
	odsFormat = zipFormat{
		name:     "ODS",
		parts:    isContentXML,
		text:     odfText,
		required: true,
	}

	// odfText matches leaf text:p, text:span and text:h elements.
	odfText  = regexp.MustCompile(`<text:(?:p|span|h)(?:\s[^>]*)?>([^<]*)</text:(?:p|span|h)>`)
	docxText = regexp.MustCompile(`<w:t(?:\s[^>]*)?>([^<]*)</w:t>`)
)

func isContentXML(name string) bool { return name == "content.xml" }

// officeText joins the matched text nodes of every matching part with single spaces.
func officeText(content []byte, format zipFormat) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("extract %s: not a zip: %w", format.name, err)
	}
	var b strings.Builder
	found := false
	for _, f := range zr.File {
		if !format.parts(f.Name) {
			continue
		}
		found = true
		data, err := readZipFile(f)
		if err != nil {
			return "", fmt.Errorf("extract %s: %w", format.name, err)
		}
		appendMatches(&b, format.text, data)
	}
	if !found && format.required {
		return "", fmt.Errorf("extract %s: no text parts", format.name)
	}
	return b.String(), nil
}

// extractDOCX reads the main document part named in [Content_Types].xml, falling back to
// word/document.xml.
func extractDOCX(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("extract DOCX: not a zip: %w", err)
	}
	main := docxMainPart(zr)
	for _, f := range zr.File {
		if f.Name != main {
			continue
		}
		data, err := readZipFile(f)
		if err != nil {
			return "", fmt.Errorf("extract DOCX: %w", err)
		}
		var b strings.Builder
		appendMatches(&b, docxText, data)
		return b.String(), nil
	}
	return "", fmt.Errorf("extract DOCX: %s not found", main)
}

const docxMainContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"

var (
	overrideTag = regexp.MustCompile(`<Override\s[^>]*>`)
	partNameRe  = regexp.MustCompile(`PartName="([^"]+)"`)
)

func docxMainPart(zr *zip.Reader) string {
	const fallback = "word/document.xml"
	for _, f := range zr.File {
		if f.Name != "[Content_Types].xml" {
			continue
		}
		data, err := readZipFile(f)
		if err != nil {
			return fallback
		}
		for _, tag := range overrideTag.FindAll(data, -1) {
			if !bytes.Contains(tag, []byte(`ContentType="`+docxMainContentType+`"`)) {
				continue
			}
			if m := partNameRe.FindSubmatch(tag); m != nil {
				return strings.TrimPrefix(string(m[1]), "/")
			}
		}
	}
	return fallback
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	return data, nil
}

func appendMatches(b *strings.Builder, re *regexp.Regexp, data []byte) {
	for _, m := range re.FindAllSubmatch(data, -1) {
		text := strings.TrimSpace(string(m[1]))
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(text)
	}
}

// Package plaintext cleans up plain-text documents before chunking.
package plaintext

import (
	"strings"

	"github.com/custodia-labs/docassist/internal/core/domain"
)

const bom = "\uFEFF"

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Extensions returns the file extensions this normaliser handles.
func (n *Normaliser) Extensions() []string {
	return []string{".txt", ".text"}
}

// Normalise drops a leading byte order mark, converts CRLF and CR line
// endings to LF and trims trailing spaces from each line. An empty title is
// derived from the source path.
func (n *Normaliser) Normalise(doc domain.Document) domain.Document {
	content := strings.TrimPrefix(doc.Content, bom)
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	doc.Content = strings.TrimSpace(strings.Join(lines, "\n"))

	if doc.Title == "" && doc.Source != "" {
		doc.Title = Title(doc.Source)
	}
	return doc
}

// Title builds a human-readable title from a file path: the base name
// without its extension, with underscores and dashes turned into spaces.
func Title(path string) string {
	name := path
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	return strings.NewReplacer("_", " ", "-", " ").Replace(name)
}

package domain

import "time"

// Document kinds.
const (
	KindFile    = "file"
	KindWebsite = "website"
	KindText    = "text"
)

// Document is a persisted source text. The in-memory index can be rebuilt
// from stored documents.
type Document struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Source    string    `json:"source"`
	Kind      string    `json:"kind"`
	Content   string    `json:"content,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Metadata returns the index metadata recorded for chunks of this document.
func (d *Document) Metadata() Metadata {
	return Metadata{
		"document_id": d.ID,
		"title":       d.Title,
		"source":      d.Source,
		"type":        d.Kind,
	}
}

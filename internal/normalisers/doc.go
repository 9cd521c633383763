// Package normalisers holds the per-format cleanup applied to documents
// before they are chunked. Each subpackage handles one family of file
// extensions and exposes Normalise(domain.Document) domain.Document.
package normalisers

// Package domain defines the core entities of docassist.
//
// This package is the innermost layer of the hexagon. It defines:
//
//   - Chunk: an embedded unit of text held by the vector index
//   - SearchResult: a retrieved chunk as returned to callers
//   - Document: a stored source text that can be re-ingested
//   - ModelInfo and PullProgress: provider model catalogue entries
//   - ChatMessage and ChatChunk: streamed chat exchange
//   - Prompt and ChatRecord: saved prompts and conversations
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain

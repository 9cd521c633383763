package mcp

import (
	"github.com/custodia-labs/docassist/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Retrieval provides search and raw indexing.
	Retrieval driving.RetrievalService

	// Documents persists ingested documents. Optional; without it
	// add_document indexes content only and document resources are empty.
	Documents driving.DocumentService

	// Prompts stores saved prompts. Optional; save_prompt is only
	// offered when set.
	Prompts driving.PromptService

	// TopK is the default result count for search (default 3).
	TopK int
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}

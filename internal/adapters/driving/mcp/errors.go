// Package mcp provides an MCP (Model Context Protocol) server adapter for docassist.
// It lets AI assistants search the local document index and add documents to it.
package mcp

import "errors"

var (
	// ErrMissingRetrievalService is returned when the retrieval service is not provided.
	ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")

	// ErrMissingPromptService is returned by save_prompt without a prompt service.
	ErrMissingPromptService = errors.New("mcp: prompt service is not configured")
)

package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docassist/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the natural language query"`
	K     int    `json:"k,omitempty" jsonschema:"number of chunks to return (default 3)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []domain.SearchResult `json:"results"`
	Count   int                   `json:"count"`
}

// AddDocumentInput is the input schema for the add_document tool.
type AddDocumentInput struct {
	Content string `json:"content" jsonschema:"the document text to index"`
	Title   string `json:"title,omitempty" jsonschema:"a human readable title"`
	Source  string `json:"source,omitempty" jsonschema:"where the text came from, such as a path or URL"`
}

// AddDocumentOutput is the output schema for the add_document tool.
type AddDocumentOutput struct {
	DocumentID string `json:"document_id,omitempty"`
	Chunks     int    `json:"chunks"`
	Indexed    int    `json:"indexed"`
	Skipped    int    `json:"skipped"`
}

// SavePromptInput is the input schema for the save_prompt tool.
type SavePromptInput struct {
	Prompt  string   `json:"prompt" jsonschema:"the prompt text to keep"`
	Tags    []string `json:"tags,omitempty" jsonschema:"free-form tags"`
	Models  []string `json:"models,omitempty" jsonschema:"models the prompt was written for"`
	Rating  int      `json:"rating,omitempty" jsonschema:"quality rating from 1 to 5"`
	Comment string   `json:"comment,omitempty" jsonschema:"a note about the prompt"`
}

// SavePromptOutput is the output schema for the save_prompt tool.
type SavePromptOutput struct {
	PromptID int64 `json:"prompt_id"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Find the passages of indexed documents most similar to a query",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "add_document",
		Description: "Chunk, embed and index a document so it can be searched",
	}, s.handleAddDocument)

	if s.ports.Prompts != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "save_prompt",
			Description: "Save a prompt with tags, target models and a rating so it can be found again",
		}, s.handleSavePrompt)
	}
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	k := input.K
	if k <= 0 {
		k = s.ports.TopK
	}

	results, err := s.ports.Retrieval.Search(ctx, input.Query, k)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	return nil, SearchOutput{Results: results, Count: len(results)}, nil
}

// handleAddDocument handles the add_document tool invocation.
func (s *Server) handleAddDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AddDocumentInput,
) (*mcp.CallToolResult, AddDocumentOutput, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, AddDocumentOutput{}, fmt.Errorf("content is required: %w", domain.ErrInvalidInput)
	}

	if s.ports.Documents != nil {
		doc, res, err := s.ports.Documents.Ingest(ctx, domain.Document{
			Title:   input.Title,
			Source:  input.Source,
			Kind:    domain.KindText,
			Content: input.Content,
		})
		if err != nil {
			return nil, AddDocumentOutput{}, err
		}
		return nil, addOutput(doc.ID, res), nil
	}

	metadata := domain.Metadata{"type": domain.KindText}
	if input.Title != "" {
		metadata["title"] = input.Title
	}
	if input.Source != "" {
		metadata["source"] = input.Source
	}
	res, err := s.ports.Retrieval.AddDocument(ctx, input.Content, metadata)
	if err != nil {
		return nil, AddDocumentOutput{}, err
	}
	return nil, addOutput("", res), nil
}

func addOutput(id string, res domain.IngestResult) AddDocumentOutput {
	return AddDocumentOutput{
		DocumentID: id,
		Chunks:     res.Chunks,
		Indexed:    res.Indexed,
		Skipped:    res.Skipped,
	}
}

func (s *Server) handleSavePrompt(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SavePromptInput,
) (*mcp.CallToolResult, SavePromptOutput, error) {
	if s.ports.Prompts == nil {
		return nil, SavePromptOutput{}, ErrMissingPromptService
	}
	p, err := s.ports.Prompts.Create(ctx, domain.Prompt{
		Text:    input.Prompt,
		Tags:    input.Tags,
		Models:  input.Models,
		Rating:  input.Rating,
		Comment: input.Comment,
	})
	if err != nil {
		return nil, SavePromptOutput{}, err
	}
	return nil, SavePromptOutput{PromptID: p.ID}, nil
}

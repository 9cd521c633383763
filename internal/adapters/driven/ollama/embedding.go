package ollama

import (
	"context"
	"errors"
	"net/http"
)

// embedRequest is the /api/embeddings request format.
type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// embedResponse is the /api/embeddings response format.
type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// Embed returns the embedding of text computed by model.
func (c *Client) Embed(ctx context.Context, model, text string) ([]float32, error) {
	var resp embedResponse
	err := c.getJSON(ctx, http.MethodPost, "/api/embeddings", embedRequest{Model: model, Prompt: text}, &resp)
	if err != nil {
		return nil, err
	}
	if len(resp.Embedding) == 0 {
		return nil, errors.New("ollama returned an empty embedding")
	}

	// Convert float64 to float32
	embedding := make([]float32, len(resp.Embedding))
	for i, v := range resp.Embedding {
		embedding[i] = float32(v)
	}
	return embedding, nil
}

package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"time"

	"github.com/custodia-labs/docassist/internal/core/domain"
)

type tagsResponse struct {
	Models []struct {
		Name       string    `json:"name"`
		Size       int64     `json:"size"`
		ModifiedAt time.Time `json:"modified_at"`
	} `json:"models"`
}

type pullRequest struct {
	Model  string `json:"model"`
	Stream bool   `json:"stream"`
}

type pullEvent struct {
	Status    string `json:"status"`
	Digest    string `json:"digest"`
	Total     int64  `json:"total"`
	Completed int64  `json:"completed"`
	Error     string `json:"error"`
}

// ListModels returns the locally available models.
func (c *Client) ListModels(ctx context.Context) ([]domain.ModelInfo, error) {
	var tags tagsResponse
	if err := c.getJSON(ctx, http.MethodGet, "/api/tags", nil, &tags); err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}

	models := make([]domain.ModelInfo, 0, len(tags.Models))
	for _, m := range tags.Models {
		models = append(models, domain.ModelInfo{
			Name:       m.Name,
			Size:       m.Size,
			ModifiedAt: m.ModifiedAt,
		})
	}
	return models, nil
}

// PullModel downloads model and yields progress events decoded from the
// newline-delimited JSON stream. Stopping iteration closes the connection.
func (c *Client) PullModel(ctx context.Context, model string) iter.Seq2[domain.PullProgress, error] {
	return func(yield func(domain.PullProgress, error) bool) {
		resp, err := c.do(ctx, http.MethodPost, "/api/pull", pullRequest{Model: model, Stream: true}, true)
		if err != nil {
			yield(domain.PullProgress{}, fmt.Errorf("pull %s: %w", model, err))
			return
		}
		defer resp.Body.Close()

		dec := json.NewDecoder(resp.Body)
		for {
			var ev pullEvent
			if err := dec.Decode(&ev); err != nil {
				if errors.Is(err, io.EOF) {
					err = io.ErrUnexpectedEOF
				}
				yield(domain.PullProgress{}, fmt.Errorf("pull %s: decode progress: %w", model, err))
				return
			}
			if ev.Error != "" {
				yield(domain.PullProgress{}, fmt.Errorf("pull %s: %s", model, ev.Error))
				return
			}

			p := domain.PullProgress{
				Status:    ev.Status,
				Digest:    ev.Digest,
				Total:     ev.Total,
				Completed: ev.Completed,
			}
			if !yield(p, nil) || p.Done() {
				return
			}
		}
	}
}

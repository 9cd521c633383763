// Package messages defines Bubbletea message types for the TUI.
package messages

import (
	"github.com/custodia-labs/docassist/internal/core/domain"
)

// PullProgressed carries one progress event from a model download.
type PullProgressed struct {
	Progress domain.PullProgress
}

// PullFinished is sent once the download stream ends. Err is nil on success.
type PullFinished struct {
	Err error
}

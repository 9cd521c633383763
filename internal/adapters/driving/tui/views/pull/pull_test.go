package pull

import (
	"bytes"
	"context"
	"errors"
	"iter"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docassist/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docassist/internal/core/domain"
)

func TestNew(t *testing.T) {
	m := New("nomic-embed-text", nil)

	require.NotNil(t, m)
	assert.Nil(t, m.Init())
	assert.Equal(t, 0.0, m.Percent())
	assert.Contains(t, m.View(), "Pulling nomic-embed-text")
	assert.Contains(t, m.View(), "q: cancel")
}

func TestModel_ProgressUpdates(t *testing.T) {
	m := New("llama3.2", nil)

	_, cmd := m.Update(messages.PullProgressed{Progress: domain.PullProgress{
		Status: "downloading", Total: 200, Completed: 50,
	}})
	assert.Nil(t, cmd)
	assert.InDelta(t, 0.25, m.Percent(), 1e-9)
	assert.Contains(t, m.View(), "downloading")

	// Events without totals keep the last known fraction.
	m.Update(messages.PullProgressed{Progress: domain.PullProgress{Status: "verifying sha256 digest"}})
	assert.InDelta(t, 0.25, m.Percent(), 1e-9)

	m.Update(messages.PullProgressed{Progress: domain.PullProgress{Status: "success"}})
	assert.Equal(t, 1.0, m.Percent())
	assert.Contains(t, m.View(), "Done")
}

func TestModel_FinishedQuits(t *testing.T) {
	m := New("llama3.2", nil)
	m.Update(messages.PullProgressed{Progress: domain.PullProgress{Status: "success"}})

	_, cmd := m.Update(messages.PullFinished{})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.NoError(t, m.Err())
}

func TestModel_FinishedWithError(t *testing.T) {
	m := New("llama3.2", nil)
	boom := errors.New("pull failed")

	_, cmd := m.Update(messages.PullFinished{Err: boom})

	require.NotNil(t, cmd)
	assert.ErrorIs(t, m.Err(), boom)
	assert.Contains(t, m.View(), "pull failed")
}

func TestModel_CancelKey(t *testing.T) {
	cancelled := false
	m := New("llama3.2", func() { cancelled = true })

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.True(t, cancelled)
	assert.ErrorIs(t, m.Err(), context.Canceled)
	assert.Contains(t, m.View(), "Cancelled")
}

func TestModel_OtherKeysIgnored(t *testing.T) {
	m := New("llama3.2", nil)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})

	assert.Nil(t, cmd)
	assert.Error(t, m.Err())
}

func TestModel_WindowResize(t *testing.T) {
	m := New("llama3.2", nil)

	m.Update(tea.WindowSizeMsg{Width: 30, Height: 10})
	assert.Equal(t, 26, m.bar.Width)

	m.Update(tea.WindowSizeMsg{Width: 300, Height: 10})
	assert.Equal(t, maxBarWidth, m.bar.Width)
}

func events(items ...domain.PullProgress) func(context.Context) iter.Seq2[domain.PullProgress, error] {
	return func(context.Context) iter.Seq2[domain.PullProgress, error] {
		return func(yield func(domain.PullProgress, error) bool) {
			for _, it := range items {
				if !yield(it, nil) {
					return
				}
			}
		}
	}
}

func TestRun_Success(t *testing.T) {
	var out bytes.Buffer

	err := Run(context.Background(), "llama3.2", events(
		domain.PullProgress{Status: "pulling manifest"},
		domain.PullProgress{Status: "downloading", Total: 10, Completed: 10},
		domain.PullProgress{Status: "success"},
	), tea.WithInput(nil), tea.WithOutput(&out))

	assert.NoError(t, err)
}

func TestRun_StreamError(t *testing.T) {
	boom := errors.New("connection reset")
	pull := func(context.Context) iter.Seq2[domain.PullProgress, error] {
		return func(yield func(domain.PullProgress, error) bool) {
			if !yield(domain.PullProgress{Status: "downloading"}, nil) {
				return
			}
			yield(domain.PullProgress{}, boom)
		}
	}

	err := Run(context.Background(), "llama3.2", pull, tea.WithInput(nil), tea.WithOutput(&bytes.Buffer{}))

	assert.ErrorIs(t, err, boom)
}

func TestRun_IncompleteStream(t *testing.T) {
	err := Run(context.Background(), "llama3.2", events(
		domain.PullProgress{Status: "downloading"},
	), tea.WithInput(nil), tea.WithOutput(&bytes.Buffer{}))

	assert.Error(t, err)
}

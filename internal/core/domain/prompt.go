package domain

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// KindPrompt marks index chunks that come from a saved prompt.
const KindPrompt = "prompt"

// MaxRating is the highest quality rating a prompt can carry.
const MaxRating = 5

// Prompt is a saved prompt. Saved prompts are indexed next to documents so
// chat context can draw on them.
type Prompt struct {
	ID   int64    `json:"id"`
	Text string   `json:"prompt"`
	Tags []string `json:"tags"`

	// Models lists the model names the prompt was written for.
	Models []string `json:"models"`

	// Rating is the quality rating from 1 to MaxRating; 0 means unrated.
	Rating  int    `json:"rating,omitempty"`
	Comment string `json:"comment,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Title returns the first line of the prompt, shortened to 60 characters.
func (p *Prompt) Title() string {
	return ShortTitle(p.Text)
}

// ShortTitle returns the first non-blank line of s, cut to 60 characters.
func ShortTitle(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	line = strings.TrimSpace(line)
	if utf8.RuneCountInString(line) <= 60 {
		return line
	}
	return string([]rune(line)[:57]) + "..."
}

// Metadata returns the index metadata recorded for chunks of this prompt.
func (p *Prompt) Metadata() Metadata {
	id := strconv.FormatInt(p.ID, 10)
	return Metadata{
		"prompt_id": id,
		"title":     p.Title(),
		"source":    "prompt:" + id,
		"type":      KindPrompt,
		"tags":      strings.Join(p.Tags, ","),
	}
}

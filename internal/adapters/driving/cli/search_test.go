package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docassist/internal/core/domain"
)

func TestSearchCmd_Use(t *testing.T) {
	assert.Equal(t, "search [query]", searchCmd.Use)
	assert.Equal(t, "Search indexed documents", searchCmd.Short)
	assert.Contains(t, searchCmd.Long, "cosine similarity")
}

func TestSearchCmd_HasFlags(t *testing.T) {
	flag := searchCmd.Flags().Lookup("top-k")
	require.NotNil(t, flag)
	assert.Equal(t, "k", flag.Shorthand)
	assert.Equal(t, "0", flag.DefValue)

	require.NotNil(t, searchCmd.Flags().Lookup("json"))
}

func TestSearchCmd_RequiresExactlyOneArg(t *testing.T) {
	setupTestServices(t)

	_, err := run(t, "", "search")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestSearchCmd_PrintsResults(t *testing.T) {
	ts := setupTestServices(t)
	ts.retrieval.results = []domain.SearchResult{
		{Content: "The quick brown fox jumps over the lazy dog.", Metadata: domain.Metadata{"title": "animals.txt", "source": "/docs/animals.txt"}},
	}

	out, err := run(t, "", "search", "fox")

	require.NoError(t, err)
	assert.Contains(t, out, "Results:")
	assert.Contains(t, out, "[1] animals.txt")
	assert.Contains(t, out, "Source: /docs/animals.txt")
	assert.Contains(t, out, "quick brown fox")
	assert.Equal(t, []string{"fox"}, ts.retrieval.queries)
	assert.Equal(t, 3, ts.retrieval.lastK)
	assert.Equal(t, 1, ts.documents.rebuilds)
}

func TestSearchCmd_TopKFlag(t *testing.T) {
	ts := setupTestServices(t)

	_, err := run(t, "", "search", "-k", "5", "fox")

	require.NoError(t, err)
	assert.Equal(t, 5, ts.retrieval.lastK)
}

func TestSearchCmd_ConfiguredTopK(t *testing.T) {
	ts := setupTestServices(t)
	require.NoError(t, ts.config.Set("search.top_k", int64(8)))

	_, err := run(t, "", "search", "fox")

	require.NoError(t, err)
	assert.Equal(t, 8, ts.retrieval.lastK)
}

func TestSearchCmd_NoResults(t *testing.T) {
	setupTestServices(t)

	out, err := run(t, "", "search", "nothing")

	require.NoError(t, err)
	assert.Contains(t, out, "No results found.")
}

func TestSearchCmd_JSONOutput(t *testing.T) {
	ts := setupTestServices(t)
	ts.retrieval.results = []domain.SearchResult{
		{Content: "chunk text", Metadata: domain.Metadata{"title": "a"}},
	}

	out, err := run(t, "", "search", "--json", "query")

	require.NoError(t, err)
	var decoded []domain.SearchResult
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "chunk text", decoded[0].Content)
}

func TestSearchCmd_Error(t *testing.T) {
	ts := setupTestServices(t)
	ts.retrieval.err = domain.ErrProvisioning

	_, err := run(t, "", "search", "fox")

	assert.ErrorIs(t, err, domain.ErrProvisioning)
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "a b c", snippet("a\n\n b\t c", 10))
	assert.Equal(t, "héllo...", snippet("héllo world", 5))
}

func TestResultTitle(t *testing.T) {
	assert.Equal(t, "t", resultTitle(domain.Metadata{"title": "t", "source": "s"}))
	assert.Equal(t, "s", resultTitle(domain.Metadata{"title": "", "source": "s"}))
	assert.Equal(t, "id", resultTitle(domain.Metadata{"document_id": "id"}))
	assert.Equal(t, "(untitled)", resultTitle(nil))
}

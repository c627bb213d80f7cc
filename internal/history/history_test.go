package history

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codesage-ai/codesage/internal/core"
)

func newTestStore(t *testing.T) Store {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "history.json"))
}

func output(summary string) *core.ReviewOutput {
	out := &core.ReviewOutput{Summary: summary}
	out.Normalize()
	return out
}

func TestAppendAndList(t *testing.T) {
	store := newTestStore(t)

	first, err := store.Append("code one", output("first"))
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)
	require.False(t, first.Timestamp.IsZero())

	second, err := store.Append("code two", output("second"))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	entries, err := store.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "second", entries[0].Output.Summary, "listing is newest first")
	assert.Equal(t, "first", entries[1].Output.Summary)
}

func TestListEmptyHistory(t *testing.T) {
	store := newTestStore(t)

	entries, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGet(t *testing.T) {
	store := newTestStore(t)

	entry, err := store.Append("code", output("summary"))
	require.NoError(t, err)

	got, err := store.Get(entry.ID)
	require.NoError(t, err)
	assert.Equal(t, "code", got.Input)

	_, err = store.Get("no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClear(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Append("code", output("summary"))
	require.NoError(t, err)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear(), "clearing an empty history is not an error")

	entries, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

package journal

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/steward/pkg/types"
)

func TestJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "journal.db")

	j, err := Open(path)
	require.NoError(t, err)
	defer j.Close()

	require.NoError(t, j.Record(types.KindHook, "notify", "add", "event=Stop"))
	require.NoError(t, j.Record(types.KindServer, "memory", "start", "pid=4242"))
	require.NoError(t, j.Record(types.KindServer, "memory", "stop", ""))

	entries, err := j.Recent(2)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first.
	assert.Equal(t, "stop", entries[0].Op)
	assert.Equal(t, "start", entries[1].Op)
	assert.Equal(t, types.KindServer, entries[0].Kind)
	assert.False(t, entries[0].At.IsZero())
}

func TestJournal_ReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, j.Record(types.KindHook, "x", "add", ""))
	require.NoError(t, j.Close())

	j, err = Open(path)
	require.NoError(t, err)
	defer j.Close()

	entries, err := j.Recent(10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

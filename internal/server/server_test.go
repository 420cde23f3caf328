package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/steward/internal/paths"
	"github.com/mesh-intelligence/steward/pkg/types"
)

func newTestManager(t *testing.T) (*Manager, paths.Paths) {
	t.Helper()
	root := t.TempDir()
	p := paths.Paths{HostDir: root, BaseDir: filepath.Join(root, "steward")}
	return NewManager(p, zap.NewNop()), p
}

func TestLoad(t *testing.T) {
	t.Run("missing file yields empty store", func(t *testing.T) {
		m, _ := newTestManager(t)
		f, err := m.Load()
		require.NoError(t, err)
		assert.Empty(t, f.Servers)
	})

	t.Run("parses entries", func(t *testing.T) {
		m, p := newTestManager(t)
		require.NoError(t, os.MkdirAll(p.BaseDir, 0o755))
		require.NoError(t, os.WriteFile(p.ServersFile(), []byte(`servers:
  memory:
    description: knowledge graph
    command: mcp-memory
    args: [--port, "9100"]
    enabled: true
    auto_start: true
  docs:
    url: https://docs.example.com/mcp
    enabled: false
`), 0o644))

		f, err := m.Load()
		require.NoError(t, err)
		require.Len(t, f.Servers, 2)
		assert.Equal(t, "mcp-memory", f.Servers["memory"].Command)
		assert.True(t, f.Servers["memory"].AutoStart)
		assert.Equal(t, []string{"--port", "9100"}, f.Servers["memory"].Args)
		assert.Equal(t, "https://docs.example.com/mcp", f.Servers["docs"].URL)
	})
}

func TestAddRoundTrip(t *testing.T) {
	m, _ := newTestManager(t)

	res, err := m.Add("memory", types.ServerEntry{Command: "mcp-memory", Enabled: true})
	require.NoError(t, err)
	require.True(t, res.Success)

	f, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, "mcp-memory", f.Servers["memory"].Command)
	assert.True(t, f.Servers["memory"].Enabled)
}

func TestAdd_Validation(t *testing.T) {
	m, _ := newTestManager(t)

	res, err := m.Add("bad", types.ServerEntry{})
	require.NoError(t, err)
	assert.False(t, res.Success)

	res, err = m.Add("", types.ServerEntry{Command: "x"})
	require.NoError(t, err)
	assert.False(t, res.Success)

	_, err = m.Add("dup", types.ServerEntry{Command: "x"})
	require.NoError(t, err)
	res, err = m.Add("dup", types.ServerEntry{Command: "y"})
	require.NoError(t, err)
	assert.False(t, res.Success)
}

func TestRemove(t *testing.T) {
	m, _ := newTestManager(t)
	_, err := m.Add("memory", types.ServerEntry{Command: "mcp-memory"})
	require.NoError(t, err)

	res, err := m.Remove("memory")
	require.NoError(t, err)
	assert.True(t, res.Success)

	res, err = m.Remove("memory")
	require.NoError(t, err)
	assert.False(t, res.Success)
}

func TestEnableDisable(t *testing.T) {
	m, _ := newTestManager(t)
	_, err := m.Add("memory", types.ServerEntry{Command: "mcp-memory"})
	require.NoError(t, err)

	res, err := m.Enable("memory")
	require.NoError(t, err)
	require.True(t, res.Success)

	infos, err := m.List()
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, types.StatusManaged, infos[0].Status)

	res, err = m.Disable("memory")
	require.NoError(t, err)
	require.True(t, res.Success)

	infos, err = m.List()
	require.NoError(t, err)
	assert.Equal(t, types.StatusDisabled, infos[0].Status)
}

func TestVerify(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Add("ok", types.ServerEntry{Command: "sleep", Enabled: true})
	require.NoError(t, err)
	_, err = m.Add("missing-bin", types.ServerEntry{Command: "no-such-binary-4242", Enabled: true})
	require.NoError(t, err)
	_, err = m.Add("remote", types.ServerEntry{URL: "https://example.com/mcp", Enabled: true})
	require.NoError(t, err)

	// An incomplete entry cannot be created through Add; write it directly.
	f, err := m.Load()
	require.NoError(t, err)
	f.Servers["hollow"] = types.ServerEntry{Enabled: true}
	require.NoError(t, m.Save(f))

	issues, err := m.Verify()
	require.NoError(t, err)

	byItem := map[string]types.IssueCode{}
	for _, issue := range issues {
		byItem[issue.Item] = issue.Code
	}
	assert.Len(t, issues, 2)
	assert.Equal(t, types.CodeCommandNotFound, byItem["missing-bin"])
	assert.Equal(t, types.CodeIncompleteServer, byItem["hollow"])
}

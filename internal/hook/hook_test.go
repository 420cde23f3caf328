package hook

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/steward/internal/paths"
	"github.com/mesh-intelligence/steward/internal/settings"
	"github.com/mesh-intelligence/steward/pkg/types"
)

func newTestManager(t *testing.T) (*Manager, paths.Paths) {
	t.Helper()
	root := t.TempDir()
	p := paths.Paths{HostDir: root, BaseDir: filepath.Join(root, "steward")}
	return NewManager(p, zap.NewNop()), p
}

func writeScript(t *testing.T, p paths.Paths, name, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(p.HooksDir(), 0o755))
	path := filepath.Join(p.HooksDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o755))
	return path
}

func TestAdd(t *testing.T) {
	t.Run("registers and activates", func(t *testing.T) {
		m, p := newTestManager(t)
		script := writeScript(t, p, "notify.js", "console.log('ok')")

		res, err := m.Add("", "Stop", "", "node "+script, "", false)
		require.NoError(t, err)
		assert.True(t, res.Success)

		reg, err := m.LoadRegistry()
		require.NoError(t, err)
		require.Len(t, reg.Hooks, 1)
		assert.Equal(t, "notify", reg.Hooks[0].Name)
		assert.NotEmpty(t, reg.Hooks[0].Key)
		assert.True(t, reg.Hooks[0].Managed)

		doc, err := settings.Load(p.SettingsFile())
		require.NoError(t, err)
		assert.True(t, doc.HasCommand("Stop", "node "+script))
	})

	t.Run("missing script file warns but registers", func(t *testing.T) {
		m, p := newTestManager(t)
		missing := filepath.Join(p.HooksDir(), "ghost.js")

		res, err := m.Add("", "Stop", "", "node "+missing, "", false)
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Contains(t, res.Message, "does not exist yet")

		reg, err := m.LoadRegistry()
		require.NoError(t, err)
		assert.Len(t, reg.Hooks, 1)
	})

	t.Run("unknown event fails", func(t *testing.T) {
		m, _ := newTestManager(t)
		res, err := m.Add("x", "NotAnEvent", "", "node a.js", "", false)
		require.NoError(t, err)
		assert.False(t, res.Success)
	})

	t.Run("duplicate name fails", func(t *testing.T) {
		m, p := newTestManager(t)
		script := writeScript(t, p, "notify.js", "1")

		res, err := m.Add("", "Stop", "", "node "+script, "", false)
		require.NoError(t, err)
		require.True(t, res.Success)

		res, err = m.Add("notify", "Stop", "", "node other.js", "", false)
		require.NoError(t, err)
		assert.False(t, res.Success)
	})
}

func TestEnableDisableRoundTrip(t *testing.T) {
	m, p := newTestManager(t)
	script := writeScript(t, p, "fmt.js", "1")
	command := "node " + script

	res, err := m.Add("", "PostToolUse", "Write", command, "", false)
	require.NoError(t, err)
	require.True(t, res.Success)

	res, err = m.Disable("fmt")
	require.NoError(t, err)
	require.True(t, res.Success)

	infos, err := m.List()
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, types.StatusRegistered, infos[0].Status)

	res, err = m.Enable("fmt")
	require.NoError(t, err)
	require.True(t, res.Success)

	infos, err = m.List()
	require.NoError(t, err)
	assert.Equal(t, types.StatusActive, infos[0].Status)

	doc, err := settings.Load(p.SettingsFile())
	require.NoError(t, err)
	require.Len(t, doc.Hooks["PostToolUse"], 1)
	assert.Equal(t, "Write", doc.Hooks["PostToolUse"][0].Matcher)
}

func TestRemove(t *testing.T) {
	t.Run("drops registry entry and archives script", func(t *testing.T) {
		m, p := newTestManager(t)
		script := writeScript(t, p, "fmt.js", "code")

		res, err := m.Add("", "Stop", "", "node "+script, "", false)
		require.NoError(t, err)
		require.True(t, res.Success)

		res, err = m.Remove("fmt")
		require.NoError(t, err)
		require.True(t, res.Success)

		reg, err := m.LoadRegistry()
		require.NoError(t, err)
		assert.Empty(t, reg.Hooks)
		assert.NoFileExists(t, script)

		entries, err := os.ReadDir(p.ArchiveDir())
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Contains(t, entries[0].Name(), "fmt_")
	})

	t.Run("unknown hook fails", func(t *testing.T) {
		m, _ := newTestManager(t)
		res, err := m.Remove("ghost")
		require.NoError(t, err)
		assert.False(t, res.Success)
	})
}

func TestList_OrphanedLive(t *testing.T) {
	m, p := newTestManager(t)

	doc, err := settings.Load(p.SettingsFile())
	require.NoError(t, err)
	doc.AddCommand("Stop", "", "node /elsewhere/rogue.js", false)
	require.NoError(t, settings.Save(p.SettingsFile(), doc))

	infos, err := m.List()
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "rogue", infos[0].Name)
	assert.Equal(t, types.StatusOrphanedLive, infos[0].Status)
}

func TestList_DerivedNameCollisionLastWins(t *testing.T) {
	m, p := newTestManager(t)

	doc, err := settings.Load(p.SettingsFile())
	require.NoError(t, err)
	doc.AddCommand("SessionStart", "", "bash /b/notify.sh", false)
	doc.AddCommand("Stop", "", "node /a/notify.js", false)
	require.NoError(t, settings.Save(p.SettingsFile(), doc))

	// Both commands derive "notify". The name can only map to one live
	// entry, and the later flattened entry takes the slot.
	infos, err := m.List()
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "notify", infos[0].Name)
	assert.Equal(t, "node /a/notify.js", infos[0].Command)
	assert.Equal(t, types.StatusOrphanedLive, infos[0].Status)
}

func TestRegisterFromLive(t *testing.T) {
	m, _ := newTestManager(t)

	name, err := m.RegisterFromLive(settings.Flat{Event: "Stop", Command: "node /x/rogue.js"})
	require.NoError(t, err)
	assert.Equal(t, "rogue", name)

	reg, err := m.LoadRegistry()
	require.NoError(t, err)
	require.Len(t, reg.Hooks, 1)
	assert.False(t, reg.Hooks[0].Managed)

	// Idempotent: second registration changes nothing.
	_, err = m.RegisterFromLive(settings.Flat{Event: "Stop", Command: "node /x/rogue.js"})
	require.NoError(t, err)
	reg, err = m.LoadRegistry()
	require.NoError(t, err)
	assert.Len(t, reg.Hooks, 1)
}

func TestLoadRegistry_DuplicateNamesLastWins(t *testing.T) {
	m, p := newTestManager(t)
	reg := &Registry{Hooks: []types.HookRecord{
		{Name: "fmt", Event: "Stop", Command: "node old.js"},
		{Name: "fmt", Event: "Stop", Command: "node new.js"},
	}}
	require.NoError(t, os.MkdirAll(p.RegistriesDir(), 0o755))
	require.NoError(t, m.SaveRegistry(reg))

	got, err := m.LoadRegistry()
	require.NoError(t, err)
	require.Len(t, got.Hooks, 1)
	assert.Equal(t, "node new.js", got.Hooks[0].Command)
}

func TestVerify(t *testing.T) {
	t.Run("active hook with missing script", func(t *testing.T) {
		m, p := newTestManager(t)
		missing := filepath.Join(p.HooksDir(), "ghost.js")
		_, err := m.Add("", "Stop", "", "node "+missing, "", false)
		require.NoError(t, err)

		issues, err := m.Verify(context.Background())
		require.NoError(t, err)
		require.Len(t, issues, 1)
		assert.Equal(t, types.CodeMissingScript, issues[0].Code)
		assert.False(t, issues[0].Code.AutoFixable())
	})

	t.Run("registered hook with missing script is stale", func(t *testing.T) {
		m, p := newTestManager(t)
		script := writeScript(t, p, "gone.js", "1")
		_, err := m.Add("", "Stop", "", "node "+script, "", false)
		require.NoError(t, err)
		_, err = m.Disable("gone")
		require.NoError(t, err)
		require.NoError(t, os.Remove(script))

		issues, err := m.Verify(context.Background())
		require.NoError(t, err)
		require.Len(t, issues, 1)
		assert.Equal(t, types.CodeStaleRegistry, issues[0].Code)
		assert.True(t, issues[0].Code.AutoFixable())
	})

	t.Run("orphaned live hook reported", func(t *testing.T) {
		m, p := newTestManager(t)
		script := writeScript(t, p, "rogue.js", "1")
		doc, err := settings.Load(p.SettingsFile())
		require.NoError(t, err)
		doc.AddCommand("Stop", "", "node "+script, false)
		require.NoError(t, settings.Save(p.SettingsFile(), doc))

		issues, err := m.Verify(context.Background())
		require.NoError(t, err)
		require.Len(t, issues, 1)
		assert.Equal(t, types.CodeOrphanedLive, issues[0].Code)
	})

	t.Run("healthy hook reports nothing", func(t *testing.T) {
		m, p := newTestManager(t)
		script := writeScript(t, p, "ok.sh", "echo ok")
		_, err := m.Add("", "Stop", "", "bash "+script, "", false)
		require.NoError(t, err)

		issues, err := m.Verify(context.Background())
		require.NoError(t, err)
		assert.Empty(t, issues)
	})
}

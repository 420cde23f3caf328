package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("missing file yields empty document", func(t *testing.T) {
		doc, err := Load(filepath.Join(t.TempDir(), "settings.json"))
		require.NoError(t, err)
		assert.Empty(t, doc.Hooks)
		assert.Empty(t, doc.Extra)
	})

	t.Run("parses hooks and keeps other keys raw", func(t *testing.T) {
		path := writeDoc(t, `{
  "model": "large",
  "hooks": {
    "PostToolUse": [
      {"matcher": "Write", "hooks": [{"type": "command", "command": "node a.js"}]}
    ]
  }
}`)
		doc, err := Load(path)
		require.NoError(t, err)

		require.Len(t, doc.Hooks["PostToolUse"], 1)
		assert.Equal(t, "Write", doc.Hooks["PostToolUse"][0].Matcher)
		assert.Equal(t, "node a.js", doc.Hooks["PostToolUse"][0].Hooks[0].Command)
		assert.Contains(t, doc.Extra, "model")
	})

	t.Run("malformed json is an error", func(t *testing.T) {
		path := writeDoc(t, `{not json`)
		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestSave_PreservesUnknownKeys(t *testing.T) {
	path := writeDoc(t, `{
  "model": "large",
  "permissions": {"allow": ["Bash"]},
  "hooks": {
    "Stop": [{"hooks": [{"type": "command", "command": "node done.js"}]}]
  }
}`)
	doc, err := Load(path)
	require.NoError(t, err)

	doc.AddCommand("Stop", "", "node extra.js", false)
	require.NoError(t, Save(path, doc))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))

	assert.Contains(t, raw, "model")
	assert.Contains(t, raw, "permissions")
	assert.Contains(t, raw, "hooks")
	assert.JSONEq(t, `{"allow": ["Bash"]}`, string(raw["permissions"]))
}

func TestFlatten(t *testing.T) {
	doc := &Document{Hooks: map[string][]MatcherGroup{
		"PostToolUse": {
			{Matcher: "Write|Edit", Hooks: []CommandEntry{
				{Type: "command", Command: "node fmt.js"},
				{Type: "command", Command: "node lint.js", Async: true},
			}},
			{Hooks: []CommandEntry{{Type: "command", Command: "node any.js"}}},
		},
		"Stop": {
			{Hooks: []CommandEntry{{Type: "command", Command: "node done.js"}}},
		},
	}}

	flat := doc.Flatten()
	require.Len(t, flat, 4)

	// Events sorted, groups in order; matcher defaults to "*" only where
	// the event has matcher semantics.
	assert.Equal(t, Flat{Event: "PostToolUse", Matcher: "Write|Edit", Command: "node fmt.js"}, flat[0])
	assert.True(t, flat[1].Async)
	assert.Equal(t, "*", flat[2].Matcher)
	assert.Equal(t, Flat{Event: "Stop", Command: "node done.js"}, flat[3])
}

func TestAddCommand(t *testing.T) {
	t.Run("creates event and group", func(t *testing.T) {
		doc := &Document{Hooks: map[string][]MatcherGroup{}}
		assert.True(t, doc.AddCommand("PreToolUse", "Bash", "node guard.js", false))

		require.Len(t, doc.Hooks["PreToolUse"], 1)
		assert.Equal(t, "Bash", doc.Hooks["PreToolUse"][0].Matcher)
	})

	t.Run("appends to existing matcher group", func(t *testing.T) {
		doc := &Document{Hooks: map[string][]MatcherGroup{}}
		doc.AddCommand("PreToolUse", "Bash", "node a.js", false)
		doc.AddCommand("PreToolUse", "Bash", "node b.js", false)

		require.Len(t, doc.Hooks["PreToolUse"], 1)
		assert.Len(t, doc.Hooks["PreToolUse"][0].Hooks, 2)
	})

	t.Run("duplicate command in group is a no-op", func(t *testing.T) {
		doc := &Document{Hooks: map[string][]MatcherGroup{}}
		doc.AddCommand("PreToolUse", "Bash", "node a.js", false)
		assert.False(t, doc.AddCommand("PreToolUse", "Bash", "node a.js", false))
		assert.Len(t, doc.Hooks["PreToolUse"][0].Hooks, 1)
	})

	t.Run("matcher dropped for non-matcher events", func(t *testing.T) {
		doc := &Document{Hooks: map[string][]MatcherGroup{}}
		doc.AddCommand("Stop", "Bash", "node done.js", false)
		assert.Empty(t, doc.Hooks["Stop"][0].Matcher)
	})
}

func TestRemoveCommand(t *testing.T) {
	newDoc := func() *Document {
		doc := &Document{Hooks: map[string][]MatcherGroup{}}
		doc.AddCommand("PostToolUse", "Write", "node fmt.js", false)
		doc.AddCommand("PostToolUse", "Write", "node lint.js", false)
		doc.AddCommand("Stop", "", "node done.js", false)
		return doc
	}

	t.Run("removes one command", func(t *testing.T) {
		doc := newDoc()
		assert.True(t, doc.RemoveCommand("PostToolUse", "node fmt.js"))
		assert.False(t, doc.HasCommand("PostToolUse", "node fmt.js"))
		assert.True(t, doc.HasCommand("PostToolUse", "node lint.js"))
	})

	t.Run("prunes empty group and event", func(t *testing.T) {
		doc := newDoc()
		doc.RemoveCommand("Stop", "node done.js")
		_, ok := doc.Hooks["Stop"]
		assert.False(t, ok)
	})

	t.Run("absent command reports false", func(t *testing.T) {
		doc := newDoc()
		assert.False(t, doc.RemoveCommand("PostToolUse", "node gone.js"))
	})
}

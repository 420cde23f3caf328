// Package settings reads and writes the host's settings.json, the live
// store for hooks. Only the "hooks" section is interpreted; every other
// top-level key is carried through a rewrite untouched.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/mesh-intelligence/steward/internal/fsio"
)

// Events the host fires hooks on.
var ValidEvents = []string{
	"PreToolUse",
	"PostToolUse",
	"UserPromptSubmit",
	"Stop",
	"SessionStart",
	"SessionEnd",
	"Notification",
}

// MatcherEvents are the events whose groups carry a tool-name matcher.
var MatcherEvents = map[string]bool{
	"PreToolUse":  true,
	"PostToolUse": true,
}

// ValidEvent reports whether name is an event the host fires.
func ValidEvent(name string) bool {
	for _, e := range ValidEvents {
		if e == name {
			return true
		}
	}
	return false
}

// CommandEntry is one hook command inside a matcher group.
type CommandEntry struct {
	Type    string `json:"type"`
	Command string `json:"command"`
	Async   bool   `json:"async,omitempty"`
}

// MatcherGroup is one group of hook commands sharing a tool matcher.
// Events without matcher semantics omit the matcher entirely.
type MatcherGroup struct {
	Matcher string         `json:"matcher,omitempty"`
	Hooks   []CommandEntry `json:"hooks"`
}

// Document is the settings file with the hooks section parsed and every
// other top-level key held as raw JSON for round-tripping.
type Document struct {
	Hooks map[string][]MatcherGroup
	Extra map[string]json.RawMessage
}

// Flat is one hook command with its position in the document, the shape
// list and status operations want.
type Flat struct {
	Event   string
	Matcher string
	Command string
	Async   bool
}

// Load reads the settings document at path. A missing file yields an empty
// document, not an error: first run has no settings yet.
func Load(path string) (*Document, error) {
	doc := &Document{
		Hooks: map[string][]MatcherGroup{},
		Extra: map[string]json.RawMessage{},
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return doc, nil
	}
	if err != nil {
		return nil, err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	for key, val := range raw {
		if key != "hooks" {
			doc.Extra[key] = val
			continue
		}
		if err := json.Unmarshal(val, &doc.Hooks); err != nil {
			return nil, fmt.Errorf("parsing hooks section of %s: %w", path, err)
		}
	}
	return doc, nil
}

// Save atomically writes the document back to path, hooks section plus
// preserved keys.
func Save(path string, doc *Document) error {
	out := map[string]any{}
	for key, val := range doc.Extra {
		out[key] = val
	}
	if len(doc.Hooks) > 0 {
		out["hooks"] = doc.Hooks
	}
	return fsio.WriteJSON(path, out)
}

// Flatten returns every hook command in the document in deterministic
// order (event, then group, then entry). Groups under events with matcher
// semantics report their matcher, defaulting to "*".
func (d *Document) Flatten() []Flat {
	events := make([]string, 0, len(d.Hooks))
	for event := range d.Hooks {
		events = append(events, event)
	}
	sort.Strings(events)

	var flat []Flat
	for _, event := range events {
		for _, group := range d.Hooks[event] {
			matcher := group.Matcher
			if matcher == "" && MatcherEvents[event] {
				matcher = "*"
			}
			for _, entry := range group.Hooks {
				flat = append(flat, Flat{
					Event:   event,
					Matcher: matcher,
					Command: entry.Command,
					Async:   entry.Async,
				})
			}
		}
	}
	return flat
}

// HasCommand reports whether the exact command string appears anywhere
// under the event.
func (d *Document) HasCommand(event, command string) bool {
	for _, group := range d.Hooks[event] {
		for _, entry := range group.Hooks {
			if entry.Command == command {
				return true
			}
		}
	}
	return false
}

// AddCommand inserts a command under event in the group matching matcher,
// creating the group if needed. Adding a command that already exists in
// the target group is a no-op; the returned bool reports whether the
// document changed.
func (d *Document) AddCommand(event, matcher, command string, async bool) bool {
	if !MatcherEvents[event] {
		matcher = ""
	}
	groups := d.Hooks[event]
	for i := range groups {
		if groups[i].Matcher != matcher {
			continue
		}
		for _, entry := range groups[i].Hooks {
			if entry.Command == command {
				return false
			}
		}
		groups[i].Hooks = append(groups[i].Hooks, CommandEntry{Type: "command", Command: command, Async: async})
		d.Hooks[event] = groups
		return true
	}
	d.Hooks[event] = append(groups, MatcherGroup{
		Matcher: matcher,
		Hooks:   []CommandEntry{{Type: "command", Command: command, Async: async}},
	})
	return true
}

// RemoveCommand deletes every occurrence of command under event, pruning
// groups and events left empty. The returned bool reports whether anything
// was removed.
func (d *Document) RemoveCommand(event, command string) bool {
	groups, ok := d.Hooks[event]
	if !ok {
		return false
	}
	removed := false
	var keptGroups []MatcherGroup
	for _, group := range groups {
		var kept []CommandEntry
		for _, entry := range group.Hooks {
			if entry.Command == command {
				removed = true
				continue
			}
			kept = append(kept, entry)
		}
		if len(kept) > 0 {
			group.Hooks = kept
			keptGroups = append(keptGroups, group)
		}
	}
	if !removed {
		return false
	}
	if len(keptGroups) == 0 {
		delete(d.Hooks, event)
	} else {
		d.Hooks[event] = keptGroups
	}
	return true
}

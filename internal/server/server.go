// Package server manages the server store, a YAML file that is both live
// store and registry for server entries. Runtime process control lives in
// internal/supervise; this package only edits configuration.
package server

import (
	"fmt"
	"os"
	"os/exec"
	"sort"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/steward/internal/fsio"
	"github.com/mesh-intelligence/steward/internal/paths"
	"github.com/mesh-intelligence/steward/internal/reconcile"
	"github.com/mesh-intelligence/steward/pkg/types"
)

// File is the server store document.
type File struct {
	Servers map[string]types.ServerEntry `yaml:"servers"`
}

// Info is one server entry with its derived status.
type Info struct {
	Name string
	types.ServerEntry
	Status types.Status
}

// Manager owns the server store.
type Manager struct {
	paths paths.Paths
	log   *zap.Logger
}

// NewManager builds a server Manager.
func NewManager(p paths.Paths, log *zap.Logger) *Manager {
	return &Manager{paths: p, log: log}
}

// Load reads the server store; a missing file yields an empty store.
func (m *Manager) Load() (*File, error) {
	f := &File{Servers: map[string]types.ServerEntry{}}
	data, err := os.ReadFile(m.paths.ServersFile())
	if os.IsNotExist(err) {
		return f, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", m.paths.ServersFile(), err)
	}
	if f.Servers == nil {
		f.Servers = map[string]types.ServerEntry{}
	}
	return f, nil
}

// Save atomically writes the store.
func (m *Manager) Save(f *File) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encoding server store: %w", err)
	}
	return fsio.WriteFileAtomic(m.paths.ServersFile(), data, 0o644)
}

// Names returns the server names in sorted order.
func (f *File) Names() []string {
	names := make([]string, 0, len(f.Servers))
	for name := range f.Servers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List returns every server with its derived status.
func (m *Manager) List() ([]Info, error) {
	f, err := m.Load()
	if err != nil {
		return nil, err
	}
	var infos []Info
	for _, name := range f.Names() {
		entry := f.Servers[name]
		infos = append(infos, Info{
			Name:        name,
			ServerEntry: entry,
			Status:      reconcile.ServerStatus(entry.Enabled),
		})
	}
	return infos, nil
}

// Add inserts a new server entry. An entry needs a command or a url;
// otherwise there is nothing to connect to.
func (m *Manager) Add(name string, entry types.ServerEntry) (types.Result, error) {
	if name == "" {
		return types.Fail("server name is required"), nil
	}
	if entry.Command == "" && entry.URL == "" {
		return types.Fail("server needs a command or a url"), nil
	}
	f, err := m.Load()
	if err != nil {
		return types.Result{}, err
	}
	if _, ok := f.Servers[name]; ok {
		return types.Fail(fmt.Sprintf("server %q already exists", name)), nil
	}
	f.Servers[name] = entry
	if err := m.Save(f); err != nil {
		return types.Result{}, err
	}
	m.log.Info("server added", zap.String("server", name))
	return types.OK(fmt.Sprintf("added server %q", name)), nil
}

// Remove deletes a server entry from the store. The store file itself is
// rewritten, not archived: a single entry has no file of its own.
func (m *Manager) Remove(name string) (types.Result, error) {
	f, err := m.Load()
	if err != nil {
		return types.Result{}, err
	}
	if _, ok := f.Servers[name]; !ok {
		return types.Fail(fmt.Sprintf("server %q not found", name)), nil
	}
	delete(f.Servers, name)
	if err := m.Save(f); err != nil {
		return types.Result{}, err
	}
	m.log.Info("server removed", zap.String("server", name))
	return types.OK(fmt.Sprintf("removed server %q", name)), nil
}

func (m *Manager) setEnabled(name string, enabled bool) (types.Result, error) {
	f, err := m.Load()
	if err != nil {
		return types.Result{}, err
	}
	entry, ok := f.Servers[name]
	if !ok {
		return types.Fail(fmt.Sprintf("server %q not found", name)), nil
	}
	verb := "disabled"
	if enabled {
		verb = "enabled"
	}
	if entry.Enabled == enabled {
		return types.OK(fmt.Sprintf("server %q already %s", name, verb)), nil
	}
	entry.Enabled = enabled
	f.Servers[name] = entry
	if err := m.Save(f); err != nil {
		return types.Result{}, err
	}
	m.log.Info("server "+verb, zap.String("server", name))
	return types.OK(fmt.Sprintf("%s server %q", verb, name)), nil
}

// Enable marks the server enabled.
func (m *Manager) Enable(name string) (types.Result, error) { return m.setEnabled(name, true) }

// Disable marks the server disabled.
func (m *Manager) Disable(name string) (types.Result, error) { return m.setEnabled(name, false) }

// Verify checks every server entry and returns the issues found.
func (m *Manager) Verify() ([]types.Issue, error) {
	f, err := m.Load()
	if err != nil {
		return nil, err
	}
	var issues []types.Issue
	for _, name := range f.Names() {
		entry := f.Servers[name]
		if entry.Command == "" && entry.URL == "" {
			issues = append(issues, types.Issue{
				Kind:    types.KindServer,
				Item:    name,
				Code:    types.CodeIncompleteServer,
				Problem: "entry has neither command nor url",
				Fix:     "add a command or url, or remove the entry",
			})
			continue
		}
		if entry.Enabled && entry.Command != "" {
			if _, err := exec.LookPath(entry.Command); err != nil {
				issues = append(issues, types.Issue{
					Kind:    types.KindServer,
					Item:    name,
					Code:    types.CodeCommandNotFound,
					Problem: fmt.Sprintf("command %q not found on PATH", entry.Command),
					Fix:     "install the binary or fix the command",
				})
			}
		}
	}
	return issues, nil
}

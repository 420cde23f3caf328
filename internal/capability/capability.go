// Package capability manages capability bundles: directories under the
// host's capabilities dir, each with a CAPABILITY.md descriptor, tracked
// by steward's capability registry. The directory is the live state; the
// registry carries identity, keywords, and the enabled intent.
package capability

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/steward/internal/fsio"
	"github.com/mesh-intelligence/steward/internal/paths"
	"github.com/mesh-intelligence/steward/internal/reconcile"
	"github.com/mesh-intelligence/steward/pkg/types"
)

const descriptorName = "CAPABILITY.md"

// Registry is the capability registry document.
type Registry struct {
	Capabilities []types.CapabilityRecord `json:"capabilities"`
}

// Info is one capability with its derived status.
type Info struct {
	types.CapabilityRecord
	Status types.Status
}

// Manager owns the capability registry and watches the capabilities dir.
type Manager struct {
	paths paths.Paths
	log   *zap.Logger
}

// NewManager builds a capability Manager.
func NewManager(p paths.Paths, log *zap.Logger) *Manager {
	return &Manager{paths: p, log: log}
}

// LoadRegistry reads the capability registry; missing file means empty.
func (m *Manager) LoadRegistry() (*Registry, error) {
	reg := &Registry{}
	err := fsio.ReadJSON(m.paths.CapabilityRegistry(), reg)
	if os.IsNotExist(err) {
		return reg, nil
	}
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// SaveRegistry atomically writes the registry.
func (m *Manager) SaveRegistry(reg *Registry) error {
	return fsio.WriteJSON(m.paths.CapabilityRegistry(), reg)
}

func (r *Registry) find(id string) *types.CapabilityRecord {
	for i := range r.Capabilities {
		if r.Capabilities[i].ID == id {
			return &r.Capabilities[i]
		}
	}
	return nil
}

// ScanDisk lists the capability ids present on disk: subdirectories of the
// capabilities dir that contain a descriptor file.
func (m *Manager) ScanDisk() ([]string, error) {
	entries, err := os.ReadDir(m.paths.CapabilitiesDir())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(m.paths.CapabilityDescriptor(e.Name())); err == nil {
			ids = append(ids, e.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// onDisk reports whether the capability's backing files exist, checking
// the recorded path first and the conventional location second.
func (m *Manager) onDisk(rec types.CapabilityRecord) bool {
	if rec.Path != "" {
		if _, err := os.Stat(rec.Path); err == nil {
			return true
		}
	}
	_, err := os.Stat(m.paths.CapabilityDescriptor(rec.ID))
	return err == nil
}

// List merges the registry with the disk scan into one view per id.
func (m *Manager) List() ([]Info, error) {
	reg, err := m.LoadRegistry()
	if err != nil {
		return nil, err
	}
	diskIDs, err := m.ScanDisk()
	if err != nil {
		return nil, err
	}
	onDisk := map[string]bool{}
	for _, id := range diskIDs {
		onDisk[id] = true
	}

	var infos []Info
	seen := map[string]bool{}
	for _, rec := range reg.Capabilities {
		infos = append(infos, Info{
			CapabilityRecord: rec,
			Status:           reconcile.CapabilityStatus(m.onDisk(rec), true, rec.Enabled),
		})
		seen[rec.ID] = true
	}
	for _, id := range diskIDs {
		if seen[id] {
			continue
		}
		infos = append(infos, Info{
			CapabilityRecord: types.CapabilityRecord{
				ID:   id,
				Name: id,
				Path: m.paths.CapabilityDescriptor(id),
			},
			Status: reconcile.CapabilityStatus(true, false, false),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos, nil
}

// Add registers a capability. The backing directory does not have to exist
// yet: register now, create the files later.
func (m *Manager) Add(id, name string, keywords []string, enabled bool) (types.Result, error) {
	if id == "" {
		return types.Fail("capability id is required"), nil
	}
	reg, err := m.LoadRegistry()
	if err != nil {
		return types.Result{}, err
	}
	if reg.find(id) != nil {
		return types.Fail(fmt.Sprintf("capability %q already registered", id)), nil
	}
	if name == "" {
		name = id
	}

	rec := types.CapabilityRecord{
		ID:       id,
		Name:     name,
		Keywords: keywords,
		Path:     m.paths.CapabilityDescriptor(id),
		Enabled:  enabled,
	}
	warning := ""
	if !m.onDisk(rec) {
		warning = fmt.Sprintf(" (warning: %s does not exist yet)", rec.Path)
		m.log.Warn("capability files missing at registration",
			zap.String("capability", id), zap.String("path", rec.Path))
	}
	reg.Capabilities = append(reg.Capabilities, rec)
	if err := m.SaveRegistry(reg); err != nil {
		return types.Result{}, err
	}
	m.log.Info("capability added", zap.String("capability", id))
	return types.OK(fmt.Sprintf("added capability %q%s", id, warning)), nil
}

// Remove drops the registry entry and archives the capability directory if
// present.
func (m *Manager) Remove(id string) (types.Result, error) {
	reg, err := m.LoadRegistry()
	if err != nil {
		return types.Result{}, err
	}
	if reg.find(id) == nil {
		return types.Fail(fmt.Sprintf("capability %q not found", id)), nil
	}

	archived := ""
	dir := filepath.Join(m.paths.CapabilitiesDir(), id)
	if _, statErr := os.Stat(dir); statErr == nil {
		dst, archErr := fsio.Archive(dir, m.paths.ArchiveDir(), "removed")
		if archErr != nil {
			return types.Result{}, archErr
		}
		archived = fmt.Sprintf(", files archived to %s", dst)
	}

	var kept []types.CapabilityRecord
	for _, rec := range reg.Capabilities {
		if rec.ID != id {
			kept = append(kept, rec)
		}
	}
	reg.Capabilities = kept
	if err := m.SaveRegistry(reg); err != nil {
		return types.Result{}, err
	}
	m.log.Info("capability removed", zap.String("capability", id))
	return types.OK(fmt.Sprintf("removed capability %q%s", id, archived)), nil
}

// RemoveEntry drops only the registry entry, leaving disk untouched. Used
// by repair of stale entries where there is nothing on disk to archive.
func (m *Manager) RemoveEntry(id string) error {
	reg, err := m.LoadRegistry()
	if err != nil {
		return err
	}
	var kept []types.CapabilityRecord
	for _, rec := range reg.Capabilities {
		if rec.ID != id {
			kept = append(kept, rec)
		}
	}
	reg.Capabilities = kept
	return m.SaveRegistry(reg)
}

// Register adds a registry entry for a capability found on disk, disabled
// until an operator turns it on. Idempotent.
func (m *Manager) Register(id string) error {
	reg, err := m.LoadRegistry()
	if err != nil {
		return err
	}
	if reg.find(id) != nil {
		return nil
	}
	reg.Capabilities = append(reg.Capabilities, types.CapabilityRecord{
		ID:      id,
		Name:    id,
		Path:    m.paths.CapabilityDescriptor(id),
		Enabled: false,
	})
	if err := m.SaveRegistry(reg); err != nil {
		return err
	}
	m.log.Info("capability registered from disk", zap.String("capability", id))
	return nil
}

func (m *Manager) setEnabled(id string, enabled bool) (types.Result, error) {
	reg, err := m.LoadRegistry()
	if err != nil {
		return types.Result{}, err
	}
	rec := reg.find(id)
	if rec == nil {
		return types.Fail(fmt.Sprintf("capability %q not found", id)), nil
	}
	verb := "disabled"
	if enabled {
		verb = "enabled"
	}
	if rec.Enabled == enabled {
		return types.OK(fmt.Sprintf("capability %q already %s", id, verb)), nil
	}
	rec.Enabled = enabled
	if err := m.SaveRegistry(reg); err != nil {
		return types.Result{}, err
	}
	m.log.Info("capability "+verb, zap.String("capability", id))
	return types.OK(fmt.Sprintf("%s capability %q", verb, id)), nil
}

// Enable marks the capability enabled.
func (m *Manager) Enable(id string) (types.Result, error) { return m.setEnabled(id, true) }

// Disable marks the capability disabled.
func (m *Manager) Disable(id string) (types.Result, error) { return m.setEnabled(id, false) }

// Verify checks every known capability and returns the issues found.
func (m *Manager) Verify() ([]types.Issue, error) {
	infos, err := m.List()
	if err != nil {
		return nil, err
	}
	var issues []types.Issue
	for _, info := range infos {
		switch info.Status {
		case types.StatusOrphanedRegistry:
			issues = append(issues, types.Issue{
				Kind:    types.KindCapability,
				Item:    info.ID,
				Code:    types.CodeStaleRegistry,
				Problem: fmt.Sprintf("registered but %s is gone", info.Path),
				Fix:     "remove the registry entry",
			})
		case types.StatusOrphanedDisk:
			issues = append(issues, types.Issue{
				Kind:    types.KindCapability,
				Item:    info.ID,
				Code:    types.CodeOrphanedDisk,
				Problem: "on disk but not registered",
				Fix:     "register it",
			})
		case types.StatusDisabled:
			issues = append(issues, types.Issue{
				Kind:    types.KindCapability,
				Item:    info.ID,
				Code:    types.CodeDisabledOnDisk,
				Problem: "registered and on disk but disabled",
				Fix:     "enable it if this is unintentional",
			})
		}
	}
	return issues, nil
}

// NormalizeName lowercases an id and strips separators, the comparison key
// duplicate detection uses.
func NormalizeName(id string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '-', '_', ' ':
			return -1
		default:
			return r
		}
	}, strings.ToLower(id))
}

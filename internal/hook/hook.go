// Package hook manages hook commands across two stores: the host's
// settings.json (live store, what actually runs) and steward's hook
// registry (catalog, including disabled hooks). Status is derived from
// presence in the two stores on every read.
package hook

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/steward/internal/fsio"
	"github.com/mesh-intelligence/steward/internal/paths"
	"github.com/mesh-intelligence/steward/internal/reconcile"
	"github.com/mesh-intelligence/steward/internal/settings"
	"github.com/mesh-intelligence/steward/pkg/types"
)

const registryVersion = "1.0"

// syntaxCheckTimeout bounds the external `node --check` call.
const syntaxCheckTimeout = 10 * time.Second

// Registry is the hook registry document.
type Registry struct {
	Hooks   []types.HookRecord `json:"hooks"`
	Version string             `json:"version"`
}

// Info is one hook with its derived status, the shape list and status
// commands render.
type Info struct {
	types.HookRecord
	Status types.Status
}

// Manager owns the hook registry and the live store.
type Manager struct {
	paths paths.Paths
	log   *zap.Logger
}

// NewManager builds a hook Manager.
func NewManager(p paths.Paths, log *zap.Logger) *Manager {
	return &Manager{paths: p, log: log}
}

// LoadRegistry reads the hook registry. A missing file yields an empty
// registry. Duplicate names collapse to the last occurrence.
func (m *Manager) LoadRegistry() (*Registry, error) {
	reg := &Registry{Version: registryVersion}
	err := fsio.ReadJSON(m.paths.HookRegistry(), reg)
	if os.IsNotExist(err) {
		return reg, nil
	}
	if err != nil {
		return nil, err
	}
	if reg.Version == "" {
		reg.Version = registryVersion
	}
	seen := map[string]int{}
	var deduped []types.HookRecord
	for _, rec := range reg.Hooks {
		if i, ok := seen[rec.Name]; ok {
			deduped[i] = rec
			continue
		}
		seen[rec.Name] = len(deduped)
		deduped = append(deduped, rec)
	}
	reg.Hooks = deduped
	return reg, nil
}

// SaveRegistry atomically writes the registry.
func (m *Manager) SaveRegistry(reg *Registry) error {
	if reg.Version == "" {
		reg.Version = registryVersion
	}
	return fsio.WriteJSON(m.paths.HookRegistry(), reg)
}

func (r *Registry) find(name string) *types.HookRecord {
	for i := range r.Hooks {
		if r.Hooks[i].Name == name {
			return &r.Hooks[i]
		}
	}
	return nil
}

// List merges the registry and the live store into one view per hook name.
// Live-only hooks appear as orphaned-live with a synthesized record.
func (m *Manager) List() ([]Info, error) {
	reg, err := m.LoadRegistry()
	if err != nil {
		return nil, err
	}
	doc, err := settings.Load(m.paths.SettingsFile())
	if err != nil {
		return nil, err
	}

	liveByName := map[string]settings.Flat{}
	for _, f := range doc.Flatten() {
		liveByName[DeriveName(f.Command)] = f
	}

	var infos []Info
	seen := map[string]bool{}
	regCommands := map[string]bool{}
	for _, rec := range reg.Hooks {
		_, live := liveByName[rec.Name]
		if !live {
			live = doc.HasCommand(rec.Event, rec.Command)
		}
		infos = append(infos, Info{
			HookRecord: rec,
			Status:     reconcile.HookStatus(live, true),
		})
		seen[rec.Name] = true
		regCommands[rec.Command] = true
	}
	for name, f := range liveByName {
		if seen[name] || regCommands[f.Command] {
			continue
		}
		infos = append(infos, Info{
			HookRecord: types.HookRecord{
				Name:    name,
				Event:   f.Event,
				Matcher: f.Matcher,
				Async:   f.Async,
				Command: f.Command,
			},
			Status: reconcile.HookStatus(true, false),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// Add registers a hook and activates it in the live store. A missing
// script file is a warning, not a refusal: register now, fix the file
// later.
func (m *Manager) Add(name, event, matcher, command, description string, async bool) (types.Result, error) {
	if command == "" {
		return types.Fail("command is required"), nil
	}
	if !settings.ValidEvent(event) {
		return types.Fail(fmt.Sprintf("unknown event %q (valid: %s)", event, strings.Join(settings.ValidEvents, ", "))), nil
	}
	if name == "" {
		name = DeriveName(command)
	}

	reg, err := m.LoadRegistry()
	if err != nil {
		return types.Result{}, err
	}
	if reg.find(name) != nil {
		return types.Fail(fmt.Sprintf("hook %q already registered", name)), nil
	}

	warning := ""
	if script := ExtractScriptPath(command); script != "" {
		if _, err := os.Stat(script); os.IsNotExist(err) {
			warning = fmt.Sprintf(" (warning: script %s does not exist yet)", script)
			m.log.Warn("hook script missing at registration",
				zap.String("hook", name), zap.String("script", script))
		}
	}

	rec := types.HookRecord{
		Key:         uuid.NewString(),
		Name:        name,
		Event:       event,
		Matcher:     matcher,
		Async:       async,
		Managed:     true,
		Description: description,
		Command:     command,
	}
	reg.Hooks = append(reg.Hooks, rec)
	if err := m.SaveRegistry(reg); err != nil {
		return types.Result{}, err
	}

	doc, err := settings.Load(m.paths.SettingsFile())
	if err != nil {
		return types.Result{}, err
	}
	doc.AddCommand(event, matcher, command, async)
	if err := settings.Save(m.paths.SettingsFile(), doc); err != nil {
		return types.Result{}, err
	}

	m.log.Info("hook added", zap.String("hook", name), zap.String("event", event))
	return types.OK(fmt.Sprintf("added hook %q on %s%s", name, event, warning)), nil
}

// Remove deactivates the hook and drops its registry entry. The script
// file, if resolvable, is archived rather than deleted.
func (m *Manager) Remove(name string) (types.Result, error) {
	reg, err := m.LoadRegistry()
	if err != nil {
		return types.Result{}, err
	}
	rec := reg.find(name)
	if rec == nil {
		return types.Fail(fmt.Sprintf("hook %q not found", name)), nil
	}

	doc, err := settings.Load(m.paths.SettingsFile())
	if err != nil {
		return types.Result{}, err
	}
	if doc.RemoveCommand(rec.Event, rec.Command) {
		if err := settings.Save(m.paths.SettingsFile(), doc); err != nil {
			return types.Result{}, err
		}
	}

	archived := ""
	if script := ExtractScriptPath(rec.Command); script != "" {
		if _, statErr := os.Stat(script); statErr == nil {
			dst, archErr := fsio.Archive(script, m.paths.ArchiveDir(), "removed")
			if archErr != nil {
				return types.Result{}, archErr
			}
			archived = fmt.Sprintf(", script archived to %s", dst)
		}
	}

	var kept []types.HookRecord
	for _, h := range reg.Hooks {
		if h.Name != name {
			kept = append(kept, h)
		}
	}
	reg.Hooks = kept
	if err := m.SaveRegistry(reg); err != nil {
		return types.Result{}, err
	}

	m.log.Info("hook removed", zap.String("hook", name))
	return types.OK(fmt.Sprintf("removed hook %q%s", name, archived)), nil
}

// Enable activates a registered hook in the live store. Enabling an
// already-active hook succeeds without change.
func (m *Manager) Enable(name string) (types.Result, error) {
	reg, err := m.LoadRegistry()
	if err != nil {
		return types.Result{}, err
	}
	rec := reg.find(name)
	if rec == nil {
		return types.Fail(fmt.Sprintf("hook %q not found in registry", name)), nil
	}

	doc, err := settings.Load(m.paths.SettingsFile())
	if err != nil {
		return types.Result{}, err
	}
	if !doc.AddCommand(rec.Event, rec.Matcher, rec.Command, rec.Async) {
		return types.OK(fmt.Sprintf("hook %q already active", name)), nil
	}
	if err := settings.Save(m.paths.SettingsFile(), doc); err != nil {
		return types.Result{}, err
	}
	m.log.Info("hook enabled", zap.String("hook", name))
	return types.OK(fmt.Sprintf("enabled hook %q", name)), nil
}

// Disable removes the hook from the live store while keeping its registry
// entry, so it can be re-enabled without re-entering the command.
func (m *Manager) Disable(name string) (types.Result, error) {
	reg, err := m.LoadRegistry()
	if err != nil {
		return types.Result{}, err
	}
	rec := reg.find(name)
	if rec == nil {
		return types.Fail(fmt.Sprintf("hook %q not found in registry", name)), nil
	}

	doc, err := settings.Load(m.paths.SettingsFile())
	if err != nil {
		return types.Result{}, err
	}
	if !doc.RemoveCommand(rec.Event, rec.Command) {
		return types.OK(fmt.Sprintf("hook %q already inactive", name)), nil
	}
	if err := settings.Save(m.paths.SettingsFile(), doc); err != nil {
		return types.Result{}, err
	}
	m.log.Info("hook disabled", zap.String("hook", name))
	return types.OK(fmt.Sprintf("disabled hook %q", name)), nil
}

// RemoveEntry drops only the registry entry. Used by repair of stale
// entries whose script is already gone, where there is nothing to archive.
func (m *Manager) RemoveEntry(name string) error {
	reg, err := m.LoadRegistry()
	if err != nil {
		return err
	}
	var kept []types.HookRecord
	for _, h := range reg.Hooks {
		if h.Name != name {
			kept = append(kept, h)
		}
	}
	reg.Hooks = kept
	return m.SaveRegistry(reg)
}

// RegisterFromLive adds a registry entry for a hook observed only in the
// live store. The entry mirrors what the live store says; managed stays
// false until an operator takes it over.
func (m *Manager) RegisterFromLive(f settings.Flat) (string, error) {
	name := DeriveName(f.Command)
	reg, err := m.LoadRegistry()
	if err != nil {
		return "", err
	}
	if reg.find(name) != nil {
		return name, nil
	}
	reg.Hooks = append(reg.Hooks, types.HookRecord{
		Key:     uuid.NewString(),
		Name:    name,
		Event:   f.Event,
		Matcher: f.Matcher,
		Async:   f.Async,
		Managed: false,
		Command: f.Command,
	})
	if err := m.SaveRegistry(reg); err != nil {
		return "", err
	}
	m.log.Info("hook registered from live store", zap.String("hook", name))
	return name, nil
}

// Verify checks every known hook and returns the issues found.
func (m *Manager) Verify(ctx context.Context) ([]types.Issue, error) {
	infos, err := m.List()
	if err != nil {
		return nil, err
	}

	var issues []types.Issue
	for _, info := range infos {
		switch info.Status {
		case types.StatusOrphanedLive:
			issues = append(issues, types.Issue{
				Kind:    types.KindHook,
				Item:    info.Name,
				Code:    types.CodeOrphanedLive,
				Problem: "active in settings but not registered",
				Fix:     "register it from the live store",
			})
			continue
		case types.StatusRegistered:
			if script := ExtractScriptPath(info.Command); script != "" {
				if _, statErr := os.Stat(script); os.IsNotExist(statErr) {
					issues = append(issues, types.Issue{
						Kind:    types.KindHook,
						Item:    info.Name,
						Code:    types.CodeStaleRegistry,
						Problem: fmt.Sprintf("registry entry but script %s is gone", script),
						Fix:     "remove the registry entry",
					})
				}
			}
			continue
		}

		// Active hooks: the script must exist and parse.
		script := ExtractScriptPath(info.Command)
		if script == "" {
			continue
		}
		if _, statErr := os.Stat(script); os.IsNotExist(statErr) {
			issues = append(issues, types.Issue{
				Kind:    types.KindHook,
				Item:    info.Name,
				Code:    types.CodeMissingScript,
				Problem: fmt.Sprintf("script %s does not exist", script),
				Fix:     "restore the script or remove the hook",
			})
			continue
		}
		if issue, found := m.checkSyntax(ctx, info.Name, script); found {
			issues = append(issues, issue)
		}
	}
	return issues, nil
}

// checkSyntax runs `node --check` for JavaScript hooks. Other script types
// are not checked.
func (m *Manager) checkSyntax(ctx context.Context, name, script string) (types.Issue, bool) {
	if !strings.HasSuffix(script, ".js") && !strings.HasSuffix(script, ".mjs") {
		return types.Issue{}, false
	}
	if _, err := exec.LookPath("node"); err != nil {
		return types.Issue{}, false
	}

	ctx, cancel := context.WithTimeout(ctx, syntaxCheckTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, "node", "--check", script).CombinedOutput()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return types.Issue{
			Kind:    types.KindHook,
			Item:    name,
			Code:    types.CodeCheckTimeout,
			Problem: fmt.Sprintf("syntax check of %s timed out", script),
			Fix:     "check the script manually",
		}, true
	}
	if err != nil {
		detail := strings.TrimSpace(string(out))
		if len(detail) > 200 {
			detail = detail[:200]
		}
		return types.Issue{
			Kind:    types.KindHook,
			Item:    name,
			Code:    types.CodeSyntaxError,
			Problem: fmt.Sprintf("script %s fails syntax check: %s", script, detail),
			Fix:     "fix the script",
		}, true
	}
	return types.Issue{}, false
}

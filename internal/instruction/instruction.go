// Package instruction manages instruction files: markdown documents whose
// YAML frontmatter carries identity, keywords, priority, and the enabled
// intent. The file itself is the only store; there is no separate
// registry to drift from.
package instruction

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/steward/internal/fsio"
	"github.com/mesh-intelligence/steward/internal/paths"
	"github.com/mesh-intelligence/steward/internal/reconcile"
	"github.com/mesh-intelligence/steward/pkg/types"
)

const (
	frontmatterDelim = "---"

	// defaultReadPriority applies to files that omit priority; they sort
	// after most explicitly prioritized instructions.
	defaultReadPriority = 50
	// defaultAddPriority applies to newly added instructions.
	defaultAddPriority = 10
)

// Info is one instruction file with its parsed header and derived status.
type Info struct {
	types.InstructionMeta
	File   string
	Status types.Status
}

// Manager owns the instructions directory.
type Manager struct {
	paths paths.Paths
	log   *zap.Logger
}

// NewManager builds an instruction Manager.
func NewManager(p paths.Paths, log *zap.Logger) *Manager {
	return &Manager{paths: p, log: log}
}

// rawMeta mirrors InstructionMeta with a pointer priority so an absent
// field is distinguishable from zero.
type rawMeta struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Enabled  *bool    `yaml:"enabled"`
	Priority *int     `yaml:"priority"`
}

// ParseFile splits an instruction file into header and body. A file
// without a frontmatter block returns ok=false and is still listed, as
// no-frontmatter.
func ParseFile(data []byte) (meta types.InstructionMeta, body string, ok bool) {
	text := string(data)
	if !strings.HasPrefix(text, frontmatterDelim+"\n") {
		return meta, text, false
	}
	rest := text[len(frontmatterDelim)+1:]
	end := strings.Index(rest, "\n"+frontmatterDelim)
	if end < 0 {
		return meta, text, false
	}
	header := rest[:end]
	body = rest[end+len(frontmatterDelim)+1:]
	// Drop the delimiter line's newline and one separating blank line.
	body = strings.TrimPrefix(body, "\n")
	body = strings.TrimPrefix(body, "\n")

	var raw rawMeta
	if err := yaml.Unmarshal([]byte(header), &raw); err != nil {
		return meta, text, false
	}
	meta = types.InstructionMeta{
		ID:       raw.ID,
		Name:     raw.Name,
		Keywords: raw.Keywords,
		Enabled:  raw.Enabled == nil || *raw.Enabled,
		Priority: defaultReadPriority,
	}
	if raw.Priority != nil {
		meta.Priority = *raw.Priority
	}
	return meta, body, true
}

// RenderFile serializes a header and body back into file form.
func RenderFile(meta types.InstructionMeta, body string) ([]byte, error) {
	header, err := yaml.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("encoding frontmatter: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString(frontmatterDelim + "\n")
	buf.Write(header)
	buf.WriteString(frontmatterDelim + "\n\n")
	buf.WriteString(strings.TrimLeft(body, "\n"))
	if !strings.HasSuffix(buf.String(), "\n") {
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// List parses every .md file in the instructions dir, sorted by filename.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.paths.InstructionsDir())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var infos []Info
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		path := filepath.Join(m.paths.InstructionsDir(), e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		meta, _, ok := ParseFile(data)
		infos = append(infos, Info{
			InstructionMeta: meta,
			File:            e.Name(),
			Status:          reconcile.InstructionStatus(ok, meta.Enabled),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].File < infos[j].File })
	return infos, nil
}

func (m *Manager) findByID(id string) (*Info, error) {
	infos, err := m.List()
	if err != nil {
		return nil, err
	}
	for i := range infos {
		if infos[i].ID == id {
			return &infos[i], nil
		}
	}
	return nil, nil
}

// Add writes a new instruction file named <id>.md. An existing file with
// that name is a refusal, not an overwrite.
func (m *Manager) Add(id, name string, keywords []string, body string, priority int) (types.Result, error) {
	if id == "" {
		return types.Fail("instruction id is required"), nil
	}
	if len(keywords) == 0 {
		return types.Fail("at least one keyword is required"), nil
	}
	if name == "" {
		name = id
	}
	if priority == 0 {
		priority = defaultAddPriority
	}

	path := filepath.Join(m.paths.InstructionsDir(), id+".md")
	if _, err := os.Stat(path); err == nil {
		return types.Fail(fmt.Sprintf("instruction file %s.md already exists", id)), nil
	}
	if existing, err := m.findByID(id); err != nil {
		return types.Result{}, err
	} else if existing != nil {
		return types.Fail(fmt.Sprintf("instruction id %q already used by %s", id, existing.File)), nil
	}

	data, err := RenderFile(types.InstructionMeta{
		ID:       id,
		Name:     name,
		Keywords: keywords,
		Enabled:  true,
		Priority: priority,
	}, body)
	if err != nil {
		return types.Result{}, err
	}
	if err := fsio.WriteFileAtomic(path, data, 0o644); err != nil {
		return types.Result{}, err
	}
	m.log.Info("instruction added", zap.String("instruction", id))
	return types.OK(fmt.Sprintf("added instruction %q", id)), nil
}

// Remove archives the instruction file.
func (m *Manager) Remove(id string) (types.Result, error) {
	info, err := m.findByID(id)
	if err != nil {
		return types.Result{}, err
	}
	if info == nil {
		return types.Fail(fmt.Sprintf("instruction %q not found", id)), nil
	}
	path := filepath.Join(m.paths.InstructionsDir(), info.File)
	dst, err := fsio.Archive(path, m.paths.ArchiveDir(), "removed")
	if err != nil {
		return types.Result{}, err
	}
	m.log.Info("instruction removed", zap.String("instruction", id))
	return types.OK(fmt.Sprintf("removed instruction %q, archived to %s", id, dst)), nil
}

func (m *Manager) setEnabled(id string, enabled bool) (types.Result, error) {
	info, err := m.findByID(id)
	if err != nil {
		return types.Result{}, err
	}
	if info == nil {
		return types.Fail(fmt.Sprintf("instruction %q not found", id)), nil
	}
	verb := "disabled"
	if enabled {
		verb = "enabled"
	}
	if info.Enabled == enabled {
		return types.OK(fmt.Sprintf("instruction %q already %s", id, verb)), nil
	}

	path := filepath.Join(m.paths.InstructionsDir(), info.File)
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Result{}, err
	}
	meta, body, ok := ParseFile(data)
	if !ok {
		return types.Fail(fmt.Sprintf("instruction %q has no parseable frontmatter", id)), nil
	}
	meta.Enabled = enabled
	out, err := RenderFile(meta, body)
	if err != nil {
		return types.Result{}, err
	}
	if err := fsio.WriteFileAtomic(path, out, 0o644); err != nil {
		return types.Result{}, err
	}
	m.log.Info("instruction "+verb, zap.String("instruction", id))
	return types.OK(fmt.Sprintf("%s instruction %q", verb, id)), nil
}

// Enable marks the instruction enabled in its frontmatter.
func (m *Manager) Enable(id string) (types.Result, error) { return m.setEnabled(id, true) }

// Disable marks the instruction disabled in its frontmatter.
func (m *Manager) Disable(id string) (types.Result, error) { return m.setEnabled(id, false) }

// Get returns the body of the instruction, or ok=false if unknown.
func (m *Manager) Get(id string) (Info, string, bool, error) {
	info, err := m.findByID(id)
	if err != nil || info == nil {
		return Info{}, "", false, err
	}
	data, err := os.ReadFile(filepath.Join(m.paths.InstructionsDir(), info.File))
	if err != nil {
		return Info{}, "", false, err
	}
	_, body, _ := ParseFile(data)
	return *info, body, true, nil
}

// Match returns the enabled instructions whose keywords appear in the
// prompt, ordered by ascending priority then id. Matching is
// case-insensitive substring containment.
func (m *Manager) Match(prompt string) ([]Info, error) {
	infos, err := m.List()
	if err != nil {
		return nil, err
	}
	lowered := strings.ToLower(prompt)

	var matched []Info
	for _, info := range infos {
		if info.Status != types.StatusManaged {
			continue
		}
		for _, kw := range info.Keywords {
			if kw != "" && strings.Contains(lowered, strings.ToLower(kw)) {
				matched = append(matched, info)
				break
			}
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Priority != matched[j].Priority {
			return matched[i].Priority < matched[j].Priority
		}
		return matched[i].ID < matched[j].ID
	})
	return matched, nil
}

// Verify checks every instruction file and returns the issues found.
func (m *Manager) Verify() ([]types.Issue, error) {
	infos, err := m.List()
	if err != nil {
		return nil, err
	}

	var issues []types.Issue
	byID := map[string]string{}
	for _, info := range infos {
		if info.Status == types.StatusNoFrontmatter {
			issues = append(issues, types.Issue{
				Kind:    types.KindInstruction,
				Item:    info.File,
				Code:    types.CodeNoFrontmatter,
				Problem: "file has no parseable frontmatter header",
				Fix:     "add an id/name/keywords header",
			})
			continue
		}
		var missing []string
		if info.ID == "" {
			missing = append(missing, "id")
		}
		if info.Name == "" {
			missing = append(missing, "name")
		}
		if len(info.Keywords) == 0 {
			missing = append(missing, "keywords")
		}
		if len(missing) > 0 {
			issues = append(issues, types.Issue{
				Kind:    types.KindInstruction,
				Item:    info.File,
				Code:    types.CodeMissingFields,
				Problem: "header missing required fields: " + strings.Join(missing, ", "),
				Fix:     "fill in the missing fields",
			})
		}
		if info.ID != "" {
			if other, ok := byID[info.ID]; ok {
				issues = append(issues, types.Issue{
					Kind:    types.KindInstruction,
					Item:    info.File,
					Code:    types.CodeDuplicateID,
					Problem: fmt.Sprintf("id %q already used by %s", info.ID, other),
					Fix:     "give one of the files a new id",
				})
			} else {
				byID[info.ID] = info.File
			}
		}
	}
	return issues, nil
}

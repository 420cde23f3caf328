// Package doctor runs verification across every resource kind, explains
// what it finds, and repairs the narrow class of issues that are safe to
// fix without operator judgment: stale registry entries and unregistered
// items. Everything else is reported with a suggested fix.
package doctor

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/steward/internal/capability"
	"github.com/mesh-intelligence/steward/internal/hook"
	"github.com/mesh-intelligence/steward/internal/instruction"
	"github.com/mesh-intelligence/steward/internal/paths"
	"github.com/mesh-intelligence/steward/internal/server"
	"github.com/mesh-intelligence/steward/internal/settings"
	"github.com/mesh-intelligence/steward/pkg/types"
)

// Outcome is one issue plus what the doctor did about it.
type Outcome struct {
	types.Issue
	Fixed     bool
	FixResult string
}

// Report is the result of a doctor run.
type Report struct {
	Outcomes []Outcome
	Checked  int
}

// FixedCount returns how many issues were repaired.
func (r Report) FixedCount() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Fixed {
			n++
		}
	}
	return n
}

// Doctor composes the per-kind managers.
type Doctor struct {
	paths        paths.Paths
	hooks        *hook.Manager
	capabilities *capability.Manager
	servers      *server.Manager
	instructions *instruction.Manager
	log          *zap.Logger
}

// New builds a Doctor over the given managers.
func New(p paths.Paths, hooks *hook.Manager, caps *capability.Manager,
	servers *server.Manager, instructions *instruction.Manager, log *zap.Logger) *Doctor {
	return &Doctor{
		paths:        p,
		hooks:        hooks,
		capabilities: caps,
		servers:      servers,
		instructions: instructions,
		log:          log,
	}
}

// Run verifies every kind. With fix set, auto-fixable issues are repaired
// in the same pass and their outcomes marked.
func (d *Doctor) Run(ctx context.Context, fix bool) (*Report, error) {
	var issues []types.Issue

	hookIssues, err := d.hooks.Verify(ctx)
	if err != nil {
		return nil, err
	}
	issues = append(issues, hookIssues...)

	capIssues, err := d.capabilities.Verify()
	if err != nil {
		return nil, err
	}
	issues = append(issues, capIssues...)

	srvIssues, err := d.servers.Verify()
	if err != nil {
		return nil, err
	}
	issues = append(issues, srvIssues...)

	insIssues, err := d.instructions.Verify()
	if err != nil {
		return nil, err
	}
	issues = append(issues, insIssues...)

	report := &Report{Checked: d.countChecked()}
	for _, issue := range issues {
		outcome := Outcome{Issue: issue}
		if fix && issue.Code.AutoFixable() {
			msg, fixErr := d.applyFix(issue)
			switch {
			case fixErr != nil:
				// One failed repair must not abort the batch; the
				// outcome carries the failure instead.
				outcome.FixResult = "fix failed: " + fixErr.Error()
				d.log.Warn("issue repair failed",
					zap.String("kind", string(issue.Kind)),
					zap.String("item", issue.Item),
					zap.String("code", string(issue.Code)),
					zap.Error(fixErr))
			case msg != "":
				outcome.Fixed = true
				outcome.FixResult = msg
				d.log.Info("issue repaired",
					zap.String("kind", string(issue.Kind)),
					zap.String("item", issue.Item),
					zap.String("code", string(issue.Code)))
			}
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}
	return report, nil
}

func (d *Doctor) countChecked() int {
	n := 0
	if infos, err := d.hooks.List(); err == nil {
		n += len(infos)
	}
	if infos, err := d.capabilities.List(); err == nil {
		n += len(infos)
	}
	if infos, err := d.servers.List(); err == nil {
		n += len(infos)
	}
	if infos, err := d.instructions.List(); err == nil {
		n += len(infos)
	}
	return n
}

// applyFix repairs a single auto-fixable issue. Repairs only ever move
// state toward agreement between the stores: remove a registry entry with
// no backing, or register something observed live or on disk. Nothing is
// enabled, disabled, or deleted from a live store here.
func (d *Doctor) applyFix(issue types.Issue) (string, error) {
	switch {
	case issue.Kind == types.KindHook && issue.Code == types.CodeStaleRegistry:
		if err := d.hooks.RemoveEntry(issue.Item); err != nil {
			return "", err
		}
		return fmt.Sprintf("removed stale registry entry %q", issue.Item), nil

	case issue.Kind == types.KindHook && issue.Code == types.CodeOrphanedLive:
		flat, ok, err := d.findLive(issue.Item)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", nil
		}
		name, err := d.hooks.RegisterFromLive(flat)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("registered hook %q from the live store", name), nil

	case issue.Kind == types.KindCapability && issue.Code == types.CodeStaleRegistry:
		if err := d.capabilities.RemoveEntry(issue.Item); err != nil {
			return "", err
		}
		return fmt.Sprintf("removed stale registry entry %q", issue.Item), nil

	case issue.Kind == types.KindCapability && issue.Code == types.CodeOrphanedDisk:
		if err := d.capabilities.Register(issue.Item); err != nil {
			return "", err
		}
		return fmt.Sprintf("registered capability %q (disabled until enabled)", issue.Item), nil
	}
	return "", nil
}

// findLive locates the live-store hook whose derived name matches item.
func (d *Doctor) findLive(item string) (settings.Flat, bool, error) {
	doc, err := settings.Load(d.paths.SettingsFile())
	if err != nil {
		return settings.Flat{}, false, err
	}
	for _, f := range doc.Flatten() {
		if hook.DeriveName(f.Command) == item {
			return f, true, nil
		}
	}
	return settings.Flat{}, false, nil
}

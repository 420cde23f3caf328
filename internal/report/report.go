// Package report renders a markdown snapshot of everything steward
// manages: one table per resource kind with derived statuses, written
// under the state directory's reports dir.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/mesh-intelligence/steward/internal/capability"
	"github.com/mesh-intelligence/steward/internal/fsio"
	"github.com/mesh-intelligence/steward/internal/hook"
	"github.com/mesh-intelligence/steward/internal/instruction"
	"github.com/mesh-intelligence/steward/internal/paths"
	"github.com/mesh-intelligence/steward/internal/server"
)

// Generator renders configuration reports.
type Generator struct {
	paths        paths.Paths
	hooks        *hook.Manager
	capabilities *capability.Manager
	servers      *server.Manager
	instructions *instruction.Manager
}

// New builds a report Generator.
func New(p paths.Paths, hooks *hook.Manager, caps *capability.Manager,
	servers *server.Manager, instructions *instruction.Manager) *Generator {
	return &Generator{
		paths:        p,
		hooks:        hooks,
		capabilities: caps,
		servers:      servers,
		instructions: instructions,
	}
}

// Generate writes the report and returns its path.
func (g *Generator) Generate() (string, error) {
	md, err := g.Render(time.Now())
	if err != nil {
		return "", err
	}
	path := g.paths.ReportFile()
	if err := fsio.WriteFileAtomic(path, []byte(md), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// Render builds the report text without writing it.
func (g *Generator) Render(now time.Time) (string, error) {
	hooks, err := g.hooks.List()
	if err != nil {
		return "", err
	}
	caps, err := g.capabilities.List()
	if err != nil {
		return "", err
	}
	servers, err := g.servers.List()
	if err != nil {
		return "", err
	}
	instructions, err := g.instructions.List()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Configuration Report\n\n")
	fmt.Fprintf(&b, "Generated %s\n\n", now.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Host dir: `%s`\n\n", g.paths.HostDir)
	fmt.Fprintf(&b, "%d hooks, %d capabilities, %d servers, %d instructions\n\n",
		len(hooks), len(caps), len(servers), len(instructions))

	b.WriteString("## Hooks\n\n")
	if len(hooks) == 0 {
		b.WriteString("None.\n\n")
	} else {
		b.WriteString("| Name | Event | Matcher | Status |\n|---|---|---|---|\n")
		for _, h := range hooks {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", h.Name, h.Event, dash(h.Matcher), h.Status)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Capabilities\n\n")
	if len(caps) == 0 {
		b.WriteString("None.\n\n")
	} else {
		b.WriteString("| ID | Keywords | Status |\n|---|---|---|\n")
		for _, c := range caps {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", c.ID, dash(strings.Join(c.Keywords, ", ")), c.Status)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Servers\n\n")
	if len(servers) == 0 {
		b.WriteString("None.\n\n")
	} else {
		b.WriteString("| Name | Command | Status |\n|---|---|---|\n")
		for _, s := range servers {
			target := s.Command
			if target == "" {
				target = s.URL
			}
			fmt.Fprintf(&b, "| %s | %s | %s |\n", s.Name, dash(target), s.Status)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Instructions\n\n")
	if len(instructions) == 0 {
		b.WriteString("None.\n\n")
	} else {
		b.WriteString("| ID | Priority | Keywords | Status |\n|---|---|---|---|\n")
		for _, i := range instructions {
			fmt.Fprintf(&b, "| %s | %d | %s | %s |\n",
				dash(i.ID), i.Priority, dash(strings.Join(i.Keywords, ", ")), i.Status)
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

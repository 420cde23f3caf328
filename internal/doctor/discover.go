package doctor

import (
	"go.uber.org/zap"

	"github.com/mesh-intelligence/steward/internal/hook"
	"github.com/mesh-intelligence/steward/internal/settings"
)

// Discovery lists what a discovery pass found unregistered, and what it
// registered.
type Discovery struct {
	Hooks        []string
	Capabilities []string
	ReportOnly   bool
}

// Empty reports whether discovery found nothing unregistered.
func (d Discovery) Empty() bool {
	return len(d.Hooks) == 0 && len(d.Capabilities) == 0
}

// Discover finds live-store hooks and on-disk capabilities that the
// registries do not know about. Unless reportOnly is set, each finding is
// registered on the spot: hooks mirror their live entry with managed left
// false, capabilities start disabled. A second pass over the same state
// finds nothing.
func (d *Doctor) Discover(reportOnly bool) (*Discovery, error) {
	disc := &Discovery{ReportOnly: reportOnly}

	reg, err := d.hooks.LoadRegistry()
	if err != nil {
		return nil, err
	}
	registered := map[string]bool{}
	regCommands := map[string]bool{}
	for _, rec := range reg.Hooks {
		registered[rec.Name] = true
		regCommands[rec.Command] = true
	}
	doc, err := settings.Load(d.paths.SettingsFile())
	if err != nil {
		return nil, err
	}
	for _, f := range doc.Flatten() {
		// A record under an operator-chosen name still covers its live
		// command, so match by command as well as by derived name.
		if regCommands[f.Command] {
			continue
		}
		name := hook.DeriveName(f.Command)
		if registered[name] {
			continue
		}
		registered[name] = true
		disc.Hooks = append(disc.Hooks, name)
		if reportOnly {
			continue
		}
		if _, err := d.hooks.RegisterFromLive(f); err != nil {
			return nil, err
		}
	}

	capReg, err := d.capabilities.LoadRegistry()
	if err != nil {
		return nil, err
	}
	known := map[string]bool{}
	for _, rec := range capReg.Capabilities {
		known[rec.ID] = true
	}
	diskIDs, err := d.capabilities.ScanDisk()
	if err != nil {
		return nil, err
	}
	for _, id := range diskIDs {
		if known[id] {
			continue
		}
		disc.Capabilities = append(disc.Capabilities, id)
		if reportOnly {
			continue
		}
		if err := d.capabilities.Register(id); err != nil {
			return nil, err
		}
	}

	if !reportOnly && !disc.Empty() {
		d.log.Info("discovery registered resources",
			zap.Strings("hooks", disc.Hooks),
			zap.Strings("capabilities", disc.Capabilities))
	}
	return disc, nil
}

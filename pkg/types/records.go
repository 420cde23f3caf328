package types

import "time"

// HookRecord is a hook's registry entry. The Key is a stable generated id
// assigned at creation; the free-text command is an attribute, not the
// identity source. Name stays the human-facing join key between registry
// and live store.
type HookRecord struct {
	Key         string `json:"key,omitempty"`
	Name        string `json:"name"`
	Event       string `json:"event"`
	Matcher     string `json:"matcher,omitempty"`
	Async       bool   `json:"async,omitempty"`
	Managed     bool   `json:"managed"`
	Description string `json:"description,omitempty"`
	Command     string `json:"command"`
}

// CapabilityRecord is a capability's registry entry. Path points at the
// descriptor file; the capability is "on disk" when that file exists or a
// same-named directory holds a descriptor.
type CapabilityRecord struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Keywords []string `json:"keywords,omitempty"`
	Path     string   `json:"path,omitempty"`
	Enabled  bool     `json:"enabled"`
}

// ServerEntry is one server's configuration in the server store. The store
// is both live store and registry for this kind. Command and URL are
// mutually informative: a url-only entry has nothing to start or stop.
type ServerEntry struct {
	Description string   `yaml:"description,omitempty"`
	Command     string   `yaml:"command,omitempty"`
	Args        []string `yaml:"args,omitempty,flow"`
	Tags        []string `yaml:"tags,omitempty,flow"`
	Enabled     bool     `yaml:"enabled"`
	AutoStart   bool     `yaml:"auto_start,omitempty"`
	URL         string   `yaml:"url,omitempty"`
}

// InstructionMeta is the frontmatter header of an instruction file.
type InstructionMeta struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords,flow"`
	Enabled  bool     `yaml:"enabled"`
	Priority int      `yaml:"priority"`
}

// ProcessRecord tracks one running server subprocess across CLI
// invocations. It stands in for process memory: if the pid is no longer
// alive at read time the record is stale and removed lazily.
type ProcessRecord struct {
	PID       int       `json:"pid"`
	StartedAt time.Time `json:"started_at"`
}

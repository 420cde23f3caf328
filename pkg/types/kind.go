package types

// Kind identifies a resource kind managed by steward.
type Kind string

// Resource kinds.
const (
	KindHook        Kind = "hook"
	KindCapability  Kind = "capability"
	KindServer      Kind = "server"
	KindInstruction Kind = "instruction"
)

// Kinds lists every resource kind in display order.
var Kinds = []Kind{KindHook, KindCapability, KindServer, KindInstruction}

// Status is the canonical state of a resource, derived on every read from
// (liveState, registryState, enabledIntent). It is never persisted.
type Status string

// Derived statuses. Not every status applies to every kind; see the
// per-kind classification functions in internal/reconcile.
const (
	// StatusActive: hook present in the live store (host runs it).
	StatusActive Status = "active"
	// StatusRegistered: known to the registry but not currently active.
	StatusRegistered Status = "registered"
	// StatusOrphanedLive: present in the live store with no registry entry.
	StatusOrphanedLive Status = "orphaned-live"
	// StatusHealthy: capability registered, on disk, and enabled.
	StatusHealthy Status = "healthy"
	// StatusDisabled: registered and on disk but enabled=false.
	StatusDisabled Status = "disabled"
	// StatusOrphanedRegistry: registry entry whose backing file is gone.
	StatusOrphanedRegistry Status = "orphaned-registry"
	// StatusOrphanedDisk: on disk with no registry entry.
	StatusOrphanedDisk Status = "orphaned-disk"
	// StatusManaged: registry entry enabled (server/instruction kinds).
	StatusManaged Status = "managed"
	// StatusNoFrontmatter: instruction file without a parseable header.
	StatusNoFrontmatter Status = "no-frontmatter"
)

// Package reconcile derives resource status from observed state. Status is
// never stored: every classification here is a pure function of what the
// live store, the registry, and the enabled intent say right now, so two
// stores can never disagree about it.
package reconcile

import "github.com/mesh-intelligence/steward/pkg/types"

// HookStatus classifies a hook from its presence in the live store and the
// registry. A hook in neither store does not exist and is never classified.
func HookStatus(inLive, inRegistry bool) types.Status {
	switch {
	case inLive && !inRegistry:
		return types.StatusOrphanedLive
	case inLive:
		return types.StatusActive
	default:
		return types.StatusRegistered
	}
}

// CapabilityStatus classifies a capability from its registry entry, its
// on-disk presence, and its enabled intent.
func CapabilityStatus(onDisk, inRegistry, enabled bool) types.Status {
	switch {
	case onDisk && !inRegistry:
		return types.StatusOrphanedDisk
	case !onDisk && inRegistry:
		return types.StatusOrphanedRegistry
	case enabled:
		return types.StatusHealthy
	default:
		return types.StatusDisabled
	}
}

// ServerStatus classifies a server entry. The server store is its own
// registry, so only the enabled intent matters here; runtime liveness is a
// supervisor concern, not a status.
func ServerStatus(enabled bool) types.Status {
	if enabled {
		return types.StatusManaged
	}
	return types.StatusDisabled
}

// InstructionStatus classifies an instruction file from the parseability
// of its header and its enabled intent.
func InstructionStatus(wellFormed, enabled bool) types.Status {
	switch {
	case !wellFormed:
		return types.StatusNoFrontmatter
	case enabled:
		return types.StatusManaged
	default:
		return types.StatusDisabled
	}
}

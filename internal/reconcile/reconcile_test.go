package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mesh-intelligence/steward/pkg/types"
)

func TestHookStatus(t *testing.T) {
	tests := []struct {
		name       string
		inLive     bool
		inRegistry bool
		want       types.Status
	}{
		{"live and registered is active", true, true, types.StatusActive},
		{"live only is orphaned-live", true, false, types.StatusOrphanedLive},
		{"registry only is registered", false, true, types.StatusRegistered},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HookStatus(tt.inLive, tt.inRegistry))
		})
	}
}

func TestCapabilityStatus(t *testing.T) {
	tests := []struct {
		name       string
		onDisk     bool
		inRegistry bool
		enabled    bool
		want       types.Status
	}{
		{"disk and registry enabled is healthy", true, true, true, types.StatusHealthy},
		{"disk and registry disabled is disabled", true, true, false, types.StatusDisabled},
		{"disk only is orphaned-disk", true, false, false, types.StatusOrphanedDisk},
		{"disk only enabled flag ignored", true, false, true, types.StatusOrphanedDisk},
		{"registry only is orphaned-registry", false, true, true, types.StatusOrphanedRegistry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CapabilityStatus(tt.onDisk, tt.inRegistry, tt.enabled))
		})
	}
}

func TestServerStatus(t *testing.T) {
	assert.Equal(t, types.StatusManaged, ServerStatus(true))
	assert.Equal(t, types.StatusDisabled, ServerStatus(false))
}

func TestInstructionStatus(t *testing.T) {
	assert.Equal(t, types.StatusNoFrontmatter, InstructionStatus(false, true))
	assert.Equal(t, types.StatusManaged, InstructionStatus(true, true))
	assert.Equal(t, types.StatusDisabled, InstructionStatus(true, false))
}

// Flipping one observed input always changes the classification; status is
// a function of the inputs alone.
func TestClassificationIsDeterministic(t *testing.T) {
	for _, live := range []bool{true, false} {
		for _, reg := range []bool{true, false} {
			if !live && !reg {
				continue
			}
			first := HookStatus(live, reg)
			assert.Equal(t, first, HookStatus(live, reg))
		}
	}
}

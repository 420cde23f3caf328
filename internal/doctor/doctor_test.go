package doctor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/steward/internal/capability"
	"github.com/mesh-intelligence/steward/internal/hook"
	"github.com/mesh-intelligence/steward/internal/instruction"
	"github.com/mesh-intelligence/steward/internal/paths"
	"github.com/mesh-intelligence/steward/internal/server"
	"github.com/mesh-intelligence/steward/internal/settings"
	"github.com/mesh-intelligence/steward/pkg/types"
)

type fixture struct {
	doctor       *Doctor
	paths        paths.Paths
	hooks        *hook.Manager
	capabilities *capability.Manager
	servers      *server.Manager
	instructions *instruction.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	p := paths.Paths{HostDir: root, BaseDir: filepath.Join(root, "steward")}
	log := zap.NewNop()
	f := &fixture{
		paths:        p,
		hooks:        hook.NewManager(p, log),
		capabilities: capability.NewManager(p, log),
		servers:      server.NewManager(p, log),
		instructions: instruction.NewManager(p, log),
	}
	f.doctor = New(p, f.hooks, f.capabilities, f.servers, f.instructions, log)
	return f
}

func (f *fixture) writeCapability(t *testing.T, id string) {
	t.Helper()
	dir := filepath.Join(f.paths.CapabilitiesDir(), id)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "CAPABILITY.md"), []byte("# "+id), 0o644))
}

func (f *fixture) addLiveHook(t *testing.T, command string) {
	t.Helper()
	doc, err := settings.Load(f.paths.SettingsFile())
	require.NoError(t, err)
	doc.AddCommand("Stop", "", command, false)
	require.NoError(t, settings.Save(f.paths.SettingsFile(), doc))
}

func TestRun_CleanState(t *testing.T) {
	f := newFixture(t)
	report, err := f.doctor.Run(context.Background(), false)
	require.NoError(t, err)
	assert.Empty(t, report.Outcomes)
	assert.Zero(t, report.FixedCount())
}

func TestRun_ReportWithoutFix(t *testing.T) {
	f := newFixture(t)
	f.writeCapability(t, "stray")

	report, err := f.doctor.Run(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, types.CodeOrphanedDisk, report.Outcomes[0].Code)
	assert.False(t, report.Outcomes[0].Fixed)

	// Nothing changed without fix.
	reg, err := f.capabilities.LoadRegistry()
	require.NoError(t, err)
	assert.Empty(t, reg.Capabilities)
}

func TestRun_FixStaleCapabilityEntry(t *testing.T) {
	f := newFixture(t)
	_, err := f.capabilities.Add("ghost", "", nil, true)
	require.NoError(t, err)

	report, err := f.doctor.Run(context.Background(), true)
	require.NoError(t, err)
	require.Equal(t, 1, report.FixedCount())

	reg, err := f.capabilities.LoadRegistry()
	require.NoError(t, err)
	assert.Empty(t, reg.Capabilities)
}

func TestRun_FixRegistersOrphans(t *testing.T) {
	f := newFixture(t)
	f.writeCapability(t, "stray")
	f.addLiveHook(t, "node /x/rogue.js")

	report, err := f.doctor.Run(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 2, report.FixedCount())

	capReg, err := f.capabilities.LoadRegistry()
	require.NoError(t, err)
	require.Len(t, capReg.Capabilities, 1)
	assert.False(t, capReg.Capabilities[0].Enabled)

	hookReg, err := f.hooks.LoadRegistry()
	require.NoError(t, err)
	require.Len(t, hookReg.Hooks, 1)
	assert.Equal(t, "rogue", hookReg.Hooks[0].Name)
	assert.False(t, hookReg.Hooks[0].Managed)

	// Second run finds nothing left to fix.
	report, err = f.doctor.Run(context.Background(), true)
	require.NoError(t, err)
	assert.Zero(t, report.FixedCount())
}

func TestRun_DoesNotTouchRegisteredHooks(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.MkdirAll(f.paths.HooksDir(), 0o755))
	script := filepath.Join(f.paths.HooksDir(), "fmt.sh")
	require.NoError(t, os.WriteFile(script, []byte("echo"), 0o755))

	_, err := f.hooks.Add("", "Stop", "", "bash "+script, "", false)
	require.NoError(t, err)
	res, err := f.hooks.Disable("fmt")
	require.NoError(t, err)
	require.True(t, res.Success)

	// A registered-but-inactive hook with an existing script is not an
	// issue: being disabled may be intentional.
	report, err := f.doctor.Run(context.Background(), true)
	require.NoError(t, err)
	assert.Empty(t, report.Outcomes)

	reg, err := f.hooks.LoadRegistry()
	require.NoError(t, err)
	assert.Len(t, reg.Hooks, 1)
}

func TestDiscover(t *testing.T) {
	t.Run("report only changes nothing", func(t *testing.T) {
		f := newFixture(t)
		f.writeCapability(t, "stray")
		f.addLiveHook(t, "node /x/rogue.js")

		disc, err := f.doctor.Discover(true)
		require.NoError(t, err)
		assert.Equal(t, []string{"rogue"}, disc.Hooks)
		assert.Equal(t, []string{"stray"}, disc.Capabilities)

		reg, err := f.capabilities.LoadRegistry()
		require.NoError(t, err)
		assert.Empty(t, reg.Capabilities)
	})

	t.Run("registers and is idempotent", func(t *testing.T) {
		f := newFixture(t)
		f.writeCapability(t, "stray")
		f.addLiveHook(t, "node /x/rogue.js")

		disc, err := f.doctor.Discover(false)
		require.NoError(t, err)
		assert.False(t, disc.Empty())

		disc, err = f.doctor.Discover(false)
		require.NoError(t, err)
		assert.True(t, disc.Empty())
	})
}

func TestRun_FixFailureDoesNotAbortBatch(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission-based write failure does not apply to root")
	}
	f := newFixture(t)
	_, err := f.capabilities.Add("ghost", "", nil, true)
	require.NoError(t, err)
	f.writeCapability(t, "stray")

	// Both repairs write the capability registry; a read-only registries
	// dir makes every one of them fail.
	regDir := f.paths.RegistriesDir()
	require.NoError(t, os.Chmod(regDir, 0o555))
	t.Cleanup(func() { _ = os.Chmod(regDir, 0o755) })

	report, err := f.doctor.Run(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, report.Outcomes, 2)
	assert.Zero(t, report.FixedCount())
	for _, o := range report.Outcomes {
		assert.False(t, o.Fixed)
		assert.Contains(t, o.FixResult, "fix failed")
	}
}

func TestDiscover_CustomNamedHookNotReRegistered(t *testing.T) {
	f := newFixture(t)
	_, err := f.hooks.Add("my-notifier", "Stop", "", "node /x/notify.js", "", false)
	require.NoError(t, err)

	// The live command is covered by the record under the operator's
	// name, so discovery has nothing to register.
	disc, err := f.doctor.Discover(false)
	require.NoError(t, err)
	assert.True(t, disc.Empty())

	reg, err := f.hooks.LoadRegistry()
	require.NoError(t, err)
	require.Len(t, reg.Hooks, 1)
	assert.Equal(t, "my-notifier", reg.Hooks[0].Name)
}

func TestFindDuplicates(t *testing.T) {
	f := newFixture(t)
	_, err := f.capabilities.Add("pdf-tools", "", []string{"pdf", "extract", "convert"}, true)
	require.NoError(t, err)
	_, err = f.capabilities.Add("pdf_tools", "", nil, true)
	require.NoError(t, err)
	_, err = f.capabilities.Add("doc-convert", "", []string{"PDF", "Extract", "Convert", "docx"}, true)
	require.NoError(t, err)
	_, err = f.capabilities.Add("web-search", "", []string{"web", "search"}, true)
	require.NoError(t, err)

	pairs, err := f.doctor.FindDuplicates()
	require.NoError(t, err)

	reasons := map[string]string{}
	for _, pair := range pairs {
		reasons[pair.A+"|"+pair.B] = pair.Reason
	}
	assert.Contains(t, reasons, "pdf-tools|pdf_tools")
	assert.Contains(t, reasons["doc-convert|pdf-tools"], "share 3 keywords")
	assert.Len(t, pairs, 2)
}

func TestCompareDirs(t *testing.T) {
	f := newFixture(t)
	f.writeCapability(t, "rich")
	f.writeCapability(t, "thin")

	richDir := filepath.Join(f.paths.CapabilitiesDir(), "rich")
	require.NoError(t, os.WriteFile(filepath.Join(richDir, "README.md"), []byte("docs"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(richDir, "scripts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(richDir, "scripts", "run.sh"), []byte("echo"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(richDir, "tests"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(richDir, "tests", "check.sh"), []byte("true"), 0o755))

	cmp, err := f.doctor.CompareDirs("rich", "thin")
	require.NoError(t, err)

	assert.Equal(t, 4, cmp.A.Files)
	assert.True(t, cmp.A.HasReadme)
	assert.True(t, cmp.A.HasTests)
	assert.False(t, cmp.A.LastModified.IsZero())
	assert.Equal(t, 1, cmp.B.Files)
	assert.False(t, cmp.B.HasTests)
	assert.Contains(t, cmp.Recommendation, "rich")
}

func TestCompareDirs_RecencyBreaksTies(t *testing.T) {
	f := newFixture(t)
	f.writeCapability(t, "old1")
	f.writeCapability(t, "new1")

	past := time.Now().Add(-48 * time.Hour)
	oldFile := filepath.Join(f.paths.CapabilitiesDir(), "old1", "CAPABILITY.md")
	require.NoError(t, os.Chtimes(oldFile, past, past))

	// Identical content on both sides; the recently touched directory
	// wins.
	cmp, err := f.doctor.CompareDirs("old1", "new1")
	require.NoError(t, err)
	assert.Contains(t, cmp.Recommendation, "new1")
}

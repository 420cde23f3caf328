// Package paths resolves every file and directory location steward touches
// and bundles them into one explicit value. Components receive a Paths
// instead of consulting globals, so tests can point everything at a
// temporary directory.
package paths

import (
	"os"
	"path/filepath"
)

// Directory and file names under the host and base directories.
const (
	DefaultHostDirName = ".agent"
	BaseDirName        = "steward"

	settingsFileName = "settings.json"
	hooksDirName     = "hooks"
	capsDirName      = "capabilities"

	registriesDirName   = "registries"
	instructionsDirName = "instructions"
	archiveDirName      = "archive"
	logsDirName         = "logs"
	reportsDirName      = "reports"

	hookRegistryName = "hook-registry.json"
	capRegistryName  = "capability-registry.json"
	serversFileName  = "servers.yaml"
	trackingFileName = "servers.state.json"
	journalFileName  = "journal.db"
	reportFileName   = "config-report.md"
)

// Environment variable names for directory overrides.
const (
	EnvHostDir   = "STEWARD_HOST_DIR"
	EnvBaseDir   = "STEWARD_BASE_DIR"
	EnvConfigDir = "STEWARD_CONFIG_DIR"
)

// Paths holds the resolved locations of every store steward reads or
// writes. HostDir contains the live stores the agent host actually loads;
// BaseDir contains steward's own state (registries, instructions, archive,
// logs, reports, process tracking, journal).
type Paths struct {
	HostDir string
	BaseDir string
}

// Live stores (read by the host application).

// SettingsFile is the hook live store: the host's settings document.
func (p Paths) SettingsFile() string { return filepath.Join(p.HostDir, settingsFileName) }

// HooksDir holds hook script files.
func (p Paths) HooksDir() string { return filepath.Join(p.HostDir, hooksDirName) }

// CapabilitiesDir holds one directory per capability bundle.
func (p Paths) CapabilitiesDir() string { return filepath.Join(p.HostDir, capsDirName) }

// CapabilityDescriptor is the conventional descriptor path for a capability.
func (p Paths) CapabilityDescriptor(id string) string {
	return filepath.Join(p.CapabilitiesDir(), id, "CAPABILITY.md")
}

// Steward state (not read by the host).

func (p Paths) RegistriesDir() string { return filepath.Join(p.BaseDir, registriesDirName) }

func (p Paths) HookRegistry() string { return filepath.Join(p.RegistriesDir(), hookRegistryName) }

func (p Paths) CapabilityRegistry() string {
	return filepath.Join(p.RegistriesDir(), capRegistryName)
}

func (p Paths) ServersFile() string { return filepath.Join(p.BaseDir, serversFileName) }

func (p Paths) TrackingFile() string { return filepath.Join(p.BaseDir, trackingFileName) }

func (p Paths) InstructionsDir() string { return filepath.Join(p.BaseDir, instructionsDirName) }

func (p Paths) ArchiveDir() string { return filepath.Join(p.BaseDir, archiveDirName) }

func (p Paths) LogsDir() string { return filepath.Join(p.BaseDir, logsDirName) }

func (p Paths) ReportsDir() string { return filepath.Join(p.BaseDir, reportsDirName) }

func (p Paths) ReportFile() string { return filepath.Join(p.ReportsDir(), reportFileName) }

func (p Paths) JournalFile() string { return filepath.Join(p.BaseDir, journalFileName) }

// DefaultConfigDir returns the platform config directory for steward,
// e.g. ~/.config/steward on Linux.
func DefaultConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, BaseDirName), nil
}

// ResolveConfigDir returns the config directory following the precedence
// chain: flag > STEWARD_CONFIG_DIR env > platform default.
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// DefaultHostDir returns ~/.agent.
func DefaultHostDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultHostDirName), nil
}

// ResolveHostDir returns the host directory following the precedence chain:
// flag > config.yaml value > STEWARD_HOST_DIR env > default ~/.agent.
func ResolveHostDir(flag, configValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configValue != "" {
		return filepath.Abs(configValue)
	}
	if env := os.Getenv(EnvHostDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultHostDir()
}

// ResolveBaseDir returns steward's state directory following the precedence
// chain: flag > config.yaml value > STEWARD_BASE_DIR env > <hostDir>/steward.
func ResolveBaseDir(flag, configValue, hostDir string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configValue != "" {
		return filepath.Abs(configValue)
	}
	if env := os.Getenv(EnvBaseDir); env != "" {
		return filepath.Abs(env)
	}
	return filepath.Join(hostDir, BaseDirName), nil
}

// Resolve builds a Paths from flag and config values.
func Resolve(hostFlag, hostConfig, baseFlag, baseConfig string) (Paths, error) {
	hostDir, err := ResolveHostDir(hostFlag, hostConfig)
	if err != nil {
		return Paths{}, err
	}
	baseDir, err := ResolveBaseDir(baseFlag, baseConfig, hostDir)
	if err != nil {
		return Paths{}, err
	}
	return Paths{HostDir: hostDir, BaseDir: baseDir}, nil
}

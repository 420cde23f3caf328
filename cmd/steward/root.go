// Root command for the steward CLI.
package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/steward/internal/journal"
	"github.com/mesh-intelligence/steward/internal/logging"
	"github.com/mesh-intelligence/steward/internal/paths"
	"github.com/mesh-intelligence/steward/pkg/steward"
)

// Global flag values.
var (
	flagConfigDir string
	flagHostDir   string
	flagBaseDir   string
	flagVerbose   bool
)

// Process-wide state set up by PersistentPreRunE.
var (
	env  paths.Paths
	log  *zap.Logger
	jour *journal.Journal
)

var rootCmd = &cobra.Command{
	Use:           "steward",
	Short:         "Steward manages the resources an agent host loads",
	Version:       steward.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}

		configDir, err := paths.ResolveConfigDir(flagConfigDir)
		if err != nil {
			return err
		}
		cfg, err := loadConfig(configDir)
		if err != nil {
			return err
		}

		env, err = paths.Resolve(
			flagHostDir, cfg.GetString(cfgKeyHostDir),
			flagBaseDir, cfg.GetString(cfgKeyBaseDir),
		)
		if err != nil {
			return err
		}

		log, err = logging.New(env.LogsDir(), flagVerbose)
		if err != nil {
			return err
		}
		jour, err = journal.Open(env.JournalFile())
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
		if jour != nil {
			_ = jour.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: platform config dir)")
	rootCmd.PersistentFlags().StringVar(&flagHostDir, "host-dir", "", "agent host directory (default: ~/.agent)")
	rootCmd.PersistentFlags().StringVar(&flagBaseDir, "base-dir", "", "steward state directory (default: <host-dir>/steward)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose output and debug logging to stderr")

	// Flag parse failures are user errors, not infrastructure failures.
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return userError{err: err}
	})

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(hooksCmd)
	rootCmd.AddCommand(capabilitiesCmd)
	rootCmd.AddCommand(serversCmd)
	rootCmd.AddCommand(instructionsCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(duplicatesCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(journalCmd)
}

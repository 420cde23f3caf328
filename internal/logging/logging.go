// Package logging builds the process logger. Log output goes to a file
// under the state directory so command output stays clean for humans and
// scripts.
package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

const logFileName = "steward.log"

// New builds a production logger writing JSON lines to logsDir. Verbose
// lowers the level to debug and mirrors output to stderr.
func New(logsDir string, verbose bool) (*zap.Logger, error) {
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{filepath.Join(logsDir, logFileName)}
	cfg.ErrorOutputPaths = []string{filepath.Join(logsDir, logFileName)}
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		cfg.OutputPaths = append(cfg.OutputPaths, "stderr")
	}
	return cfg.Build()
}

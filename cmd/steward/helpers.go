// Shared helpers for steward CLI commands.
package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/mesh-intelligence/steward/internal/capability"
	"github.com/mesh-intelligence/steward/internal/doctor"
	"github.com/mesh-intelligence/steward/internal/hook"
	"github.com/mesh-intelligence/steward/internal/instruction"
	"github.com/mesh-intelligence/steward/internal/report"
	"github.com/mesh-intelligence/steward/internal/server"
	"github.com/mesh-intelligence/steward/internal/supervise"
	"github.com/mesh-intelligence/steward/pkg/types"
)

func hookManager() *hook.Manager { return hook.NewManager(env, log) }

func capabilityManager() *capability.Manager { return capability.NewManager(env, log) }

func serverManager() *server.Manager { return server.NewManager(env, log) }

func instructionManager() *instruction.Manager { return instruction.NewManager(env, log) }

func supervisor() *supervise.Supervisor {
	return supervise.New(env, serverManager(), log)
}

func newDoctor() *doctor.Doctor {
	return doctor.New(env, hookManager(), capabilityManager(), serverManager(), instructionManager(), log)
}

func newReporter() *report.Generator {
	return report.New(env, hookManager(), capabilityManager(), serverManager(), instructionManager())
}

// finish prints the result message and converts an expected failure into
// a command error. Successful mutations are journaled.
func finish(res types.Result, err error, kind types.Kind, item, op string) error {
	if err != nil {
		return err
	}
	if !res.Success {
		return failUser(res.Message)
	}
	fmt.Println(res.Message)
	record(kind, item, op, "")
	return nil
}

// record appends a journal row; journaling failures are logged, never
// fatal.
func record(kind types.Kind, item, op, detail string) {
	if jour == nil {
		return
	}
	if err := jour.Record(kind, item, op, detail); err != nil && log != nil {
		log.Warn("journal write failed")
	}
}

// printIssues renders verification issues for one kind, or an all-clear
// line.
func printIssues(issues []types.Issue, err error) error {
	if err != nil {
		return err
	}
	if len(issues) == 0 {
		fmt.Println("No issues found.")
		return nil
	}
	for _, issue := range issues {
		fmt.Printf("%s: %s\n    suggestion: %s\n", issue.Item, issue.Problem, issue.Fix)
	}
	fmt.Printf("\n%d issue(s).\n", len(issues))
	return nil
}

// newTable returns a tabwriter on stdout with the column headers printed.
func newTable(headers ...string) *tabwriter.Writer {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(headers, "\t"))
	return w
}

// onOff renders a boolean the way the tables expect.
func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

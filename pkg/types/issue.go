package types

// IssueCode is a closed enumeration of problem classes the doctor can
// report. Fix dispatch and explanations key off the code, never off the
// wording of the human message.
type IssueCode string

const (
	// CodeStaleRegistry: registry entry whose backing file no longer exists.
	CodeStaleRegistry IssueCode = "stale-registry"
	// CodeOrphanedLive: live-store entry that was never registered.
	CodeOrphanedLive IssueCode = "orphaned-live"
	// CodeOrphanedDisk: on-disk resource that was never registered.
	CodeOrphanedDisk IssueCode = "orphaned-disk"
	// CodeDisabledOnDisk: registered and present on disk but disabled.
	CodeDisabledOnDisk IssueCode = "disabled-on-disk"
	// CodeMissingScript: active hook whose script file is gone.
	CodeMissingScript IssueCode = "missing-script"
	// CodeSyntaxError: hook script fails its syntax check.
	CodeSyntaxError IssueCode = "syntax-error"
	// CodeCheckTimeout: an external existence/syntax check timed out.
	CodeCheckTimeout IssueCode = "check-timeout"
	// CodeCommandNotFound: enabled server whose command is not on PATH.
	CodeCommandNotFound IssueCode = "command-not-found"
	// CodeIncompleteServer: server entry with neither command nor url.
	CodeIncompleteServer IssueCode = "incomplete-server"
	// CodeNoFrontmatter: instruction file without a parseable header.
	CodeNoFrontmatter IssueCode = "no-frontmatter"
	// CodeMissingFields: instruction header missing required fields.
	CodeMissingFields IssueCode = "missing-fields"
	// CodeDuplicateID: two instruction files carry the same id.
	CodeDuplicateID IssueCode = "duplicate-id"
)

// Issue is one problem found by verification, optionally consumed by
// auto-repair.
type Issue struct {
	Kind    Kind      `json:"kind"`
	Item    string    `json:"item"`
	Code    IssueCode `json:"code"`
	Problem string    `json:"problem"`
	Fix     string    `json:"fix"`
}

// autoFixable lists the codes the doctor may repair without operator input.
// Everything else is reported only: a disabled resource may be intentional,
// and a broken script needs a human.
var autoFixable = map[IssueCode]bool{
	CodeStaleRegistry: true,
	CodeOrphanedLive:  true,
	CodeOrphanedDisk:  true,
}

// AutoFixable reports whether the doctor may repair this issue on its own.
func (c IssueCode) AutoFixable() bool {
	return autoFixable[c]
}

// explanations map each code to the root cause a human should understand
// before accepting a fix.
var explanations = map[IssueCode]string{
	CodeStaleRegistry:    "The registry has an entry but the backing file was deleted or moved. Stale registry entry.",
	CodeOrphanedLive:     "The live store references this item but it was never registered. Likely added by hand or by another tool.",
	CodeOrphanedDisk:     "The item exists on disk but was never added to the registry.",
	CodeDisabledOnDisk:   "Registered and present on disk but disabled. This may be intentional.",
	CodeMissingScript:    "The script file was deleted or moved but the live store still references it.",
	CodeSyntaxError:      "The script has a syntax error and needs a manual code fix.",
	CodeCheckTimeout:     "An external check did not finish within its timeout.",
	CodeCommandNotFound:  "The binary for this server is not installed or not on PATH.",
	CodeIncompleteServer: "The server entry has neither a command nor a url - incomplete configuration.",
	CodeNoFrontmatter:    "The instruction file has no metadata header, so the host cannot match it.",
	CodeMissingFields:    "The instruction header is missing required fields.",
	CodeDuplicateID:      "Two instruction files claim the same id; only one can win.",
}

// Explain returns the root-cause explanation for the code, or an empty
// string for unknown codes.
func (c IssueCode) Explain() string {
	return explanations[c]
}

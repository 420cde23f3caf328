// Package types defines the resource records, statuses, issue codes, and
// standard errors shared by every steward manager.
//
// A resource is anything the agent host consults at runtime: an automation
// hook, a capability bundle, a helper server, or an instruction snippet.
// Each kind is described by up to two stores (a live store the host reads
// and a metadata registry) that are edited independently and drift; the
// types here carry the merged, reconciled view.
package types

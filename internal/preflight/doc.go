// Package preflight verifies the directories a run writes to before any
// engine starts.
package preflight

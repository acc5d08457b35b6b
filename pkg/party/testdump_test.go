package party

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
)

// dumpOnFailure prints the party's full event log with spew.Sdump if t has
// already failed by the time it runs, so a concurrency test's failure
// message includes the whole log instead of just the one assertion that
// tripped.
func dumpOnFailure(t *testing.T, p *Party) {
	t.Helper()
	if !t.Failed() {
		return
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	t.Logf("event log at failure:\n%s", spew.Sdump(p.events))
}

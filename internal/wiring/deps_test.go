package wiring_test

import (
	"testing"

	"github.com/grindlemire/graft"
)

// TestGraftDependencies checks that every node declaring a dependency uses it
// and every used dependency is declared.
func TestGraftDependencies(t *testing.T) {
	// AssertDepsValid derives the dependency ID from the package of the type passed
	// to graft.Dep. Every adapter here provides a ports interface, so it expects a
	// node named "ports" and reports false positives.
	t.Skip("graft.AssertDepsValid cannot map shared ports interfaces to node IDs")
	graft.AssertDepsValid(t, "../../internal")
}

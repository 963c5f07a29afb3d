// Package testutil provides shared test utilities for logo.
//
// # Fixtures
//
// The fixtures.go file provides sample protocol traffic:
//
//   - Greeting - the line every session opens with
//   - ScenarioStepUp - the "steps 1" / "coord" / "render" script from a fresh session
//   - Script(lines...) - joins command lines with CRLF terminators
//
// # Assertions
//
// The assertions.go file provides custom test assertions:
//
//   - AssertFrame(t, block, width, height) - checks a rendered block's border
//     geometry and returns the interior rows
//   - AssertInteriorBlank(t, interior) - every interior cell is a space
//   - AssertOnlyInked(t, interior, cells...) - exactly the listed cells hold "*"
//
// # Timeouts
//
// The timeout.go file provides deadline-aware contexts for transport tests:
//
//   - ContextWithTestDeadline(t, fallback) - respects `go test -timeout`
//   - ShortOperationContext(t) - 5s budget for a single dial/read/write exchange
//
// # Usage
//
//	import "github.com/thruflo/logo/internal/testutil"
//
//	func TestSomething(t *testing.T) {
//	    interior := testutil.AssertFrame(t, c.Render(), 30, 30)
//	    testutil.AssertOnlyInked(t, interior, testutil.Cell{Row: 15, Col: 15})
//	}
package testutil

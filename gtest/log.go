// Package gtest adapts slog output to testing.T so that a failing
// test's log lines show up in `go test -v` output instead of being
// discarded or written to stderr out of order.
package gtest

import (
	"log/slog"
	"testing"

	"github.com/neilotoole/slogt"
)

// NewLogger returns a *slog.Logger that writes through t.Log.
func NewLogger(t testing.TB) *slog.Logger {
	return slogt.New(t, slogt.Text())
}

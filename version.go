package qpilot

import _ "embed"

// Version is the qpilot release version, embedded from the VERSION file
// at the repository root.
//
//go:embed VERSION
var Version string

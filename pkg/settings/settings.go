// Package settings provides build metadata, per-run settings and context
// helpers shared by the CLI and library packages.
package settings

// CliBinaryName is the canonical binary name.
const CliBinaryName = "jsontable"

// VersionInformation is populated at build time via ldflags.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo holds build metadata.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// Run holds the settings of a single invocation.
type Run struct {
	MinLogLevel int8
	ConfigPath  string
	Interactive bool
	IsQuiet     bool
	NoColor     bool
	ExitOnError bool
}

// NewCliParams returns the defaults for a CLI invocation.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel: 0,
		ExitOnError: true,
	}
}

// Verbose reports whether debug logging is enabled.
func (r *Run) Verbose() bool {
	return r != nil && r.MinLogLevel < 0
}

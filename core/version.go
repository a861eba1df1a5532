package core

// Version information, set at build time via ldflags:
//
//	go build -ldflags "-X pdfsummarizer/core.Version=$(git describe --tags --always) \
//	    -X pdfsummarizer/core.GitCommit=$(git rev-parse --short HEAD) \
//	    -X pdfsummarizer/core.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)" .
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// GetVersionInfo returns a formatted version information string.
//
// Examples:
//   - "v1.0.0 (built 2024-01-15T10:30:00Z, commit abc1234)"
//   - "dev (built unknown, commit unknown)"
func GetVersionInfo() string {
	return Version + " (built " + BuildTime + ", commit " + GitCommit + ")"
}

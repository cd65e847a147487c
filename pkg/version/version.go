// Package version provides version information for the mirrorx-backend application.
package version

// Version is the current version of the mirrorx-backend application.
const Version = "0.3.1"

// AgentString returns the full agent string with versioning.
func AgentString() string {
	return "mirrorx-backend/v" + Version
}

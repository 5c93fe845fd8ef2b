// Package buildinfo derives the deploykit version from Go build metadata.
package buildinfo

import "runtime/debug"

// Version returns the version string for the current build.
//
// Builds installed from a tag (go install ...@v0.3.0) report the tag.
// Development builds report a pseudo-version from VCS stamping:
//   - "dev-<hash>" for clean builds
//   - "dev-<hash>-dirty" when the worktree has uncommitted changes
//   - "dev" when no VCS info was stamped
//   - "unknown" if build info cannot be read at all
func Version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}

	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}

	revision, dirty := vcsRevision(info)
	if revision == "" {
		return "dev"
	}
	if dirty {
		return "dev-" + revision + "-dirty"
	}
	return "dev-" + revision
}

// vcsRevision extracts the short commit hash and dirty flag from the
// stamped build settings.
func vcsRevision(info *debug.BuildInfo) (string, bool) {
	var revision string
	var dirty bool
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	if len(revision) > 12 {
		revision = revision[:12]
	}
	return revision, dirty
}

// IsRelease reports whether the running binary was built from a tag.
// Release update checks are skipped for development builds.
func IsRelease() bool {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return false
	}
	v := info.Main.Version
	return v != "" && v != "(devel)"
}

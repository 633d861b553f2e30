// Package paths provides cross-platform path resolution for cairn.
//
// # XDG Base Directory Compliance
//
// The package wraps github.com/adrg/xdg for cross-platform XDG Base Directory
// Specification compliance. The global user config lives in
// <ConfigHome>/cairn/config.yaml (override the directory with
// CAIRN_CONFIG_DIR) and installed tools are cached under
// <CacheHome>/cairn/<manager>/<name>@<version>.
//
// # Project Layout
//
// A project is any directory containing cairn.yaml (or cairn.yml). Use
// [FindProjectRoot] to locate it from a nested directory:
//
//	root, err := paths.FindProjectRoot(".")
//	if errors.Is(err, paths.ErrProjectNotFound) {
//	    // not inside a project
//	}
//
// Config files may use either the .yaml or .yml extension; [SiblingExt]
// maps one to the other.
package paths

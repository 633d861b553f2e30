package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
)

// AppName is the directory name used under the XDG base directories.
const AppName = "cairn"

// Well-known config file names.
const (
	// ProjectConfigName is the project config file at the project root.
	ProjectConfigName = "cairn.yaml"

	// ProviderConfigName is the provider config file at the project root.
	ProviderConfigName = "provider.yaml"

	// UserConfigName is the global user config file in the cairn config dir.
	UserConfigName = "config.yaml"

	// RustToolchainName is the rustup toolchain file at the project root.
	RustToolchainName = "rust-toolchain.toml"

	// SchemasDirName is the directory, relative to a config file, that
	// holds the generated JSON Schemas referenced from config files.
	SchemasDirName = "schemas"
)

// ConfigDirEnv overrides the cairn user config directory when set.
const ConfigDirEnv = "CAIRN_CONFIG_DIR"

// Sentinel errors for path resolution.
var (
	// ErrHomeDirNotFound indicates the user's home directory could not be determined.
	ErrHomeDirNotFound = errors.New("home directory not found")

	// ErrProjectNotFound indicates no project config exists in the directory or its parents.
	ErrProjectNotFound = errors.New("project root not found")
)

// DefaultDirPerm is the default permission for newly created directories.
const DefaultDirPerm = 0o755

// EnsureDir creates the directory and any necessary parents with specified permissions.
// If perm is 0, DefaultDirPerm is used.
// This function is idempotent; it returns nil if the directory already exists.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = DefaultDirPerm
	}
	return os.MkdirAll(path, perm)
}

// Home returns the user's home directory.
// It returns an empty string on error; use ResolveHome for proper error handling.
func Home() string {
	h, _ := ResolveHome()
	return h
}

// ResolveHome returns the user's home directory.
// Returns ErrHomeDirNotFound if the directory cannot be determined.
func ResolveHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(ErrHomeDirNotFound, err.Error())
	}
	return home, nil
}

// ConfigHome returns the XDG config home directory.
// On Linux: ~/.config
// On macOS: ~/Library/Application Support
// On Windows: %LOCALAPPDATA%
func ConfigHome() string {
	return xdg.ConfigHome
}

// CacheHome returns the XDG cache home directory.
// On Linux: ~/.cache
// On macOS: ~/Library/Caches
// On Windows: %LOCALAPPDATA%\cache
func CacheHome() string {
	return xdg.CacheHome
}

// UserConfigDir returns the directory holding the global user config.
// Returns $CAIRN_CONFIG_DIR when set, otherwise <ConfigHome>/cairn.
func UserConfigDir() string {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return dir
	}
	return filepath.Join(ConfigHome(), AppName)
}

// UserConfigPath returns the path of the global user config file.
func UserConfigPath() string {
	return filepath.Join(UserConfigDir(), UserConfigName)
}

// ToolsCacheDir returns the directory where installed tools are kept.
// Returns: <CacheHome>/cairn/<manager>/
func ToolsCacheDir(manager string) string {
	return filepath.Join(CacheHome(), AppName, manager)
}

// ToolInstallDir returns the install root for one version of a tool.
// Returns: <CacheHome>/cairn/<manager>/<name>@<version>/
func ToolInstallDir(manager, name, version string) string {
	return filepath.Join(ToolsCacheDir(manager), name+"@"+version)
}

// FindProjectRoot walks up from start looking for a directory containing
// a project config file (cairn.yaml or cairn.yml).
// Returns ErrProjectNotFound when the filesystem root is reached.
func FindProjectRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", errors.Wrapf(err, "resolving %s", start)
	}

	for {
		for _, name := range []string{ProjectConfigName, SiblingExt(ProjectConfigName)} {
			if info, err := os.Stat(filepath.Join(dir, name)); err == nil && !info.IsDir() {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.WithDetailf(ErrProjectNotFound, "searched from %s", start)
		}
		dir = parent
	}
}

// IsYAMLFile reports whether path has a .yaml or .yml extension.
func IsYAMLFile(path string) bool {
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// SiblingExt swaps a .yaml extension for .yml and vice versa.
// Paths with any other extension are returned unchanged.
func SiblingExt(path string) string {
	ext := filepath.Ext(path)
	base := path[:len(path)-len(ext)]
	switch ext {
	case ".yaml":
		return base + ".yml"
	case ".yml":
		return base + ".yaml"
	default:
		return path
	}
}

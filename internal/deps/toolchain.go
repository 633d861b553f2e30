package deps

import (
	iofs "io/fs"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"

	"github.com/thoreinstein/cairn/internal/errors"
	"github.com/thoreinstein/cairn/internal/paths"
	"github.com/thoreinstein/cairn/pkg/fileutil"
)

// WasmTarget is the compilation target of cairn services.
const WasmTarget = "wasm32-wasip1"

// ToolchainFile is the content of rust-toolchain.toml.
type ToolchainFile struct {
	Toolchain RustToolchain `toml:"toolchain"`
}

// RustToolchain is the [toolchain] table of rust-toolchain.toml.
type RustToolchain struct {
	Channel    string   `toml:"channel"`
	Components []string `toml:"components,omitempty"`
	Targets    []string `toml:"targets,omitempty"`
}

// ReadToolchain reads rust-toolchain.toml from dir. A missing file is
// reported with ok == false.
func ReadToolchain(fs afero.Fs, dir string) (*ToolchainFile, bool, error) {
	path := filepath.Join(dir, paths.RustToolchainName)
	data, err := fileutil.ReadFileWithLimit(fs, path)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, errors.Wrapf(err, "reading %s", path)
	}

	var tf ToolchainFile
	if err := toml.Unmarshal(data, &tf); err != nil {
		return nil, false, errors.Wrapf(err, "parsing %s", path)
	}
	if tf.Toolchain.Channel == "" {
		return nil, false, errors.Newf("%s: toolchain.channel is required", path)
	}
	return &tf, true, nil
}

// WriteToolchain writes rust-toolchain.toml for channel into dir unless the
// file already exists. It reports whether it wrote the file.
func WriteToolchain(fs afero.Fs, dir, channel string) (bool, error) {
	path := filepath.Join(dir, paths.RustToolchainName)
	if ok, err := afero.Exists(fs, path); err != nil || ok {
		return false, err
	}

	data, err := toml.Marshal(ToolchainFile{Toolchain: RustToolchain{
		Channel:    channel,
		Components: []string{"rustfmt", "clippy"},
		Targets:    []string{WasmTarget},
	}})
	if err != nil {
		return false, errors.Wrap(err, "encoding rust toolchain")
	}
	if err := fs.MkdirAll(dir, paths.DefaultDirPerm); err != nil {
		return false, errors.Wrapf(err, "creating %s", dir)
	}
	if err := fileutil.AtomicWriteFile(fs, path, data, fileutil.DefaultFilePerm); err != nil {
		return false, err
	}
	return true, nil
}

// Package doctor runs diagnostic checks on a cairn installation and project:
// external tools on PATH, config files that fail to load, and a Rust
// toolchain file that disagrees with the project config.
package doctor

// Package project manages the project config file, cairn.yaml.
//
// The project config names the project, pins npm and cargo dependency
// versions and selects the Rust toolchain:
//
//	version: 2
//	name: my-app
//	dependencies:
//	  npm:
//	    "@fluencelabs/aqua": 0.14.2
//	  cargo:
//	    marine: 0.19.0
//	toolchain:
//	  rust: stable
//
// Older files are migrated on load: version 0 kept npmDependencies and
// cargoDependencies at the top level, version 1 grouped them under
// dependencies, version 2 added the toolchain and dropped relaysPath.
package project

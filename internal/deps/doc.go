// Package deps resolves, pins and installs the tools a cairn project needs.
//
// cairn ships a default version for each npm package and cargo crate it
// uses. A project overrides them with pins in cairn.yaml:
//
//	dependencies:
//	  cargo:
//	    marine: 0.20.1
//
// [Resolve] merges the defaults with the pins, [Pin] writes a pin and the
// [Installer] installs the Rust toolchain and every resolved tool into the
// cairn cache, one after another, skipping versions already installed.
package deps

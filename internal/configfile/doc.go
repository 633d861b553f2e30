// Package configfile manages the lifecycle of versioned YAML config files.
//
// A config is described by a [Definition]: its logical name and file name,
// one JSON Schema per historical version, the migrations between versions,
// an optional generator for a default file and an optional semantic
// validator. A [Loader] built from a definition reads the file (or creates
// it), keeps the schema-reference comment on the first line in sync with a
// generated JSON Schema file, validates it against the schema of its declared
// version, migrates it to the latest version and validates the result.
//
// # Access modes
//
//	loader, err := configfile.NewLoader(store, provider.Definition(gen))
//
//	doc, ok, err := loader.Load(ctx, dir)       // read-only, may be absent
//	doc, err := loader.LoadOrCreate(ctx, dir)   // read-only, created from the default
//	h, ok, err := loader.Find(ctx, dir)         // mutable, cached, may be absent
//	h, err := loader.Ensure(ctx, dir)           // mutable, cached, created from the default
//
// Mutable handles are cached per resolved path in the [Store], so every
// request for the same file during one command run shares one *T. Changes
// are persisted with [Handle.Commit], which merges them into the existing
// text so comments and key order survive.
//
// # Errors
//
// A file that does not validate is returned as an *errors.ExitError wrapping
// a *SchemaError; commands surface it and stop. Commit returns a
// *CommitError instead, since an invalid in-memory value is a caller bug the
// caller may want to handle.
package configfile

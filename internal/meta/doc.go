// Package meta models GCF description documents and their validation rules.
//
// A description is the JSON document that enumerates the resources to embed
// in a container: resource type, data format, type-specific structural fields,
// source file reference, and flags. Parsing and schema validation happen in
// one pass through Parse, which either returns an immutable Description or a
// structured error; validation is exhaustive, so a document with several bad
// resources reports all of them at once rather than forcing a fix-one-rerun
// loop.
//
// The package never touches the filesystem. Source references are checked
// syntactically only; resolving them against the description's directory is
// the packer's job.
package meta

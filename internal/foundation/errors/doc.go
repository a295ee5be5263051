// Package errors provides classified error primitives for the API docs build.
//
// Every pipeline failure is one of a small set of categories:
//   - config: missing example inputs, unreadable source roots
//   - parse: a source file the parser rejected
//   - unsupported: a definition kind the emitter cannot document
//   - collision: a duplicate name that survived merging into an index
//
// plus filesystem, render, storage and internal. The CLI adapter maps
// categories to process exit codes.
//
// Example usage:
//
//	err := errors.CollisionError("duplicate class in index").
//		WithContext("name", name).
//		Build()
package errors

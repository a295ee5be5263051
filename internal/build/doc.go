// Package build runs the API documentation pipeline as an ordered list of
// named stages: fingerprint, gate, discovery, parsing, merge and filter,
// index construction, emission and persistence. The CLI and the daemon both
// route through Builder.
package build

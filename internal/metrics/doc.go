// Package metrics provides the observability hooks of the API documentation
// build.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics never require nil checks at call sites:
//
//	recorder := metrics.NewPrometheusRecorder(registry)
//	builder := build.New(cfg, build.WithRecorder(recorder))
//
// The daemon serves the registry over HTTP via HTTPHandler; one-shot CLI
// builds can dump it with WriteTextfile.
package metrics

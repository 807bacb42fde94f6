// Package metrics records configuration load and validation outcomes.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics never require nil checks:
//
//	loader := config.NewLoader(config.WithRecorder(metrics.NewPrometheusRecorder(reg)))
//
// The watch command keeps a PrometheusRecorder alive across reloads and can dump
// the registry in node-exporter textfile format with WriteTextfile.
package metrics

// Package metrics records build observability data.
//
// Components take a Recorder and default to NoopRecorder, so metrics can be
// switched on without nil checks at call sites. PrometheusRecorder registers
// its collectors on a caller-supplied registry; WriteTextfile exports that
// registry in the node_exporter textfile format for one-shot CLI builds.
package metrics

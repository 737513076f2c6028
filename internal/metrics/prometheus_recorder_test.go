package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration("walk", 150*time.Millisecond)
	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.IncStageResult("walk", ResultSuccess)
	pr.IncBuildOutcome(OutcomeSuccess)
	pr.AddFiles(FileRendered, 3)
	pr.AddFiles(FileCopied, 0)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, mfs)

	require.InDelta(t, 3, counterValue(mfs, "mksite_output_files_total", "rendered"), 0)
	require.InDelta(t, 1, counterValue(mfs, "mksite_build_outcomes_total", "success"), 0)
}

// counterValue finds the counter sample in name whose single label equals label.
func counterValue(mfs []*dto.MetricFamily, name, label string) float64 {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetValue() == label {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return -1
}

func TestNilPrometheusRecorderIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	require.NotPanics(t, func() {
		pr.ObserveStageDuration("walk", time.Second)
		pr.IncBuildOutcome(OutcomeFailed)
		pr.AddFiles(FileCopied, 1)
	})
}

func TestWriteTextfile(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncBuildOutcome(OutcomeFailed)

	path := filepath.Join(t.TempDir(), "mksite.prom")
	require.NoError(t, WriteTextfile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(data), `mksite_build_outcomes_total{outcome="failed"} 1`))
}

func TestNoopRecorderSatisfiesInterface(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.AddFiles(FileRendered, 1)
	r.IncBuildOutcome(OutcomeSuccess)
}

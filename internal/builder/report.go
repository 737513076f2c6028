package builder

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/mksite/internal/foundation/errors"
	"git.home.luguber.info/inful/mksite/internal/metrics"
)

// Report captures what a build did.
type Report struct {
	BuildID        string
	SiteRoot       string
	BuildRoot      string
	Start          time.Time
	End            time.Time
	Directories    int
	RenderedPages  int
	PaginatedPages int
	CopiedFiles    int
	StaticTrees    int
	StageDurations map[string]time.Duration
	Outcome        metrics.BuildOutcome
	Err            error
}

func newReport(buildID, siteRoot, buildRoot string, start time.Time) *Report {
	return &Report{
		BuildID:        buildID,
		SiteRoot:       siteRoot,
		BuildRoot:      buildRoot,
		Start:          start,
		StageDurations: map[string]time.Duration{},
	}
}

// Duration is the wall time between Start and End.
func (r *Report) Duration() time.Duration { return r.End.Sub(r.Start) }

// Summary returns a human-readable single-line summary.
func (r *Report) Summary() string {
	return fmt.Sprintf("dirs=%d rendered=%d paginated=%d copied=%d static_trees=%d duration=%s outcome=%s",
		r.Directories, r.RenderedPages, r.PaginatedPages, r.CopiedFiles, r.StaticTrees,
		r.Duration().Truncate(time.Millisecond), r.Outcome)
}

func (r *Report) finish(end time.Time, err error) {
	r.End = end
	r.Err = err
	r.Outcome = outcomeFor(err)
}

// reportJSON is the serialized form; durations become milliseconds.
type reportJSON struct {
	BuildID          string             `json:"build_id"`
	SiteRoot         string             `json:"site_root"`
	BuildRoot        string             `json:"build_root"`
	Start            time.Time          `json:"start"`
	End              time.Time          `json:"end"`
	DurationMS       float64            `json:"duration_ms"`
	Directories      int                `json:"directories"`
	RenderedPages    int                `json:"rendered_pages"`
	PaginatedPages   int                `json:"paginated_pages"`
	CopiedFiles      int                `json:"copied_files"`
	StaticTrees      int                `json:"static_trees"`
	StageDurationsMS map[string]float64 `json:"stage_durations_ms"`
	Outcome          string             `json:"outcome"`
	Error            string             `json:"error,omitempty"`
}

func (r *Report) serializable() reportJSON {
	stages := make(map[string]float64, len(r.StageDurations))
	for k, v := range r.StageDurations {
		stages[k] = float64(v) / float64(time.Millisecond)
	}
	out := reportJSON{
		BuildID:          r.BuildID,
		SiteRoot:         r.SiteRoot,
		BuildRoot:        r.BuildRoot,
		Start:            r.Start,
		End:              r.End,
		DurationMS:       float64(r.Duration()) / float64(time.Millisecond),
		Directories:      r.Directories,
		RenderedPages:    r.RenderedPages,
		PaginatedPages:   r.PaginatedPages,
		CopiedFiles:      r.CopiedFiles,
		StaticTrees:      r.StaticTrees,
		StageDurationsMS: stages,
		Outcome:          string(r.Outcome),
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return out
}

// Persist writes the report as JSON to path, replacing any previous file
// atomically.
func (r *Report) Persist(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return persistError(path, err)
	}
	data, err := json.MarshalIndent(r.serializable(), "", "  ")
	if err != nil {
		return persistError(path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return persistError(path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return persistError(path, err)
	}
	return nil
}

func persistError(path string, err error) error {
	return errors.FileSystemError("failed to persist build report").
		WithCause(err).
		WithContext("path", path).
		Build()
}

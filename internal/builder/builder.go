package builder

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/mksite/internal/foundation/errors"
	"git.home.luguber.info/inful/mksite/internal/history"
	"git.home.luguber.info/inful/mksite/internal/logfields"
	"git.home.luguber.info/inful/mksite/internal/metrics"
	"git.home.luguber.info/inful/mksite/internal/site"
)

// Stage names used in reports, logs and metrics.
const (
	StagePrepare = "prepare_staging"
	StageWalk    = "walk"
	StagePublish = "publish"
)

// HistoryRecorder stores one entry per build attempt.
type HistoryRecorder interface {
	Record(ctx context.Context, r history.Record) error
}

// Options are the optional collaborators of a Builder.
type Options struct {
	Recorder metrics.Recorder
	History  HistoryRecorder
	// ReportPath, when set, receives the JSON build report after every attempt.
	ReportPath string
}

// Builder renders one site. A Builder is single-use per Build call and not
// safe for concurrent builds.
type Builder struct {
	site     *site.Site
	recorder metrics.Recorder
	history  HistoryRecorder
	report   *Report
	reportTo string
	layouts  map[string]string
}

func New(s *site.Site, opts Options) *Builder {
	rec := opts.Recorder
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Builder{
		site:     s,
		recorder: rec,
		history:  opts.History,
		reportTo: opts.ReportPath,
	}
}

// Layouts returns the layout resolved for every visited directory during the
// last build. An empty value means the directory renders without a layout.
func (b *Builder) Layouts() map[string]string { return b.layouts }

// Build renders the site into the staging directory and, if every step
// succeeds, publishes it as the build root. The returned report is never nil.
func (b *Builder) Build(ctx context.Context) (*Report, error) {
	start := time.Now()
	b.report = newReport(uuid.NewString(), b.site.Root(), b.site.BuildRoot(), start)
	log := slog.With(logfields.BuildID(b.report.BuildID))
	log.Info("Build started", logfields.Path(b.site.Root()), logfields.Output(b.site.BuildRoot()))

	err := b.run(ctx, log)

	b.report.finish(time.Now(), err)
	b.recorder.ObserveBuildDuration(b.report.Duration())
	b.recorder.IncBuildOutcome(b.report.Outcome)
	b.recordHistory(ctx, log)
	if b.reportTo != "" {
		if perr := b.report.Persist(b.reportTo); perr != nil {
			log.Warn("Failed to persist build report", logfields.Path(b.reportTo), logfields.Error(perr))
		}
	}

	if err != nil {
		log.Error("Build failed", logfields.Error(err), slog.String("outcome", string(b.report.Outcome)))
		return b.report, err
	}
	log.Info("Build finished", slog.String("summary", b.report.Summary()))
	return b.report, nil
}

func (b *Builder) run(ctx context.Context, log *slog.Logger) error {
	if err := b.stage(log, StagePrepare, b.beginStaging); err != nil {
		return err
	}

	b.layouts = map[string]string{b.site.Root(): ""}
	if err := b.stage(log, StageWalk, func() error {
		return b.walkDir(ctx, log, b.site.Root(), b.layouts)
	}); err != nil {
		b.abortStaging(log)
		return err
	}

	if err := ctx.Err(); err != nil {
		b.abortStaging(log)
		return canceledError(err)
	}
	if err := b.stage(log, StagePublish, b.finalizeStaging); err != nil {
		b.abortStaging(log)
		return err
	}
	return nil
}

// stage times fn and records its result.
func (b *Builder) stage(log *slog.Logger, name string, fn func() error) error {
	t0 := time.Now()
	err := fn()
	d := time.Since(t0)
	b.report.StageDurations[name] = d
	b.recorder.ObserveStageDuration(name, d)

	result := metrics.ResultSuccess
	switch {
	case isCanceled(err):
		result = metrics.ResultCanceled
	case err != nil:
		result = metrics.ResultFatal
	}
	b.recorder.IncStageResult(name, result)
	log.Debug("Stage complete", logfields.Stage(name), logfields.DurationMS(float64(d)/float64(time.Millisecond)), slog.String("result", string(result)))
	return err
}

func (b *Builder) recordHistory(ctx context.Context, log *slog.Logger) {
	if b.history == nil {
		return
	}
	r := b.report
	rec := history.Record{
		BuildID:       r.BuildID,
		SiteRoot:      r.SiteRoot,
		BuildRoot:     r.BuildRoot,
		StartedAt:     r.Start,
		FinishedAt:    r.End,
		Outcome:       string(r.Outcome),
		RenderedPages: r.RenderedPages,
		Paginated:     r.PaginatedPages,
		CopiedFiles:   r.CopiedFiles + r.StaticTrees,
	}
	if r.Err != nil {
		rec.Error = r.Err.Error()
	}
	if err := b.history.Record(context.WithoutCancel(ctx), rec); err != nil {
		log.Warn("Failed to record build history", logfields.Error(err))
	}
}

func outcomeFor(err error) metrics.BuildOutcome {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case isCanceled(err):
		return metrics.OutcomeCanceled
	default:
		return metrics.OutcomeFailed
	}
}

func isCanceled(err error) bool {
	return err != nil && (stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded))
}

func canceledError(err error) error {
	return errors.NewError(errors.CategoryRuntime, "build canceled").WithCause(err).Build()
}

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/mksite/internal/foundation/errors"
	"git.home.luguber.info/inful/mksite/internal/history"
	"git.home.luguber.info/inful/mksite/internal/logfields"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	HistoryDB string `name:"history-db" required:"" help:"SQLite history ledger written by 'build --history-db'"`
	Limit     int    `short:"n" default:"10" help:"Number of builds to show (0 for all)"`
}

func (h *HistoryCmd) Run(g *Global, _ *CLI) error {
	if h.Limit < 0 {
		return errors.ValidationError("limit must not be negative").
			WithContext("limit", h.Limit).
			Build()
	}
	store, err := history.Open(h.HistoryDB)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			slog.Warn("Failed to close history ledger", logfields.Path(h.HistoryDB), logfields.Error(cerr))
		}
	}()

	records, err := store.Recent(context.Background(), h.Limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(g.out(), "No builds recorded")
		return nil
	}

	w := tabwriter.NewWriter(g.out(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "BUILD\tSTARTED\tDURATION\tOUTCOME\tRENDERED\tPAGINATED\tCOPIED\tERROR")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			r.BuildID,
			r.StartedAt.Local().Format(time.DateTime),
			r.Duration().Truncate(time.Millisecond),
			r.Outcome,
			r.RenderedPages, r.Paginated, r.CopiedFiles,
			r.Error)
	}
	return w.Flush()
}

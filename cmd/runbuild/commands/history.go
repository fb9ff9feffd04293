package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/runbuild/internal/eventstore"
	"git.home.luguber.info/inful/runbuild/internal/foundation/errors"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int  `short:"n" help:"Number of builds to list (0 lists all)" default:"20"`
	JSON  bool `help:"Print JSON instead of a table"`
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	cfg := root.Settings()
	if !cfg.History.IsEnabled() {
		return errors.ConfigError("build history is disabled (history.enabled: false)").Build()
	}
	store, err := eventstore.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	summaries, err := eventstore.History(context.Background(), store, h.Limit)
	if err != nil {
		return err
	}

	if h.JSON {
		enc := json.NewEncoder(g.out())
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	}

	tw := tabwriter.NewWriter(g.out(), 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "STARTED\tPROJECT\tTARGET\tSTATUS\tVERDICT\tDURATION\tBUILD ID")
	for _, s := range summaries {
		target := s.Target.Framework
		if s.Target.Runtime != "" {
			target += "/" + s.Target.Runtime
		}
		verdict := s.Verdict
		if s.Reason != "" {
			verdict += " (" + s.Reason + ")"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			s.StartedAt.Local().Format(time.DateTime),
			s.Target.Project,
			target,
			s.Status,
			verdict,
			(time.Duration(s.DurationMS) * time.Millisecond).String(),
			s.BuildID)
	}
	return tw.Flush()
}

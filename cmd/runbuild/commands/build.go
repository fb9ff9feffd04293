package commands

import (
	"fmt"

	"git.home.luguber.info/inful/runbuild/internal/build"
	"git.home.luguber.info/inful/runbuild/internal/foundation/errors"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Projects []string `arg:"" help:"Project files or directories" type:"path"`
	TargetFlags
	Output string `short:"o" help:"Explicit runtime output directory (single project only)" type:"path"`
	Force  bool   `help:"Rebuild regardless of timestamps"`
	Jobs   int    `short:"j" help:"Projects built in parallel (defaults to the configured concurrency)"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	env, err := b.Descriptor()
	if err != nil {
		return err
	}
	if b.Output != "" && len(b.Projects) > 1 {
		return errors.ValidationError("--output needs exactly one project").Build()
	}

	svcs, err := newServices(root)
	if err != nil {
		return err
	}
	defer svcs.Close()

	reqs := make([]build.Request, len(b.Projects))
	for i, p := range b.Projects {
		reqs[i] = build.Request{ProjectPath: p, Env: env, OutputPath: b.Output, Force: b.Force}
	}

	ctx, cancel := signalContext()
	defer cancel()
	results, runErr := svcs.build.RunAll(ctx, reqs, b.Jobs)

	w := g.out()
	for i, res := range results {
		if res == nil {
			_, _ = fmt.Fprintf(w, "%s: not started\n", b.Projects[i])
			continue
		}
		if res.Plan == nil {
			_, _ = fmt.Fprintf(w, "%s: %s\n", b.Projects[i], res.Status)
			continue
		}
		if res.Verdict.IsStale() || res.Status.IsSuccess() {
			_, _ = fmt.Fprintln(w, describeVerdict(res.Plan, res.Verdict))
		}
		if res.Materialized != nil {
			_, _ = fmt.Fprintf(w, "%s: %s -> %s (%d files)\n",
				res.Plan.Project.Name, res.Status, res.Materialized.OutputDir, len(res.Materialized.Written))
		} else {
			_, _ = fmt.Fprintf(w, "%s: %s\n", res.Plan.Project.Name, res.Status)
		}
	}
	return runErr
}

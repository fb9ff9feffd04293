package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/runbuild/internal/build"
	"git.home.luguber.info/inful/runbuild/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Project string `arg:"" help:"Project file or directory" type:"path"`
	TargetFlags
	Build bool `help:"Build whenever the gate reports the project stale"`
}

func (c *WatchCmd) Run(g *Global, root *CLI) error {
	env, err := c.Descriptor()
	if err != nil {
		return err
	}
	svcs, err := newServices(root)
	if err != nil {
		return err
	}
	defer svcs.Close()

	req := build.Request{ProjectPath: c.Project, Env: env}
	plan, err := svcs.build.Plan(req)
	if err != nil {
		return err
	}
	// The descriptor is loaded once; sources added later need a restart.
	req.Project = plan.Project

	paths := append(plan.Inputs().Paths(), plan.Lock.Path)
	for _, cf := range plan.Project.ContentFiles {
		paths = append(paths, cf.Source)
	}
	paths = append(paths, plan.Outputs()...)

	cfg := root.Settings()
	w, err := watch.New(paths, func(ctx context.Context, trigger watch.Trigger) error {
		return c.check(ctx, g, svcs, req, trigger)
	}, watch.Options{Debounce: cfg.Watch.Debounce, Interval: cfg.Watch.Interval, Logger: root.Logger()})
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()
	return w.Run(ctx)
}

func (c *WatchCmd) check(ctx context.Context, g *Global, svcs *services, req build.Request, trigger watch.Trigger) error {
	plan, verdict, err := svcs.build.Check(req)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.out(), "[%s] %s\n", trigger, describeVerdict(plan, verdict))
	if !c.Build || !verdict.IsStale() {
		return nil
	}
	res, err := svcs.build.Run(ctx, req)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.out(), "[%s] %s: %s\n", trigger, plan.Project.Name, res.Status)
	return nil
}

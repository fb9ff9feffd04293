package commands

import (
	"fmt"

	"git.home.luguber.info/inful/runbuild/internal/build"
)

// MaterializeCmd implements the 'materialize' command.
type MaterializeCmd struct {
	Project string `arg:"" help:"Project file or directory" type:"path"`
	TargetFlags
	Output string `short:"o" help:"Explicit runtime output directory" type:"path"`
}

func (m *MaterializeCmd) Run(g *Global, root *CLI) error {
	env, err := m.Descriptor()
	if err != nil {
		return err
	}
	svcs, err := newServices(root)
	if err != nil {
		return err
	}
	defer svcs.Close()

	plan, err := svcs.build.Plan(build.Request{ProjectPath: m.Project, Env: env, OutputPath: m.Output})
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()
	res, err := svcs.build.Materialize(ctx, plan)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.out(), "Materialized %d files into %s\n", len(res.Written), res.OutputDir)
	return nil
}

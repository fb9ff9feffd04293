package commands

import (
	"fmt"

	"git.home.luguber.info/inful/runbuild/internal/build"
)

// PathsCmd implements the 'paths' command.
type PathsCmd struct {
	Project string `arg:"" help:"Project file or directory" type:"path"`
	TargetFlags
	Output string `short:"o" help:"Explicit runtime output directory" type:"path"`
}

func (p *PathsCmd) Run(g *Global, root *CLI) error {
	env, err := p.Descriptor()
	if err != nil {
		return err
	}
	svc := build.NewBuildService(root.Settings(), nil, nil).WithLogger(root.Logger())
	plan, err := svc.Plan(build.Request{ProjectPath: p.Project, Env: env, OutputPath: p.Output})
	if err != nil {
		return err
	}

	loc := plan.Location
	w := g.out()
	_, _ = fmt.Fprintf(w, "intermediate: %s\n", loc.IntermediateDir)
	_, _ = fmt.Fprintf(w, "compilation:  %s\n", loc.CompilationDir)
	if dir, err := loc.RuntimeDir(); err == nil {
		_, _ = fmt.Fprintf(w, "runtime:      %s\n", dir)
	}
	_, _ = fmt.Fprintf(w, "lock file:    %s\n", plan.Lock.Path)
	_, _ = fmt.Fprintln(w, "outputs:")
	for _, f := range plan.Outputs() {
		_, _ = fmt.Fprintf(w, "  %s\n", f)
	}
	return nil
}

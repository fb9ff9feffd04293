package commands

import (
	"fmt"

	"git.home.luguber.info/inful/runbuild/internal/build"
	"git.home.luguber.info/inful/runbuild/internal/incremental"
	"git.home.luguber.info/inful/runbuild/internal/logfields"
)

// CheckCmd implements the 'check' command. It exits 1 when the project is stale.
type CheckCmd struct {
	Project string `arg:"" help:"Project file or directory" type:"path"`
	TargetFlags
	Force bool `help:"Treat the project as stale regardless of timestamps"`
}

func (c *CheckCmd) Run(g *Global, root *CLI) error {
	env, err := c.Descriptor()
	if err != nil {
		return err
	}
	svc := build.NewBuildService(root.Settings(), nil, nil).WithLogger(root.Logger())
	plan, verdict, err := svc.Check(build.Request{ProjectPath: c.Project, Env: env, Force: c.Force})
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(g.out(), describeVerdict(plan, verdict))
	root.Logger().Debug("Gate decided",
		logfields.Project(plan.Project.Name),
		logfields.Verdict(verdict.Label()),
		logfields.Reason(string(verdict.Reason())))
	if verdict.IsStale() {
		return ExitStatus(1)
	}
	return nil
}

// describeVerdict renders a verdict as one line of user output.
func describeVerdict(plan *build.Plan, v incremental.Verdict) string {
	name := plan.Project.Name
	target := fmt.Sprintf("%s (%s)", name, plan.Env)
	if !v.IsStale() {
		return fmt.Sprintf("Project %s is up to date", target)
	}
	switch v.Reason() {
	case incremental.ReasonForced:
		return fmt.Sprintf("Project %s will be compiled [Forced Unsafe]", target)
	case incremental.ReasonMissingLockFile:
		return fmt.Sprintf("project %q does not have a lock file", name)
	case incremental.ReasonMissingOutput:
		return fmt.Sprintf("Project %s will be compiled because expected output %s is missing", target, v.Path())
	case incremental.ReasonLockFileNewer:
		return fmt.Sprintf("Project %s will be compiled because the lock file changed", target)
	default:
		return fmt.Sprintf("Project %s will be compiled because input %s is not older than the outputs", target, v.Path())
	}
}

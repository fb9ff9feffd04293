package commands

import (
	"io"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/runbuild/internal/foundation/errors"
)

// Execute parses args and runs the selected command. The returned CLI is
// never nil so callers can inspect global flags while reporting err.
func Execute(args []string, stdout, stderr io.Writer) (*CLI, error) {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("runbuild"),
		kong.Description("Incremental build gate and runnable-output materializer."),
		kong.Writers(stdout, stderr),
		kong.UsageOnError(),
	)
	if err != nil {
		return cli, errors.InternalError("failed to build command line parser").WithCause(err).Build()
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		if _, ok := errors.AsClassified(err); !ok {
			err = errors.ValidationError(err.Error()).WithCause(err).Build()
		}
		return cli, err
	}
	return cli, kctx.Run(&Global{Stdout: stdout}, cli)
}

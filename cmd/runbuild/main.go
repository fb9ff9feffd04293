package main

import (
	stdErrors "errors"
	"os"

	"git.home.luguber.info/inful/runbuild/cmd/runbuild/commands"
	"git.home.luguber.info/inful/runbuild/internal/foundation/errors"
)

func main() {
	cli, err := commands.Execute(os.Args[1:], os.Stdout, os.Stderr)
	if err == nil {
		return
	}
	var status commands.ExitStatus
	if stdErrors.As(err, &status) {
		os.Exit(int(status))
	}
	errors.NewCLIErrorAdapter(cli.Verbose, cli.Logger()).HandleError(err)
}

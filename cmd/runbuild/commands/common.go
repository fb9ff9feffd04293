package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/runbuild/internal/config"
	"git.home.luguber.info/inful/runbuild/internal/framework"
)

// Global carries process-wide state into subcommands.
type Global struct {
	Stdout io.Writer
}

func (g *Global) out() io.Writer {
	if g == nil || g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

// CLI definition & global flags.
type CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"runbuild.yaml" type:"path"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Paths       PathsCmd       `cmd:"" help:"Print the output location of a project"`
	Check       CheckCmd       `cmd:"" help:"Ask the incremental gate whether a project must be compiled"`
	Materialize MaterializeCmd `cmd:"" help:"Assemble the runnable output of a compiled project"`
	Build       BuildCmd       `cmd:"" help:"Gate, compile and materialize projects"`
	Watch       WatchCmd       `cmd:"" help:"Re-evaluate the gate whenever project inputs change"`
	History     HistoryCmd     `cmd:"" help:"List recorded builds"`
	Version     VersionCmd     `cmd:"" help:"Print version information"`

	cfg    *config.Config
	logger *slog.Logger
}

// AfterApply runs after flag parsing; loads the configuration and sets up
// logging once.
func (c *CLI) AfterApply() error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.logger = cfg.Log.NewLogger(os.Stderr, c.Verbose)
	slog.SetDefault(c.logger)
	return nil
}

// Settings returns the loaded configuration.
func (c *CLI) Settings() *config.Config {
	if c.cfg == nil {
		c.cfg = config.Default()
	}
	return c.cfg
}

// Logger returns the process logger.
func (c *CLI) Logger() *slog.Logger {
	if c.logger == nil {
		return slog.Default()
	}
	return c.logger
}

// TargetFlags select the execution environment.
type TargetFlags struct {
	Framework string `short:"f" required:"" help:"Target framework moniker (netcoreapp1.0, net451, ...)"`
	Runtime   string `short:"r" help:"Platform identifier (linux-x64, win7-x64, ...)"`
}

// Descriptor parses the flags.
func (t TargetFlags) Descriptor() (framework.Descriptor, error) {
	return framework.NewDescriptor(t.Framework, t.Runtime)
}

// ExitStatus ends the process with a code and no further message.
type ExitStatus int

func (e ExitStatus) Error() string { return fmt.Sprintf("exit status %d", int(e)) }

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

package config

import (
	"git.home.luguber.info/inful/runbuild/internal/foundation"
	"git.home.luguber.info/inful/runbuild/internal/foundation/errors"
)

var configValidator = foundation.NewValidatorChain(
	foundation.Check("configuration", "required", "must not be empty",
		func(c *Config) bool { return c.Configuration != "" }),
	foundation.Check("concurrency", "positive", "must be at least 1",
		func(c *Config) bool { return c.Concurrency >= 1 }),
	foundation.Check("watch.debounce", "non_negative", "must not be negative",
		func(c *Config) bool { return c.Watch.Debounce >= 0 }),
	foundation.Check("watch.interval", "non_negative", "must not be negative",
		func(c *Config) bool { return c.Watch.Interval >= 0 }),
	foundation.Check("compiler.args", "requires_command", "compiler.command must be set when args are given",
		func(c *Config) bool { return len(c.Compiler.Args) == 0 || c.Compiler.Command != "" }),
	foundation.Check("solution_root", "requires_build_base_path", "build_base_path must be set when solution_root is",
		func(c *Config) bool { return c.SolutionRoot == "" || c.BuildBasePath != "" }),
)

// Validate checks invariants that defaults cannot repair.
func (c *Config) Validate() error {
	return configValidator.Validate(c).ToError(errors.CategoryConfig)
}

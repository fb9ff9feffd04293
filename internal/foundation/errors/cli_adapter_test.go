package errors

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: 0},
		{name: "validation", err: ValidationError("invalid input").Build(), expected: 2},
		{name: "not found", err: NotFoundError("project file missing").Build(), expected: 3},
		{name: "config", err: ConfigError("bad config").Build(), expected: 7},
		{name: "filesystem", err: FileSystemError("copy failed").Build(), expected: 11},
		{name: "lock file", err: LockFileError("unreadable").Build(), expected: 11},
		{name: "internal", err: InvalidState("no runtime target set").Build(), expected: 10},
		{name: "runtime", err: RuntimeError("compiler crashed").Build(), expected: 12},
		{name: "unclassified", err: errors.New("unknown error"), expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := adapter.ExitCodeFor(tt.err)
			if got != tt.expected {
				t.Errorf("ExitCodeFor() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	quiet := NewCLIErrorAdapter(false, slog.Default())
	verbose := NewCLIErrorAdapter(true, slog.Default())

	cfgErr := ConfigError("configuration file is invalid").Build()
	if got := quiet.FormatError(cfgErr); got != "configuration file is invalid" {
		t.Errorf("quiet config format = %q", got)
	}
	if got := verbose.FormatError(cfgErr); got != cfgErr.Error() {
		t.Errorf("verbose config format = %q", got)
	}

	internal := InvalidState("no runtime target set").Build()
	if got := quiet.FormatError(internal); got != "Internal error occurred (use -v for details)" {
		t.Errorf("quiet internal format = %q", got)
	}

	fsErr := FileSystemError("copy failed").WithCause(errors.New("disk full")).Build()
	if got := quiet.FormatError(fsErr); got != "filesystem: copy failed: disk full" {
		t.Errorf("quiet filesystem format = %q", got)
	}

	if got := quiet.FormatError(errors.New("x")); got != "Error: x" {
		t.Errorf("unclassified format = %q", got)
	}
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var out bytes.Buffer
	var logs bytes.Buffer
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&logs, nil)))
	adapter.out = &out
	code := -1
	adapter.exit = func(c int) { code = c }

	adapter.HandleError(BuildError("compile failed").Build())

	if code != 11 {
		t.Errorf("exit code = %d, want 11", code)
	}
	if out.String() != "build: compile failed\n" {
		t.Errorf("stderr = %q", out.String())
	}
	if !bytes.Contains(logs.Bytes(), []byte("category=build")) {
		t.Errorf("expected fatal error to be logged, got %q", logs.String())
	}

	code = -1
	adapter.HandleError(nil)
	if code != -1 {
		t.Error("nil error must not exit")
	}
}

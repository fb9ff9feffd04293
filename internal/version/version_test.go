package version

import (
	"strings"
	"testing"
)

func TestBuildInfo(t *testing.T) {
	if Version == "" || BuildTime == "" || GitCommit == "" {
		t.Fatal("build metadata must be initialized")
	}
}

func TestString(t *testing.T) {
	orig := Version
	t.Cleanup(func() { Version = orig })
	Version = "v1.2.3"

	got := String()
	if !strings.HasPrefix(got, "runbuild v1.2.3 (commit ") {
		t.Errorf("String() = %q", got)
	}
	if !strings.Contains(got, "built "+BuildTime) {
		t.Errorf("String() = %q, want build time", got)
	}
}

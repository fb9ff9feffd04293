package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "runbuild.yaml").
			Build()

		if err.Category() != CategoryConfig {
			t.Errorf("expected category %s, got %s", CategoryConfig, err.Category())
		}
		if err.Severity() != SeverityFatal {
			t.Errorf("expected severity %s, got %s", SeverityFatal, err.Severity())
		}
		if err.Message() != "invalid configuration" {
			t.Errorf("expected message 'invalid configuration', got %s", err.Message())
		}

		file, exists := err.Context().GetString("file")
		if !exists || file != "runbuild.yaml" {
			t.Errorf("expected context file=runbuild.yaml, got %v", file)
		}
	})

	t.Run("Error detection through wrapping", func(t *testing.T) {
		inner := ConfigError("test error").Build()
		wrapped := fmt.Errorf("load: %w", inner)

		if !IsClassified(wrapped) {
			t.Error("expected wrapped error to be classified")
		}
		if !HasCategory(wrapped, CategoryConfig) {
			t.Error("expected error to have config category")
		}
		if GetSeverity(wrapped) != SeverityFatal {
			t.Errorf("expected fatal severity, got %s", GetSeverity(wrapped))
		}
		if inner.CanRetry() {
			t.Error("expected config error to not be retryable")
		}
	})

	t.Run("Unclassified defaults", func(t *testing.T) {
		plain := errors.New("plain")
		if GetCategory(plain) != CategoryInternal {
			t.Errorf("expected internal category, got %s", GetCategory(plain))
		}
		if GetSeverity(plain) != SeverityError {
			t.Errorf("expected error severity, got %s", GetSeverity(plain))
		}
	})
}

func TestErrorBuilder(t *testing.T) {
	t.Run("Fluent API", func(t *testing.T) {
		originalErr := errors.New("permission denied")
		err := WrapError(originalErr, CategoryFileSystem, "copy failed").
			Warning().
			Rerun().
			WithContext("path", "/out/App.dll").
			Build()

		if err.Category() != CategoryFileSystem {
			t.Errorf("expected category %s, got %s", CategoryFileSystem, err.Category())
		}
		if err.Severity() != SeverityWarning {
			t.Errorf("expected severity %s, got %s", SeverityWarning, err.Severity())
		}
		if err.RetryStrategy() != RetryRerun {
			t.Errorf("expected retry strategy %s, got %s", RetryRerun, err.RetryStrategy())
		}
		if !errors.Is(err, originalErr) {
			t.Error("expected error to wrap original error")
		}
		if !err.CanRetry() {
			t.Error("expected rerun strategy to allow retry")
		}

		path, _ := err.Context().GetString("path")
		if path != "/out/App.dll" {
			t.Errorf("expected path context '/out/App.dll', got %s", path)
		}
	})

	t.Run("Error string includes cause", func(t *testing.T) {
		err := WrapError(errors.New("boom"), CategoryBuild, "compile failed").Build()
		want := "[build:error] compile failed: boom"
		if err.Error() != want {
			t.Errorf("Error() = %q, want %q", err.Error(), want)
		}
	})
}

func TestInvalidState(t *testing.T) {
	err := InvalidState("no runtime target set").Build()

	if !IsInvalidState(err) {
		t.Fatal("expected invalid state error")
	}
	if !err.IsFatal() {
		t.Error("expected invalid state to be fatal")
	}
	if err.CanRetry() {
		t.Error("expected invalid state to never be retried")
	}
	if err.Category() != CategoryInternal {
		t.Errorf("expected internal category, got %s", err.Category())
	}
	if IsInvalidState(InternalError("other").Build()) {
		t.Error("plain internal error must not be reported as invalid state")
	}
}

func TestSentinelComparison(t *testing.T) {
	sentinel := FileSystemError("write deps manifest failed").Build()
	occurrence := FileSystemError("write deps manifest failed").
		WithCause(errors.New("disk full")).
		WithContext("path", "/out/App.deps.json").
		Build()

	if !errors.Is(fmt.Errorf("materialize: %w", occurrence), sentinel) {
		t.Error("expected occurrence to match sentinel by category and message")
	}
}

package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID       = "build_id"
	KeyProject       = "project"
	KeyFramework     = "framework"
	KeyRuntime       = "runtime"
	KeyConfiguration = "configuration"
	KeyVerdict       = "verdict"
	KeyReason        = "reason"
	KeyKind          = "kind"
	KeyPath          = "path"
	KeySource        = "source"
	KeyTarget        = "target"
	KeyCount         = "count"
	KeyDurationMS    = "duration_ms"
	KeyError         = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr       { return slog.String(KeyBuildID, id) }
func Project(name string) slog.Attr     { return slog.String(KeyProject, name) }
func Framework(fw string) slog.Attr     { return slog.String(KeyFramework, fw) }
func Runtime(rid string) slog.Attr      { return slog.String(KeyRuntime, rid) }
func Configuration(c string) slog.Attr  { return slog.String(KeyConfiguration, c) }
func Verdict(v string) slog.Attr        { return slog.String(KeyVerdict, v) }
func Reason(r string) slog.Attr         { return slog.String(KeyReason, r) }
func Kind(k string) slog.Attr           { return slog.String(KeyKind, k) }
func Path(p string) slog.Attr           { return slog.String(KeyPath, p) }
func Source(p string) slog.Attr         { return slog.String(KeySource, p) }
func Target(p string) slog.Attr         { return slog.String(KeyTarget, p) }
func Count(n int) slog.Attr             { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr   { return slog.Float64(KeyDurationMS, ms) }
func Duration(d time.Duration) slog.Attr { return DurationMS(float64(d) / float64(time.Millisecond)) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

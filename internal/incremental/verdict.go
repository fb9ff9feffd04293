// Package incremental implements the build gate that decides whether a
// project has to be recompiled.
package incremental

import "fmt"

// Reason explains a stale verdict.
type Reason string

const (
	ReasonMissingOutput     Reason = "missing_output"
	ReasonMissingLockFile   Reason = "missing_lock_file"
	ReasonLockFileNewer     Reason = "lock_file_newer"
	ReasonInputNewerOrEqual Reason = "input_newer_or_equal"
	ReasonForced            Reason = "forced"
)

// Verdict is either up to date or stale with a reason. The zero value is UpToDate.
type Verdict struct {
	stale  bool
	reason Reason
	path   string
}

// UpToDate returns the verdict that allows skipping compilation.
func UpToDate() Verdict { return Verdict{} }

// Stale returns a stale verdict. path names the file that triggered it and may be empty.
func Stale(reason Reason, path string) Verdict {
	return Verdict{stale: true, reason: reason, path: path}
}

func (v Verdict) IsStale() bool { return v.stale }

// Reason is empty for up-to-date verdicts.
func (v Verdict) Reason() Reason { return v.reason }

// Path is the offending file, if any.
func (v Verdict) Path() string { return v.path }

// Label is the metrics/log label of the verdict kind.
func (v Verdict) Label() string {
	if v.stale {
		return "stale"
	}
	return "up_to_date"
}

func (v Verdict) String() string {
	if !v.stale {
		return "up to date"
	}
	if v.path == "" {
		return fmt.Sprintf("stale (%s)", v.reason)
	}
	return fmt.Sprintf("stale (%s: %s)", v.reason, v.path)
}

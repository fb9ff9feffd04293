package build

import (
	"fmt"

	"git.home.luguber.info/inful/runbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/runbuild/internal/incremental"
)

// Stage names recorded when a build fails.
const (
	StageResolve     = "resolve"
	StageGate        = "gate"
	StageCompile     = "compile"
	StageMaterialize = "materialize"
)

// MissingLockFileError reports a project that has not been restored. The
// message is the one printed by the CLI.
func MissingLockFileError(projectName, lockPath string) error {
	return errors.LockFileError(fmt.Sprintf("project %q does not have a lock file", projectName)).
		WithContext("path", lockPath).
		WithContext("reason", string(incremental.ReasonMissingLockFile)).
		UserAction().
		Build()
}

// IsMissingLockFile reports whether err came from MissingLockFileError.
func IsMissingLockFile(err error) bool {
	ce, ok := errors.AsClassified(err)
	if !ok || ce.Category() != errors.CategoryLockFile {
		return false
	}
	reason, _ := ce.Context().GetString("reason")
	return reason == string(incremental.ReasonMissingLockFile)
}

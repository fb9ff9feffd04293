package metrics

import (
	"os"
	"path/filepath"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/runbuild/internal/foundation/errors"
)

// WriteTextfile writes every metric gathered from g to path in the text
// exposition format. The parent directory is created when missing.
func WriteTextfile(path string, g prom.Gatherer) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "create metrics directory").
			WithContext("path", path).
			Build()
	}
	if err := prom.WriteToTextfile(path, g); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "write metrics textfile").
			WithContext("path", path).
			Build()
	}
	return nil
}

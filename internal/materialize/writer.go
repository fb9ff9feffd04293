package materialize

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/beevik/etree"

	"git.home.luguber.info/inful/runbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/runbuild/internal/lockfile"
	"git.home.luguber.info/inful/runbuild/internal/logfields"
)

// writer performs the file operations of one materialization and records
// every written path in result.
type writer struct {
	logger *slog.Logger
	result *Result
}

func (w *writer) record(path string) {
	w.result.Written = append(w.result.Written, path)
}

func (w *writer) copyAssets(export lockfile.DependencyExport, dir string) error {
	for _, asset := range export.RuntimeAssets {
		if err := w.copy(asset.Path, filepath.Join(dir, asset.FileName())); err != nil {
			return err
		}
	}
	return nil
}

// copyIfExists copies src when it exists and silently skips it otherwise.
func (w *writer) copyIfExists(src, dst string) error {
	if _, err := os.Stat(src); os.IsNotExist(err) {
		return nil
	}
	return w.copy(src, dst)
}

func (w *writer) copy(src, dst string) error {
	if filepath.Clean(src) == filepath.Clean(dst) {
		return nil
	}
	if err := copyFile(src, dst); err != nil {
		return errors.FileSystemError("copy file").
			WithCause(err).
			WithContext("source", src).
			WithContext("path", dst).
			Build()
	}
	w.logger.Debug("Copied file", logfields.Source(src), logfields.Target(dst))
	w.record(dst)
	return nil
}

func (w *writer) copyExecutable(src, dst string) error {
	if err := w.copy(src, dst); err != nil {
		return err
	}
	// #nosec G302 - the host binary must be executable
	if err := os.Chmod(dst, 0o755); err != nil {
		return errors.FileSystemError("mark host executable").
			WithCause(err).
			WithContext("path", dst).
			Build()
	}
	return nil
}

func (w *writer) writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return errors.FileSystemError("create output directory").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.FileSystemError("write file").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	w.logger.Debug("Wrote file", logfields.Path(path))
	w.record(path)
	return nil
}

func (w *writer) writeXML(doc *etree.Document, path string) error {
	doc.Indent(2)
	data, err := doc.WriteToBytes()
	if err != nil {
		return errors.FileSystemError("serialize manifest").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	return w.writeFile(path, data)
}

// copyFile copies a single file from src to dst, creating dst's directory
// and preserving the source permissions. An existing dst is removed first so
// a read-only copy from an earlier run can be replaced.
func copyFile(src, dst string) (err error) {
	// #nosec G304 - asset paths come from the resolver snapshot
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = srcFile.Close()
	}()

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return err
	}
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		// Windows refuses to delete read-only files.
		if os.Chmod(dst, 0o600) != nil {
			return err
		}
		if err := os.Remove(dst); err != nil {
			return err
		}
	}
	dstFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := dstFile.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return err
	}

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return err
	}
	return os.Chmod(dst, srcInfo.Mode().Perm())
}

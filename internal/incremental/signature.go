package incremental

import (
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"lukechampine.com/blake3"

	"git.home.luguber.info/inful/runbuild/internal/foundation/errors"
)

// InputSignature hashes the path, size and mtime of every input and the lock
// file. Equal signatures mean the gate would see the same input metadata.
// Missing files contribute their path only.
func InputSignature(inputs Inputs, lockPath string) string {
	paths := append(inputs.Paths(), lockPath)
	sort.Strings(paths)

	h := blake3.New(32, nil)
	for _, p := range paths {
		_, _ = fmt.Fprintf(h, "%s\x00", p)
		if info, err := os.Stat(p); err == nil {
			_, _ = fmt.Fprintf(h, "%d\x00%d\x00", info.Size(), info.ModTime().UnixNano())
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// TreeDigest hashes relative paths and contents of every regular file below
// dir. Timestamps are ignored so identical trees produce identical digests
// regardless of when they were written.
func TreeDigest(dir string) (string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return "", errors.WrapError(err, errors.CategoryFileSystem, "walk output tree").
			WithContext("path", dir).
			Build()
	}
	sort.Strings(files)

	h := blake3.New(32, nil)
	for _, rel := range files {
		_, _ = fmt.Fprintf(h, "%s\x00", rel)
		if err := hashFile(h, filepath.Join(dir, filepath.FromSlash(rel))); err != nil {
			return "", errors.WrapError(err, errors.CategoryFileSystem, "hash output file").
				WithContext("path", rel).
				Build()
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func hashFile(w io.Writer, path string) error {
	// #nosec G304 - path comes from walking the caller's tree
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	_, err = io.Copy(w, f)
	return err
}

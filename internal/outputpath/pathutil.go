package outputpath

import (
	"os"
	"path/filepath"
	"strings"
)

// EnsureTrailingSeparator cleans p and terminates it with a single separator.
func EnsureTrailingSeparator(p string) string {
	if p == "" {
		return p
	}
	cleaned := filepath.Clean(p)
	if strings.HasSuffix(cleaned, string(os.PathSeparator)) {
		return cleaned
	}
	return cleaned + string(os.PathSeparator)
}

package docs

import (
	"os"
	"path/filepath"
	"strings"
)

// DeepestCommonPath returns the deepest directory containing every path.
// With no paths it returns the filesystem root. A single path yields the path
// itself when it is a directory, its parent otherwise. Paths are made absolute
// before comparison.
func DeepestCommonPath(paths []string) (string, error) {
	if len(paths) == 0 {
		return string(filepath.Separator), nil
	}

	var common []string
	for i, p := range paths {
		dir, err := containingDir(p)
		if err != nil {
			return "", err
		}
		parts := splitPath(dir)
		if i == 0 {
			common = parts
			continue
		}
		common = common[:sharedPrefix(common, parts)]
	}
	return joinPath(common), nil
}

func containingDir(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		return abs, nil
	}
	return filepath.Dir(abs), nil
}

// splitPath splits an absolute, clean path into its volume+root and elements.
func splitPath(p string) []string {
	vol := filepath.VolumeName(p)
	rest := strings.TrimPrefix(p[len(vol):], string(filepath.Separator))
	parts := []string{vol + string(filepath.Separator)}
	if rest != "" {
		parts = append(parts, strings.Split(rest, string(filepath.Separator))...)
	}
	return parts
}

func sharedPrefix(a, b []string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

func joinPath(parts []string) string {
	if len(parts) == 0 {
		return string(filepath.Separator)
	}
	return filepath.Join(parts...)
}

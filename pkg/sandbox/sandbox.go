// Package sandbox confines tutorial file paths to the working-directory
// root. Tutorials are frequently fetched from remote sources, so a file
// block must never write outside the directory the run was started in
// unless the operator explicitly allowed it.
package sandbox

import (
	"path/filepath"
	"strings"

	"github.com/arthur-debert/guiderails/pkg/errors"
)

// Resolve validates a requested path against the working-directory root
// and returns the absolute path to operate on.
//
// Relative paths resolve against root. The resolved path must be the root
// itself or a descendant of it; absolute paths and `..` chains that leave
// the root fail with ErrPathEscape. When allowUnsafe is set (a run-level
// decision threaded in from the CLI, never a per-action attribute) both
// restrictions are lifted.
func Resolve(path, root string, allowUnsafe bool) (string, error) {
	if path == "" {
		return "", errors.New(errors.ErrInvalidInput, "empty path")
	}

	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFilesystem, "cannot resolve working directory %q", root)
	}

	if filepath.IsAbs(path) {
		if !allowUnsafe {
			return "", errors.Newf(errors.ErrPathEscape,
				"absolute path %q is not allowed; pass --allow-unsafe-paths to override", path)
		}
		return filepath.Clean(path), nil
	}

	resolved := filepath.Clean(filepath.Join(rootAbs, path))
	if allowUnsafe {
		return resolved, nil
	}

	if resolved != rootAbs && !strings.HasPrefix(resolved, rootAbs+string(filepath.Separator)) {
		return "", errors.Newf(errors.ErrPathEscape,
			"path %q escapes the working directory; pass --allow-unsafe-paths to override", path)
	}

	return resolved, nil
}

package walker

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/tristendillon/minireact/core/logger"
)

// Walker lists the files under a source root, skipping excluded directories.
type Walker struct {
	Root    string
	Exclude []string
}

func New(root string, exclude []string) *Walker {
	return &Walker{Root: root, Exclude: exclude}
}

// Excluded reports whether path, or any directory above it inside Root,
// matches an exclude entry. Entries match a whole path segment or a
// relative path prefix.
func (w *Walker) Excluded(path string) bool {
	rel, err := filepath.Rel(w.Root, path)
	if err != nil || rel == "." {
		return false
	}
	rel = filepath.Clean(rel)

	segments := strings.Split(rel, string(filepath.Separator))
	for _, ex := range w.Exclude {
		ex = filepath.Clean(ex)
		if rel == ex || strings.HasPrefix(rel, ex+string(filepath.Separator)) {
			return true
		}
		for _, seg := range segments {
			if seg == ex {
				return true
			}
		}
	}

	return false
}

// Walk calls fn for every regular file below Root in lexical order.
func (w *Walker) Walk(ctx context.Context, fn func(path string) error) error {
	return w.WalkFrom(ctx, w.Root, fn)
}

// WalkFrom is Walk starting at dir, a directory inside Root.
func (w *Walker) WalkFrom(ctx context.Context, dir string, fn func(path string) error) error {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if w.Excluded(path) {
			logger.Debug("Excluding %s", path)
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		return fn(path)
	})
	if err != nil {
		return fmt.Errorf("failed to walk %s: %w", dir, err)
	}
	return nil
}

// Dirs lists Root and every non-excluded directory below it.
func (w *Walker) Dirs(ctx context.Context) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(w.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.Excluded(path) {
			return filepath.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", w.Root, err)
	}
	return dirs, nil
}

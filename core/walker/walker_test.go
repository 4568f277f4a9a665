package walker_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tristendillon/minireact/core/walker"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestWalkSkipsExcluded(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	touch(t, filepath.Join(root, "app.js"))
	touch(t, filepath.Join(root, "pages", "home", "index.js"))
	touch(t, filepath.Join(root, "node_modules", "lib", "index.js"))
	touch(t, filepath.Join(root, "pages", "node_modules", "x.js"))
	touch(t, filepath.Join(root, "generated", "out.js"))

	w := walker.New(root, []string{"node_modules", "generated"})

	var found []string
	require.NoError(t, w.Walk(context.Background(), func(path string) error {
		rel, err := filepath.Rel(root, path)
		require.NoError(t, err)
		found = append(found, filepath.ToSlash(rel))
		return nil
	}))

	assert.Equal(t, []string{"app.js", "pages/home/index.js"}, found)

	dirs, err := w.Dirs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{root, filepath.Join(root, "pages"), filepath.Join(root, "pages", "home")}, dirs)
}

func TestExcluded(t *testing.T) {
	t.Parallel()

	w := walker.New("/src", []string{".git", "assets/raw"})

	assert.True(t, w.Excluded("/src/.git/HEAD"))
	assert.True(t, w.Excluded("/src/assets/raw/a.psd"))
	assert.False(t, w.Excluded("/src/assets/img/a.png"))
	assert.False(t, w.Excluded("/src"))
}

func TestWalkHonorsCancel(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	touch(t, filepath.Join(root, "a.js"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := walker.New(root, nil).Walk(ctx, func(string) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

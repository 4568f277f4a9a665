package shared_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tristendillon/minireact/core/shared"
)

func TestToTitle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Tap", shared.ToTitle("tap"))
	assert.Equal(t, "LongPress", shared.ToTitle("LongPress"))
	assert.Equal(t, "", shared.ToTitle(""))
}

func TestTrimRelative(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "pages/home", shared.TrimRelative("./pages/home"))
	assert.Equal(t, "pages/home", shared.TrimRelative("/pages/home"))
	assert.Equal(t, "../pages", shared.TrimRelative("../pages"))
}

package transform_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tristendillon/minireact/core/ast"
	"github.com/tristendillon/minireact/core/config"
	"github.com/tristendillon/minireact/core/models"
	"github.com/tristendillon/minireact/core/transform"
)

type fixture struct {
	cfg  *config.Config
	opts transform.Options
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := config.Default()
	cfg.Cwd = t.TempDir()
	require.NoError(t, os.MkdirAll(cfg.SrcDirPath(), 0o755))

	return &fixture{cfg: cfg, opts: transform.OptionsFromConfig(cfg)}
}

func (f *fixture) asset(t *testing.T, rel string, kind models.AssetKind, content string) *models.Asset {
	t.Helper()

	path := filepath.Join(f.cfg.SrcDirPath(), rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	asset, err := models.NewAsset(f.cfg.SrcDirPath(), f.cfg.DestDirPath(), path, kind)
	require.NoError(t, err)
	return asset
}

func (f *fixture) transform(t *testing.T, asset *models.Asset) string {
	t.Helper()

	tr, ok := transform.New(asset, f.opts, transform.DirectSink)
	require.True(t, ok)

	res, err := tr.Transform(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Written)

	out, err := os.ReadFile(asset.DestinationPath)
	require.NoError(t, err)
	assert.EqualValues(t, len(out), res.Bytes)
	return string(out)
}

func TestStyleConvertsRPX(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	asset := f.asset(t, "pages/home/index.scss", models.Stylesheet, ".a { width: 750rpx; margin: .5rpx 10px; }\n")

	out := f.transform(t, asset)

	assert.Equal(t, ".a { width: 7.5rem; margin: 0.005rem 10px; }\n", out)
	assert.NotContains(t, out, "rpx")
}

func TestConvertRPX(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"height: 100rpx;", "height: 1rem;"},
		{"padding: 20rpx 32rpx;", "padding: 0.2rem 0.32rem;"},
		{"border: 1.5rpx solid;", "border: 0.015rem solid;"},
		{"width: 10px;", "width: 10px;"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, string(transform.ConvertRPX([]byte(tt.in))), tt.in)
	}
}

func TestEventName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"catchTap":       "onClick",
		"bindtap":        "onClick",
		"bindchange":     "onChange",
		"catchLongPress": "onLongPress",
		"onTap":          "onClick",
		"catch":          "catch",
		"className":      "className",
	}

	for in, want := range tests {
		assert.Equal(t, want, transform.EventName(in), in)
	}
}

const componentSource = `import React from '@react';

class Demo extends React.Component {
  render() {
    return (
      <view>
        <switch catchTap={this.toggle} />
        <switch></switch>
        {this.state.list.map(item => <text>{item}</text>)}
        {this.state.list.map(function (item) { return item; }, this)}
        <image src="../../assets/img/a.png" />
        <image src="https://cdn.example.com/a.png" />
      </view>
    );
  }
}

export default Demo;
`

func TestOrdinaryModule(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	out := f.transform(t, f.asset(t, "components/demo/index.js", models.OrdinaryModule, componentSource))

	assert.True(t, strings.HasPrefix(out, `import dynamicLoad from "@internalComponents/dynamicLoad";
import Switch from "schnee-ui/components/XSwitch";
import Image from "@internalComponents/Image";
import React from '@react';
`), out)
	assert.Equal(t, 1, strings.Count(out, `import Switch from`))

	assert.Contains(t, out, `<Switch onClick={this.toggle} />`)
	assert.Contains(t, out, `<Switch></Switch>`)
	assert.Contains(t, out, `<div>`)
	assert.Contains(t, out, `</div>`)
	assert.Contains(t, out, `map(item => <span>{item}</span>, this)`)
	assert.Contains(t, out, `map(function (item) { return item; }, this)`)
	assert.Contains(t, out, `<Image src={require("@assets/img/a.png")} />`)
	assert.Contains(t, out, `<Image src="https://cdn.example.com/a.png" />`)
	assert.Contains(t, out, "export default Demo;")
}

func TestOrdinaryEventsOutsideRender(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	src := `const tip = <view catchTap={go}>{list.map(x => x)}</view>;
`
	out := f.transform(t, f.asset(t, "utils/tip.js", models.OrdinaryModule, src))

	assert.Contains(t, out, `<div catchTap={go}>{list.map(x => x)}</div>`)
}

func TestOrdinaryWrapsDefaultExport(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rel  string
		src  string
		want string
	}{
		{
			name: "named function",
			rel:  "utils/format.js",
			src:  "export default function format(a) {\n  return a;\n}\n",
			want: "export default dynamicLoad(function (a) {\n  return a;\n});\n",
		},
		{
			name: "anonymous function",
			rel:  "utils/anon.js",
			src:  "export default function (a) { return a; }\n",
			want: "export default dynamicLoad(function (a) { return a; })",
		},
		{
			name: "identifier under pages",
			rel:  "pages/home/index.js",
			src:  "const Home = 1;\nexport default Home;\n",
			want: "export default dynamicLoad(Home);",
		},
		{
			name: "identifier elsewhere",
			rel:  "components/card/index.js",
			src:  "const Card = 1;\nexport default Card;\n",
			want: "export default Card;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			out := f.transform(t, f.asset(t, tt.rel, models.OrdinaryModule, tt.src))
			assert.Contains(t, out, tt.want)
		})
	}
}

const appSource = `import React from '@react';
import './pages/index/index';
import Home from './pages/home/index';
import util from './utils/util';

class Global extends React.Component {
  config = {
    tabBar: {
      list: [
        { iconPath: 'assets/tab/home.png', selectedIconPath: '../assets/tab/home-on.png', text: 'Home' }
      ]
    }
  };
  render() {
    return null;
  }
}

export default App(new Global());
`

func TestRootModule(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	out := f.transform(t, f.asset(t, "app.js", models.RootModule, appSource))

	assert.True(t, strings.HasPrefix(out, `import dynamicLoad from "@internalComponents/dynamicLoad";
import DEFAULT_LOADING from "@internalComponents/DefaultLoading";
const Page_0 = dynamicLoad({
  loader: () => import("./pages/index/index"),
  loading: DEFAULT_LOADING,
});
const Page_1 = dynamicLoad({
  loader: () => import("./pages/home/index"),
  loading: DEFAULT_LOADING,
});
import React from '@react';
import util from './utils/util';
`), out)

	assert.NotContains(t, out, "import Home from")
	assert.NotContains(t, out, "import './pages/index/index'")
	assert.Contains(t, out, "class Global {")
	assert.NotContains(t, out, "extends")
	assert.Contains(t, out, `iconPath: require("@assets/tab/home.png")`)
	assert.Contains(t, out, `selectedIconPath: require("@assets/tab/home-on.png")`)
	assert.Contains(t, out, "export default new Global();")
	assert.True(t, strings.HasSuffix(out, `
export const routes = [
  { url: "pages/index/index", component: Page_0 },
  { url: "pages/home/index", component: Page_1 },
];
`), out)
}

func TestRootModuleExportUnwrapsArgument(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	src := "class Global {}\nexport default new Global({});\n"
	out := f.transform(t, f.asset(t, "app.js", models.RootModule, src))

	assert.Contains(t, out, "export default {};")
}

func TestRootModuleExportOnlyForEntry(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	src := "class Global {}\nexport default App(new Global());\n"
	out := f.transform(t, f.asset(t, "sub/app.js", models.RootModule, src))

	assert.Contains(t, out, "export default App(new Global());")
}

func TestRenderIsIdempotent(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	asset := f.asset(t, "app.js", models.RootModule, appSource)
	tr, ok := transform.New(asset, f.opts, transform.DirectSink)
	require.True(t, ok)

	first, err := tr.Render(context.Background(), []byte(appSource))
	require.NoError(t, err)
	second, err := tr.Render(context.Background(), []byte(appSource))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
	assert.Contains(t, string(second), "const Page_0 =")
	assert.NotContains(t, string(second), "Page_2")
}

func TestSyntaxErrorWritesNothing(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	asset := f.asset(t, "pages/broken.js", models.OrdinaryModule, "export default function (\n")

	tr, ok := transform.New(asset, f.opts, transform.DirectSink)
	require.True(t, ok)

	_, err := tr.Transform(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ast.ErrSyntax))

	_, statErr := os.Stat(asset.DestinationPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestNewRejectsStaticAssets(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, ok := transform.New(f.asset(t, "logo.png", models.StaticAsset, "png"), f.opts, transform.DirectSink)
	assert.False(t, ok)
}

func TestSinkCanSkipWrite(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	asset := f.asset(t, "a.css", models.Stylesheet, "a{}")

	var seen []byte
	sink := transform.SinkFunc(func(_ *models.Asset, content []byte) (bool, error) {
		seen = content
		return false, nil
	})

	tr, ok := transform.New(asset, f.opts, sink)
	require.True(t, ok)

	res, err := tr.Transform(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Written)
	assert.Equal(t, "a{}", string(seen))
}

func TestIsPagePath(t *testing.T) {
	t.Parallel()

	assert.True(t, transform.IsPagePath("./pages/home/index"))
	assert.True(t, transform.IsPagePath("/pages/home"))
	assert.True(t, transform.IsPagePath("pages"))
	assert.False(t, transform.IsPagePath("./pagesExtra/x"))
	assert.False(t, transform.IsPagePath("./components/pages"))
}

package generator_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tristendillon/minireact/core/config"
	"github.com/tristendillon/minireact/core/generator"
	"github.com/tristendillon/minireact/core/metrics"
	"github.com/tristendillon/minireact/core/models"
)

// fakeSession replays a fixed list of events.
type fakeSession struct {
	events   chan models.Event
	done     chan struct{}
	state    models.SessionState
	startErr error
	closed   bool
}

func newFakeSession(events ...models.Event) *fakeSession {
	ch := make(chan models.Event, len(events)+8)
	for _, ev := range events {
		ch <- ev
	}
	return &fakeSession{events: ch, done: make(chan struct{})}
}

func (s *fakeSession) Start(context.Context) error {
	if s.startErr != nil {
		return s.startErr
	}
	s.state = models.SessionDiscovering
	return nil
}

func (s *fakeSession) Events() <-chan models.Event { return s.events }
func (s *fakeSession) Done() <-chan struct{}       { return s.done }
func (s *fakeSession) State() models.SessionState  { return s.state }

func (s *fakeSession) Close() error {
	if !s.closed {
		s.closed = true
		s.state = models.SessionClosed
		close(s.done)
	}
	return nil
}

type project struct {
	cfg   *config.Config
	files []string
}

func newProject(t *testing.T, files map[string]string) *project {
	t.Helper()

	cfg := config.Default()
	cfg.Cwd = t.TempDir()
	cfg.Concurrency = 2

	p := &project{cfg: cfg}
	for rel, content := range files {
		path := filepath.Join(cfg.SrcDirPath(), rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		p.files = append(p.files, path)
	}
	return p
}

func (p *project) discovery() []models.Event {
	var events []models.Event
	for _, f := range p.files {
		events = append(events, models.Event{Kind: models.EventAdd, Path: f})
	}
	return append(events, models.Event{Kind: models.EventReady})
}

func (p *project) src(rel string) string {
	return filepath.Join(p.cfg.SrcDirPath(), rel)
}

func (p *project) dest(rel string) string {
	return filepath.Join(p.cfg.DestDirPath(), rel)
}

func (p *project) transpiler(t *testing.T, session *fakeSession, opts ...generator.Option) *generator.Transpiler {
	t.Helper()

	opts = append(opts, generator.WithSessionFactory(func(bool) generator.EventSource { return session }))
	tp, err := generator.New(p.cfg, opts...)
	require.NoError(t, err)
	return tp
}

var sampleProject = map[string]string{
	"app.js":                "import './pages/index/index';\nclass App extends Base {}\nexport default new App({});\n",
	"pages/index/index.js":  "export default function Index() {\n  return <view>hi</view>;\n}\n",
	"pages/index/index.css": ".a { height: 88rpx; }\n",
	"assets/logo.png":       "\x89PNG\x00\x01binary",
	"broken.js":             "export default function (\n",
}

func TestClassify(t *testing.T) {
	t.Parallel()

	p := newProject(t, nil)
	tp := p.transpiler(t, newFakeSession())

	assert.Equal(t, models.RootModule, tp.Classify(p.src("app.js")))
	assert.Equal(t, models.OrdinaryModule, tp.Classify(p.src("pages/app.js")))
	assert.Equal(t, models.OrdinaryModule, tp.Classify(p.src("a.JSX")))
	assert.Equal(t, models.Stylesheet, tp.Classify(p.src("a.less")))
	assert.Equal(t, models.StaticAsset, tp.Classify(p.src("data.json")))
	assert.Equal(t, models.StaticAsset, tp.Classify(p.src("Makefile")))
}

func TestBuild(t *testing.T) {
	t.Parallel()

	p := newProject(t, sampleProject)
	session := newFakeSession(p.discovery()...)
	recorder := metrics.NewRecorder()
	tp := p.transpiler(t, session, generator.WithMetrics(recorder))

	report, err := tp.Build(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, report.Transformed)
	assert.Equal(t, 1, report.Copied)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "broken.js", report.Failures[0].Path)
	assert.True(t, report.Failed())
	assert.Equal(t, 5, report.Total())
	assert.True(t, session.closed)

	logo, err := os.ReadFile(p.dest("assets/logo.png"))
	require.NoError(t, err)
	assert.Equal(t, sampleProject["assets/logo.png"], string(logo))

	css, err := os.ReadFile(p.dest("pages/index/index.css"))
	require.NoError(t, err)
	assert.Equal(t, ".a { height: 0.88rem; }\n", string(css))

	app, err := os.ReadFile(p.dest("app.js"))
	require.NoError(t, err)
	assert.Contains(t, string(app), `{ url: "pages/index/index", component: Page_0 }`)
	assert.Contains(t, string(app), "export default {};")

	page, err := os.ReadFile(p.dest("pages/index/index.js"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "<div>hi</div>")

	assert.NoFileExists(t, p.dest("broken.js"))

	assert.InDelta(t, 1, testutil.ToFloat64(recorder.Files.WithLabelValues("script", metrics.ResultFailed)), 0)
	assert.InDelta(t, 5, testutil.ToFloat64(recorder.Tracked), 0)
}

func TestBuildIsIdempotent(t *testing.T) {
	t.Parallel()

	p := newProject(t, sampleProject)
	tp := p.transpiler(t, newFakeSession(p.discovery()...))

	_, err := tp.Build(context.Background())
	require.NoError(t, err)
	first, err := os.ReadFile(p.dest("app.js"))
	require.NoError(t, err)

	ctx := context.Background()
	tp.HandleEvent(ctx, models.Event{Kind: models.EventChange, Path: p.src("app.js")})
	second, err := os.ReadFile(p.dest("app.js"))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
	assert.NotContains(t, string(second), "Page_1")
	assert.Positive(t, tp.CacheStats().CacheHits)
}

func TestBuildDiscoveryError(t *testing.T) {
	t.Parallel()

	p := newProject(t, sampleProject)
	boom := errors.New("permission denied")
	session := newFakeSession(
		models.Event{Kind: models.EventAdd, Path: p.src("app.js")},
		models.Event{Kind: models.EventError, Err: boom},
	)
	tp := p.transpiler(t, session)

	_, err := tp.Build(context.Background())
	require.ErrorIs(t, err, generator.ErrDiscovery)
	require.ErrorIs(t, err, boom)
	assert.NoFileExists(t, p.dest("app.js"))
	assert.True(t, session.closed)
}

func TestBuildStartError(t *testing.T) {
	t.Parallel()

	p := newProject(t, nil)
	session := newFakeSession()
	session.startErr = errors.New("no watcher")
	tp := p.transpiler(t, session)

	_, err := tp.Build(context.Background())
	assert.ErrorIs(t, err, generator.ErrDiscovery)
}

func TestBuildSessionClosedEarly(t *testing.T) {
	t.Parallel()

	p := newProject(t, nil)
	session := newFakeSession()
	require.NoError(t, session.Close())
	tp := p.transpiler(t, session)

	_, err := tp.Build(context.Background())
	assert.ErrorIs(t, err, generator.ErrSessionClosed)
}

func TestHandleEvents(t *testing.T) {
	t.Parallel()

	p := newProject(t, map[string]string{"pages/a.css": "a { top: 10rpx; }\n"})
	tp := p.transpiler(t, newFakeSession(p.discovery()...))
	ctx := context.Background()

	_, err := tp.Build(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, tp.Tracked())

	// A change for a path that was never discovered is ignored.
	tp.HandleEvent(ctx, models.Event{Kind: models.EventChange, Path: p.src("ghost.css")})
	assert.Equal(t, 1, tp.Tracked())
	assert.NoFileExists(t, p.dest("ghost.css"))

	require.NoError(t, os.WriteFile(p.src("pages/a.css"), []byte("a { top: 20rpx; }\n"), 0o644))
	tp.HandleEvent(ctx, models.Event{Kind: models.EventChange, Path: p.src("pages/a.css")})
	data, err := os.ReadFile(p.dest("pages/a.css"))
	require.NoError(t, err)
	assert.Equal(t, "a { top: 0.2rem; }\n", string(data))

	require.NoError(t, os.WriteFile(p.src("pages/b.txt"), []byte("plain"), 0o644))
	tp.HandleEvent(ctx, models.Event{Kind: models.EventAdd, Path: p.src("pages/b.txt")})
	assert.Equal(t, 2, tp.Tracked())
	assert.FileExists(t, p.dest("pages/b.txt"))

	tp.HandleEvent(ctx, models.Event{Kind: models.EventRemove, Path: p.src("pages")})
	assert.Equal(t, 0, tp.Tracked())
	assert.NoFileExists(t, p.dest("pages/a.css"))
	assert.NoFileExists(t, p.dest("pages/b.txt"))

	tp.HandleEvent(ctx, models.Event{Kind: models.EventError, Err: errors.New("overflow")})
	tp.HandleEvent(ctx, models.Event{Kind: models.EventReady})
}

func TestWatchStopsOnCancel(t *testing.T) {
	t.Parallel()

	p := newProject(t, map[string]string{"a.css": "a { top: 10rpx; }\n"})
	session := newFakeSession(p.discovery()...)
	tp := p.transpiler(t, session)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- tp.Watch(ctx) }()

	require.NoError(t, os.WriteFile(p.src("b.css"), []byte("b { top: 30rpx; }\n"), 0o644))
	session.events <- models.Event{Kind: models.EventAdd, Path: p.src("b.css")}

	require.Eventually(t, func() bool {
		data, err := os.ReadFile(p.dest("b.css"))
		return err == nil && string(data) == "b { top: 0.3rem; }\n"
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
	assert.FileExists(t, p.dest("a.css"))
}

func TestPreview(t *testing.T) {
	t.Parallel()

	p := newProject(t, sampleProject)
	tp := p.transpiler(t, newFakeSession())

	kind, src, out, err := tp.Preview(context.Background(), p.src("pages/index/index.css"))
	require.NoError(t, err)
	assert.Equal(t, models.Stylesheet, kind)
	assert.Equal(t, sampleProject["pages/index/index.css"], string(src))
	assert.Equal(t, ".a { height: 0.88rem; }\n", string(out))
	assert.NoFileExists(t, p.dest("pages/index/index.css"))

	kind, src, out, err = tp.Preview(context.Background(), p.src("assets/logo.png"))
	require.NoError(t, err)
	assert.Equal(t, models.StaticAsset, kind)
	assert.Equal(t, src, out)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Cwd = t.TempDir()
	cfg.Concurrency = 0

	_, err := generator.New(cfg)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestBuildExampleProject(t *testing.T) {
	t.Parallel()

	root, err := filepath.Abs(filepath.Join("..", "..", "example"))
	require.NoError(t, err)

	cfg, err := config.LoadFrom(root, filepath.Join(root, config.FileName))
	require.NoError(t, err)
	cfg.Destination.Root = t.TempDir()

	tp, err := generator.New(cfg)
	require.NoError(t, err)

	report, err := tp.Build(context.Background())
	require.NoError(t, err)
	require.Empty(t, report.Failures)
	assert.Equal(t, 6, report.Transformed)
	assert.Equal(t, 5, report.Copied)

	app, err := os.ReadFile(filepath.Join(cfg.DestDirPath(), "app.js"))
	require.NoError(t, err)
	assert.Contains(t, string(app), `{ url: "pages/logs/index", component: Page_1 }`)
	assert.Contains(t, string(app), `iconPath: require("@assets/tab/home.png")`)
	assert.Contains(t, string(app), "export default new Global();")

	page, err := os.ReadFile(filepath.Join(cfg.DestDirPath(), "pages", "index", "index.js"))
	require.NoError(t, err)
	assert.Contains(t, string(page), `import Switch from "schnee-ui/components/XSwitch";`)
	assert.Contains(t, string(page), `<Switch checked={this.state.enabled} onChange={this.toggle} />`)
	assert.Contains(t, string(page), "export default dynamicLoad(P);")
}

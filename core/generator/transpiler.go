package generator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tristendillon/minireact/core/cache"
	"github.com/tristendillon/minireact/core/config"
	"github.com/tristendillon/minireact/core/dependency"
	"github.com/tristendillon/minireact/core/logger"
	"github.com/tristendillon/minireact/core/metrics"
	"github.com/tristendillon/minireact/core/models"
	"github.com/tristendillon/minireact/core/transform"
	"github.com/tristendillon/minireact/core/walker"
	"github.com/tristendillon/minireact/core/watcher"
)

var (
	ErrDiscovery     = errors.New("discovery failed")
	ErrSessionClosed = errors.New("session closed before discovery finished")
)

// EventSource reports the files under the source root: one add per file,
// a ready event once discovery is done, then changes if it stays open.
type EventSource interface {
	Start(ctx context.Context) error
	Events() <-chan models.Event
	Done() <-chan struct{}
	State() models.SessionState
	Close() error
}

// SessionFactory builds the event source for one build or watch run.
type SessionFactory func(persistent bool) EventSource

type entry struct {
	asset       *models.Asset
	transformer transform.Transformer
}

// Transpiler owns one transformer per discovered path and drives full and
// incremental runs over the source tree.
type Transpiler struct {
	cfg        *config.Config
	opts       transform.Options
	cache      *cache.ContentCache
	copier     *dependency.Copier
	recorder   *metrics.Recorder
	newSession SessionFactory

	mu      sync.Mutex
	entries map[string]*entry
}

type Option func(*Transpiler)

func WithMetrics(r *metrics.Recorder) Option {
	return func(t *Transpiler) { t.recorder = r }
}

func WithSessionFactory(f SessionFactory) Option {
	return func(t *Transpiler) { t.newSession = f }
}

func New(cfg *config.Config, options ...Option) (*Transpiler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	contentCache, err := cache.NewContentCache(cache.DefaultSize)
	if err != nil {
		return nil, err
	}

	t := &Transpiler{
		cfg:     cfg,
		opts:    transform.OptionsFromConfig(cfg),
		cache:   contentCache,
		copier:  dependency.NewCopier(),
		entries: make(map[string]*entry),
	}
	t.newSession = t.defaultSession
	for _, opt := range options {
		opt(t)
	}
	return t, nil
}

func (t *Transpiler) defaultSession(persistent bool) EventSource {
	w := walker.New(t.cfg.SrcDirPath(), t.cfg.Exclude)
	return watcher.NewSession(w, watcher.Options{
		Persistent: persistent,
		Debounce:   t.cfg.Watch.Debounce,
	})
}

// Classify maps a path to its asset kind. Every path has exactly one kind.
func (t *Transpiler) Classify(path string) models.AssetKind {
	if filepath.Clean(path) == t.opts.EntryPath {
		return models.RootModule
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case slices.Contains(t.cfg.Extensions.Script, ext):
		return models.OrdinaryModule
	case slices.Contains(t.cfg.Extensions.Style, ext):
		return models.Stylesheet
	default:
		return models.StaticAsset
	}
}

// Tracked is the number of paths with a live instance.
func (t *Transpiler) Tracked() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

func (t *Transpiler) lookup(path string) (*entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[filepath.Clean(path)]
	return e, ok
}

// register creates the instance for path on first sight and returns the
// existing one afterwards. The kind is fixed at this point.
func (t *Transpiler) register(path string) (*entry, error) {
	path = filepath.Clean(path)

	t.mu.Lock()
	defer t.mu.Unlock()

	if e, ok := t.entries[path]; ok {
		return e, nil
	}

	kind := t.Classify(path)
	asset, err := models.NewAsset(t.cfg.SrcDirPath(), t.cfg.DestDirPath(), path, kind)
	if err != nil {
		return nil, err
	}

	e := &entry{asset: asset}
	if tr, ok := transform.New(asset, t.opts, t.cache); ok {
		e.transformer = tr
	}
	t.entries[path] = e

	logger.Debug("Registered %s as %s", asset.RelativePath, kind)
	if t.recorder != nil {
		t.recorder.SetTracked(len(t.entries))
	}
	return e, nil
}

// discover starts the session and registers every added path until it
// reports ready.
func (t *Transpiler) discover(ctx context.Context, session EventSource) ([]*entry, error) {
	if err := session.Start(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDiscovery, err)
	}

	var found []*entry
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-session.Done():
			return nil, ErrSessionClosed
		case ev := <-session.Events():
			switch ev.Kind {
			case models.EventAdd:
				e, err := t.register(ev.Path)
				if err != nil {
					logger.Warn("Skipping %s: %v", ev.Path, err)
					continue
				}
				found = append(found, e)
			case models.EventReady:
				logger.Debug("Discovered %d files in %s", len(found), t.cfg.SrcDirPath())
				return found, nil
			case models.EventError:
				return nil, fmt.Errorf("%w: %w", ErrDiscovery, ev.Err)
			case models.EventChange, models.EventRemove:
				logger.Debug("Ignoring %s during discovery", ev)
			}
		}
	}
}

// Build discovers the source tree, processes every file once and closes the
// session. Per-file failures land in the report; only discovery errors are
// returned.
func (t *Transpiler) Build(ctx context.Context) (*Report, error) {
	session := t.newSession(false)
	defer session.Close()

	entries, err := t.discover(ctx, session)
	if err != nil {
		return nil, err
	}

	return t.runAll(ctx, entries), nil
}

// Watch runs a full pass and then reprocesses files as they change until ctx
// is cancelled.
func (t *Transpiler) Watch(ctx context.Context) error {
	session := t.newSession(true)
	defer session.Close()

	entries, err := t.discover(ctx, session)
	if err != nil {
		return err
	}
	t.runAll(ctx, entries).Log()

	logger.Info("Watching %s for changes", t.cfg.SrcDirPath())
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-session.Done():
			return nil
		case ev := <-session.Events():
			t.HandleEvent(ctx, ev)
		}
	}
}

// HandleEvent applies one post-discovery notification.
func (t *Transpiler) HandleEvent(ctx context.Context, ev models.Event) {
	switch ev.Kind {
	case models.EventAdd:
		e, err := t.register(ev.Path)
		if err != nil {
			logger.Warn("Skipping %s: %v", ev.Path, err)
			return
		}
		t.logOutcome(t.process(ctx, e))

	case models.EventChange:
		e, ok := t.lookup(ev.Path)
		if !ok {
			logger.Warn("No instance for changed path %s, ignoring", ev.Path)
			return
		}
		t.logOutcome(t.process(ctx, e))

	case models.EventRemove:
		t.remove(ev.Path)

	case models.EventError:
		logger.Error("Watcher error: %v", ev.Err)

	case models.EventReady:
		logger.Debug("Session ready")
	}
}

// remove forgets path, or every path below it when it was a directory, and
// deletes the matching destination files.
func (t *Transpiler) remove(path string) {
	path = filepath.Clean(path)
	prefix := path + string(filepath.Separator)

	t.mu.Lock()
	var gone []*entry
	for p, e := range t.entries {
		if p == path || strings.HasPrefix(p, prefix) {
			gone = append(gone, e)
			delete(t.entries, p)
		}
	}
	tracked := len(t.entries)
	t.mu.Unlock()

	for _, e := range gone {
		e.asset.Lock()
		if err := os.Remove(e.asset.DestinationPath); err != nil && !os.IsNotExist(err) {
			logger.Warn("Failed to remove %s: %v", e.asset.DestinationPath, err)
		}
		t.cache.Forget(e.asset.DestinationPath)
		t.copier.Forget(e.asset.SourcePath)
		e.asset.Unlock()

		logger.Info("Removed %s", e.asset.RelativePath)
		if t.recorder != nil {
			t.recorder.Observe(e.asset.Kind.String(), metrics.ResultRemoved, 0, 0)
		}
	}

	if t.recorder != nil {
		t.recorder.SetTracked(tracked)
	}
}

type outcome struct {
	asset   *models.Asset
	written bool
	copied  bool
	bytes   int64
	err     error
	elapsed time.Duration
}

// process runs one file's transform or copy. Runs for the same path never
// overlap.
func (t *Transpiler) process(ctx context.Context, e *entry) outcome {
	e.asset.Lock()
	defer e.asset.Unlock()

	start := time.Now()
	out := outcome{asset: e.asset}

	if e.transformer == nil {
		copied, err := t.copier.Copy(e.asset)
		out.copied, out.written, out.bytes, out.err = err == nil, err == nil, copied.Bytes, err
	} else {
		res, err := e.transformer.Transform(ctx)
		out.written, out.bytes, out.err = res.Written, res.Bytes, err
	}
	out.elapsed = time.Since(start)

	if t.recorder != nil {
		result := metrics.ResultWritten
		switch {
		case out.err != nil:
			result = metrics.ResultFailed
		case !out.written:
			result = metrics.ResultUnchanged
		}
		t.recorder.Observe(e.asset.Kind.String(), result, out.bytes, out.elapsed)
	}

	return out
}

func (t *Transpiler) logOutcome(o outcome) {
	switch {
	case o.err != nil:
		logger.Error("Failed %s: %v", o.asset.RelativePath, o.err)
	case o.copied:
		logger.Info("Copied %s", o.asset.RelativePath)
	case o.written:
		logger.Info("Transformed %s in %s", o.asset.RelativePath, o.elapsed.Round(time.Microsecond))
	default:
		logger.Debug("Unchanged %s", o.asset.RelativePath)
	}
}

// runAll processes entries concurrently, bounded by the configured limit.
func (t *Transpiler) runAll(ctx context.Context, entries []*entry) *Report {
	start := time.Now()
	report := &Report{}

	var mu sync.Mutex
	g := errgroup.Group{}
	g.SetLimit(t.cfg.Concurrency)

	for _, e := range entries {
		g.Go(func() error {
			o := t.process(ctx, e)
			t.logOutcome(o)

			mu.Lock()
			report.add(o)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	report.Duration = time.Since(start)
	report.sort()
	return report
}

// Preview renders path without writing anything. Static files come back
// unchanged.
func (t *Transpiler) Preview(ctx context.Context, path string) (models.AssetKind, []byte, []byte, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return 0, nil, nil, err
	}

	kind := t.Classify(path)
	asset, err := models.NewAsset(t.cfg.SrcDirPath(), t.cfg.DestDirPath(), path, kind)
	if err != nil {
		return kind, nil, nil, err
	}
	if err := asset.Read(); err != nil {
		return kind, nil, nil, err
	}
	src := asset.Content()

	tr, ok := transform.New(asset, t.opts, transform.DirectSink)
	if !ok {
		return kind, src, src, nil
	}
	out, err := tr.Render(ctx, src)
	return kind, src, out, err
}

func (t *Transpiler) CacheStats() *models.CacheStats {
	return t.cache.GetStats()
}

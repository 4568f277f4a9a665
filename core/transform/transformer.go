package transform

import (
	"context"
	"regexp"
	"strings"

	"github.com/tristendillon/minireact/core/config"
	"github.com/tristendillon/minireact/core/models"
	"github.com/tristendillon/minireact/core/template_engine"
)

// Transformer rewrites one asset and persists the result.
type Transformer interface {
	Asset() *models.Asset
	// Render rewrites src in memory without touching the file system.
	Render(ctx context.Context, src []byte) ([]byte, error)
	Transform(ctx context.Context) (Result, error)
}

// Result describes one persisted run.
type Result struct {
	Bytes   int64
	Written bool
}

// Sink persists rendered output. Implementations may skip writes whose
// content has not changed.
type Sink interface {
	Write(asset *models.Asset, content []byte) (bool, error)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(asset *models.Asset, content []byte) (bool, error)

func (f SinkFunc) Write(asset *models.Asset, content []byte) (bool, error) {
	return f(asset, content)
}

// DirectSink writes every result to the asset's destination.
var DirectSink Sink = SinkFunc(func(asset *models.Asset, content []byte) (bool, error) {
	return true, asset.Write(content)
})

// Options are the runtime names generated code refers to.
type Options struct {
	LazyHelper         config.Import
	Loading            config.Import
	NativeComponents   string
	InternalComponents string
	AssetsAlias        string
	EntryPath          string
	RoutesExport       string
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		LazyHelper:         cfg.Runtime.LazyHelper,
		Loading:            cfg.Runtime.Loading,
		NativeComponents:   strings.TrimRight(cfg.Runtime.NativeComponents, "/"),
		InternalComponents: strings.TrimRight(cfg.Runtime.InternalComponents, "/"),
		AssetsAlias:        strings.TrimRight(cfg.Runtime.AssetsAlias, "/"),
		EntryPath:          cfg.EntryPath(),
		RoutesExport:       "routes",
	}
}

// New picks the transformer for a transformable asset kind.
func New(asset *models.Asset, opts Options, sink Sink) (Transformer, bool) {
	switch asset.Kind {
	case models.RootModule:
		return NewScript(asset, opts, sink, newRootProgram), true
	case models.OrdinaryModule:
		return NewScript(asset, opts, sink, newOrdinaryProgram), true
	case models.Stylesheet:
		return NewStyle(asset, sink), true
	case models.StaticAsset:
		return nil, false
	default:
		return nil, false
	}
}

var engine = template_engine.NewTemplateEngine()

var (
	remoteURLRegex  = regexp.MustCompile(`^https?://`)
	assetsPathRegex = regexp.MustCompile(`@?assets(\S+)`)
)

// resolveAsset maps a local path containing an assets marker onto the alias,
// e.g. "../../assets/img/a.png" becomes "@assets/img/a.png".
func resolveAsset(alias, p string) (string, bool) {
	if remoteURLRegex.MatchString(p) {
		return "", false
	}
	m := assetsPathRegex.FindStringSubmatch(p)
	if m == nil {
		return "", false
	}
	return alias + m[1], true
}

// aliasAsset is resolveAsset with a fallback that roots any other local path
// under the alias.
func aliasAsset(alias, p string) (string, bool) {
	if resolved, ok := resolveAsset(alias, p); ok {
		return resolved, true
	}
	if remoteURLRegex.MatchString(p) || p == "" {
		return "", false
	}
	p = strings.TrimPrefix(p, "./")
	return alias + "/" + strings.TrimLeft(p, "/"), true
}

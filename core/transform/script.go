package transform

import (
	"context"
	"fmt"

	"github.com/tristendillon/minireact/core/ast"
	"github.com/tristendillon/minireact/core/logger"
	"github.com/tristendillon/minireact/core/models"
)

// program holds the scratch state of one transform run. A fresh program is
// built for every run so nothing carries over between runs of the same file.
type program interface {
	register(passes *PassSet)
	// finish runs after traversal, once every pass has seen the tree.
	finish(tree *ast.Tree, edits *Rewriter) error
}

type programFactory func(asset *models.Asset, opts Options) program

// Script runs the parse, register, traverse, finish, generate, persist
// pipeline for JavaScript modules.
type Script struct {
	asset      *models.Asset
	opts       Options
	sink       Sink
	newProgram programFactory
}

func NewScript(asset *models.Asset, opts Options, sink Sink, factory programFactory) *Script {
	return &Script{asset: asset, opts: opts, sink: sink, newProgram: factory}
}

func (s *Script) Asset() *models.Asset {
	return s.asset
}

func (s *Script) Render(ctx context.Context, src []byte) ([]byte, error) {
	tree, err := ast.Parse(ctx, s.asset.SourcePath, src)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	prog := s.newProgram(s.asset, s.opts)
	passes := NewPassSet()
	prog.register(passes)

	edits := NewRewriter(tree.Source)
	if err := Traverse(ctx, tree, passes, edits); err != nil {
		return nil, fmt.Errorf("failed to traverse %s: %w", s.asset.RelativePath, err)
	}

	if err := prog.finish(tree, edits); err != nil {
		return nil, fmt.Errorf("failed to finish %s: %w", s.asset.RelativePath, err)
	}

	out, err := edits.Apply()
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s: %w", s.asset.RelativePath, err)
	}

	logger.Debug("Generated %s with %d passes and %d edits", s.asset.RelativePath, passes.Len(), edits.Len())
	return out, nil
}

func (s *Script) Transform(ctx context.Context) (Result, error) {
	if err := s.asset.Read(); err != nil {
		return Result{}, err
	}

	out, err := s.Render(ctx, s.asset.Content())
	if err != nil {
		return Result{}, err
	}
	s.asset.SetContent(out)

	written, err := s.sink.Write(s.asset, out)
	if err != nil {
		return Result{}, err
	}

	return Result{Bytes: int64(len(out)), Written: written}, nil
}

package transform

import (
	"context"
	"fmt"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/tristendillon/minireact/core/ast"
)

// Visitor handles one node of the kind its pass is registered for.
type Visitor func(c *Cursor) error

// Pass is a single rewrite rule keyed by the node type it visits.
type Pass struct {
	Name  string
	Kind  string
	Visit Visitor
}

// PassSet is an ordered list of passes. Registration is additive: every pass
// whose Kind matches a node runs, in registration order.
type PassSet struct {
	passes []Pass
	byKind map[string][]int
}

func NewPassSet() *PassSet {
	return &PassSet{byKind: make(map[string][]int)}
}

func (s *PassSet) Register(passes ...Pass) {
	for _, p := range passes {
		s.byKind[p.Kind] = append(s.byKind[p.Kind], len(s.passes))
		s.passes = append(s.passes, p)
	}
}

// Supersede swaps the pass registered under name for p, keeping its position.
// It is the only way one pass replaces another and reports false when no pass
// has that name.
func (s *PassSet) Supersede(name string, p Pass) bool {
	for i, existing := range s.passes {
		if existing.Name != name {
			continue
		}
		s.passes[i] = p
		s.reindex()
		return true
	}
	return false
}

func (s *PassSet) reindex() {
	s.byKind = make(map[string][]int, len(s.byKind))
	for i, p := range s.passes {
		s.byKind[p.Kind] = append(s.byKind[p.Kind], i)
	}
}

// Matching returns the passes for a node kind in registration order.
func (s *PassSet) Matching(kind string) []Pass {
	idx := s.byKind[kind]
	out := make([]Pass, len(idx))
	for i, j := range idx {
		out[i] = s.passes[j]
	}
	return out
}

func (s *PassSet) Len() int {
	return len(s.passes)
}

// Cursor is a pass's view of the node being visited.
type Cursor struct {
	Node  sitter.Node
	Tree  *ast.Tree
	Edits *Rewriter

	ancestors []sitter.Node
}

func (c *Cursor) Text(n sitter.Node) string {
	return c.Tree.Text(n)
}

// Parent is the nearest ancestor, or a null node at the root.
func (c *Cursor) Parent() sitter.Node {
	if len(c.ancestors) == 0 {
		return sitter.Node{}
	}
	return c.ancestors[len(c.ancestors)-1]
}

// Depth is the number of ancestors; the program itself has depth 0.
func (c *Cursor) Depth() int {
	return len(c.ancestors)
}

// TopLevel reports whether the node is a direct child of the program.
func (c *Cursor) TopLevel() bool {
	return len(c.ancestors) == 1
}

// Enclosing returns the nearest ancestor accepted by match.
func (c *Cursor) Enclosing(match func(sitter.Node) bool) (sitter.Node, bool) {
	for i := len(c.ancestors) - 1; i >= 0; i-- {
		if match(c.ancestors[i]) {
			return c.ancestors[i], true
		}
	}
	return sitter.Node{}, false
}

// InMethod reports whether the node sits inside a class method with the given name.
func (c *Cursor) InMethod(name string) bool {
	_, ok := c.Enclosing(func(n sitter.Node) bool {
		return n.Type() == "method_definition" && c.Text(n.ChildByFieldName("name")) == name
	})
	return ok
}

// Traverse walks the tree depth-first once, running every matching pass on
// each named node.
func Traverse(ctx context.Context, tree *ast.Tree, passes *PassSet, edits *Rewriter) error {
	c := &Cursor{Tree: tree, Edits: edits}
	return walk(ctx, c, tree.Root, passes)
}

func walk(ctx context.Context, c *Cursor, n sitter.Node, passes *PassSet) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.Node = n
	for _, p := range passes.Matching(n.Type()) {
		if err := p.Visit(c); err != nil {
			return fmt.Errorf("pass %s: %w", p.Name, err)
		}
	}

	c.ancestors = append(c.ancestors, n)
	for i := range n.NamedChildCount() {
		if err := walk(ctx, c, n.NamedChild(i), passes); err != nil {
			return err
		}
	}
	c.ancestors = c.ancestors[:len(c.ancestors)-1]

	return nil
}

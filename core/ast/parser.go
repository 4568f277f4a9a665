package ast

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/alexaandru/go-sitter-forest/javascript"
	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/tristendillon/minireact/core/logger"
)

var (
	ErrSyntax   = errors.New("syntax error")
	errNoRoot   = errors.New("parser returned no root node")
	errPoolType = errors.New("unexpected parser type in pool")
)

// ParseError locates the first syntax error in a file.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Snippet string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %v near %q", e.Path, e.Line, e.Column, ErrSyntax, e.Snippet)
}

func (e *ParseError) Unwrap() error {
	return ErrSyntax
}

var (
	languageOnce sync.Once
	language     *sitter.Language
	parserPool   = sync.Pool{
		New: func() any {
			p := sitter.NewParser()
			p.SetLanguage(jsLanguage())
			return p
		},
	}
)

// jsLanguage is the JavaScript grammar, which covers JSX, class fields and
// dynamic import.
func jsLanguage() *sitter.Language {
	languageOnce.Do(func() {
		language = sitter.NewLanguage(javascript.GetLanguage())
	})
	return language
}

// Tree is a parsed module. It must be closed once generation is done.
type Tree struct {
	Path   string
	Source []byte
	Root   sitter.Node

	tree *sitter.Tree
}

func (t *Tree) Close() {
	if t.tree != nil {
		t.tree.Close()
		t.tree = nil
	}
}

// Text returns the source text spanned by n.
func (t *Tree) Text(n sitter.Node) string {
	if n.IsNull() {
		return ""
	}
	return n.Content(t.Source)
}

// Parse builds a syntax tree for src. Any ERROR or MISSING node makes the
// parse fail with a *ParseError.
func Parse(ctx context.Context, path string, src []byte) (*Tree, error) {
	p, ok := parserPool.Get().(*sitter.Parser)
	if !ok {
		return nil, errPoolType
	}
	defer parserPool.Put(p)

	tree, err := p.ParseString(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	root := tree.RootNode()
	if root.IsNull() {
		tree.Close()
		return nil, fmt.Errorf("%s: %w", path, errNoRoot)
	}

	if root.HasError() {
		perr := locateError(path, root, src)
		tree.Close()
		return nil, perr
	}

	logger.Debug("Parsed %s (%d top-level statements)", path, root.NamedChildCount())

	return &Tree{Path: path, Source: src, Root: root, tree: tree}, nil
}

func locateError(path string, root sitter.Node, src []byte) *ParseError {
	bad := findError(root)
	if bad.IsNull() {
		bad = root
	}

	snippet := bad.Content(src)
	if i := strings.IndexByte(snippet, '\n'); i >= 0 {
		snippet = snippet[:i]
	}
	if len(snippet) > 40 {
		snippet = snippet[:40]
	}

	start := bad.StartPoint()
	return &ParseError{
		Path:    path,
		Line:    int(start.Row) + 1,    //nolint:gosec // tree-sitter coordinates fit in int
		Column:  int(start.Column) + 1, //nolint:gosec // tree-sitter coordinates fit in int
		Snippet: snippet,
	}
}

func findError(n sitter.Node) sitter.Node {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	if !n.HasError() {
		return sitter.Node{}
	}

	for i := range n.ChildCount() {
		if found := findError(n.Child(i)); !found.IsNull() {
			return found
		}
	}

	return sitter.Node{}
}

// NamedChildren lists n's named children, skipping comments.
func NamedChildren(n sitter.Node) []sitter.Node {
	var out []sitter.Node
	for i := range n.NamedChildCount() {
		child := n.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		out = append(out, child)
	}
	return out
}

// HasToken reports whether n has a direct anonymous child of the given type,
// e.g. the "default" keyword of an export statement.
func HasToken(n sitter.Node, token string) bool {
	for i := range n.ChildCount() {
		child := n.Child(i)
		if !child.IsNamed() && child.Type() == token {
			return true
		}
	}
	return false
}

// LastChild is n's final child, named or not.
func LastChild(n sitter.Node) sitter.Node {
	count := n.ChildCount()
	if count == 0 {
		return sitter.Node{}
	}
	return n.Child(count - 1)
}

// StringValue returns the value of a string literal node.
func StringValue(t *Tree, n sitter.Node) (string, bool) {
	if n.IsNull() || n.Type() != "string" {
		return "", false
	}
	return Unquote(t.Text(n)), true
}

// Unquote strips JavaScript string quotes, resolving simple escapes.
func Unquote(raw string) string {
	if len(raw) < 2 {
		return raw
	}
	quote := raw[0]
	if (quote != '"' && quote != '\'') || raw[len(raw)-1] != quote {
		return raw
	}

	body := raw[1 : len(raw)-1]
	if quote == '\'' {
		body = strings.ReplaceAll(body, `\'`, `'`)
		body = strings.ReplaceAll(body, `"`, `\"`)
	}
	if s, err := strconv.Unquote(`"` + body + `"`); err == nil {
		return s
	}
	return body
}

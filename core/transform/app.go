package transform

import (
	"fmt"
	"strconv"
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/tristendillon/minireact/core/ast"
	"github.com/tristendillon/minireact/core/config"
	"github.com/tristendillon/minireact/core/logger"
	"github.com/tristendillon/minireact/core/models"
	"github.com/tristendillon/minireact/core/shared"
	"github.com/tristendillon/minireact/core/template_engine"
)

const pagePrefix = "pages"

var iconPathKeys = map[string]bool{
	"iconPath":         true,
	"selectedIconPath": true,
}

type rootProgram struct {
	asset     *models.Asset
	opts      Options
	routes    *models.RouteTable
	pageIndex int
	rootClass string
}

func newRootProgram(asset *models.Asset, opts Options) program {
	return &rootProgram{
		asset:  asset,
		opts:   opts,
		routes: models.NewRouteTable(),
	}
}

func (p *rootProgram) register(passes *PassSet) {
	passes.Register(
		Pass{Name: "page-extraction", Kind: "import_statement", Visit: p.extractPage},
		Pass{Name: "root-declaration", Kind: "class_declaration", Visit: p.unwrapRootDeclaration},
		Pass{Name: "icon-path", Kind: "pair", Visit: p.requireIconPath},
	)
}

// IsPagePath reports whether an import source points into the pages directory.
func IsPagePath(source string) bool {
	trimmed := shared.TrimRelative(source)
	return trimmed == pagePrefix || strings.HasPrefix(trimmed, pagePrefix+"/")
}

func (p *rootProgram) extractPage(c *Cursor) error {
	if !c.TopLevel() {
		return nil
	}

	source, ok := ast.StringValue(c.Tree, c.Node.ChildByFieldName("source"))
	if !ok || !IsPagePath(source) {
		return nil
	}

	component := fmt.Sprintf("Page_%d", p.pageIndex)
	p.pageIndex++
	p.routes.AddRoute(source, component)
	c.Edits.Remove(c.Node)

	return nil
}

func (p *rootProgram) unwrapRootDeclaration(c *Cursor) error {
	if p.rootClass != "" {
		return nil
	}
	if !c.TopLevel() && !(c.Depth() == 2 && c.Parent().Type() == "export_statement") {
		return nil
	}

	name := c.Node.ChildByFieldName("name")
	body := c.Node.ChildByFieldName("body")
	if name.IsNull() || body.IsNull() {
		return nil
	}
	p.rootClass = c.Text(name)

	for _, child := range ast.NamedChildren(c.Node) {
		if child.Type() == "class_heritage" {
			c.Edits.ReplaceRange(name.EndByte(), body.StartByte(), " ")
			logger.Debug("Removed superclass of %s in %s", p.rootClass, p.asset.RelativePath)
			break
		}
	}

	return nil
}

func (p *rootProgram) requireIconPath(c *Cursor) error {
	key := c.Node.ChildByFieldName("key")
	value := c.Node.ChildByFieldName("value")
	if key.IsNull() || value.IsNull() {
		return nil
	}

	keyName := c.Text(key)
	if key.Type() == "string" {
		keyName = ast.Unquote(keyName)
	}
	if !iconPathKeys[keyName] || !p.inConfigField(c) {
		return nil
	}

	path, ok := ast.StringValue(c.Tree, value)
	if !ok {
		return nil
	}
	aliased, ok := aliasAsset(p.opts.AssetsAlias, path)
	if !ok {
		return nil
	}

	c.Edits.Replace(value, fmt.Sprintf("require(%s)", strconv.Quote(aliased)))
	return nil
}

func (p *rootProgram) inConfigField(c *Cursor) bool {
	_, ok := c.Enclosing(func(n sitter.Node) bool {
		switch n.Type() {
		case "field_definition", "public_field_definition":
			return c.Text(n.ChildByFieldName("property")) == "config"
		}
		return false
	})
	return ok
}

func (p *rootProgram) finish(tree *ast.Tree, edits *Rewriter) error {
	p.rewriteExport(tree, edits)

	prelude, err := engine.Render(template_engine.TEMPLATES.SCRIPT.IMPORTS, []config.Import{
		p.opts.LazyHelper,
		p.opts.Loading,
	})
	if err != nil {
		return err
	}

	bindings, err := engine.Render(template_engine.TEMPLATES.SCRIPT.PAGES, map[string]any{
		"Helper":  p.opts.LazyHelper.Name,
		"Loading": p.opts.Loading.Name,
		"Routes":  p.routes.Routes,
	})
	if err != nil {
		return err
	}

	table, err := engine.Render(template_engine.TEMPLATES.SCRIPT.ROUTES, map[string]any{
		"Name":   p.opts.RoutesExport,
		"Routes": p.routes.Routes,
	})
	if err != nil {
		return err
	}

	edits.Prepend(prelude)
	edits.Prepend(bindings)
	edits.Append(table)

	logger.Debug("Route table for %s:", p.asset.RelativePath)
	p.routes.PrintTable(logger.DEBUG)

	return nil
}

// rewriteExport unwraps one level of instantiation in the entry module's
// default export: `new Root(x)` becomes `x` and `Wrap(new Root())` becomes
// `new Root()`.
func (p *rootProgram) rewriteExport(tree *ast.Tree, edits *Rewriter) {
	if p.asset.SourcePath != p.opts.EntryPath || p.rootClass == "" {
		return
	}

	stmt, ok := defaultExport(tree)
	if !ok {
		return
	}
	value := stmt.ChildByFieldName("value")
	if value.IsNull() {
		return
	}

	switch value.Type() {
	case "new_expression":
		if !p.isRootInstance(tree, value) {
			return
		}
		if args := callArguments(value); len(args) > 0 {
			edits.Replace(value, tree.Text(args[0]))
		}
	case "call_expression":
		args := callArguments(value)
		if len(args) > 0 && args[0].Type() == "new_expression" && p.isRootInstance(tree, args[0]) {
			edits.Replace(value, tree.Text(args[0]))
		}
	}
}

func (p *rootProgram) isRootInstance(tree *ast.Tree, n sitter.Node) bool {
	return tree.Text(n.ChildByFieldName("constructor")) == p.rootClass
}

func callArguments(n sitter.Node) []sitter.Node {
	args := n.ChildByFieldName("arguments")
	if args.IsNull() {
		return nil
	}
	return ast.NamedChildren(args)
}

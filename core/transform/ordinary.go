package transform

import (
	"fmt"
	"strconv"
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/tristendillon/minireact/core/ast"
	"github.com/tristendillon/minireact/core/config"
	"github.com/tristendillon/minireact/core/models"
	"github.com/tristendillon/minireact/core/shared"
	"github.com/tristendillon/minireact/core/template_engine"
)

const renderMethod = "render"

type ordinaryProgram struct {
	asset      *models.Asset
	opts       Options
	components *nameSet
}

func newOrdinaryProgram(asset *models.Asset, opts Options) program {
	return &ordinaryProgram{
		asset:      asset,
		opts:       opts,
		components: newNameSet(),
	}
}

func (p *ordinaryProgram) register(passes *PassSet) {
	passes.Register(
		Pass{Name: "tag-substitution", Kind: "jsx_opening_element", Visit: p.substituteTag},
		Pass{Name: "tag-substitution-self-closing", Kind: "jsx_self_closing_element", Visit: p.substituteTag},
		Pass{Name: "asset-path", Kind: "jsx_attribute", Visit: p.resolveAssetSrc},
		Pass{Name: "event-name", Kind: "jsx_attribute", Visit: p.normalizeEvent},
		Pass{Name: "map-context", Kind: "call_expression", Visit: p.injectMapContext},
	)
}

func (p *ordinaryProgram) substituteTag(c *Cursor) error {
	name := c.Node.ChildByFieldName("name")
	if name.IsNull() || name.Type() != "identifier" {
		return nil
	}

	tag := c.Text(name)
	p.components.Add(tag)

	comp, ok := LookupComponent(tag)
	if !ok {
		return nil
	}
	c.Edits.Replace(name, comp.Name)

	if c.Node.Type() != "jsx_opening_element" {
		return nil
	}

	element := c.Parent()
	if element.IsNull() || element.Type() != "jsx_element" {
		return nil
	}
	closing := element.ChildByFieldName("close_tag")
	if closing.IsNull() {
		return nil
	}
	if closeName := closing.ChildByFieldName("name"); !closeName.IsNull() && c.Text(closeName) == tag {
		c.Edits.Replace(closeName, comp.Name)
	}

	return nil
}

func (p *ordinaryProgram) resolveAssetSrc(c *Cursor) error {
	children := ast.NamedChildren(c.Node)
	if len(children) < 2 || c.Text(children[0]) != "src" {
		return nil
	}

	value, ok := ast.StringValue(c.Tree, children[1])
	if !ok {
		return nil
	}

	resolved, ok := resolveAsset(p.opts.AssetsAlias, value)
	if !ok {
		return nil
	}

	c.Edits.Replace(children[1], fmt.Sprintf("{require(%s)}", strconv.Quote(resolved)))
	return nil
}

func (p *ordinaryProgram) normalizeEvent(c *Cursor) error {
	if !c.InMethod(renderMethod) {
		return nil
	}

	children := ast.NamedChildren(c.Node)
	if len(children) == 0 || children[0].Type() != "property_identifier" {
		return nil
	}

	name := c.Text(children[0])
	if renamed := EventName(name); renamed != name {
		c.Edits.Replace(children[0], renamed)
	}
	return nil
}

var eventPrefixes = []string{"catch", "bind"}

// EventName turns a mini-program handler attribute into its React name:
// catchTap and bindtap become onTap, and onTap becomes onClick.
func EventName(attr string) string {
	for _, prefix := range eventPrefixes {
		rest, ok := strings.CutPrefix(attr, prefix)
		if !ok || rest == "" {
			continue
		}
		attr = "on" + shared.ToTitle(rest)
		break
	}

	if attr == "onTap" {
		return "onClick"
	}
	return attr
}

func (p *ordinaryProgram) injectMapContext(c *Cursor) error {
	if !c.InMethod(renderMethod) {
		return nil
	}

	fn := c.Node.ChildByFieldName("function")
	if fn.IsNull() || fn.Type() != "member_expression" || c.Text(fn.ChildByFieldName("property")) != "map" {
		return nil
	}

	args := c.Node.ChildByFieldName("arguments")
	if args.IsNull() || args.Type() != "arguments" {
		return nil
	}

	count := len(ast.NamedChildren(args))
	if count >= 2 {
		return nil
	}

	closing := ast.LastChild(args)
	if closing.IsNull() || closing.Type() != ")" {
		return nil
	}

	text := "this"
	if count > 0 {
		text = ", this"
		if prev := args.Child(args.ChildCount() - 2); prev.Type() == "," {
			text = " this"
		}
	}

	c.Edits.InsertAt(closing.StartByte(), text)
	return nil
}

func (p *ordinaryProgram) finish(tree *ast.Tree, edits *Rewriter) error {
	p.wrapDefaultExport(tree, edits)

	var natives, internals []config.Import
	for _, tag := range p.components.Names() {
		comp, _ := LookupComponent(tag)
		switch comp.Import {
		case NativeImport:
			natives = append(natives, config.Import{Name: comp.Name, Source: p.opts.NativeComponents + "/X" + comp.Name})
		case InternalImport:
			internals = append(internals, config.Import{Name: comp.Name, Source: p.opts.InternalComponents + "/" + comp.Name})
		case NoImport:
		}
	}

	imports := append([]config.Import{p.opts.LazyHelper}, natives...)
	imports = append(imports, internals...)

	rendered, err := engine.Render(template_engine.TEMPLATES.SCRIPT.IMPORTS, imports)
	if err != nil {
		return err
	}
	edits.Prepend(rendered)

	return nil
}

func (p *ordinaryProgram) wrapDefaultExport(tree *ast.Tree, edits *Rewriter) {
	stmt, ok := defaultExport(tree)
	if !ok {
		return
	}
	helper := p.opts.LazyHelper.Name

	if decl := stmt.ChildByFieldName("declaration"); !decl.IsNull() {
		if decl.Type() == "function_declaration" {
			wrapFunctionDeclaration(tree, edits, decl, helper)
		}
		return
	}

	value := stmt.ChildByFieldName("value")
	if value.IsNull() {
		return
	}
	switch value.Type() {
	case "function_expression", "function":
		edits.InsertAt(value.StartByte(), helper+"(")
		edits.InsertAt(value.EndByte(), ")")
	case "identifier":
		if p.asset.InDir("pages") {
			edits.Replace(value, helper+"("+tree.Text(value)+")")
		}
	}
}

// wrapFunctionDeclaration turns `function Name(...) {...}` into
// `helper(function (...) {...});`, keeping modifiers such as async.
func wrapFunctionDeclaration(tree *ast.Tree, edits *Rewriter, decl sitter.Node, helper string) {
	name := decl.ChildByFieldName("name")
	if name.IsNull() {
		return
	}

	head := strings.TrimSpace(string(tree.Source[decl.StartByte():name.StartByte()]))
	edits.ReplaceRange(decl.StartByte(), name.EndByte(), helper+"("+head+" ")
	edits.InsertAt(decl.EndByte(), ");")
}

// defaultExport finds the module's top-level `export default` statement.
func defaultExport(tree *ast.Tree) (sitter.Node, bool) {
	for _, stmt := range ast.NamedChildren(tree.Root) {
		if stmt.Type() == "export_statement" && ast.HasToken(stmt, "default") {
			return stmt, true
		}
	}
	return sitter.Node{}, false
}

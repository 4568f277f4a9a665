package template_engine

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/tristendillon/minireact/core/logger"
)

//go:embed templates
var TemplateFS embed.FS

type TemplateRef struct {
	Path  string
	IsDir bool
}

func (tr TemplateRef) IsDirectory() bool {
	return tr.IsDir
}

var TEMPLATES = struct {
	SCRIPT struct {
		IMPORTS TemplateRef
		PAGES   TemplateRef
		ROUTES  TemplateRef
	}
	INIT struct {
		CONFIG TemplateRef
	}
}{}

func init() {
	TEMPLATES.SCRIPT.IMPORTS = TemplateRef{Path: "script/imports.js.tmpl"}
	TEMPLATES.SCRIPT.PAGES = TemplateRef{Path: "script/pages.js.tmpl"}
	TEMPLATES.SCRIPT.ROUTES = TemplateRef{Path: "script/routes.js.tmpl"}
	TEMPLATES.INIT.CONFIG = TemplateRef{Path: "init/minireact.yaml.tmpl"}
}

type TemplateEngine struct {
	funcMap template.FuncMap

	mu     sync.Mutex
	parsed map[string]*template.Template
}

func getDefaultFuncMap() template.FuncMap {
	return template.FuncMap{
		"upper":     strings.ToUpper,
		"lower":     strings.ToLower,
		"trim":      strings.TrimSpace,
		"join":      strings.Join,
		"hasPrefix": strings.HasPrefix,

		// jsString quotes s as a double-quoted JavaScript string literal.
		"jsString": strconv.Quote,

		"date": func(t time.Time) string { return t.Format("2006-01-02") },
		"add":  func(a, b int) int { return a + b },
	}
}

func NewTemplateEngine() *TemplateEngine {
	return &TemplateEngine{
		funcMap: getDefaultFuncMap(),
		parsed:  make(map[string]*template.Template),
	}
}

func (te *TemplateEngine) lookup(templateRef TemplateRef) (*template.Template, error) {
	if templateRef.IsDirectory() {
		return nil, fmt.Errorf("cannot render directory reference: %s", templateRef.Path)
	}

	te.mu.Lock()
	defer te.mu.Unlock()

	if tmpl, ok := te.parsed[templateRef.Path]; ok {
		return tmpl, nil
	}

	templatePath := filepath.ToSlash(filepath.Join("templates", templateRef.Path))
	content, err := TemplateFS.ReadFile(templatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read template file %s: %w", templatePath, err)
	}

	tmpl, err := template.New(filepath.Base(templateRef.Path)).Funcs(te.funcMap).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", templateRef.Path, err)
	}

	te.parsed[templateRef.Path] = tmpl
	logger.Debug("Parsed template %s", templateRef.Path)
	return tmpl, nil
}

// Render executes a template into a string.
func (te *TemplateEngine) Render(templateRef TemplateRef, data interface{}) (string, error) {
	tmpl, err := te.lookup(templateRef)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", templateRef.Path, err)
	}

	return buf.String(), nil
}

func (te *TemplateEngine) GenerateFile(templateRef TemplateRef, outputPath string, data interface{}) error {
	content, err := te.Render(templateRef, data)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(outputPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to create output file %s: %w", outputPath, err)
	}

	return nil
}

package models

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// AssetKind is fixed when a path is first discovered.
type AssetKind int

const (
	StaticAsset AssetKind = iota
	RootModule
	OrdinaryModule
	Stylesheet
)

func (k AssetKind) String() string {
	switch k {
	case RootModule:
		return "root"
	case OrdinaryModule:
		return "script"
	case Stylesheet:
		return "style"
	case StaticAsset:
		return "static"
	default:
		return "unknown"
	}
}

// Transformable reports whether files of this kind are rewritten rather than copied.
func (k AssetKind) Transformable() bool {
	return k != StaticAsset
}

// Asset is one source file and where its output goes.
type Asset struct {
	SourcePath      string
	RelativePath    string
	DestinationPath string
	Kind            AssetKind

	// mu serializes runs for this path; content is only touched while it is held.
	mu      sync.Mutex
	content []byte
}

func NewAsset(srcDir, destDir, sourcePath string, kind AssetKind) (*Asset, error) {
	rel, err := filepath.Rel(srcDir, sourcePath)
	if err != nil {
		return nil, fmt.Errorf("failed to relativize %s: %w", sourcePath, err)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("%s is outside source dir %s", sourcePath, srcDir)
	}

	return &Asset{
		SourcePath:      sourcePath,
		RelativePath:    rel,
		DestinationPath: filepath.Join(destDir, rel),
		Kind:            kind,
	}, nil
}

func (a *Asset) Lock()   { a.mu.Lock() }
func (a *Asset) Unlock() { a.mu.Unlock() }

// Read loads the source file into the content buffer.
func (a *Asset) Read() error {
	data, err := os.ReadFile(a.SourcePath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", a.SourcePath, err)
	}
	a.content = data
	return nil
}

func (a *Asset) Content() []byte {
	return a.content
}

func (a *Asset) SetContent(content []byte) {
	a.content = content
}

// Write stores content at the destination, creating parent directories.
func (a *Asset) Write(content []byte) error {
	if err := os.MkdirAll(filepath.Dir(a.DestinationPath), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(a.DestinationPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", a.DestinationPath, err)
	}
	a.content = content
	return nil
}

// InDir reports whether any directory segment of the relative path equals name.
func (a *Asset) InDir(name string) bool {
	parts := strings.Split(filepath.ToSlash(filepath.Dir(a.RelativePath)), "/")
	for _, part := range parts {
		if part == name {
			return true
		}
	}
	return false
}

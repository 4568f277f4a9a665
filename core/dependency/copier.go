package dependency

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tristendillon/minireact/core/logger"
	"github.com/tristendillon/minireact/core/models"
)

// Copier mirrors static assets byte-for-byte into the destination tree.
type Copier struct {
	mu     sync.Mutex
	copied map[string]models.CopiedAsset
}

func NewCopier() *Copier {
	return &Copier{copied: make(map[string]models.CopiedAsset)}
}

// Copy writes the asset's source bytes to its destination path.
func (c *Copier) Copy(asset *models.Asset) (models.CopiedAsset, error) {
	src, err := os.Open(asset.SourcePath)
	if err != nil {
		return models.CopiedAsset{}, fmt.Errorf("failed to open %s: %w", asset.SourcePath, err)
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(asset.DestinationPath), 0755); err != nil {
		return models.CopiedAsset{}, fmt.Errorf("failed to create target directory: %w", err)
	}

	dst, err := os.Create(asset.DestinationPath)
	if err != nil {
		return models.CopiedAsset{}, fmt.Errorf("failed to create %s: %w", asset.DestinationPath, err)
	}

	n, err := io.Copy(dst, src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return models.CopiedAsset{}, fmt.Errorf("failed to copy %s: %w", asset.RelativePath, err)
	}

	copied := models.CopiedAsset{
		SourcePath:      asset.SourcePath,
		DestinationPath: asset.DestinationPath,
		Bytes:           n,
		CopiedAt:        time.Now(),
	}

	c.mu.Lock()
	c.copied[asset.SourcePath] = copied
	c.mu.Unlock()

	logger.Debug("Copied %s to %s", asset.RelativePath, asset.DestinationPath)
	return copied, nil
}

// Forget drops the record for a source path.
func (c *Copier) Forget(sourcePath string) {
	c.mu.Lock()
	delete(c.copied, sourcePath)
	c.mu.Unlock()
}

// GetCopiedAssets returns a snapshot of everything copied so far.
func (c *Copier) GetCopiedAssets() map[string]models.CopiedAsset {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]models.CopiedAsset, len(c.copied))
	for k, v := range c.copied {
		out[k] = v
	}
	return out
}

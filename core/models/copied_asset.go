package models

import "time"

// CopiedAsset records a copy-through of a static file.
type CopiedAsset struct {
	SourcePath      string
	DestinationPath string
	Bytes           int64
	CopiedAt        time.Time
}
